package mailer

import (
	"fmt"
	"html"

	"eventhub-accounting-be/internal/config"
	"eventhub-accounting-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendNotification(toEmail, title, message string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	logger      logger.ILogger
}

// NewEmailService returns nil when SMTP is not configured; callers then skip email delivery.
func NewEmailService(cfg config.SMTPConfig, log logger.ILogger) IEmailService {
	if cfg.Host == "" || cfg.Email == "" {
		return nil
	}
	return &emailService{
		dialer:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.Email, cfg.Password),
		senderEmail: cfg.Email,
		senderName:  cfg.SenderName,
		logger:      log,
	}
}

func (s *emailService) SendNotification(toEmail, title, message string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", title)
	m.SetBody("text/html", renderNotification(title, message))

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("MAILER", "Failed to send notification email", map[string]interface{}{
			"to":    toEmail,
			"title": title,
			"error": err.Error(),
		})
		return err
	}

	s.logger.Info("MAILER", "Notification email sent", map[string]interface{}{
		"to":    toEmail,
		"title": title,
	})
	return nil
}

func renderNotification(title, message string) string {
	return fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s</h2>
			<p>%s</p>
			<p style="color: #888; font-size: 12px;">You receive this email because of activity on your EventHub account.</p>
		</div>
	`, html.EscapeString(title), html.EscapeString(message))
}
