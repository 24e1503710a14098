package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/pkg/mailer"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/unitofwork"
	"eventhub-accounting-be/pkg/events"
	pktNats "eventhub-accounting-be/pkg/nats"

	"github.com/google/uuid"
)

const notifyModule = "NOTIFY"

// notificationTemplate renders {key} placeholders from the event payload.
type notificationTemplate struct {
	Title   string
	Message string
}

var notificationTemplates = map[string]notificationTemplate{
	events.TypeRevenueDistributed: {
		Title:   "Revenue distributed",
		Message: "Your event {event_title} earned {organizer_amount} after a {admin_percentage}% platform fee.",
	},
	events.TypeBookingConfirmed: {
		Title:   "Booking confirmed",
		Message: "Your booking of {quantity} ticket(s) is confirmed. Total paid: {total}.",
	},
	events.TypeBookingCancelled: {
		Title:   "Tickets cancelled",
		Message: "{quantity} ticket(s) were cancelled and {refund_amount} was refunded to your wallet.",
	},
	events.TypeSubscriptionPurchased: {
		Title:   "Subscription active",
		Message: "Your {plan_name} plan is now active.",
	},
	events.TypeSubscriptionUpgraded: {
		Title:   "Subscription upgraded",
		Message: "You are now on the {plan_name} plan.",
	},
	events.TypeSubscriptionRenewed: {
		Title:   "Subscription renewed",
		Message: "Your {plan_name} plan has been renewed.",
	},
	events.TypeBadgeEarned: {
		Title:   "Badge earned",
		Message: "You earned the {badge_name} badge.",
	},
}

// NotificationService turns accounting events into user notifications.
type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	repo       contract.NotificationRepository
	mailer     mailer.IEmailService
	logger     logger.ILogger
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, repo contract.NotificationRepository, mail mailer.IEmailService, log logger.ILogger) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		repo:       repo,
		mailer:     mail,
		logger:     log,
	}
}

// Start consumes every accounting event with a durable consumer until ctx is cancelled.
func (s *NotificationService) Start(ctx context.Context, sub *pktNats.Subscriber) error {
	if err := sub.Subscribe(ctx, events.SubjectPrefix+">", "accounting-notify-worker", s.HandleEvent); err != nil {
		return fmt.Errorf("start notification subscriber: %w", err)
	}
	s.logger.Info(notifyModule, "Notification worker started", map[string]interface{}{
		"subject": events.SubjectPrefix + ">",
	})
	return nil
}

// HandleEvent stores one notification for the event's user and emails it when
// the user's plan includes email notifications. Only a failed insert is
// returned, so the message is redelivered.
func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	tmpl, ok := notificationTemplates[event.EventType()]
	if !ok {
		s.logger.Debug(notifyModule, "No notification for event type", map[string]interface{}{
			"type": event.EventType(),
		})
		return nil
	}

	payload := event.Payload()
	userId, ok := uuidFrom(payload, "user_id")
	if !ok {
		s.logger.Warn(notifyModule, "Event carries no user_id, dropping", map[string]interface{}{
			"type": event.EventType(),
			"id":   event.EventID(),
		})
		return nil
	}

	record := &contract.NotificationRecord{
		UserId:    userId,
		TypeCode:  event.EventType(),
		Title:     tmpl.Title,
		Message:   render(tmpl.Message, payload),
		Metadata:  metadataFrom(payload),
		CreatedAt: event.Timestamp(),
	}
	if et, ok := payload["entity_type"].(string); ok {
		record.EntityType = et
	}
	if eid, ok := uuidFrom(payload, "entity_id"); ok {
		record.EntityId = &eid
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	record.EmailSent = s.sendEmail(ctx, userId, record)

	if err := s.repo.Create(ctx, record); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

func (s *NotificationService) sendEmail(ctx context.Context, userId uuid.UUID, record *contract.NotificationRecord) bool {
	if s.mailer == nil {
		return false
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindById(ctx, userId)
	if err != nil || user == nil || user.Email == "" {
		return false
	}
	sub, err := uow.SubscriptionRepository().FindSubscriptionByUserId(ctx, userId, contract.LockNone)
	if err != nil || sub == nil || !sub.IsValid(time.Now()) || !sub.Plan.Features.EmailNotification {
		return false
	}

	// A failed email is not retried; the in-app record still carries the message.
	if err := s.mailer.SendNotification(user.Email, record.Title, record.Message); err != nil {
		s.logger.Warn(notifyModule, "Email delivery failed", map[string]interface{}{
			"user_id": userId.String(),
			"type":    record.TypeCode,
			"error":   err.Error(),
		})
		return false
	}
	return true
}

func render(template string, payload map[string]interface{}) string {
	msg := template
	for k, v := range payload {
		msg = strings.ReplaceAll(msg, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	return msg
}

func metadataFrom(payload map[string]interface{}) map[string]interface{} {
	meta := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		meta[k] = v
	}
	if et, ok := payload["entity_type"].(string); ok {
		if eid, ok := payload["entity_id"].(string); ok {
			meta["action_url"] = fmt.Sprintf("/%ss/%s", et, eid)
		}
	}
	return meta
}

func uuidFrom(payload map[string]interface{}, key string) (uuid.UUID, bool) {
	raw, ok := payload[key].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
