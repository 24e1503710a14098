package service

import (
	"context"

	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/pkg/admin/subscription"
	"eventhub-accounting-be/pkg/booking"
	"eventhub-accounting-be/pkg/payment"

	"github.com/shopspring/decimal"
)

const paymentModule = "PAYMENT"

type IPaymentService interface {
	HandleNotification(ctx context.Context, n *payment.Notification) error
}

type paymentService struct {
	serverKey string
	bookings  *booking.Service
	manager   *subscription.Manager
	payments  *payment.Processor
	logger    logger.ILogger
}

func NewPaymentService(serverKey string, bookings *booking.Service, manager *subscription.Manager, payments *payment.Processor, logger logger.ILogger) IPaymentService {
	return &paymentService{
		serverKey: serverKey,
		bookings:  bookings,
		manager:   manager,
		payments:  payments,
		logger:    logger,
	}
}

// HandleNotification verifies a gateway callback and routes it by order id.
// Returned errors make the gateway redeliver; a settled charge that can no
// longer be applied is refunded through the gateway instead.
func (s *paymentService) HandleNotification(ctx context.Context, n *payment.Notification) error {
	if !n.VerifySignature(s.serverKey) {
		s.logger.Warn(paymentModule, "Rejected notification with bad signature", map[string]interface{}{
			"order_id": n.OrderId,
		})
		return apperror.Reject(apperror.ReasonInvalidRequest, "invalid signature")
	}

	outcome := n.Outcome()
	s.logger.Info(paymentModule, "Payment notification received", map[string]interface{}{
		"order_id":           n.OrderId,
		"transaction_id":     n.TransactionId,
		"transaction_status": n.TransactionStatus,
		"outcome":            string(outcome),
	})

	if _, ok := payment.ParseBookingOrderId(n.OrderId); ok {
		changed, err := s.bookings.SettleGatewayPayment(ctx, n.OrderId, n.TransactionId, outcome)
		if err != nil {
			return err
		}
		if !changed {
			s.logger.Debug(paymentModule, "Booking notification changed nothing", map[string]interface{}{
				"order_id": n.OrderId,
				"outcome":  string(outcome),
			})
		}
		return nil
	}

	if !payment.IsSubscriptionOrderId(n.OrderId) {
		return apperror.NotFound(apperror.ReasonInvalidRequest, "unknown order id")
	}
	return s.handleSubscription(ctx, n, outcome)
}

func (s *paymentService) handleSubscription(ctx context.Context, n *payment.Notification, outcome payment.NotificationOutcome) error {
	switch outcome {
	case payment.NotificationSettled:
		amount, err := decimal.NewFromString(n.GrossAmount)
		if err != nil {
			return apperror.Reject(apperror.ReasonInvalidAmount, "gross_amount is not a number")
		}
		res, err := s.manager.ConfirmGatewayPayment(ctx, n.OrderId, n.TransactionId, amount)
		if err != nil {
			if r, ok := apperror.AsRejection(err); ok && !r.Transient() && r.Reason != apperror.ReasonOrderNotFound {
				s.refundUnapplied(ctx, n, amount, r)
				return nil
			}
			return err
		}
		if res.AlreadyApplied {
			s.logger.Debug(paymentModule, "Subscription payment already applied", map[string]interface{}{
				"transaction_id": n.TransactionId,
			})
		}
		return nil

	case payment.NotificationRefunded:
		found, err := s.manager.MarkRefunded(ctx, n.TransactionId)
		if err != nil {
			return err
		}
		if !found {
			s.logger.Warn(paymentModule, "Refund for unknown subscription transaction", map[string]interface{}{
				"transaction_id": n.TransactionId,
			})
		}
		return nil

	case payment.NotificationFailed:
		closed, err := s.manager.FailGatewayOrder(ctx, n.OrderId)
		if err != nil {
			return err
		}
		if closed {
			s.logger.Info(paymentModule, "Subscription order closed after failed charge", map[string]interface{}{
				"order_id": n.OrderId,
			})
		}
		return nil

	default:
		// Pending charges change nothing until they settle or fail.
		return nil
	}
}

// refundUnapplied returns a settled charge whose subscription change was
// rejected. A failed refund is left for manual handling, redelivery would
// only hit the same rejection.
func (s *paymentService) refundUnapplied(ctx context.Context, n *payment.Notification, amount decimal.Decimal, r *apperror.Rejection) {
	details := map[string]interface{}{
		"order_id":       n.OrderId,
		"transaction_id": n.TransactionId,
		"amount":         amount.StringFixed(2),
		"reason":         string(r.Reason),
	}
	if err := s.payments.RefundCard(ctx, n.OrderId, amount, r.Message); err != nil {
		details["error"] = err.Error()
		s.logger.Error(paymentModule, "Settled payment could not be applied or refunded, manual refund required", details)
		return
	}
	s.logger.Warn(paymentModule, "Settled payment could not be applied, refunded", details)
}
