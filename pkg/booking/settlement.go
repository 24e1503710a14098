package booking

import (
	"context"
	"fmt"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/unitofwork"
	"eventhub-accounting-be/pkg/payment"
)

// SettleGatewayPayment applies a gateway notification to a pending card
// booking: a settled charge marks it paid, a failed one releases its tickets
// and deletes it. It reports whether the booking changed, so repeated
// notifications are harmless.
func (s *Service) SettleGatewayPayment(ctx context.Context, orderId, transactionId string, outcome payment.NotificationOutcome) (bool, error) {
	bookingId, ok := payment.ParseBookingOrderId(orderId)
	if !ok {
		return false, apperror.NotFound(apperror.ReasonBookingNotFound, "not a booking order")
	}
	if outcome != payment.NotificationSettled && outcome != payment.NotificationFailed {
		return false, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	booking, err := uow.BookingRepository().FindByGatewayReference(ctx, transactionId, contract.LockForUpdate)
	if err != nil {
		return false, fmt.Errorf("lock booking: %w", err)
	}
	if booking == nil {
		// Released by an earlier failure notification, or never created.
		s.logger.Info(logModule, "No booking for gateway transaction", map[string]interface{}{
			"order_id":       orderId,
			"transaction_id": transactionId,
		})
		return false, nil
	}
	if booking.Id != bookingId {
		return false, apperror.Inconsistent(
			fmt.Sprintf("transaction %s belongs to booking %s, not %s", transactionId, booking.Id, bookingId), nil)
	}
	if booking.PaymentStatus == entity.BookingPaymentPaid {
		return false, nil
	}

	purchases, err := uow.BookingRepository().FindPurchasesByBooking(ctx, booking.Id)
	if err != nil {
		return false, err
	}
	quantity := 0
	for _, p := range purchases {
		quantity += p.Quantity
	}

	if outcome == payment.NotificationFailed {
		if err := releaseBooking(ctx, uow, booking, purchases); err != nil {
			return false, err
		}
		if err := uow.Commit(); err != nil {
			return false, err
		}
		s.metrics.BookingOperation("settlement", "released")
		s.logger.Warn(logModule, "Card payment failed, booking released", map[string]interface{}{
			"booking_id": booking.Id.String(),
			"quantity":   quantity,
		})
		return true, nil
	}

	booking.PaymentStatus = entity.BookingPaymentPaid
	if err := uow.BookingRepository().Update(ctx, booking); err != nil {
		return false, fmt.Errorf("mark booking paid: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return false, err
	}

	s.metrics.BookingOperation("settlement", "paid")
	s.logger.Info(logModule, "Card payment settled", map[string]interface{}{
		"booking_id": booking.Id.String(),
		"total":      booking.Total.StringFixed(2),
	})
	s.afterConfirm(ctx, booking, quantity)
	return true, nil
}

// releaseBooking returns the tickets of an unpaid booking to stock and removes it.
// The join slot and any coupon stay consumed.
func releaseBooking(ctx context.Context, uow unitofwork.UnitOfWork, booking *entity.Booking, purchases []*entity.TicketPurchase) error {
	for _, p := range purchases {
		ticket, err := uow.TicketRepository().FindById(ctx, p.TicketId, contract.LockForUpdate)
		if err != nil {
			return fmt.Errorf("lock ticket: %w", err)
		}
		if ticket != nil {
			ticket.SoldQuantity -= p.Quantity
			if ticket.SoldQuantity < 0 {
				ticket.SoldQuantity = 0
			}
			if err := uow.TicketRepository().Update(ctx, ticket); err != nil {
				return fmt.Errorf("restore sold quantity: %w", err)
			}
		}
		if err := uow.BookingRepository().DeletePurchase(ctx, p.Id); err != nil {
			return fmt.Errorf("delete purchase: %w", err)
		}
	}
	if err := uow.BookingRepository().Delete(ctx, booking.Id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}
