// Package refund cancels booked tickets and refunds them to the buyer's wallet.
package refund

import (
	"context"
	"fmt"
	"time"

	"eventhub-accounting-be/internal/config"
	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/unitofwork"
	adminEvents "eventhub-accounting-be/pkg/admin/events"
	"eventhub-accounting-be/pkg/ledger"
	"eventhub-accounting-be/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const logModule = "REFUND"

type CancelItem struct {
	PurchaseId uuid.UUID
	Quantity   int
}

type CancelRequest struct {
	UserId    uuid.UUID
	BookingId uuid.UUID
	Items     []CancelItem
}

type CancelledItem struct {
	PurchaseId uuid.UUID
	TicketId   uuid.UUID
	Quantity   int
	Amount     decimal.Decimal
}

// CancelResult reports what was cancelled. Refund is GrossAmount minus the
// cancelled tickets' share of the booking discount.
type CancelResult struct {
	Booking           *entity.Booking
	Items             []CancelledItem
	Cancelled         int
	GrossAmount       decimal.Decimal
	DiscountShare     decimal.Decimal
	Refund            decimal.Decimal
	WalletTransaction *entity.WalletTransaction
}

type Options struct {
	// MinDaysBeforeStart closes cancellation this many days before the event starts.
	MinDaysBeforeStart int
}

func OptionsFromConfig(cfg config.AccountingConfig) Options {
	return Options{MinDaysBeforeStart: cfg.CancellationMinDays}
}

// Processor handles ticket cancellations
type Processor struct {
	uowFactory unitofwork.RepositoryFactory
	ledger     *ledger.Ledger
	publisher  adminEvents.Publisher
	metrics    *metrics.Metrics
	logger     logger.ILogger
	opts       Options
	clock      func() time.Time
}

func NewProcessor(
	uowFactory unitofwork.RepositoryFactory,
	l *ledger.Ledger,
	publisher adminEvents.Publisher,
	m *metrics.Metrics,
	logger logger.ILogger,
	opts Options,
) *Processor {
	return &Processor{
		uowFactory: uowFactory,
		ledger:     l,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
		opts:       opts,
		clock:      time.Now,
	}
}

// Cancel returns tickets of a paid booking. The booking row is locked for the
// whole operation so two cancellations of the same tickets cannot both refund.
func (p *Processor) Cancel(ctx context.Context, req CancelRequest) (*CancelResult, error) {
	var result *CancelResult
	err := apperror.RetryOnConflict(ctx, func(ctx context.Context) error {
		uow := p.uowFactory.NewUnitOfWork(ctx)
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer uow.Rollback()

		r, err := p.cancel(ctx, uow, req)
		if err != nil {
			return err
		}
		result = r
		return uow.Commit()
	})
	if err != nil {
		p.metrics.BookingOperation("cancel", "rejected")
		p.logger.Warn(logModule, "Cancellation rejected", map[string]interface{}{
			"booking_id": req.BookingId.String(),
			"user_id":    req.UserId.String(),
			"error":      err.Error(),
		})
		return nil, err
	}

	p.metrics.BookingOperation("cancel", "ok")
	p.logger.Info(logModule, "Tickets cancelled", map[string]interface{}{
		"booking_id":     req.BookingId.String(),
		"cancelled":      result.Cancelled,
		"gross_amount":   result.GrossAmount.StringFixed(2),
		"discount_share": result.DiscountShare.StringFixed(2),
		"refund":         result.Refund.StringFixed(2),
	})
	p.publisher.PublishBookingCancelled(ctx, result.Booking, result.Cancelled, result.Refund)
	return result, nil
}

func (p *Processor) cancel(ctx context.Context, uow unitofwork.UnitOfWork, req CancelRequest) (*CancelResult, error) {
	if len(req.Items) == 0 {
		return nil, apperror.Reject(apperror.ReasonInvalidCancellation, "no tickets selected")
	}

	// 1. Lock the booking.
	booking, err := uow.BookingRepository().FindById(ctx, req.BookingId, contract.LockForUpdate)
	if err != nil {
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	if booking == nil || booking.UserId != req.UserId {
		return nil, apperror.NotFound(apperror.ReasonBookingNotFound, "booking not found")
	}
	if booking.PaymentStatus != entity.BookingPaymentPaid {
		return nil, apperror.Reject(apperror.ReasonInvalidCancellation, "only paid bookings can be cancelled")
	}

	// 2. Check the deadline.
	event, err := uow.EventRepository().FindById(ctx, booking.EventId, contract.LockNone)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperror.NotFound(apperror.ReasonEventNotFound, "event not found")
	}
	deadline := entity.StartOfDay(event.StartDate).AddDate(0, 0, -p.opts.MinDaysBeforeStart)
	if entity.StartOfDay(p.clock()).After(deadline) {
		return nil, apperror.Reject(apperror.ReasonRefundWindowClosed,
			fmt.Sprintf("tickets can be cancelled until %d days before the event", p.opts.MinDaysBeforeStart))
	}

	// 3. Validate the selection against the booking's purchases.
	purchases, err := uow.BookingRepository().FindPurchasesByBooking(ctx, booking.Id)
	if err != nil {
		return nil, err
	}
	byId := make(map[uuid.UUID]*entity.TicketPurchase, len(purchases))
	bookedCount := 0
	for _, pu := range purchases {
		byId[pu.Id] = pu
		bookedCount += pu.Quantity
	}

	requested := make(map[uuid.UUID]int, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperror.Reject(apperror.ReasonInvalidCancellation, "quantity must be greater than zero")
		}
		pu, ok := byId[item.PurchaseId]
		if !ok {
			return nil, apperror.Reject(apperror.ReasonInvalidCancellation,
				fmt.Sprintf("ticket %s does not belong to booking %s", item.PurchaseId, booking.Id))
		}
		requested[item.PurchaseId] += item.Quantity
		if requested[item.PurchaseId] > pu.Quantity {
			return nil, apperror.Reject(apperror.ReasonInvalidCancellation,
				fmt.Sprintf("cannot cancel more than %d tickets of %s", pu.Quantity, item.PurchaseId))
		}
	}

	// 4. Return stock and shrink the purchases.
	result := &CancelResult{GrossAmount: decimal.Zero, DiscountShare: decimal.Zero, Refund: decimal.Zero}
	for _, pu := range purchases {
		qty, ok := requested[pu.Id]
		if !ok {
			continue
		}

		ticket, err := uow.TicketRepository().FindById(ctx, pu.TicketId, contract.LockForUpdate)
		if err != nil {
			return nil, fmt.Errorf("lock ticket: %w", err)
		}
		if ticket != nil {
			ticket.SoldQuantity -= qty
			if ticket.SoldQuantity < 0 {
				ticket.SoldQuantity = 0
			}
			if err := uow.TicketRepository().Update(ctx, ticket); err != nil {
				return nil, fmt.Errorf("restore sold quantity: %w", err)
			}
		}

		amount := pu.TotalPrice.Div(decimal.NewFromInt(int64(pu.Quantity))).
			Mul(decimal.NewFromInt(int64(qty))).Round(2)
		if qty == pu.Quantity {
			amount = pu.TotalPrice
			err = uow.BookingRepository().DeletePurchase(ctx, pu.Id)
		} else {
			pu.Quantity -= qty
			pu.TotalPrice = pu.TotalPrice.Sub(amount)
			err = uow.BookingRepository().UpdatePurchase(ctx, pu)
		}
		if err != nil {
			return nil, fmt.Errorf("update purchase: %w", err)
		}

		result.GrossAmount = result.GrossAmount.Add(amount)
		result.Cancelled += qty
		result.Items = append(result.Items, CancelledItem{
			PurchaseId: pu.Id,
			TicketId:   pu.TicketId,
			Quantity:   qty,
			Amount:     amount,
		})
	}

	// 5. Take back the cancelled tickets' share of the discount.
	if booking.TrackDiscount.IsPositive() && bookedCount > 0 {
		result.DiscountShare = booking.TrackDiscount.
			Div(decimal.NewFromInt(int64(bookedCount))).
			Mul(decimal.NewFromInt(int64(result.Cancelled))).Round(2)
		if result.Cancelled == bookedCount {
			result.DiscountShare = booking.TrackDiscount
		}
	}
	result.Refund = result.GrossAmount.Sub(result.DiscountShare)
	if result.Refund.IsNegative() {
		result.Refund = decimal.Zero
	}

	// 6. Shrink the booking so a later distribution counts only retained revenue.
	booking.Subtotal = nonNegative(booking.Subtotal.Sub(result.GrossAmount))
	booking.Total = nonNegative(booking.Total.Sub(result.Refund))
	booking.TrackDiscount = nonNegative(booking.TrackDiscount.Sub(result.DiscountShare))
	if err := uow.BookingRepository().Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}
	result.Booking = booking

	// 7. Refund to the wallet.
	if result.Refund.IsPositive() {
		wallet, err := ledger.WalletForUser(ctx, uow, req.UserId, contract.LockForUpdate)
		if err != nil {
			return nil, err
		}
		tx, err := p.ledger.Credit(ctx, uow, ledger.Entry{
			WalletId:    wallet.Id,
			Amount:      result.Refund,
			Type:        entity.WalletTransactionRefund,
			Description: fmt.Sprintf("Refund of cancelled tickets for %s", event.Title),
			BookingId:   &booking.Id,
			EventId:     &event.Id,
		})
		if err != nil {
			return nil, err
		}
		result.WalletTransaction = tx
	}

	return result, nil
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
