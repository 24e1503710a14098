// Package booking sells event tickets: checkout with coupons and subscription
// gating, and settlement of card payments the gateway confirms later.
package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/unitofwork"
	adminEvents "eventhub-accounting-be/pkg/admin/events"
	"eventhub-accounting-be/pkg/admin/usage"
	"eventhub-accounting-be/pkg/metrics"
	"eventhub-accounting-be/pkg/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const logModule = "BOOKING"

type Item struct {
	TicketId uuid.UUID
	Quantity int
}

type CheckoutRequest struct {
	UserId     uuid.UUID
	EventId    uuid.UUID
	Items      []Item
	CouponCode string
	Method     entity.PaymentMethod
	CardToken  string
}

// CheckoutResult describes the stored booking. Pending means the card charge
// awaits gateway confirmation; the booking holds its tickets until then.
type CheckoutResult struct {
	Booking   *entity.Booking
	Purchases []*entity.TicketPurchase
	Quantity  int
	Pending   bool
	OrderId   string
}

// BadgeQueue receives users whose badges should be re-evaluated.
type BadgeQueue interface {
	Enqueue(ctx context.Context, userId uuid.UUID) error
}

type Service struct {
	uowFactory unitofwork.RepositoryFactory
	tracker    *usage.Tracker
	payments   *payment.Processor
	publisher  adminEvents.Publisher
	badges     BadgeQueue
	metrics    *metrics.Metrics
	logger     logger.ILogger
	clock      func() time.Time
}

func NewService(
	uowFactory unitofwork.RepositoryFactory,
	tracker *usage.Tracker,
	payments *payment.Processor,
	publisher adminEvents.Publisher,
	badges BadgeQueue,
	m *metrics.Metrics,
	logger logger.ILogger,
) *Service {
	return &Service{
		uowFactory: uowFactory,
		tracker:    tracker,
		payments:   payments,
		publisher:  publisher,
		badges:     badges,
		metrics:    m,
		logger:     logger,
		clock:      time.Now,
	}
}

// Checkout books tickets in one transaction: stock, coupon, join slot,
// purchases and payment either all land or none do.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	quantities, err := mergeItems(req.Items)
	if err != nil {
		s.metrics.BookingOperation("checkout", "rejected")
		return nil, err
	}

	var (
		result  *CheckoutResult
		charged bool
	)
	err = apperror.RetryOnConflict(ctx, func(ctx context.Context) error {
		// A card was already charged for this request, so a retry would charge it twice.
		if charged {
			return apperror.Conflict(apperror.ErrConcurrencyConflict)
		}

		uow := s.uowFactory.NewUnitOfWork(ctx)
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer uow.Rollback()

		r, err := s.checkout(ctx, uow, req, quantities, &charged)
		if err != nil {
			return err
		}
		result = r
		return uow.Commit()
	})
	if err != nil {
		s.metrics.BookingOperation("checkout", "rejected")
		s.logger.Warn(logModule, "Checkout rejected", map[string]interface{}{
			"user_id":  req.UserId.String(),
			"event_id": req.EventId.String(),
			"error":    err.Error(),
		})
		return nil, err
	}

	if result.Pending {
		s.metrics.BookingOperation("checkout", "pending")
		s.logger.Info(logModule, "Booking awaiting card confirmation", map[string]interface{}{
			"booking_id": result.Booking.Id.String(),
			"order_id":   result.OrderId,
		})
		return result, nil
	}

	s.metrics.BookingOperation("checkout", "paid")
	s.logger.Info(logModule, "Booking confirmed", map[string]interface{}{
		"booking_id": result.Booking.Id.String(),
		"user_id":    req.UserId.String(),
		"total":      result.Booking.Total.StringFixed(2),
		"quantity":   result.Quantity,
	})
	s.afterConfirm(ctx, result.Booking, result.Quantity)
	return result, nil
}

func (s *Service) checkout(ctx context.Context, uow unitofwork.UnitOfWork, req CheckoutRequest, quantities map[uuid.UUID]int, charged *bool) (*CheckoutResult, error) {
	now := s.clock()

	// 1. The event must be on sale.
	event, err := uow.EventRepository().FindById(ctx, req.EventId, contract.LockNone)
	if err != nil {
		return nil, err
	}
	if event == nil || !event.IsPublished {
		return nil, apperror.NotFound(apperror.ReasonEventNotFound, "event not found")
	}

	// 2. Lock the tickets in id order and price the selection.
	ids := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	tickets, err := uow.TicketRepository().FindByIds(ctx, ids, contract.LockForUpdate)
	if err != nil {
		return nil, fmt.Errorf("lock tickets: %w", err)
	}
	if len(tickets) != len(ids) {
		return nil, apperror.Reject(apperror.ReasonInvalidTickets, "some tickets do not exist")
	}

	subtotal := decimal.Zero
	totalQuantity := 0
	for _, ticket := range tickets {
		qty := quantities[ticket.Id]
		if ticket.EventId != event.Id {
			return nil, apperror.Reject(apperror.ReasonInvalidTickets, "tickets belong to another event")
		}
		if ticket.Available() < qty {
			return nil, apperror.Reject(apperror.ReasonTicketsUnavailable,
				fmt.Sprintf("not enough %s tickets available", ticket.TicketType))
		}
		subtotal = subtotal.Add(ticket.Price.Mul(decimal.NewFromInt(int64(qty))))
		totalQuantity += qty
	}
	if !subtotal.IsPositive() {
		return nil, apperror.Reject(apperror.ReasonInvalidTickets, "no valid tickets selected")
	}

	// 3. Apply the coupon.
	var coupon *entity.Coupon
	discount := decimal.Zero
	if req.CouponCode != "" {
		coupon, err = s.validateCoupon(ctx, uow, req.CouponCode, req.UserId, subtotal, now)
		if err != nil {
			return nil, err
		}
		discount = coupon.DiscountFor(subtotal)
	}
	total := subtotal.Sub(discount)

	// 4. Consume a join slot of the buyer's subscription.
	if _, err := s.tracker.ReserveJoin(ctx, uow, req.UserId); err != nil {
		return nil, err
	}

	// 5. Write the booking and its purchases.
	booking := &entity.Booking{
		Id:            uuid.New(),
		UserId:        req.UserId,
		EventId:       event.Id,
		PaymentMethod: req.Method,
		PaymentStatus: entity.BookingPaymentPending,
		Subtotal:      subtotal,
		Discount:      discount,
		Total:         total,
		TrackDiscount: subtotal.Sub(total),
		CreatedAt:     now,
	}
	if coupon != nil {
		booking.CouponId = &coupon.Id
	}
	orderId := payment.BookingOrderId(booking.Id)

	// 6. Collect payment. A free booking is paid as soon as it exists.
	pending := false
	if total.IsPositive() {
		if req.Method == entity.PaymentMethodCard {
			*charged = true
		}
		res, err := s.payments.Collect(ctx, uow, payment.Request{
			Method:      req.Method,
			UserId:      req.UserId,
			Amount:      total,
			OrderId:     orderId,
			CardToken:   req.CardToken,
			Description: fmt.Sprintf("Payment for %s tickets (booking %s)", event.Title, booking.Id),
			BookingId:   &booking.Id,
		})
		if err != nil {
			return nil, err
		}
		if res.GatewayTxId != "" {
			ref := res.GatewayTxId
			booking.GatewayReference = &ref
		}
		pending = res.Status == payment.StatusPending
	}
	if !pending {
		booking.PaymentStatus = entity.BookingPaymentPaid
	}

	if err := uow.BookingRepository().Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	purchases := make([]*entity.TicketPurchase, 0, len(tickets))
	for _, ticket := range tickets {
		qty := quantities[ticket.Id]
		ticket.SoldQuantity += qty
		if err := uow.TicketRepository().Update(ctx, ticket); err != nil {
			return nil, fmt.Errorf("update sold quantity: %w", err)
		}

		purchase := &entity.TicketPurchase{
			Id:         uuid.New(),
			BookingId:  booking.Id,
			TicketId:   ticket.Id,
			BuyerId:    req.UserId,
			EventId:    event.Id,
			Quantity:   qty,
			TotalPrice: ticket.Price.Mul(decimal.NewFromInt(int64(qty))),
			CreatedAt:  now,
		}
		if err := uow.BookingRepository().CreatePurchase(ctx, purchase); err != nil {
			return nil, fmt.Errorf("create purchase: %w", err)
		}
		purchases = append(purchases, purchase)
	}

	// 7. Consume the coupon.
	if coupon != nil {
		coupon.UsedCount++
		if err := uow.CouponRepository().Update(ctx, coupon); err != nil {
			return nil, fmt.Errorf("update coupon: %w", err)
		}
		if err := uow.CouponRepository().CreateRedemption(ctx, &entity.CouponRedemption{
			Id:         uuid.New(),
			CouponId:   coupon.Id,
			UserId:     req.UserId,
			BookingId:  booking.Id,
			RedeemedAt: now,
		}); err != nil {
			return nil, fmt.Errorf("redeem coupon: %w", err)
		}
	}

	return &CheckoutResult{
		Booking:   booking,
		Purchases: purchases,
		Quantity:  totalQuantity,
		Pending:   pending,
		OrderId:   orderId,
	}, nil
}

func (s *Service) validateCoupon(ctx context.Context, uow unitofwork.UnitOfWork, code string, userId uuid.UUID, subtotal decimal.Decimal, now time.Time) (*entity.Coupon, error) {
	coupon, err := uow.CouponRepository().FindByCode(ctx, code, contract.LockForUpdate)
	if err != nil {
		return nil, fmt.Errorf("lock coupon: %w", err)
	}
	if coupon == nil || !coupon.IsActive {
		return nil, apperror.Reject(apperror.ReasonInvalidCoupon, "coupon not found")
	}

	today := entity.StartOfDay(now)
	if today.Before(entity.StartOfDay(coupon.ValidFrom)) || today.After(entity.StartOfDay(coupon.ValidUntil)) {
		return nil, apperror.Reject(apperror.ReasonInvalidCoupon, "coupon expired or not yet active")
	}

	redeemed, err := uow.CouponRepository().HasRedeemed(ctx, coupon.Id, userId)
	if err != nil {
		return nil, err
	}
	if redeemed {
		return nil, apperror.Reject(apperror.ReasonInvalidCoupon, "you have already used this coupon")
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return nil, apperror.Reject(apperror.ReasonInvalidCoupon, "coupon usage limit reached")
	}
	if subtotal.LessThan(coupon.MinOrderAmount) {
		return nil, apperror.Reject(apperror.ReasonInvalidCoupon,
			fmt.Sprintf("minimum order amount is %s", coupon.MinOrderAmount.StringFixed(2)))
	}
	return coupon, nil
}

// afterConfirm runs once a booking is paid and committed.
func (s *Service) afterConfirm(ctx context.Context, booking *entity.Booking, quantity int) {
	s.publisher.PublishBookingConfirmed(ctx, booking, quantity)
	if s.badges == nil {
		return
	}
	if err := s.badges.Enqueue(ctx, booking.UserId); err != nil {
		s.logger.Warn(logModule, "Failed to queue badge check", map[string]interface{}{
			"user_id": booking.UserId.String(),
			"error":   err.Error(),
		})
	}
}

// mergeItems folds repeated tickets together and rejects empty selections.
func mergeItems(items []Item) (map[uuid.UUID]int, error) {
	quantities := make(map[uuid.UUID]int, len(items))
	for _, item := range items {
		if item.Quantity < 0 {
			return nil, apperror.Reject(apperror.ReasonInvalidTickets, "ticket quantity cannot be negative")
		}
		if item.Quantity == 0 {
			continue
		}
		quantities[item.TicketId] += item.Quantity
	}
	if len(quantities) == 0 {
		return nil, apperror.Reject(apperror.ReasonInvalidTickets, "no valid tickets selected")
	}
	return quantities, nil
}
