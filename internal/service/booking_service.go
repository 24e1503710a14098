package service

import (
	"context"

	"eventhub-accounting-be/internal/dto"
	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/pkg/admin/mapper"
	"eventhub-accounting-be/pkg/admin/refund"
	"eventhub-accounting-be/pkg/booking"

	"github.com/google/uuid"
)

type BookingService interface {
	Checkout(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	Cancel(ctx context.Context, userId uuid.UUID, req *dto.CancelRequest) (*dto.CancelResponse, error)
}

type bookingService struct {
	checkout *booking.Service
	refunds  *refund.Processor
}

func NewBookingService(checkout *booking.Service, refunds *refund.Processor) BookingService {
	return &bookingService{
		checkout: checkout,
		refunds:  refunds,
	}
}

func (s *bookingService) Checkout(ctx context.Context, userId uuid.UUID, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	items := make([]booking.Item, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		items = append(items, booking.Item{TicketId: t.TicketId, Quantity: t.Quantity})
	}

	res, err := s.checkout.Checkout(ctx, booking.CheckoutRequest{
		UserId:     userId,
		EventId:    req.EventId,
		Items:      items,
		CouponCode: req.CouponCode,
		Method:     entity.PaymentMethod(req.PaymentMethod),
		CardToken:  req.CardToken,
	})
	if err != nil {
		return nil, err
	}
	return mapper.CheckoutToResponse(res), nil
}

func (s *bookingService) Cancel(ctx context.Context, userId uuid.UUID, req *dto.CancelRequest) (*dto.CancelResponse, error) {
	items := make([]refund.CancelItem, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		items = append(items, refund.CancelItem{PurchaseId: t.PurchaseId, Quantity: t.Quantity})
	}

	res, err := s.refunds.Cancel(ctx, refund.CancelRequest{
		UserId:    userId,
		BookingId: req.BookingId,
		Items:     items,
	})
	if err != nil {
		return nil, err
	}
	return mapper.CancelToResponse(req.BookingId, res), nil
}
