package mapper

import (
	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/model"
)

type BookingMapper struct{}

func NewBookingMapper() *BookingMapper {
	return &BookingMapper{}
}

func (m *BookingMapper) ToEntity(b *model.Booking) *entity.Booking {
	if b == nil {
		return nil
	}
	return &entity.Booking{
		Id:               b.Id,
		UserId:           b.UserId,
		EventId:          b.EventId,
		PaymentMethod:    entity.PaymentMethod(b.PaymentMethod),
		PaymentStatus:    entity.BookingPaymentStatus(b.PaymentStatus),
		Subtotal:         b.Subtotal,
		Discount:         b.Discount,
		Total:            b.Total,
		TrackDiscount:    b.TrackDiscount,
		CouponId:         b.CouponId,
		GatewayReference: b.GatewayReference,
		CreatedAt:        b.CreatedAt,
	}
}

func (m *BookingMapper) ToModel(b *entity.Booking) *model.Booking {
	if b == nil {
		return nil
	}
	return &model.Booking{
		Id:               b.Id,
		UserId:           b.UserId,
		EventId:          b.EventId,
		PaymentMethod:    string(b.PaymentMethod),
		PaymentStatus:    string(b.PaymentStatus),
		Subtotal:         b.Subtotal,
		Discount:         b.Discount,
		Total:            b.Total,
		TrackDiscount:    b.TrackDiscount,
		CouponId:         b.CouponId,
		GatewayReference: b.GatewayReference,
		CreatedAt:        b.CreatedAt,
	}
}

func (m *BookingMapper) PurchaseToEntity(p *model.TicketPurchase) *entity.TicketPurchase {
	if p == nil {
		return nil
	}
	return &entity.TicketPurchase{
		Id:         p.Id,
		BookingId:  p.BookingId,
		TicketId:   p.TicketId,
		BuyerId:    p.BuyerId,
		EventId:    p.EventId,
		Quantity:   p.Quantity,
		TotalPrice: p.TotalPrice,
		CreatedAt:  p.CreatedAt,
	}
}

func (m *BookingMapper) PurchaseToModel(p *entity.TicketPurchase) *model.TicketPurchase {
	if p == nil {
		return nil
	}
	return &model.TicketPurchase{
		Id:         p.Id,
		BookingId:  p.BookingId,
		TicketId:   p.TicketId,
		BuyerId:    p.BuyerId,
		EventId:    p.EventId,
		Quantity:   p.Quantity,
		TotalPrice: p.TotalPrice,
		CreatedAt:  p.CreatedAt,
	}
}

func (m *BookingMapper) CouponToEntity(c *model.Coupon) *entity.Coupon {
	if c == nil {
		return nil
	}
	return &entity.Coupon{
		Id:             c.Id,
		Code:           c.Code,
		DiscountType:   entity.DiscountType(c.DiscountType),
		DiscountValue:  c.DiscountValue,
		MinOrderAmount: c.MinOrderAmount,
		ValidFrom:      c.ValidFrom,
		ValidUntil:     c.ValidUntil,
		UsageLimit:     c.UsageLimit,
		UsedCount:      c.UsedCount,
		IsActive:       c.IsActive,
	}
}

func (m *BookingMapper) CouponToModel(c *entity.Coupon) *model.Coupon {
	if c == nil {
		return nil
	}
	return &model.Coupon{
		Id:             c.Id,
		Code:           c.Code,
		DiscountType:   string(c.DiscountType),
		DiscountValue:  c.DiscountValue,
		MinOrderAmount: c.MinOrderAmount,
		ValidFrom:      c.ValidFrom,
		ValidUntil:     c.ValidUntil,
		UsageLimit:     c.UsageLimit,
		UsedCount:      c.UsedCount,
		IsActive:       c.IsActive,
	}
}
