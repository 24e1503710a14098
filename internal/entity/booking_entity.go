// FILE: internal/entity/booking_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string
type BookingPaymentStatus string

const (
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodCard   PaymentMethod = "card"

	BookingPaymentPending BookingPaymentStatus = "pending"
	BookingPaymentPaid    BookingPaymentStatus = "paid"
)

type Booking struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	EventId          uuid.UUID
	PaymentMethod    PaymentMethod
	PaymentStatus    BookingPaymentStatus
	Subtotal         decimal.Decimal
	Discount         decimal.Decimal
	Total            decimal.Decimal
	TrackDiscount    decimal.Decimal
	CouponId         *uuid.UUID
	GatewayReference *string
	CreatedAt        time.Time
}

type TicketPurchase struct {
	Id         uuid.UUID
	BookingId  uuid.UUID
	TicketId   uuid.UUID
	BuyerId    uuid.UUID
	EventId    uuid.UUID
	Quantity   int
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
}

// BookingRevenue is the per-event aggregate a distribution reads.
type BookingRevenue struct {
	Subtotal decimal.Decimal
	Total    decimal.Decimal
}
