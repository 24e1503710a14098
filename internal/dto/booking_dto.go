package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Checkout ---

type CheckoutItemRequest struct {
	TicketId uuid.UUID `json:"ticket_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"min=0"`
}

type CheckoutRequest struct {
	EventId       uuid.UUID             `json:"event_id" validate:"required"`
	PaymentMethod string                `json:"payment_method" validate:"required,oneof=wallet card"`
	CouponCode    string                `json:"coupon_code,omitempty" validate:"omitempty,max=50"`
	CardToken     string                `json:"card_token,omitempty"`
	Tickets       []CheckoutItemRequest `json:"tickets" validate:"required,min=1,dive"`
}

type PurchaseResponse struct {
	Id         uuid.UUID       `json:"id"`
	TicketId   uuid.UUID       `json:"ticket_id"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type BookingResponse struct {
	Id            uuid.UUID          `json:"id"`
	EventId       uuid.UUID          `json:"event_id"`
	PaymentMethod string             `json:"payment_method"`
	PaymentStatus string             `json:"payment_status"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Total         decimal.Decimal    `json:"total"`
	CreatedAt     time.Time          `json:"created_at"`
	Purchases     []PurchaseResponse `json:"purchases,omitempty"`
}

type CheckoutResponse struct {
	Booking BookingResponse `json:"booking"`
	Pending bool            `json:"pending"`
	OrderId string          `json:"order_id"`
}

// --- Cancellation ---

type CancelItemRequest struct {
	PurchaseId uuid.UUID `json:"purchase_id" validate:"required"`
	Quantity   int       `json:"quantity" validate:"required,min=1"`
}

type CancelRequest struct {
	BookingId uuid.UUID           `json:"booking_id" validate:"required"`
	Tickets   []CancelItemRequest `json:"tickets" validate:"required,min=1,dive"`
}

type CancelResponse struct {
	BookingId     uuid.UUID       `json:"booking_id"`
	Cancelled     int             `json:"cancelled"`
	GrossAmount   decimal.Decimal `json:"gross_amount"`
	DiscountShare decimal.Decimal `json:"discount_share"`
	Refund        decimal.Decimal `json:"refund"`
}

// --- Async messages ---

type BadgeCheckMessage struct {
	UserId uuid.UUID `json:"user_id"`
}
