package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Booking struct {
	Id               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           uuid.UUID       `gorm:"type:uuid;not null;index"`
	EventId          uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentMethod    string          `gorm:"type:varchar(20);not null"`
	PaymentStatus    string          `gorm:"type:varchar(20);not null;default:'pending'"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Discount         decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Total            decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	TrackDiscount    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	CouponId         *uuid.UUID      `gorm:"type:uuid"`
	GatewayReference *string         `gorm:"type:varchar(255);uniqueIndex"`
	CreatedAt        time.Time       `gorm:"autoCreateTime"`
}

func (Booking) TableName() string {
	return "bookings"
}

type TicketPurchase struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BookingId  uuid.UUID       `gorm:"type:uuid;not null;index"`
	TicketId   uuid.UUID       `gorm:"type:uuid;not null;index"`
	BuyerId    uuid.UUID       `gorm:"type:uuid;not null;index"`
	EventId    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   int             `gorm:"not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (TicketPurchase) TableName() string {
	return "ticket_purchases"
}
