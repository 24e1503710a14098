// FILE: internal/entity/coupon_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

type Coupon struct {
	Id             uuid.UUID
	Code           string
	DiscountType   DiscountType
	DiscountValue  decimal.Decimal
	MinOrderAmount decimal.Decimal
	ValidFrom      time.Time
	ValidUntil     time.Time
	UsageLimit     int // 0 = unlimited
	UsedCount      int
	IsActive       bool
}

// DiscountFor returns the discount for a subtotal, capped at the subtotal.
func (c *Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		discount = subtotal.Mul(c.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	default:
		discount = c.DiscountValue
	}
	if discount.GreaterThan(subtotal) {
		return subtotal
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount
}

type CouponRedemption struct {
	Id         uuid.UUID
	CouponId   uuid.UUID
	UserId     uuid.UUID
	BookingId  uuid.UUID
	RedeemedAt time.Time
}
