package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Coupon struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code           string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	DiscountType   string          `gorm:"type:varchar(20);not null"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	MinOrderAmount decimal.Decimal `gorm:"type:decimal(15,2);default:0"`
	ValidFrom      time.Time       `gorm:"not null"`
	ValidUntil     time.Time       `gorm:"not null"`
	UsageLimit     int             `gorm:"default:0"`
	UsedCount      int             `gorm:"default:0"`
	IsActive       bool            `gorm:"default:true"`
}

func (Coupon) TableName() string {
	return "coupons"
}

type CouponRedemption struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CouponId   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_coupon_user"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_coupon_user"`
	BookingId  uuid.UUID `gorm:"type:uuid;not null"`
	RedeemedAt time.Time `gorm:"autoCreateTime"`
}

func (CouponRedemption) TableName() string {
	return "coupon_redemptions"
}
