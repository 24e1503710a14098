package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Wallet struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	Balance   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0;check:balance >= 0"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

func (Wallet) TableName() string {
	return "wallets"
}

type WalletTransaction struct {
	Id          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	WalletId    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type        string          `gorm:"type:varchar(20);not null"`
	Direction   string          `gorm:"type:varchar(10);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null;check:amount > 0"`
	Description string          `gorm:"type:text"`
	BookingId   *uuid.UUID      `gorm:"type:uuid;index"`
	EventId     *uuid.UUID      `gorm:"type:uuid;index"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
