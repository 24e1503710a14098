// FILE: internal/entity/wallet_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletTransactionType string
type WalletDirection string

const (
	WalletTransactionDeposit    WalletTransactionType = "DEPOSIT"
	WalletTransactionWithdrawal WalletTransactionType = "WITHDRAWAL"
	WalletTransactionPayment    WalletTransactionType = "PAYMENT"
	WalletTransactionRefund     WalletTransactionType = "REFUND"

	WalletCredit WalletDirection = "credit"
	WalletDebit  WalletDirection = "debit"
)

type Wallet struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

type WalletTransaction struct {
	Id          uuid.UUID
	WalletId    uuid.UUID
	Type        WalletTransactionType
	Direction   WalletDirection
	Amount      decimal.Decimal
	Description string
	BookingId   *uuid.UUID
	EventId     *uuid.UUID
	CreatedAt   time.Time
}

// Signed returns the amount with the sign its direction applies to a balance.
func (t *WalletTransaction) Signed() decimal.Decimal {
	if t.Direction == WalletDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
