// Package payment collects money for bookings and subscriptions, either from
// the buyer's wallet or through the card gateway.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

type ChargeStatus string

const (
	ChargeSucceeded ChargeStatus = "succeeded"
	ChargePending   ChargeStatus = "pending"
	ChargeDeclined  ChargeStatus = "declined"
)

type ChargeRequest struct {
	OrderId     string
	Amount      decimal.Decimal
	CardToken   string
	ItemName    string
	CustomerRef string
}

type ChargeResult struct {
	TransactionId string
	Status        ChargeStatus
	Message       string
}

// Gateway is the external card processor. Implementations must be safe for
// concurrent use.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
	Refund(ctx context.Context, orderId string, amount decimal.Decimal, reason string) error
}
