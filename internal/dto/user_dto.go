package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletResponse struct {
	Id        uuid.UUID       `json:"id"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type WalletTransactionResponse struct {
	Id          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Direction   string          `json:"direction"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	BookingId   *uuid.UUID      `json:"booking_id,omitempty"`
	EventId     *uuid.UUID      `json:"event_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type WalletTransactionListRequest struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

type WalletTransactionListResponse struct {
	Items []*WalletTransactionResponse `json:"items"`
	Page  int                          `json:"page"`
	Limit int                          `json:"limit"`
}
