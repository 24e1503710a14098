// FILE: internal/entity/revenue_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RevenueDistribution struct {
	Id                uuid.UUID
	EventId           uuid.UUID
	AdminPercentage   decimal.Decimal
	TotalRevenue      decimal.Decimal
	TotalParticipants int
	AdminAmount       decimal.Decimal
	OrganizerAmount   decimal.Decimal
	DistributedAt     time.Time
	IsDistributed     bool
}

// RevenueTotals backs the admin revenue summary.
type RevenueTotals struct {
	TotalRevenue    decimal.Decimal
	AdminAmount     decimal.Decimal
	OrganizerAmount decimal.Decimal
	Count           int
}
