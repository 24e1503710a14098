// FILE: internal/entity/event_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Event struct {
	Id                 uuid.UUID
	OrganizerId        uuid.UUID
	Title              string
	StartDate          time.Time
	EndDate            *time.Time
	IsPublished        bool
	RevenueDistributed bool
	CreatedAt          time.Time
}

// EligibleForDistribution applies the selection predicate of a distribution cycle.
// The end date must be strictly before today's date.
func (e *Event) EligibleForDistribution(now time.Time) bool {
	if !e.IsPublished || e.RevenueDistributed || e.EndDate == nil {
		return false
	}
	return e.EndDate.Before(StartOfDay(now))
}

type Ticket struct {
	Id           uuid.UUID
	EventId      uuid.UUID
	TicketType   string
	Price        decimal.Decimal
	Quantity     int
	SoldQuantity int
}

func (t *Ticket) Available() int {
	return t.Quantity - t.SoldQuantity
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
