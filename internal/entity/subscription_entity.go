// FILE: internal/entity/subscription_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PlanTier string
type SubscriptionTransactionType string

const (
	PlanTierTrial   PlanTier = "trial"
	PlanTierBasic   PlanTier = "basic"
	PlanTierPremium PlanTier = "premium"

	SubscriptionTransactionPurchase SubscriptionTransactionType = "purchase"
	SubscriptionTransactionRenewal  SubscriptionTransactionType = "renewal"
	SubscriptionTransactionUpgrade  SubscriptionTransactionType = "upgrade"

	// UnlimitedUsage disables a monthly limit.
	UnlimitedUsage = -1

	// BillingCycleDays is the length of one paid cycle; pro-rating divides by it.
	BillingCycleDays = 30
)

// Rank orders tiers for upgrade checks. Trial ranks lowest.
func (t PlanTier) Rank() int {
	switch t {
	case PlanTierBasic:
		return 1
	case PlanTierPremium:
		return 2
	default:
		return 0
	}
}

type PlanFeatures struct {
	EmailNotification bool `json:"email_notification"`
	GroupChat         bool `json:"group_chat"`
	PersonalChat      bool `json:"personal_chat"`
	AdvancedAnalytics bool `json:"advanced_analytics"`
	TicketScanning    bool `json:"ticket_scanning"`
	LiveStreaming     bool `json:"live_streaming"`
}

type SubscriptionPlan struct {
	Id                 uuid.UUID
	Name               string
	Tier               PlanTier
	Description        string
	Price              decimal.Decimal
	EventJoinLimit     int // -1 = unlimited
	EventCreationLimit int // -1 = unlimited
	Features           PlanFeatures
	IsActive           bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type UserSubscription struct {
	Id                       uuid.UUID
	UserId                   uuid.UUID
	PlanId                   uuid.UUID
	Plan                     SubscriptionPlan
	StartDate                time.Time
	EndDate                  time.Time
	IsActive                 bool
	PaymentMethod            string
	PaymentId                string
	EventsJoinedThisMonth    int
	EventsOrganizedThisMonth int
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// IsValid reports an active subscription whose end lies after now.
func (s *UserSubscription) IsValid(now time.Time) bool {
	return s.IsActive && s.EndDate.After(now)
}

func (s *UserSubscription) CanJoinEvent() bool {
	return withinLimit(s.EventsJoinedThisMonth, s.Plan.EventJoinLimit)
}

func (s *UserSubscription) CanOrganizeEvent() bool {
	return withinLimit(s.EventsOrganizedThisMonth, s.Plan.EventCreationLimit)
}

// IncrementJoined does not check the limit; callers check CanJoinEvent under a row lock first.
func (s *UserSubscription) IncrementJoined() {
	s.EventsJoinedThisMonth++
}

func (s *UserSubscription) IncrementOrganized() {
	s.EventsOrganizedThisMonth++
}

func (s *UserSubscription) ResetMonthlyCounters() {
	s.EventsJoinedThisMonth = 0
	s.EventsOrganizedThisMonth = 0
}

// DaysRemaining counts whole calendar days between now and the end date.
// It is 0 for an invalid subscription and never negative. A subscription
// ending later today is still valid but has 0 days remaining.
func (s *UserSubscription) DaysRemaining(now time.Time) int {
	if !s.IsValid(now) {
		return 0
	}
	days := calendarDaysBetween(now, s.EndDate)
	if days < 0 {
		return 0
	}
	return days
}

// DaysUsed counts whole calendar days since the cycle started, clamped to the cycle length.
func (s *UserSubscription) DaysUsed(now time.Time) int {
	days := calendarDaysBetween(s.StartDate, now)
	if days < 0 {
		return 0
	}
	if days > BillingCycleDays {
		return BillingCycleDays
	}
	return days
}

func withinLimit(used, limit int) bool {
	if limit == UnlimitedUsage {
		return true
	}
	return used < limit
}

func calendarDaysBetween(from, to time.Time) int {
	from = from.UTC()
	to = to.UTC()
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

type SubscriptionTransaction struct {
	Id                    uuid.UUID
	SubscriptionId        uuid.UUID
	Amount                decimal.Decimal
	Type                  SubscriptionTransactionType
	PaymentMethod         string
	ExternalTransactionId *string
	IsRefunded            bool
	CreatedAt             time.Time
}

type SubscriptionOrderStatus string

const (
	SubscriptionOrderPending SubscriptionOrderStatus = "pending"
	SubscriptionOrderPaid    SubscriptionOrderStatus = "paid"
	SubscriptionOrderFailed  SubscriptionOrderStatus = "failed"
)

// SubscriptionOrder records a card charge sent to the gateway so its
// notification can be applied later. Type names the change being paid for.
type SubscriptionOrder struct {
	Id                    uuid.UUID
	OrderId               string
	UserId                uuid.UUID
	PlanId                uuid.UUID
	Type                  SubscriptionTransactionType
	Amount                decimal.Decimal
	Status                SubscriptionOrderStatus
	ExternalTransactionId *string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
