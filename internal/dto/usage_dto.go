package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UsageLimit reports one monthly counter. Limit and Remaining are -1 when unlimited.
type UsageLimit struct {
	Used      int  `json:"used"`
	Limit     int  `json:"limit"`
	Remaining int  `json:"remaining"`
	CanUse    bool `json:"can_use"`
}

type UsageResponse struct {
	EventsJoined    UsageLimit `json:"events_joined"`
	EventsOrganized UsageLimit `json:"events_organized"`
}

type PlanFeaturesResponse struct {
	EmailNotification bool `json:"email_notification"`
	GroupChat         bool `json:"group_chat"`
	PersonalChat      bool `json:"personal_chat"`
	AdvancedAnalytics bool `json:"advanced_analytics"`
	TicketScanning    bool `json:"ticket_scanning"`
	LiveStreaming     bool `json:"live_streaming"`
}

// PlanResponse is returned by GET /api/subscriptions/plans
type PlanResponse struct {
	Id                 uuid.UUID            `json:"id"`
	Name               string               `json:"name"`
	Tier               string               `json:"tier"`
	Description        string               `json:"description"`
	Price              decimal.Decimal      `json:"price"`
	EventJoinLimit     int                  `json:"event_join_limit"`
	EventCreationLimit int                  `json:"event_creation_limit"`
	Features           PlanFeaturesResponse `json:"features"`
}

// SubscriptionResponse is returned by GET /api/subscriptions/me
type SubscriptionResponse struct {
	Id            uuid.UUID      `json:"id"`
	Plan          PlanResponse   `json:"plan"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       time.Time      `json:"end_date"`
	IsActive      bool           `json:"is_active"`
	IsValid       bool           `json:"is_valid"`
	DaysRemaining int            `json:"days_remaining"`
	Usage         *UsageResponse `json:"usage,omitempty"`
}

type SubscriptionChangeRequest struct {
	PlanId        *uuid.UUID `json:"plan_id"`
	PaymentMethod string     `json:"payment_method" validate:"required,oneof=wallet card"`
	CardToken     string     `json:"card_token,omitempty"`
}

type SubscriptionChangeResponse struct {
	Subscription  *SubscriptionResponse `json:"subscription,omitempty"`
	TransactionId *uuid.UUID            `json:"transaction_id,omitempty"`
	Amount        decimal.Decimal       `json:"amount"`
	Pending       bool                  `json:"pending"`
	OrderId       string                `json:"order_id,omitempty"`
}

type UpgradeQuoteRequest struct {
	PlanId uuid.UUID `query:"plan_id" validate:"required"`
}

type UpgradeQuoteResponse struct {
	CurrentPlan      PlanResponse    `json:"current_plan"`
	TargetPlan       PlanResponse    `json:"target_plan"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	DaysUsed         int             `json:"days_used"`
	DaysRemaining    int             `json:"days_remaining"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	UpgradeCost      decimal.Decimal `json:"upgrade_cost"`
}
