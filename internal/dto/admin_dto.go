package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Revenue ---

type RevenueListRequest struct {
	Period string `query:"period" validate:"omitempty,oneof=today week month year all"`
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
}

type RevenueDistributionResponse struct {
	Id                uuid.UUID       `json:"id"`
	EventId           uuid.UUID       `json:"event_id"`
	EventTitle        string          `json:"event_title"`
	AdminPercentage   decimal.Decimal `json:"admin_percentage"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalParticipants int             `json:"total_participants"`
	AdminAmount       decimal.Decimal `json:"admin_amount"`
	OrganizerAmount   decimal.Decimal `json:"organizer_amount"`
	DistributedAt     time.Time       `json:"distributed_at"`
}

type RevenueListResponse struct {
	Items []*RevenueDistributionResponse `json:"items"`
	Total int                            `json:"total"`
	Page  int                            `json:"page"`
	Limit int                            `json:"limit"`
}

type RevenueSummaryResponse struct {
	Period          string          `json:"period"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TodayRevenue    decimal.Decimal `json:"today_revenue"`
	MonthlyRevenue  decimal.Decimal `json:"monthly_revenue"`
	AdminAmount     decimal.Decimal `json:"admin_amount"`
	OrganizerAmount decimal.Decimal `json:"organizer_amount"`
	Distributions   int             `json:"distributions"`
}

type DistributionEventResponse struct {
	EventId           uuid.UUID       `json:"event_id"`
	Outcome           string          `json:"outcome"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalParticipants int             `json:"total_participants"`
	AdminAmount       decimal.Decimal `json:"admin_amount"`
	OrganizerAmount   decimal.Decimal `json:"organizer_amount"`
	Error             string          `json:"error,omitempty"`
}

type DistributionRunResponse struct {
	Processed int                         `json:"processed"`
	Skipped   int                         `json:"skipped"`
	Failed    int                         `json:"failed"`
	ElapsedMs int64                       `json:"elapsed_ms"`
	Events    []DistributionEventResponse `json:"events"`
}

// --- Maintenance ---

type AffectedRowsResponse struct {
	Affected int `json:"affected"`
}
