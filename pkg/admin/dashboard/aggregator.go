package dashboard

import (
	"context"
	"fmt"
	"time"

	"eventhub-accounting-be/internal/dto"
	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/unitofwork"
)

type Period string

const (
	PeriodAll   Period = "all"
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// ParsePeriod accepts an empty string as PeriodAll.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodAll, nil
	case PeriodAll, PeriodToday, PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	default:
		return "", apperror.Reject(apperror.ReasonInvalidRequest, fmt.Sprintf("unknown period %q", s))
	}
}

// Since returns the first instant of the period containing now. Weeks start
// on Monday. PeriodAll returns the zero time.
func (p Period) Since(now time.Time) time.Time {
	today := entity.StartOfDay(now)
	switch p {
	case PeriodToday:
		return today
	case PeriodWeek:
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	case PeriodYear:
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Time{}
	}
}

// Aggregator handles revenue reporting
type Aggregator struct {
	logger logger.ILogger
}

func NewAggregator(logger logger.ILogger) *Aggregator {
	return &Aggregator{
		logger: logger,
	}
}

// GetDistributions lists distributions of the period, newest first.
func (a *Aggregator) GetDistributions(ctx context.Context, uow unitofwork.UnitOfWork, period Period, now time.Time, page, limit int) (*dto.RevenueListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	rows, total, err := uow.RevenueRepository().FindAll(ctx, period.Since(now), limit, offset)
	if err != nil {
		return nil, err
	}

	res := &dto.RevenueListResponse{
		Items: make([]*dto.RevenueDistributionResponse, 0, len(rows)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for _, d := range rows {
		title := ""
		event, err := uow.EventRepository().FindById(ctx, d.EventId, contract.LockNone)
		if err != nil {
			a.logger.Warn("DASHBOARD", "Failed to load event of distribution", map[string]interface{}{
				"event_id": d.EventId.String(),
				"error":    err.Error(),
			})
		} else if event != nil {
			title = event.Title
		}

		res.Items = append(res.Items, &dto.RevenueDistributionResponse{
			Id:                d.Id,
			EventId:           d.EventId,
			EventTitle:        title,
			AdminPercentage:   d.AdminPercentage,
			TotalRevenue:      d.TotalRevenue,
			TotalParticipants: d.TotalParticipants,
			AdminAmount:       d.AdminAmount,
			OrganizerAmount:   d.OrganizerAmount,
			DistributedAt:     d.DistributedAt,
		})
	}
	return res, nil
}

// GetSummary totals the period, plus the parts of it that fall today and this month.
func (a *Aggregator) GetSummary(ctx context.Context, uow unitofwork.UnitOfWork, period Period, now time.Time) (*dto.RevenueSummaryResponse, error) {
	since := period.Since(now)
	repo := uow.RevenueRepository()

	total, err := repo.SumSince(ctx, since)
	if err != nil {
		return nil, err
	}
	today, err := repo.SumSince(ctx, latest(since, PeriodToday.Since(now)))
	if err != nil {
		return nil, err
	}
	month, err := repo.SumSince(ctx, latest(since, PeriodMonth.Since(now)))
	if err != nil {
		return nil, err
	}

	return &dto.RevenueSummaryResponse{
		Period:          string(period),
		TotalRevenue:    total.TotalRevenue,
		TodayRevenue:    today.TotalRevenue,
		MonthlyRevenue:  month.TotalRevenue,
		AdminAmount:     total.AdminAmount,
		OrganizerAmount: total.OrganizerAmount,
		Distributions:   total.Count,
	}, nil
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
