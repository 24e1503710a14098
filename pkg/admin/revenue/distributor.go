// Package revenue pays out ticket revenue of finished events to organizers.
package revenue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub-accounting-be/internal/config"
	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/unitofwork"
	"eventhub-accounting-be/internal/tracer"
	adminEvents "eventhub-accounting-be/pkg/admin/events"
	"eventhub-accounting-be/pkg/commission"
	"eventhub-accounting-be/pkg/ledger"
	"eventhub-accounting-be/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const logModule = "REVENUE"

type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

type EventResult struct {
	EventId           uuid.UUID
	Outcome           Outcome
	TotalRevenue      decimal.Decimal
	TotalParticipants int
	AdminAmount       decimal.Decimal
	OrganizerAmount   decimal.Decimal
	Error             string
}

type Report struct {
	Processed int
	Skipped   int
	Failed    int
	Events    []EventResult
	StartedAt time.Time
	Elapsed   time.Duration
}

func (r *Report) add(res EventResult) {
	switch res.Outcome {
	case OutcomeProcessed:
		r.Processed++
	case OutcomeSkipped:
		r.Skipped++
	default:
		r.Failed++
	}
	r.Events = append(r.Events, res)
}

type Options struct {
	Basis        config.RevenueBasis
	EventTimeout time.Duration
	BatchSize    int
}

func OptionsFromConfig(cfg config.AccountingConfig) Options {
	return Options{
		Basis:        cfg.RevenueBasis,
		EventTimeout: cfg.EventTimeout,
		BatchSize:    cfg.DistributionBatch,
	}
}

// Distributor runs distribution cycles. Each event is settled in its own
// transaction, so one failing event never blocks the rest of the batch.
type Distributor struct {
	uowFactory unitofwork.RepositoryFactory
	ledger     *ledger.Ledger
	publisher  adminEvents.Publisher
	metrics    *metrics.Metrics
	logger     logger.ILogger
	opts       Options
	tracer     trace.Tracer
}

func NewDistributor(
	uowFactory unitofwork.RepositoryFactory,
	ledger *ledger.Ledger,
	publisher adminEvents.Publisher,
	m *metrics.Metrics,
	logger logger.ILogger,
	opts Options,
) *Distributor {
	if opts.Basis == "" {
		opts.Basis = config.RevenueBasisSubtotal
	}
	if opts.EventTimeout <= 0 {
		opts.EventTimeout = 30 * time.Second
	}
	return &Distributor{
		uowFactory: uowFactory,
		ledger:     ledger,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
		opts:       opts,
		tracer:     tracer.Tracer(),
	}
}

// RunCycle distributes every published, undistributed event whose end date
// lies before the start of now's day. Running it again right after a
// successful cycle processes nothing.
func (d *Distributor) RunCycle(ctx context.Context, now time.Time) (*Report, error) {
	report := &Report{StartedAt: now}
	started := time.Now()
	cutoff := entity.StartOfDay(now)

	ctx, span := d.tracer.Start(ctx, "revenue.run_cycle")
	defer span.End()

	// 1. Page through candidates without locks; each one is re-checked under lock
	// below. The cursor moves past skipped and failed events so they never hide
	// the events behind them.
	var (
		after      *contract.CandidateCursor
		candidates int
	)
	for {
		page, err := d.uowFactory.NewUnitOfWork(ctx).EventRepository().FindDistributionCandidates(ctx, cutoff, after, d.opts.BatchSize)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "list candidates")
			return nil, fmt.Errorf("list distribution candidates: %w", err)
		}
		candidates += len(page)

		// 2. Settle events one by one.
		for _, c := range page {
			if err := ctx.Err(); err != nil {
				report.Elapsed = time.Since(started)
				return report, err
			}
			res := d.distributeEvent(ctx, c.Id, cutoff, now)
			d.metrics.DistributionOutcome(string(res.Outcome))
			report.add(res)
		}

		if d.opts.BatchSize <= 0 || len(page) < d.opts.BatchSize {
			break
		}
		last := page[len(page)-1]
		after = &last
	}
	span.SetAttributes(attribute.Int("revenue.candidates", candidates))

	report.Elapsed = time.Since(started)
	d.logger.Info(logModule, "Distribution cycle finished", map[string]interface{}{
		"candidates": candidates,
		"processed":  report.Processed,
		"skipped":    report.Skipped,
		"failed":     report.Failed,
		"elapsed_ms": report.Elapsed.Milliseconds(),
	})
	return report, nil
}

func (d *Distributor) distributeEvent(ctx context.Context, eventId uuid.UUID, cutoff, now time.Time) (res EventResult) {
	res = EventResult{EventId: eventId}

	ctx, cancel := context.WithTimeout(ctx, d.opts.EventTimeout)
	defer cancel()

	ctx, span := d.tracer.Start(ctx, "revenue.distribute_event",
		trace.WithAttributes(attribute.String("event.id", eventId.String())))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomeFailed
			res.Error = fmt.Sprintf("panic: %v", r)
			d.logger.Error(logModule, "Distribution panicked", map[string]interface{}{
				"event_id": eventId.String(),
				"panic":    fmt.Sprint(r),
			})
			span.SetStatus(codes.Error, "panic")
		}
	}()

	event, dist, err := d.settle(ctx, eventId, cutoff, now)
	switch {
	case err != nil:
		res.Outcome = OutcomeFailed
		res.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "settle")

		details := map[string]interface{}{
			"event_id": eventId.String(),
			"error":    err.Error(),
		}
		if event != nil {
			details["organizer_id"] = event.OrganizerId.String()
			details["title"] = event.Title
		}
		if apperror.IsConflict(err) {
			d.logger.Warn(logModule, "Revenue distribution hit lock contention", details)
		} else {
			d.logger.Error(logModule, "Revenue distribution failed", details)
		}
		return res

	case dist == nil:
		res.Outcome = OutcomeSkipped
		span.SetAttributes(attribute.String("revenue.outcome", string(OutcomeSkipped)))
		return res
	}

	res.Outcome = OutcomeProcessed
	res.TotalRevenue = dist.TotalRevenue
	res.TotalParticipants = dist.TotalParticipants
	res.AdminAmount = dist.AdminAmount
	res.OrganizerAmount = dist.OrganizerAmount
	span.SetAttributes(
		attribute.String("revenue.outcome", string(OutcomeProcessed)),
		attribute.String("revenue.total", dist.TotalRevenue.StringFixed(2)),
		attribute.Int("revenue.participants", dist.TotalParticipants),
	)

	admin, _ := dist.AdminAmount.Float64()
	organizer, _ := dist.OrganizerAmount.Float64()
	d.metrics.DistributedAmount(admin, organizer)

	d.logger.Info(logModule, "Revenue distributed", map[string]interface{}{
		"event_id":         eventId.String(),
		"organizer_id":     event.OrganizerId.String(),
		"total_revenue":    dist.TotalRevenue.StringFixed(2),
		"participants":     dist.TotalParticipants,
		"admin_percentage": dist.AdminPercentage.StringFixed(2),
		"admin_amount":     dist.AdminAmount.StringFixed(2),
		"organizer_amount": dist.OrganizerAmount.StringFixed(2),
	})

	d.publisher.PublishRevenueDistributed(ctx, event, dist)
	return res
}

// settle runs the per-event transaction. It returns a nil distribution when
// the event no longer qualifies or another worker holds its row.
func (d *Distributor) settle(ctx context.Context, eventId uuid.UUID, cutoff, now time.Time) (*entity.Event, *entity.RevenueDistribution, error) {
	uow := d.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	defer uow.Rollback()

	// 1. Claim the event row.
	event, err := uow.EventRepository().FindDistributable(ctx, eventId, cutoff, contract.LockSkipLocked)
	if err != nil {
		return nil, nil, fmt.Errorf("claim event: %w", err)
	}
	if event == nil {
		return nil, nil, nil
	}

	// 2. Aggregate revenue and participants.
	revenue, err := uow.BookingRepository().SumPaidRevenue(ctx, eventId)
	if err != nil {
		return event, nil, fmt.Errorf("sum revenue: %w", err)
	}
	total := revenue.Subtotal
	if d.opts.Basis == config.RevenueBasisTotal {
		total = revenue.Total
	}
	participants, err := uow.TicketRepository().SumSoldQuantity(ctx, eventId)
	if err != nil {
		return event, nil, fmt.Errorf("sum participants: %w", err)
	}

	split := commission.Compute(total.Round(2), participants)

	// 3. Credit the organizer.
	wallet, err := uow.WalletRepository().FindByUserId(ctx, event.OrganizerId, contract.LockForUpdate)
	if err != nil {
		return event, nil, fmt.Errorf("lock organizer wallet: %w", err)
	}
	if wallet == nil {
		return event, nil, apperror.Inconsistent(
			fmt.Sprintf("organizer %s of event %s has no wallet", event.OrganizerId, event.Id),
			errors.New("missing organizer wallet"),
		)
	}
	if split.OrganizerAmount.IsPositive() {
		_, err := d.ledger.Credit(ctx, uow, ledger.Entry{
			WalletId:    wallet.Id,
			Amount:      split.OrganizerAmount,
			Type:        entity.WalletTransactionPayment,
			Description: fmt.Sprintf("Revenue from event %s", event.Title),
			EventId:     &event.Id,
		})
		if err != nil {
			return event, nil, fmt.Errorf("credit organizer: %w", err)
		}
	}

	// 4. Record the distribution and flip the flag.
	dist := &entity.RevenueDistribution{
		Id:                uuid.New(),
		EventId:           event.Id,
		AdminPercentage:   split.Rate,
		TotalRevenue:      total.Round(2),
		TotalParticipants: participants,
		AdminAmount:       split.AdminAmount,
		OrganizerAmount:   split.OrganizerAmount,
		DistributedAt:     now,
		IsDistributed:     true,
	}
	if err := uow.RevenueRepository().Create(ctx, dist); err != nil {
		return event, nil, fmt.Errorf("record distribution: %w", err)
	}
	if err := uow.EventRepository().MarkDistributed(ctx, event.Id); err != nil {
		return event, nil, fmt.Errorf("mark distributed: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return event, nil, fmt.Errorf("commit: %w", err)
	}
	return event, dist, nil
}
