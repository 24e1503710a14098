// Package usage enforces the monthly event limits of subscription plans.
package usage

import (
	"context"
	"fmt"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/unitofwork"
	"eventhub-accounting-be/pkg/metrics"

	"github.com/google/uuid"
)

const logModule = "USAGE"

type kind string

const (
	kindJoin     kind = "join"
	kindOrganize kind = "organize"
)

// Summary reports a subscription's usage against its plan limits.
// Remaining is -1 for unlimited plans.
type Summary struct {
	EventsJoined      int
	EventJoinLimit    int
	JoinsRemaining    int
	EventsOrganized   int
	EventCreateLimit  int
	CreatesRemaining  int
	SubscriptionValid bool
}

// Tracker reserves usage slots. Reservations lock the subscription row in the
// caller's transaction, so concurrent reservations against the last slot
// serialize and exactly one of them wins.
type Tracker struct {
	uowFactory unitofwork.RepositoryFactory
	metrics    *metrics.Metrics
	logger     logger.ILogger
	clock      func() time.Time
}

func NewTracker(uowFactory unitofwork.RepositoryFactory, m *metrics.Metrics, logger logger.ILogger) *Tracker {
	return &Tracker{
		uowFactory: uowFactory,
		metrics:    m,
		logger:     logger,
		clock:      time.Now,
	}
}

// ReserveJoin checks and consumes one event-join slot. uow must have an open transaction.
func (t *Tracker) ReserveJoin(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.UserSubscription, error) {
	return t.reserve(ctx, uow, userId, kindJoin)
}

// ReserveOrganize checks and consumes one event-creation slot. uow must have an open transaction.
func (t *Tracker) ReserveOrganize(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.UserSubscription, error) {
	return t.reserve(ctx, uow, userId, kindOrganize)
}

func (t *Tracker) reserve(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, k kind) (*entity.UserSubscription, error) {
	repo := uow.SubscriptionRepository()
	sub, err := repo.FindSubscriptionByUserId(ctx, userId, contract.LockForUpdate)
	if err != nil {
		return nil, fmt.Errorf("lock subscription of user %s: %w", userId, err)
	}
	if sub == nil {
		return nil, apperror.Reject(apperror.ReasonSubscriptionRequired, "an active subscription is required")
	}
	if !sub.IsValid(t.clock()) {
		return nil, apperror.Reject(apperror.ReasonSubscriptionExpired, "your subscription has expired")
	}

	switch k {
	case kindJoin:
		if !sub.CanJoinEvent() {
			t.rejected(userId, sub, k)
			return nil, apperror.Reject(apperror.ReasonSubscriptionLimitReached,
				fmt.Sprintf("monthly limit of %d joined events reached", sub.Plan.EventJoinLimit))
		}
		sub.IncrementJoined()
	case kindOrganize:
		if !sub.CanOrganizeEvent() {
			t.rejected(userId, sub, k)
			return nil, apperror.Reject(apperror.ReasonSubscriptionLimitReached,
				fmt.Sprintf("monthly limit of %d organized events reached", sub.Plan.EventCreationLimit))
		}
		sub.IncrementOrganized()
	}

	if err := repo.UpdateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("update usage counters: %w", err)
	}
	t.metrics.SubscriptionOperation("reserve_"+string(k), "ok")
	return sub, nil
}

func (t *Tracker) rejected(userId uuid.UUID, sub *entity.UserSubscription, k kind) {
	t.metrics.SubscriptionOperation("reserve_"+string(k), "limit_reached")
	t.logger.Info(logModule, "Usage limit reached", map[string]interface{}{
		"user_id":   userId.String(),
		"plan":      string(sub.Plan.Tier),
		"kind":      string(k),
		"joined":    sub.EventsJoinedThisMonth,
		"organized": sub.EventsOrganizedThisMonth,
	})
}

// ResetMonthlyCounters zeroes both counters of every active subscription.
func (t *Tracker) ResetMonthlyCounters(ctx context.Context) (int, error) {
	uow := t.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	count, err := uow.SubscriptionRepository().ResetActiveCounters(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset usage counters: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}

	t.metrics.SubscriptionOperation("reset_counters", "ok")
	t.logger.Info(logModule, "Monthly usage counters reset", map[string]interface{}{
		"subscriptions": count,
	})
	return count, nil
}

// Usage summarizes the user's current usage without locking. It returns nil when the user has no subscription.
func (t *Tracker) Usage(ctx context.Context, userId uuid.UUID) (*Summary, error) {
	sub, err := t.uowFactory.NewUnitOfWork(ctx).SubscriptionRepository().FindSubscriptionByUserId(ctx, userId, contract.LockNone)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, nil
	}
	return &Summary{
		EventsJoined:      sub.EventsJoinedThisMonth,
		EventJoinLimit:    sub.Plan.EventJoinLimit,
		JoinsRemaining:    remaining(sub.EventsJoinedThisMonth, sub.Plan.EventJoinLimit),
		EventsOrganized:   sub.EventsOrganizedThisMonth,
		EventCreateLimit:  sub.Plan.EventCreationLimit,
		CreatesRemaining:  remaining(sub.EventsOrganizedThisMonth, sub.Plan.EventCreationLimit),
		SubscriptionValid: sub.IsValid(t.clock()),
	}, nil
}

func remaining(used, limit int) int {
	if limit == entity.UnlimitedUsage {
		return entity.UnlimitedUsage
	}
	if used >= limit {
		return 0
	}
	return limit - used
}
