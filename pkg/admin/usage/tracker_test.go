package usage

import (
	"context"
	"sync"
	"testing"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/memory"
	"eventhub-accounting-be/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSubscription(store *memory.Store, joinLimit, joined int, end time.Time) uuid.UUID {
	userId := uuid.New()
	planId := uuid.New()
	store.Seed(func(w memory.Writer) {
		w.Plan(entity.SubscriptionPlan{
			Id:                 planId,
			Name:               "Basic",
			Tier:               entity.PlanTierBasic,
			Price:              decimal.NewFromInt(100),
			EventJoinLimit:     joinLimit,
			EventCreationLimit: 1,
			IsActive:           true,
		})
		w.Subscription(entity.UserSubscription{
			Id:                    uuid.New(),
			UserId:                userId,
			PlanId:                planId,
			StartDate:             end.AddDate(0, 0, -30),
			EndDate:               end,
			IsActive:              true,
			EventsJoinedThisMonth: joined,
		})
	})
	return userId
}

func reserveJoin(t *testing.T, store *memory.Store, tracker *Tracker, userId uuid.UUID) error {
	t.Helper()
	ctx := context.Background()
	uow := store.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if _, err := tracker.ReserveJoin(ctx, uow, userId); err != nil {
		return err
	}
	return uow.Commit()
}

func TestReserveJoinConcurrentLastSlot(t *testing.T) {
	store := memory.NewStore()
	tracker := NewTracker(store, metrics.Nop(), logger.NewNopLogger())
	userId := seedSubscription(store, 3, 2, time.Now().AddDate(0, 0, 10))

	const workers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		limited   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := reserveJoin(t, store, tracker, userId)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if apperror.IsReason(err, apperror.ReasonSubscriptionLimitReached) {
				limited++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, limited)

	store.Snapshot(func(r memory.Reader) {
		sub, ok := r.Subscription(userId)
		require.True(t, ok)
		assert.Equal(t, 3, sub.EventsJoinedThisMonth)
	})
}

func TestReserveJoinRejections(t *testing.T) {
	store := memory.NewStore()
	tracker := NewTracker(store, metrics.Nop(), logger.NewNopLogger())

	t.Run("no subscription", func(t *testing.T) {
		err := reserveJoin(t, store, tracker, uuid.New())
		assert.True(t, apperror.IsReason(err, apperror.ReasonSubscriptionRequired))
	})

	t.Run("expired", func(t *testing.T) {
		userId := seedSubscription(store, 5, 0, time.Now().Add(-time.Hour))
		err := reserveJoin(t, store, tracker, userId)
		assert.True(t, apperror.IsReason(err, apperror.ReasonSubscriptionExpired))
	})

	t.Run("unlimited", func(t *testing.T) {
		userId := seedSubscription(store, entity.UnlimitedUsage, 500, time.Now().AddDate(0, 0, 5))
		require.NoError(t, reserveJoin(t, store, tracker, userId))

		summary, err := tracker.Usage(context.Background(), userId)
		require.NoError(t, err)
		assert.Equal(t, 501, summary.EventsJoined)
		assert.Equal(t, entity.UnlimitedUsage, summary.JoinsRemaining)
	})
}

func TestReserveOrganizeRespectsCreationLimit(t *testing.T) {
	store := memory.NewStore()
	tracker := NewTracker(store, metrics.Nop(), logger.NewNopLogger())
	userId := seedSubscription(store, 5, 0, time.Now().AddDate(0, 0, 5))
	ctx := context.Background()

	organize := func() error {
		uow := store.NewUnitOfWork(ctx)
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()
		if _, err := tracker.ReserveOrganize(ctx, uow, userId); err != nil {
			return err
		}
		return uow.Commit()
	}

	require.NoError(t, organize())
	err := organize()
	assert.True(t, apperror.IsReason(err, apperror.ReasonSubscriptionLimitReached))
}

func TestResetMonthlyCounters(t *testing.T) {
	store := memory.NewStore()
	tracker := NewTracker(store, metrics.Nop(), logger.NewNopLogger())
	active := seedSubscription(store, 5, 4, time.Now().AddDate(0, 0, 5))

	count, err := tracker.ResetMonthlyCounters(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	summary, err := tracker.Usage(context.Background(), active)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.EventsJoined)
	assert.Equal(t, 5, summary.JoinsRemaining)
	assert.True(t, summary.SubscriptionValid)
}
