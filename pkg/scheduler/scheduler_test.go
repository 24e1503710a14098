package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"eventhub-accounting-be/internal/config"
	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/memory"
	adminEvents "eventhub-accounting-be/pkg/admin/events"
	"eventhub-accounting-be/pkg/admin/revenue"
	"eventhub-accounting-be/pkg/admin/subscription"
	"eventhub-accounting-be/pkg/admin/usage"
	"eventhub-accounting-be/pkg/ledger"
	"eventhub-accounting-be/pkg/metrics"
	"eventhub-accounting-be/pkg/payment"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.SchedulerConfig {
	return config.SchedulerConfig{
		DistributeSpec:    "*/2 * * * *",
		ExpireSpec:        "0 2 * * *",
		ResetCountersSpec: "0 0 1 * *",
		LockExpiry:        time.Minute,
		RetryAttempts:     3,
		RetryBaseDelay:    time.Millisecond,
		RetryMultiplier:   2,
		JobTimeout:        2 * time.Second,
	}
}

func newScheduler(t *testing.T, cfg config.SchedulerConfig, locker Locker) (*Scheduler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return New(cfg, locker, metrics.New(reg), logger.NewNopLogger()), reg
}

func jobRuns(t *testing.T, reg *prometheus.Registry, job, status string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "eventhub_scheduler_job_runs_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["job"] == job && labels["status"] == status {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	s, reg := newScheduler(t, testConfig(), NewLocalLocker())

	var calls int32
	require.NoError(t, s.Register(Job{Name: "flaky", Spec: "@hourly", Run: func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	}}))

	require.NoError(t, s.Execute(context.Background(), "flaky"))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, 1.0, jobRuns(t, reg, "flaky", StatusSucceeded))
}

func TestExecuteGivesUpAfterConfiguredAttempts(t *testing.T) {
	s, reg := newScheduler(t, testConfig(), NewLocalLocker())

	var calls int32
	require.NoError(t, s.Register(Job{Name: "broken", Spec: "@hourly", Run: func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}}))

	err := s.Execute(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, 1.0, jobRuns(t, reg, "broken", StatusFailed))
}

func TestExecuteSkipsWhenLockHeld(t *testing.T) {
	locker := NewLocalLocker()
	s, reg := newScheduler(t, testConfig(), locker)

	var calls int32
	require.NoError(t, s.Register(Job{Name: "guarded", Spec: "@hourly", Run: func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}}))

	release, acquired, err := locker.Acquire(context.Background(), "guarded", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	require.NoError(t, s.Execute(context.Background(), "guarded"))
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.Equal(t, 1.0, jobRuns(t, reg, "guarded", StatusSkipped))

	release()
	require.NoError(t, s.Execute(context.Background(), "guarded"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestExecuteStopsAtJobTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.JobTimeout = 50 * time.Millisecond
	s, _ := newScheduler(t, cfg, NewLocalLocker())

	require.NoError(t, s.Register(Job{Name: "slow", Spec: "@hourly", Run: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}))

	err := s.Execute(context.Background(), "slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegisterRejectsDuplicatesAndBadSpecs(t *testing.T) {
	s, _ := newScheduler(t, testConfig(), NewLocalLocker())
	noop := func(ctx context.Context) error { return nil }

	require.NoError(t, s.Register(Job{Name: "a", Spec: "*/5 * * * *", Run: noop}))
	assert.Error(t, s.Register(Job{Name: "a", Spec: "*/5 * * * *", Run: noop}))
	assert.Error(t, s.Register(Job{Name: "b", Spec: "not a spec", Run: noop}))
	assert.Error(t, s.Execute(context.Background(), "missing"))
}

func TestRunStopsWithContext(t *testing.T) {
	s, _ := newScheduler(t, testConfig(), NewLocalLocker())
	require.NoError(t, s.Register(Job{Name: "idle", Spec: "@yearly", Run: func(ctx context.Context) error { return nil }}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

type accountingFixture struct {
	store  *memory.Store
	sched  *Scheduler
	reg    *prometheus.Registry
	subId  uuid.UUID
	now    time.Time
	userId uuid.UUID
}

func newAccountingFixture(t *testing.T) *accountingFixture {
	t.Helper()
	store := memory.NewStore()
	log := logger.NewNopLogger()
	m := metrics.Nop()
	pub := adminEvents.NewNatsPublisher(adminEvents.NewRecorder(), log)
	led := ledger.New(store, m, log)

	now := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	f := &accountingFixture{store: store, subId: uuid.New(), userId: uuid.New(), now: now}

	planId := uuid.New()
	store.Seed(func(w memory.Writer) {
		w.Plan(entity.SubscriptionPlan{Id: planId, Name: "Basic", Tier: entity.PlanTier("basic"), EventJoinLimit: 5, EventCreationLimit: 2, IsActive: true})
		w.Subscription(entity.UserSubscription{
			Id:                       f.subId,
			UserId:                   f.userId,
			PlanId:                   planId,
			StartDate:                now.AddDate(0, 0, -30),
			EndDate:                  now.Add(-time.Hour),
			IsActive:                 true,
			EventsJoinedThisMonth:    4,
			EventsOrganizedThisMonth: 1,
		})
	})

	svc := Services{
		Distributor: revenue.NewDistributor(store, led, pub, m, log, revenue.Options{}),
		Manager: subscription.NewManager(store, payment.NewProcessor(led, payment.NewStubGateway(payment.ChargeSucceeded), log),
			memory.NewPlanCache(time.Minute), pub, m, log, subscription.Options{TrialDays: 14, RenewalWindowDays: 7}),
		Tracker: usage.NewTracker(store, m, log),
		Clock:   func() time.Time { return now },
	}

	s, reg := newScheduler(t, testConfig(), NewLocalLocker())
	require.NoError(t, s.RegisterAll(AccountingJobs(testConfig(), svc)))
	f.sched, f.reg = s, reg
	return f
}

func TestAccountingJobsResetCountersRetriesTransientFailure(t *testing.T) {
	f := newAccountingFixture(t)

	var failures int32
	f.store.FailOn(func(op string) error {
		if op == "subscription.reset_counters" && atomic.AddInt32(&failures, 1) == 1 {
			return errors.New("connection reset")
		}
		return nil
	})

	require.NoError(t, f.sched.Execute(context.Background(), JobResetUsageCounters))

	f.store.Snapshot(func(r memory.Reader) {
		sub, ok := r.Subscription(f.userId)
		require.True(t, ok)
		assert.Zero(t, sub.EventsJoinedThisMonth)
		assert.Zero(t, sub.EventsOrganizedThisMonth)
	})
	assert.Equal(t, int32(2), atomic.LoadInt32(&failures))
	assert.Equal(t, 1.0, jobRuns(t, f.reg, JobResetUsageCounters, StatusSucceeded))
}

func TestAccountingJobsExpireSubscriptions(t *testing.T) {
	f := newAccountingFixture(t)

	require.NoError(t, f.sched.Execute(context.Background(), JobExpireSubscriptions))

	f.store.Snapshot(func(r memory.Reader) {
		sub, ok := r.Subscription(f.userId)
		require.True(t, ok)
		assert.False(t, sub.IsActive)
	})
}

func TestAccountingJobsDistributeWithNothingDue(t *testing.T) {
	f := newAccountingFixture(t)

	require.NoError(t, f.sched.Execute(context.Background(), JobDistributeRevenue))
	f.store.Snapshot(func(r memory.Reader) {
		assert.Empty(t, r.Distributions())
	})
}

func TestAccountingJobsDistributeDoesNotRetryEventFailures(t *testing.T) {
	f := newAccountingFixture(t)
	end := f.now.AddDate(0, 0, -2)
	eventId := uuid.New()
	f.store.Seed(func(w memory.Writer) {
		// The organizer has no wallet, so this event fails on every tick.
		w.Event(entity.Event{Id: eventId, OrganizerId: uuid.New(), Title: "Orphaned", StartDate: end.AddDate(0, 0, -1), EndDate: &end, IsPublished: true})
	})

	require.NoError(t, f.sched.Execute(context.Background(), JobDistributeRevenue))

	assert.Equal(t, 1.0, jobRuns(t, f.reg, JobDistributeRevenue, StatusSucceeded))
	assert.Zero(t, jobRuns(t, f.reg, JobDistributeRevenue, StatusFailed))
	f.store.Snapshot(func(r memory.Reader) {
		assert.False(t, r.Event(eventId).RevenueDistributed)
	})
}
