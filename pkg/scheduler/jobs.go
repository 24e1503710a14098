package scheduler

import (
	"context"
	"time"

	"eventhub-accounting-be/internal/config"
	"eventhub-accounting-be/pkg/admin/revenue"
	"eventhub-accounting-be/pkg/admin/subscription"
	"eventhub-accounting-be/pkg/admin/usage"
)

const (
	JobDistributeRevenue   = "distribute_revenue"
	JobExpireSubscriptions = "expire_subscriptions"
	JobResetUsageCounters  = "reset_usage_counters"
)

// Services are the engines the periodic jobs drive.
type Services struct {
	Distributor *revenue.Distributor
	Manager     *subscription.Manager
	Tracker     *usage.Tracker
	Clock       func() time.Time
}

// AccountingJobs builds the cron table for the accounting engine.
func AccountingJobs(cfg config.SchedulerConfig, svc Services) []Job {
	clock := svc.Clock
	if clock == nil {
		clock = time.Now
	}
	return []Job{
		{
			Name: JobDistributeRevenue,
			Spec: cfg.DistributeSpec,
			Run: func(ctx context.Context) error {
				// Failed events stay undistributed and the next tick selects them again,
				// so only a cycle that could not run at all is retried.
				_, err := svc.Distributor.RunCycle(ctx, clock())
				return err
			},
		},
		{
			Name: JobExpireSubscriptions,
			Spec: cfg.ExpireSpec,
			Run: func(ctx context.Context) error {
				_, err := svc.Manager.ExpireSweep(ctx, clock())
				return err
			},
		},
		{
			Name: JobResetUsageCounters,
			Spec: cfg.ResetCountersSpec,
			Run: func(ctx context.Context) error {
				_, err := svc.Tracker.ResetMonthlyCounters(ctx)
				return err
			},
		},
	}
}

// RegisterAll registers every job, stopping at the first invalid one.
func (s *Scheduler) RegisterAll(jobs []Job) error {
	for _, job := range jobs {
		if err := s.Register(job); err != nil {
			return err
		}
	}
	return nil
}
