// Package scheduler runs the periodic accounting jobs on cron entries. Each
// tick takes a distributed lock, retries with exponential backoff and is
// bounded by a per-run timeout.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"eventhub-accounting-be/internal/config"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/pkg/metrics"

	"github.com/cenkalti/backoff/v5"
	"github.com/robfig/cron/v3"
)

const logModule = "SCHEDULER"

const (
	StatusSucceeded = "success"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	locker  Locker
	cfg     config.SchedulerConfig
	metrics *metrics.Metrics
	logger  logger.ILogger

	mu   sync.Mutex
	jobs map[string]Job
}

func New(cfg config.SchedulerConfig, locker Locker, m *metrics.Metrics, log logger.ILogger) *Scheduler {
	if cfg.RetryAttempts < 1 {
		cfg.RetryAttempts = 1
	}
	if cfg.RetryMultiplier < 1 {
		cfg.RetryMultiplier = 2
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 4 * time.Minute
	}
	if cfg.LockExpiry <= 0 {
		cfg.LockExpiry = cfg.JobTimeout + time.Minute
	}
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		locker:  locker,
		cfg:     cfg,
		metrics: m,
		logger:  log,
		jobs:    map[string]Job{},
	}
}

// Register adds a job to the cron table. Names must be unique.
func (s *Scheduler) Register(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %q already registered", job.Name)
	}
	if _, err := s.cron.AddFunc(job.Spec, func() {
		_ = s.Execute(context.Background(), job.Name)
	}); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name, job.Spec, err)
	}
	s.jobs[job.Name] = job
	return nil
}

// Run starts the cron loop and blocks until ctx is cancelled, then waits
// for running ticks to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info(logModule, "Scheduler started", map[string]interface{}{
		"jobs": s.names(),
	})

	<-ctx.Done()

	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		s.logger.Info(logModule, "Scheduler stopped gracefully", nil)
	case <-time.After(s.cfg.JobTimeout):
		s.logger.Warn(logModule, "Scheduler stop timed out with jobs still running", nil)
	}
	return nil
}

// Execute runs one tick of the named job: lock, retry and timeout applied.
// A tick whose lock is held elsewhere is skipped without error.
func (s *Scheduler) Execute(ctx context.Context, name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}

	started := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	release, acquired, err := s.locker.Acquire(ctx, job.Name, s.cfg.LockExpiry)
	if err != nil {
		s.metrics.JobRun(job.Name, StatusFailed, time.Since(started))
		s.logger.Error(logModule, "Failed to acquire job lock", map[string]interface{}{
			"job":   job.Name,
			"error": err.Error(),
		})
		return fmt.Errorf("acquire lock for %s: %w", job.Name, err)
	}
	if !acquired {
		s.metrics.JobRun(job.Name, StatusSkipped, time.Since(started))
		s.logger.Info(logModule, "Job tick skipped, lock held elsewhere", map[string]interface{}{
			"job": job.Name,
		})
		return nil
	}
	defer release()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.cfg.RetryBaseDelay
	b.Multiplier = s.cfg.RetryMultiplier
	b.RandomizationFactor = 0

	attempt := 0
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, job.Run(ctx)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(s.cfg.RetryAttempts)),
		backoff.WithMaxElapsedTime(s.cfg.JobTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			s.logger.Warn(logModule, "Job attempt failed, retrying", map[string]interface{}{
				"job":      job.Name,
				"attempt":  attempt,
				"retry_in": next.String(),
				"error":    err.Error(),
			})
		}),
	)

	elapsed := time.Since(started)
	if err != nil {
		s.metrics.JobRun(job.Name, StatusFailed, elapsed)
		details := map[string]interface{}{
			"job":        job.Name,
			"attempts":   attempt,
			"elapsed_ms": elapsed.Milliseconds(),
			"error":      err.Error(),
		}
		if errors.Is(err, context.DeadlineExceeded) {
			details["timeout"] = s.cfg.JobTimeout.String()
		}
		s.logger.Error(logModule, "Job failed", details)
		return fmt.Errorf("job %s: %w", job.Name, err)
	}

	s.metrics.JobRun(job.Name, StatusSucceeded, elapsed)
	s.logger.Info(logModule, "Job finished", map[string]interface{}{
		"job":        job.Name,
		"attempts":   attempt,
		"elapsed_ms": elapsed.Milliseconds(),
	})
	return nil
}

func (s *Scheduler) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		out = append(out, name)
	}
	return out
}

// cronLogger routes cron's own messages into the structured logger.
type cronLogger struct {
	log logger.ILogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(logModule, msg, pairs(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	details := pairs(keysAndValues)
	details["error"] = err.Error()
	l.log.Error(logModule, msg, details)
}

func pairs(keysAndValues []interface{}) map[string]interface{} {
	details := make(map[string]interface{}, len(keysAndValues)/2+1)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		details[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return details
}
