// Package metrics holds the Prometheus collectors of the accounting engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eventhub"

type Metrics struct {
	distributionEvents *prometheus.CounterVec
	distributedAmount  *prometheus.CounterVec
	ledgerMutations    *prometheus.CounterVec
	subscriptionOps    *prometheus.CounterVec
	bookingOps         *prometheus.CounterVec
	jobRuns            *prometheus.CounterVec
	jobDuration        *prometheus.HistogramVec
}

// New registers the collectors with reg. A nil reg returns collectors that
// are never exported, which suits tests that don't assert on metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		distributionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revenue",
			Name:      "distribution_events_total",
			Help:      "Events handled by the revenue distribution cycle, by outcome.",
		}, []string{"outcome"}),
		distributedAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "revenue",
			Name:      "distributed_amount_total",
			Help:      "Money distributed, split by recipient.",
		}, []string{"recipient"}),
		ledgerMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "mutations_total",
			Help:      "Wallet balance mutations, by direction and transaction type.",
		}, []string{"direction", "type"}),
		subscriptionOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "operations_total",
			Help:      "Subscription state machine operations, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		bookingOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "operations_total",
			Help:      "Checkouts, cancellations and gateway settlements, by outcome.",
		}, []string{"operation", "outcome"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_runs_total",
			Help:      "Scheduled job executions, by job and status.",
		}, []string{"job", "status"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_duration_seconds",
			Help:      "Duration of scheduled job executions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.distributionEvents,
			m.distributedAmount,
			m.ledgerMutations,
			m.subscriptionOps,
			m.bookingOps,
			m.jobRuns,
			m.jobDuration,
		)
	}
	return m
}

// Nop returns unregistered collectors.
func Nop() *Metrics {
	return New(nil)
}

func (m *Metrics) DistributionOutcome(outcome string) {
	m.distributionEvents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) DistributedAmount(admin, organizer float64) {
	m.distributedAmount.WithLabelValues("admin").Add(admin)
	m.distributedAmount.WithLabelValues("organizer").Add(organizer)
}

func (m *Metrics) LedgerMutation(direction, txType string) {
	m.ledgerMutations.WithLabelValues(direction, txType).Inc()
}

func (m *Metrics) SubscriptionOperation(operation, outcome string) {
	m.subscriptionOps.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) BookingOperation(operation, outcome string) {
	m.bookingOps.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) JobRun(job, status string, elapsed time.Duration) {
	m.jobRuns.WithLabelValues(job, status).Inc()
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}
