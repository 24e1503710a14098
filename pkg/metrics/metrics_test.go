package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAreRegistered(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.DistributionOutcome("processed")
	m.DistributionOutcome("processed")
	m.DistributionOutcome("failed")
	m.DistributedAmount(700, 9300)
	m.JobRun("distribute_revenue", "success", 150*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.distributionEvents.WithLabelValues("processed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.distributionEvents.WithLabelValues("failed")))
	assert.Equal(t, 9300.0, testutil.ToFloat64(m.distributedAmount.WithLabelValues("organizer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("distribute_revenue", "success")))

	families, err := registry.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNopDoesNotPanic(t *testing.T) {
	m := Nop()
	m.LedgerMutation("credit", "PAYMENT")
	m.SubscriptionOperation("upgrade", "ok")
	m.BookingOperation("checkout", "paid")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ledgerMutations.WithLabelValues("credit", "PAYMENT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingOps.WithLabelValues("checkout", "paid")))
}
