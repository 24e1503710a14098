package subscription

import (
	"context"
	"testing"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/memory"
	adminEvents "eventhub-accounting-be/pkg/admin/events"
	"eventhub-accounting-be/pkg/ledger"
	"eventhub-accounting-be/pkg/metrics"
	"eventhub-accounting-be/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDefaultPlansCreatesMissingTiersOnce(t *testing.T) {
	store := memory.NewStore()
	log := logger.NewNopLogger()
	m := metrics.Nop()
	manager := NewManager(
		store,
		payment.NewProcessor(ledger.New(store, m, log), payment.NewStubGateway(payment.ChargeSucceeded), log),
		memory.NewPlanCache(time.Minute),
		adminEvents.NewNatsPublisher(adminEvents.NewRecorder(), log),
		m,
		log,
		Options{TrialDays: 14, RenewalWindowDays: 7},
	)
	ctx := context.Background()

	created, err := manager.SeedDefaultPlans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, created)

	created, err = manager.SeedDefaultPlans(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	plans, err := manager.Plans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 3)

	tiers := map[entity.PlanTier]bool{}
	for _, p := range plans {
		tiers[p.Tier] = true
	}
	assert.True(t, tiers[entity.PlanTierTrial])
	assert.True(t, tiers[entity.PlanTierBasic])
	assert.True(t, tiers[entity.PlanTierPremium])
}

func TestSeedDefaultPlansKeepsExistingPlans(t *testing.T) {
	f := newFixture(t)

	created, err := f.manager.SeedDefaultPlans(context.Background())
	require.NoError(t, err)
	assert.Zero(t, created)

	plans, err := f.manager.Plans(context.Background())
	require.NoError(t, err)
	for _, p := range plans {
		if p.Tier == entity.PlanTierPremium {
			assert.Equal(t, "300.00", p.Price.StringFixed(2))
		}
	}
}

func TestDefaultPlansRankAboveTrial(t *testing.T) {
	plans := DefaultPlans()
	require.Len(t, plans, 3)
	for _, p := range plans {
		if p.Tier == entity.PlanTierTrial {
			assert.True(t, p.Price.IsZero())
			continue
		}
		assert.Greater(t, p.Tier.Rank(), entity.PlanTierTrial.Rank())
		assert.True(t, p.Price.IsPositive())
	}
}
