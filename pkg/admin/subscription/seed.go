package subscription

import (
	"context"
	"fmt"

	"eventhub-accounting-be/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultPlans is the catalog a fresh installation starts with.
func DefaultPlans() []*entity.SubscriptionPlan {
	return []*entity.SubscriptionPlan{
		{
			Name:               "Trial",
			Tier:               entity.PlanTierTrial,
			Description:        "Try the platform free for your first weeks",
			Price:              decimal.Zero,
			EventJoinLimit:     3,
			EventCreationLimit: 1,
			Features:           entity.PlanFeatures{EmailNotification: true},
			IsActive:           true,
		},
		{
			Name:               "Basic",
			Tier:               entity.PlanTierBasic,
			Description:        "For regular attendees and small organizers",
			Price:              decimal.RequireFromString("199.00"),
			EventJoinLimit:     10,
			EventCreationLimit: 3,
			Features: entity.PlanFeatures{
				EmailNotification: true,
				GroupChat:         true,
			},
			IsActive: true,
		},
		{
			Name:               "Premium",
			Tier:               entity.PlanTierPremium,
			Description:        "Unlimited events with every feature",
			Price:              decimal.RequireFromString("499.00"),
			EventJoinLimit:     entity.UnlimitedUsage,
			EventCreationLimit: entity.UnlimitedUsage,
			Features: entity.PlanFeatures{
				EmailNotification: true,
				GroupChat:         true,
				PersonalChat:      true,
				AdvancedAnalytics: true,
				TicketScanning:    true,
				LiveStreaming:     true,
			},
			IsActive: true,
		},
	}
}

// SeedDefaultPlans creates the default plan of every tier that has none yet
// and reports how many were created. Existing plans are never modified.
func (m *Manager) SeedDefaultPlans(ctx context.Context) (int, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	repo := uow.SubscriptionRepository()
	created := 0
	for _, plan := range DefaultPlans() {
		existing, err := repo.FindPlanByTier(ctx, plan.Tier)
		if err != nil {
			return 0, fmt.Errorf("find %s plan: %w", plan.Tier, err)
		}
		if existing != nil {
			continue
		}
		plan.Id = uuid.New()
		if err := repo.CreatePlan(ctx, plan); err != nil {
			return 0, fmt.Errorf("create %s plan: %w", plan.Tier, err)
		}
		created++
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}

	if created > 0 {
		m.plans.Invalidate()
	}
	m.logger.Info(logModule, "Default plans seeded", map[string]interface{}{
		"created": created,
	})
	return created, nil
}
