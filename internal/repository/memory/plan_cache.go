package memory

import (
	"context"
	"time"

	"eventhub-accounting-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const activePlansKey = "plans:active"

// PlanLoader reads plans from the backing store on a cache miss.
type PlanLoader interface {
	FindPlanById(ctx context.Context, id uuid.UUID) (*entity.SubscriptionPlan, error)
	FindActivePlans(ctx context.Context) ([]*entity.SubscriptionPlan, error)
}

// PlanCache keeps subscription plans in process. Plans change rarely and are
// read on every checkout and quote.
type PlanCache struct {
	cache *cache.Cache
}

func NewPlanCache(ttl time.Duration) *PlanCache {
	return &PlanCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (c *PlanCache) Plan(ctx context.Context, id uuid.UUID, loader PlanLoader) (*entity.SubscriptionPlan, error) {
	key := "plan:" + id.String()
	if x, found := c.cache.Get(key); found {
		plan := x.(entity.SubscriptionPlan)
		return &plan, nil
	}
	plan, err := loader.FindPlanById(ctx, id)
	if err != nil || plan == nil {
		return plan, err
	}
	c.cache.Set(key, *plan, cache.DefaultExpiration)
	return plan, nil
}

func (c *PlanCache) ActivePlans(ctx context.Context, loader PlanLoader) ([]*entity.SubscriptionPlan, error) {
	if x, found := c.cache.Get(activePlansKey); found {
		cached := x.([]entity.SubscriptionPlan)
		plans := make([]*entity.SubscriptionPlan, len(cached))
		for i := range cached {
			p := cached[i]
			plans[i] = &p
		}
		return plans, nil
	}
	plans, err := loader.FindActivePlans(ctx)
	if err != nil {
		return nil, err
	}
	values := make([]entity.SubscriptionPlan, len(plans))
	for i, p := range plans {
		values[i] = *p
	}
	c.cache.Set(activePlansKey, values, cache.DefaultExpiration)
	return plans, nil
}

// Invalidate drops everything; call it after seeding or editing plans.
func (c *PlanCache) Invalidate() {
	c.cache.Flush()
}
