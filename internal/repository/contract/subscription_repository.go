package contract

import (
	"context"
	"time"

	"eventhub-accounting-be/internal/entity"

	"github.com/google/uuid"
)

type SubscriptionRepository interface {
	// Plans
	CreatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error
	UpdatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error
	FindPlanById(ctx context.Context, id uuid.UUID) (*entity.SubscriptionPlan, error)
	FindPlanByTier(ctx context.Context, tier entity.PlanTier) (*entity.SubscriptionPlan, error)
	FindActivePlans(ctx context.Context) ([]*entity.SubscriptionPlan, error)

	// User subscriptions. Reads preload the plan.
	CreateSubscription(ctx context.Context, subscription *entity.UserSubscription) error
	UpdateSubscription(ctx context.Context, subscription *entity.UserSubscription) error
	FindSubscriptionByUserId(ctx context.Context, userId uuid.UUID, lock LockMode) (*entity.UserSubscription, error)
	// ResetActiveCounters zeroes both monthly counters of every active subscription.
	ResetActiveCounters(ctx context.Context) (int, error)
	// DeactivateExpired flips is_active off for active rows whose end date is not after now.
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)

	// Transactions
	CreateTransaction(ctx context.Context, tx *entity.SubscriptionTransaction) error
	UpdateTransaction(ctx context.Context, tx *entity.SubscriptionTransaction) error
	// FindLatestPaidTransaction returns the newest purchase or renewal that was not refunded.
	FindLatestPaidTransaction(ctx context.Context, subscriptionId uuid.UUID) (*entity.SubscriptionTransaction, error)
	FindTransactionByExternalId(ctx context.Context, externalId string) (*entity.SubscriptionTransaction, error)

	// Gateway orders
	CreateOrder(ctx context.Context, order *entity.SubscriptionOrder) error
	UpdateOrder(ctx context.Context, order *entity.SubscriptionOrder) error
	FindOrderByOrderId(ctx context.Context, orderId string, lock LockMode) (*entity.SubscriptionOrder, error)
}
