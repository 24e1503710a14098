package implementation

import (
	"context"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/mapper"
	"eventhub-accounting-be/internal/model"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

// Plan Implementation

func (r *SubscriptionRepositoryImpl) CreatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error {
	m := r.mapper.PlanToModel(plan)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*plan = *r.mapper.PlanToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) UpdatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error {
	m := r.mapper.PlanToModel(plan)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return translateError(err)
	}
	*plan = *r.mapper.PlanToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) FindPlanById(ctx context.Context, id uuid.UUID) (*entity.SubscriptionPlan, error) {
	var m model.SubscriptionPlan
	found, err := first(applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id}), &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.PlanToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindPlanByTier(ctx context.Context, tier entity.PlanTier) (*entity.SubscriptionPlan, error) {
	var m model.SubscriptionPlan
	found, err := first(applySpecifications(r.db.WithContext(ctx), specification.Filter("tier", string(tier))), &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.PlanToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindActivePlans(ctx context.Context) ([]*entity.SubscriptionPlan, error) {
	var models []*model.SubscriptionPlan
	query := applySpecifications(r.db.WithContext(ctx), specification.ActiveOnly{}, specification.OrderBy{Field: "price"})
	if err := query.Find(&models).Error; err != nil {
		return nil, translateError(err)
	}
	plans := make([]*entity.SubscriptionPlan, len(models))
	for i, m := range models {
		plans[i] = r.mapper.PlanToEntity(m)
	}
	return plans, nil
}

// Subscription Implementation

func (r *SubscriptionRepositoryImpl) CreateSubscription(ctx context.Context, subscription *entity.UserSubscription) error {
	m := r.mapper.UserSubscriptionToModel(subscription)
	if err := r.db.WithContext(ctx).Omit("Plan").Create(m).Error; err != nil {
		return translateError(err)
	}
	subscription.Id = m.Id
	subscription.CreatedAt = m.CreatedAt
	subscription.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *SubscriptionRepositoryImpl) UpdateSubscription(ctx context.Context, subscription *entity.UserSubscription) error {
	m := r.mapper.UserSubscriptionToModel(subscription)
	if err := r.db.WithContext(ctx).Omit("Plan").Save(m).Error; err != nil {
		return translateError(err)
	}
	subscription.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *SubscriptionRepositoryImpl) FindSubscriptionByUserId(ctx context.Context, userId uuid.UUID, lock contract.LockMode) (*entity.UserSubscription, error) {
	var m model.UserSubscription
	// FOR UPDATE cannot apply to the nullable side of a join, so the plan is preloaded separately.
	query := applySpecifications(r.db.WithContext(ctx), specification.ByUserID{UserID: userId}, specification.Lock(lock)).
		Preload("Plan")
	found, err := first(query, &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.UserSubscriptionToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) ResetActiveCounters(ctx context.Context) (int, error) {
	res := r.db.WithContext(ctx).Model(&model.UserSubscription{}).
		Where("is_active = ?", true).
		Updates(map[string]interface{}{
			"events_joined_this_month":    0,
			"events_organized_this_month": 0,
		})
	return int(res.RowsAffected), translateError(res.Error)
}

func (r *SubscriptionRepositoryImpl) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	res := r.db.WithContext(ctx).Model(&model.UserSubscription{}).
		Where("is_active = ? AND end_date <= ?", true, now).
		Update("is_active", false)
	return int(res.RowsAffected), translateError(res.Error)
}

// Transaction Implementation

func (r *SubscriptionRepositoryImpl) CreateTransaction(ctx context.Context, tx *entity.SubscriptionTransaction) error {
	m := r.mapper.TransactionToModel(tx)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*tx = *r.mapper.TransactionToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) UpdateTransaction(ctx context.Context, tx *entity.SubscriptionTransaction) error {
	m := r.mapper.TransactionToModel(tx)
	return translateError(r.db.WithContext(ctx).Save(m).Error)
}

func (r *SubscriptionRepositoryImpl) FindLatestPaidTransaction(ctx context.Context, subscriptionId uuid.UUID) (*entity.SubscriptionTransaction, error) {
	var m model.SubscriptionTransaction
	query := r.db.WithContext(ctx).
		Where("subscription_id = ? AND type IN ? AND is_refunded = ?", subscriptionId,
			[]string{string(entity.SubscriptionTransactionPurchase), string(entity.SubscriptionTransactionRenewal)}, false).
		Order("created_at DESC")
	found, err := first(query, &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.TransactionToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindTransactionByExternalId(ctx context.Context, externalId string) (*entity.SubscriptionTransaction, error) {
	var m model.SubscriptionTransaction
	found, err := first(applySpecifications(r.db.WithContext(ctx), specification.Filter("external_transaction_id", externalId)), &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.TransactionToEntity(&m), nil
}

// Order Implementation

func (r *SubscriptionRepositoryImpl) CreateOrder(ctx context.Context, order *entity.SubscriptionOrder) error {
	m := r.mapper.OrderToModel(order)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*order = *r.mapper.OrderToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) UpdateOrder(ctx context.Context, order *entity.SubscriptionOrder) error {
	m := r.mapper.OrderToModel(order)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return translateError(err)
	}
	order.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *SubscriptionRepositoryImpl) FindOrderByOrderId(ctx context.Context, orderId string, lock contract.LockMode) (*entity.SubscriptionOrder, error) {
	var m model.SubscriptionOrder
	query := applySpecifications(r.db.WithContext(ctx), specification.Filter("order_id", orderId), specification.Lock(lock))
	found, err := first(query, &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.OrderToEntity(&m), nil
}
