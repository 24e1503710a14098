// Package subscription drives the subscription lifecycle: trial, purchase,
// upgrade, renewal and expiry.
package subscription

import (
	"context"
	"fmt"
	"time"

	"eventhub-accounting-be/internal/config"
	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/memory"
	"eventhub-accounting-be/internal/repository/unitofwork"
	adminEvents "eventhub-accounting-be/pkg/admin/events"
	pkgEvents "eventhub-accounting-be/pkg/events"
	"eventhub-accounting-be/pkg/metrics"
	"eventhub-accounting-be/pkg/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const logModule = "SUBSCRIPTION"

type operation string

const (
	opPurchase operation = "purchase"
	opRenew    operation = "renew"
	opUpgrade  operation = "upgrade"
)

// ChangeRequest asks for a purchase, renewal or upgrade. PlanId may be nil
// for renewals, which then keep the current plan.
type ChangeRequest struct {
	UserId    uuid.UUID
	PlanId    *uuid.UUID
	Method    entity.PaymentMethod
	CardToken string
}

// ChangeResult describes the applied change. Pending means the card charge
// awaits gateway confirmation and only the gateway order was recorded.
type ChangeResult struct {
	Subscription   *entity.UserSubscription
	Transaction    *entity.SubscriptionTransaction
	Amount         decimal.Decimal
	Pending        bool
	OrderId        string
	AlreadyApplied bool
}

type UpgradeQuote struct {
	CurrentPlan *entity.SubscriptionPlan
	TargetPlan  *entity.SubscriptionPlan
	Quote
}

// settlement is a gateway payment confirmed by notification.
type settlement struct {
	orderId       string
	transactionId string
	amount        decimal.Decimal
}

type Options struct {
	TrialDays         int
	RenewalWindowDays int
}

func OptionsFromConfig(cfg config.AccountingConfig) Options {
	return Options{
		TrialDays:         cfg.TrialDays,
		RenewalWindowDays: cfg.RenewalWindowDays,
	}
}

type Manager struct {
	uowFactory unitofwork.RepositoryFactory
	payments   *payment.Processor
	plans      *memory.PlanCache
	publisher  adminEvents.Publisher
	metrics    *metrics.Metrics
	logger     logger.ILogger
	opts       Options
	clock      func() time.Time
}

func NewManager(
	uowFactory unitofwork.RepositoryFactory,
	payments *payment.Processor,
	plans *memory.PlanCache,
	publisher adminEvents.Publisher,
	m *metrics.Metrics,
	logger logger.ILogger,
	opts Options,
) *Manager {
	return &Manager{
		uowFactory: uowFactory,
		payments:   payments,
		plans:      plans,
		publisher:  publisher,
		metrics:    m,
		logger:     logger,
		opts:       opts,
		clock:      time.Now,
	}
}

func (m *Manager) Plans(ctx context.Context) ([]*entity.SubscriptionPlan, error) {
	return m.plans.ActivePlans(ctx, m.uowFactory.NewUnitOfWork(ctx).SubscriptionRepository())
}

// Current returns the user's subscription with its plan, or nil.
func (m *Manager) Current(ctx context.Context, userId uuid.UUID) (*entity.UserSubscription, error) {
	return m.uowFactory.NewUnitOfWork(ctx).SubscriptionRepository().FindSubscriptionByUserId(ctx, userId, contract.LockNone)
}

// QuoteUpgrade prices an upgrade without changing anything.
func (m *Manager) QuoteUpgrade(ctx context.Context, userId, targetPlanId uuid.UUID, now time.Time) (*UpgradeQuote, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SubscriptionRepository()

	sub, err := repo.FindSubscriptionByUserId(ctx, userId, contract.LockNone)
	if err != nil {
		return nil, err
	}
	target, err := m.plans.Plan(ctx, targetPlanId, repo)
	if err != nil {
		return nil, err
	}
	if err := validateUpgrade(sub, target, now); err != nil {
		return nil, err
	}

	quote, err := m.upgradeQuote(ctx, repo, sub, target, now)
	if err != nil {
		return nil, err
	}
	current := sub.Plan
	return &UpgradeQuote{CurrentPlan: &current, TargetPlan: target, Quote: quote}, nil
}

func (m *Manager) upgradeQuote(ctx context.Context, repo contract.SubscriptionRepository, sub *entity.UserSubscription, target *entity.SubscriptionPlan, now time.Time) (Quote, error) {
	paid := sub.Plan.Price
	last, err := repo.FindLatestPaidTransaction(ctx, sub.Id)
	if err != nil {
		return Quote{}, fmt.Errorf("find latest payment: %w", err)
	}
	if last != nil {
		paid = last.Amount
	}
	return ComputeUpgradeCost(paid, sub.DaysUsed(now), sub.DaysRemaining(now), target.Price), nil
}

func validateUpgrade(sub *entity.UserSubscription, target *entity.SubscriptionPlan, now time.Time) error {
	if target == nil || !target.IsActive {
		return apperror.NotFound(apperror.ReasonPlanNotFound, "plan not found")
	}
	if sub == nil {
		return apperror.Reject(apperror.ReasonSubscriptionRequired, "an active subscription is required")
	}
	if !sub.IsValid(now) {
		return apperror.Reject(apperror.ReasonSubscriptionExpired, "your subscription has expired, renew it instead")
	}
	if sub.PlanId == target.Id {
		return apperror.Reject(apperror.ReasonAlreadyOnPlan, "you are already on this plan")
	}
	if target.Tier.Rank() <= sub.Plan.Tier.Rank() {
		return apperror.Reject(apperror.ReasonInvalidUpgrade, "downgrades take effect at renewal")
	}
	return nil
}

func (m *Manager) Upgrade(ctx context.Context, req ChangeRequest) (*ChangeResult, error) {
	return m.run(ctx, opUpgrade, req, nil)
}

func (m *Manager) Purchase(ctx context.Context, req ChangeRequest) (*ChangeResult, error) {
	return m.run(ctx, opPurchase, req, nil)
}

func (m *Manager) Renew(ctx context.Context, req ChangeRequest) (*ChangeResult, error) {
	return m.run(ctx, opRenew, req, nil)
}

// ConfirmGatewayPayment applies a change whose card charge settled
// asynchronously. The stored order names the change; the gateway transaction
// id makes it idempotent.
func (m *Manager) ConfirmGatewayPayment(ctx context.Context, orderId, transactionId string, amount decimal.Decimal) (*ChangeResult, error) {
	order, err := m.uowFactory.NewUnitOfWork(ctx).SubscriptionRepository().FindOrderByOrderId(ctx, orderId, contract.LockNone)
	if err != nil {
		return nil, fmt.Errorf("find subscription order: %w", err)
	}
	if order == nil {
		return nil, apperror.NotFound(apperror.ReasonOrderNotFound, "unknown subscription order")
	}

	planId := order.PlanId
	return m.run(ctx, operationOf(order.Type), ChangeRequest{
		UserId: order.UserId,
		PlanId: &planId,
		Method: entity.PaymentMethodCard,
	}, &settlement{orderId: orderId, transactionId: transactionId, amount: amount})
}

// FailGatewayOrder closes a pending order whose charge was denied or expired.
// It reports false when the order is unknown or no longer pending.
func (m *Manager) FailGatewayOrder(ctx context.Context, orderId string) (bool, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	repo := uow.SubscriptionRepository()
	order, err := repo.FindOrderByOrderId(ctx, orderId, contract.LockForUpdate)
	if err != nil {
		return false, err
	}
	if order == nil || order.Status != entity.SubscriptionOrderPending {
		return false, nil
	}

	order.Status = entity.SubscriptionOrderFailed
	if err := repo.UpdateOrder(ctx, order); err != nil {
		return false, fmt.Errorf("update subscription order: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return false, err
	}
	m.metrics.SubscriptionOperation(string(operationOf(order.Type)), "failed")
	return true, nil
}

func (m *Manager) run(ctx context.Context, op operation, req ChangeRequest, settled *settlement) (*ChangeResult, error) {
	var (
		result  *ChangeResult
		charged bool
	)
	err := apperror.RetryOnConflict(ctx, func(ctx context.Context) error {
		// A card was already charged for this request, so a retry would charge it twice.
		if charged {
			return apperror.Conflict(apperror.ErrConcurrencyConflict)
		}

		uow := m.uowFactory.NewUnitOfWork(ctx)
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer uow.Rollback()

		r, err := m.change(ctx, uow, op, req, settled, &charged)
		if err != nil {
			return err
		}
		result = r
		if r.AlreadyApplied {
			return nil
		}
		return uow.Commit()
	})
	if err != nil {
		m.metrics.SubscriptionOperation(string(op), outcomeOf(err))
		m.logger.Warn(logModule, "Subscription change rejected", map[string]interface{}{
			"operation": string(op),
			"user_id":   req.UserId.String(),
			"error":     err.Error(),
		})
		return nil, err
	}

	switch {
	case result.Pending:
		m.metrics.SubscriptionOperation(string(op), "pending")
		return result, nil
	case result.AlreadyApplied:
		m.metrics.SubscriptionOperation(string(op), "duplicate")
		return result, nil
	}

	m.metrics.SubscriptionOperation(string(op), "ok")
	m.logger.Info(logModule, "Subscription changed", map[string]interface{}{
		"operation": string(op),
		"user_id":   req.UserId.String(),
		"plan":      string(result.Subscription.Plan.Tier),
		"amount":    result.Amount.StringFixed(2),
		"end_date":  result.Subscription.EndDate,
	})
	m.publisher.PublishSubscriptionChanged(ctx, eventTypeOf(op), result.Subscription, result.Amount)
	return result, nil
}

func (m *Manager) change(ctx context.Context, uow unitofwork.UnitOfWork, op operation, req ChangeRequest, settled *settlement, charged *bool) (*ChangeResult, error) {
	repo := uow.SubscriptionRepository()
	now := m.clock()

	// 1. Idempotency for gateway confirmations.
	if settled != nil {
		existing, err := repo.FindTransactionByExternalId(ctx, settled.transactionId)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return &ChangeResult{AlreadyApplied: true, Transaction: existing, Amount: existing.Amount}, nil
		}
	}

	var order *entity.SubscriptionOrder
	if settled != nil {
		o, err := repo.FindOrderByOrderId(ctx, settled.orderId, contract.LockForUpdate)
		if err != nil {
			return nil, fmt.Errorf("lock subscription order: %w", err)
		}
		if o == nil {
			return nil, apperror.NotFound(apperror.ReasonOrderNotFound, "unknown subscription order")
		}
		if o.Status == entity.SubscriptionOrderPaid {
			return nil, apperror.Reject(apperror.ReasonOrderAlreadySettled, "this order was already paid by another charge")
		}
		order = o
	}

	// 2. Lock the subscription and resolve the plan.
	sub, err := repo.FindSubscriptionByUserId(ctx, req.UserId, contract.LockForUpdate)
	if err != nil {
		return nil, fmt.Errorf("lock subscription: %w", err)
	}

	planId := req.PlanId
	if planId == nil && op == opRenew && sub != nil {
		planId = &sub.PlanId
	}
	if planId == nil {
		return nil, apperror.NotFound(apperror.ReasonPlanNotFound, "plan is required")
	}
	plan, err := repo.FindPlanById(ctx, *planId)
	if err != nil {
		return nil, err
	}

	// 3. Validate the transition and price it.
	var (
		amount     decimal.Decimal
		txType     entity.SubscriptionTransactionType
		start      time.Time
		resetUsage bool
	)
	switch op {
	case opPurchase:
		if err := validatePaidPlan(plan); err != nil {
			return nil, err
		}
		if sub != nil && sub.IsValid(now) && sub.Plan.Tier != entity.PlanTierTrial {
			return nil, apperror.Reject(apperror.ReasonAlreadySubscribed, "you already have an active subscription")
		}
		amount, txType, start, resetUsage = plan.Price, entity.SubscriptionTransactionPurchase, now, true

	case opRenew:
		if sub == nil {
			return nil, apperror.Reject(apperror.ReasonSubscriptionRequired, "no subscription to renew")
		}
		if err := validatePaidPlan(plan); err != nil {
			return nil, err
		}
		start = now
		if sub.IsValid(now) {
			if sub.DaysRemaining(now) > m.opts.RenewalWindowDays {
				return nil, apperror.Reject(apperror.ReasonRenewalNotAllowed,
					fmt.Sprintf("renewal opens %d days before the end date", m.opts.RenewalWindowDays))
			}
			// The paid cycle keeps its plan; another plan can be chosen once it ends.
			if plan.Id != sub.PlanId {
				return nil, apperror.Reject(apperror.ReasonPlanChangeNotAllowed,
					"an active subscription renews on its current plan, choose another plan after it ends")
			}
			start = sub.EndDate
		} else {
			resetUsage = true
		}
		amount, txType = plan.Price, entity.SubscriptionTransactionRenewal

	case opUpgrade:
		if err := validateUpgrade(sub, plan, now); err != nil {
			return nil, err
		}
		quote, err := m.upgradeQuote(ctx, repo, sub, plan, now)
		if err != nil {
			return nil, err
		}
		amount, txType = quote.UpgradeCost, entity.SubscriptionTransactionUpgrade
	}

	// 4. Collect payment.
	method := string(req.Method)
	var externalId *string
	paymentRef := ""
	switch {
	case settled != nil:
		amount = settled.amount
		externalId = &settled.transactionId
		paymentRef = settled.transactionId
		method = string(entity.PaymentMethodCard)

	case amount.IsPositive():
		orderId := payment.NewSubscriptionOrderId()
		if req.Method == entity.PaymentMethodCard {
			order = &entity.SubscriptionOrder{
				Id:        uuid.New(),
				OrderId:   orderId,
				UserId:    req.UserId,
				PlanId:    plan.Id,
				Type:      txType,
				Amount:    amount.Round(2),
				Status:    entity.SubscriptionOrderPending,
				CreatedAt: now,
			}
			if err := repo.CreateOrder(ctx, order); err != nil {
				return nil, fmt.Errorf("record subscription order: %w", err)
			}
			*charged = true
		}
		res, err := m.payments.Collect(ctx, uow, payment.Request{
			Method:      req.Method,
			UserId:      req.UserId,
			Amount:      amount,
			OrderId:     orderId,
			CardToken:   req.CardToken,
			Description: fmt.Sprintf("Subscription %s: %s", op, plan.Name),
		})
		if err != nil {
			return nil, err
		}
		if res.Status == payment.StatusPending {
			return &ChangeResult{Pending: true, OrderId: orderId, Amount: amount}, nil
		}
		if res.GatewayTxId != "" {
			id := res.GatewayTxId
			externalId = &id
			paymentRef = id
		} else if res.WalletTransaction != nil {
			paymentRef = res.WalletTransaction.Id.String()
		}

	default:
		if method == "" {
			method = "none"
		}
	}

	// 5. Apply the transition.
	isNew := sub == nil
	if isNew {
		sub = &entity.UserSubscription{Id: uuid.New(), UserId: req.UserId}
	}
	sub.PlanId = plan.Id
	sub.Plan = *plan
	sub.IsActive = true
	sub.PaymentMethod = method
	if paymentRef != "" {
		sub.PaymentId = paymentRef
	}
	if op != opUpgrade {
		sub.StartDate = start
		sub.EndDate = start.AddDate(0, 0, entity.BillingCycleDays)
	}
	if resetUsage {
		sub.ResetMonthlyCounters()
	}

	if isNew {
		err = repo.CreateSubscription(ctx, sub)
	} else {
		err = repo.UpdateSubscription(ctx, sub)
	}
	if err != nil {
		return nil, fmt.Errorf("save subscription: %w", err)
	}

	tx := &entity.SubscriptionTransaction{
		Id:                    uuid.New(),
		SubscriptionId:        sub.Id,
		Amount:                amount.Round(2),
		Type:                  txType,
		PaymentMethod:         method,
		ExternalTransactionId: externalId,
		CreatedAt:             now,
	}
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("record subscription transaction: %w", err)
	}

	if order != nil {
		order.Status = entity.SubscriptionOrderPaid
		order.ExternalTransactionId = externalId
		if err := repo.UpdateOrder(ctx, order); err != nil {
			return nil, fmt.Errorf("update subscription order: %w", err)
		}
	}

	return &ChangeResult{Subscription: sub, Transaction: tx, Amount: tx.Amount}, nil
}

func validatePaidPlan(plan *entity.SubscriptionPlan) error {
	if plan == nil || !plan.IsActive {
		return apperror.NotFound(apperror.ReasonPlanNotFound, "plan not found")
	}
	if plan.Tier == entity.PlanTierTrial {
		return apperror.Reject(apperror.ReasonInvalidUpgrade, "the trial plan cannot be bought")
	}
	return nil
}

// StartTrial gives a first-time user the trial plan.
func (m *Manager) StartTrial(ctx context.Context, userId uuid.UUID) (*entity.UserSubscription, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.SubscriptionRepository()
	existing, err := repo.FindSubscriptionByUserId(ctx, userId, contract.LockForUpdate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Reject(apperror.ReasonTrialUnavailable, "the trial is only available to new users")
	}

	plan, err := repo.FindPlanByTier(ctx, entity.PlanTierTrial)
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.IsActive {
		return nil, apperror.NotFound(apperror.ReasonPlanNotFound, "trial plan not found")
	}

	now := m.clock()
	sub := &entity.UserSubscription{
		Id:            uuid.New(),
		UserId:        userId,
		PlanId:        plan.Id,
		Plan:          *plan,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, m.opts.TrialDays),
		IsActive:      true,
		PaymentMethod: "none",
	}
	if err := repo.CreateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("create trial subscription: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	m.metrics.SubscriptionOperation("trial", "ok")
	m.logger.Info(logModule, "Trial started", map[string]interface{}{
		"user_id":  userId.String(),
		"end_date": sub.EndDate,
	})
	return sub, nil
}

// ExpireSweep deactivates every active subscription whose end date is not after now.
func (m *Manager) ExpireSweep(ctx context.Context, now time.Time) (int, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	count, err := uow.SubscriptionRepository().DeactivateExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired subscriptions: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return 0, err
	}

	m.metrics.SubscriptionOperation("expire", "ok")
	m.logger.Info(logModule, "Expired subscriptions swept", map[string]interface{}{
		"deactivated": count,
	})
	if count > 0 {
		m.publisher.PublishSubscriptionsExpired(ctx, count, now)
	}
	return count, nil
}

// MarkRefunded flags the subscription transaction paid through the given
// gateway transaction as refunded. It reports false when no such transaction exists.
func (m *Manager) MarkRefunded(ctx context.Context, transactionId string) (bool, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer uow.Rollback()

	repo := uow.SubscriptionRepository()
	tx, err := repo.FindTransactionByExternalId(ctx, transactionId)
	if err != nil {
		return false, err
	}
	if tx == nil {
		return false, nil
	}
	if tx.IsRefunded {
		return true, nil
	}

	tx.IsRefunded = true
	if err := repo.UpdateTransaction(ctx, tx); err != nil {
		return false, err
	}
	if err := uow.Commit(); err != nil {
		return false, err
	}

	m.logger.Info(logModule, "Subscription transaction refunded", map[string]interface{}{
		"transaction_id": transactionId,
		"amount":         tx.Amount.StringFixed(2),
	})
	return true, nil
}

func operationOf(txType entity.SubscriptionTransactionType) operation {
	switch txType {
	case entity.SubscriptionTransactionPurchase:
		return opPurchase
	case entity.SubscriptionTransactionRenewal:
		return opRenew
	default:
		return opUpgrade
	}
}

func eventTypeOf(op operation) string {
	switch op {
	case opPurchase:
		return pkgEvents.TypeSubscriptionPurchased
	case opRenew:
		return pkgEvents.TypeSubscriptionRenewed
	default:
		return pkgEvents.TypeSubscriptionUpgraded
	}
}

func outcomeOf(err error) string {
	if r, ok := apperror.AsRejection(err); ok {
		return string(r.Reason)
	}
	return "error"
}
