package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/memory"
	adminEvents "eventhub-accounting-be/pkg/admin/events"
	"eventhub-accounting-be/pkg/admin/subscription"
	"eventhub-accounting-be/pkg/ledger"
	"eventhub-accounting-be/pkg/metrics"
	"eventhub-accounting-be/pkg/payment"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testServerKey = "SB-Mid-server-test"

type paymentFixture struct {
	store   *memory.Store
	gateway *payment.StubGateway
	manager *subscription.Manager
	svc     IPaymentService
	userId  uuid.UUID
	basic   entity.SubscriptionPlan
	premium entity.SubscriptionPlan
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	store := memory.NewStore()
	log := logger.NewNopLogger()
	m := metrics.Nop()
	now := time.Now()

	f := &paymentFixture{
		store:   store,
		gateway: payment.NewStubGateway(payment.ChargePending),
		userId:  uuid.New(),
		basic:   entity.SubscriptionPlan{Id: uuid.New(), Name: "Basic", Tier: entity.PlanTierBasic, Price: decimal.RequireFromString("100.00"), EventJoinLimit: 5, EventCreationLimit: 1, IsActive: true},
		premium: entity.SubscriptionPlan{Id: uuid.New(), Name: "Premium", Tier: entity.PlanTierPremium, Price: decimal.RequireFromString("300.00"), EventJoinLimit: entity.UnlimitedUsage, EventCreationLimit: entity.UnlimitedUsage, IsActive: true},
	}
	subId := uuid.New()
	store.Seed(func(w memory.Writer) {
		w.Plan(f.basic)
		w.Plan(f.premium)
		w.Subscription(entity.UserSubscription{
			Id:        subId,
			UserId:    f.userId,
			PlanId:    f.basic.Id,
			StartDate: now.AddDate(0, 0, -10),
			EndDate:   now.AddDate(0, 0, 20),
			IsActive:  true,
		})
		w.SubscriptionTransaction(entity.SubscriptionTransaction{
			Id:             uuid.New(),
			SubscriptionId: subId,
			Amount:         decimal.RequireFromString("100.00"),
			Type:           entity.SubscriptionTransactionPurchase,
			PaymentMethod:  "wallet",
			CreatedAt:      now.AddDate(0, 0, -10),
		})
	})

	processor := payment.NewProcessor(ledger.New(store, m, log), f.gateway, log)
	f.manager = subscription.NewManager(
		store,
		processor,
		memory.NewPlanCache(time.Minute),
		adminEvents.NewNatsPublisher(adminEvents.NewRecorder(), log),
		m,
		log,
		subscription.Options{TrialDays: 14, RenewalWindowDays: 7},
	)
	f.svc = NewPaymentService(testServerKey, nil, f.manager, processor, log)
	return f
}

func (f *paymentFixture) pendingUpgrade(t *testing.T) string {
	t.Helper()
	res, err := f.manager.Upgrade(context.Background(), subscription.ChangeRequest{
		UserId:    f.userId,
		PlanId:    &f.premium.Id,
		Method:    entity.PaymentMethodCard,
		CardToken: "tok",
	})
	require.NoError(t, err)
	require.True(t, res.Pending)
	require.NotEmpty(t, res.OrderId)
	return res.OrderId
}

func (f *paymentFixture) planId(t *testing.T) uuid.UUID {
	t.Helper()
	var planId uuid.UUID
	f.store.Snapshot(func(r memory.Reader) {
		sub, ok := r.Subscription(f.userId)
		require.True(t, ok)
		planId = sub.PlanId
	})
	return planId
}

func (f *paymentFixture) orderStatus(t *testing.T, orderId string) entity.SubscriptionOrderStatus {
	t.Helper()
	var status entity.SubscriptionOrderStatus
	f.store.Snapshot(func(r memory.Reader) {
		order, ok := r.SubscriptionOrder(orderId)
		require.True(t, ok)
		status = order.Status
	})
	return status
}

func (f *paymentFixture) gatewayTransactions(transactionId string) int {
	count := 0
	f.store.Snapshot(func(r memory.Reader) {
		for _, tx := range r.SubscriptionTransactions() {
			if tx.ExternalTransactionId != nil && *tx.ExternalTransactionId == transactionId {
				count++
			}
		}
	})
	return count
}

func signed(orderId, transactionId, status, gross string) *payment.Notification {
	return &payment.Notification{
		OrderId:           orderId,
		TransactionId:     transactionId,
		TransactionStatus: status,
		StatusCode:        "200",
		GrossAmount:       gross,
		SignatureKey:      payment.Signature(orderId, "200", gross, testServerKey),
	}
}

func TestSettledNotificationAppliesUpgradeOnce(t *testing.T) {
	f := newPaymentFixture(t)
	orderId := f.pendingUpgrade(t)
	assert.Equal(t, f.basic.Id, f.planId(t))

	n := signed(orderId, "gw-tx-1", "settlement", "200.00")
	require.NoError(t, f.svc.HandleNotification(context.Background(), n))
	assert.Equal(t, f.premium.Id, f.planId(t))
	assert.Equal(t, entity.SubscriptionOrderPaid, f.orderStatus(t, orderId))

	require.NoError(t, f.svc.HandleNotification(context.Background(), n))
	assert.Equal(t, 1, f.gatewayTransactions("gw-tx-1"))
}

func TestSettledNotificationThatNoLongerAppliesIsRefunded(t *testing.T) {
	f := newPaymentFixture(t)
	orderId := f.pendingUpgrade(t)
	require.NoError(t, f.svc.HandleNotification(context.Background(), signed(orderId, "gw-tx-1", "settlement", "200.00")))

	// A second charge for the same upgrade cannot be applied to a premium subscription.
	require.NoError(t, f.svc.HandleNotification(context.Background(), signed(orderId, "gw-tx-2", "settlement", "200.00")))
	assert.Zero(t, f.gatewayTransactions("gw-tx-2"))
	assert.Equal(t, []string{orderId}, f.gateway.Refunds())
}

func TestUnappliedChargeWithFailingRefundIsStillAcknowledged(t *testing.T) {
	f := newPaymentFixture(t)
	orderId := f.pendingUpgrade(t)
	require.NoError(t, f.svc.HandleNotification(context.Background(), signed(orderId, "gw-tx-1", "settlement", "200.00")))

	f.gateway.Err = errors.New("gateway timeout")
	require.NoError(t, f.svc.HandleNotification(context.Background(), signed(orderId, "gw-tx-2", "settlement", "200.00")))
	assert.Empty(t, f.gateway.Refunds())
}

func TestNotificationRejections(t *testing.T) {
	f := newPaymentFixture(t)
	orderId := f.pendingUpgrade(t)

	forged := signed(orderId, "gw-tx-1", "settlement", "200.00")
	forged.GrossAmount = "1.00"
	err := f.svc.HandleNotification(context.Background(), forged)
	assert.True(t, apperror.IsReason(err, apperror.ReasonInvalidRequest))
	assert.Equal(t, f.basic.Id, f.planId(t))

	err = f.svc.HandleNotification(context.Background(), signed("ORDER-123", "gw-tx-1", "settlement", "200.00"))
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	err = f.svc.HandleNotification(context.Background(), signed(payment.NewSubscriptionOrderId(), "gw-tx-9", "settlement", "200.00"))
	assert.True(t, apperror.IsReason(err, apperror.ReasonOrderNotFound))
	assert.Empty(t, f.gateway.Refunds())

	err = f.svc.HandleNotification(context.Background(), signed(orderId, "gw-tx-1", "settlement", "two hundred"))
	assert.True(t, apperror.IsReason(err, apperror.ReasonInvalidAmount))
	assert.Equal(t, f.basic.Id, f.planId(t))
}

func TestPendingAndFailedNotificationsLeavePlanUnchanged(t *testing.T) {
	f := newPaymentFixture(t)
	orderId := f.pendingUpgrade(t)

	require.NoError(t, f.svc.HandleNotification(context.Background(), signed(orderId, "gw-tx-1", "pending", "200.00")))
	assert.Equal(t, entity.SubscriptionOrderPending, f.orderStatus(t, orderId))

	for _, status := range []string{"deny", "expire"} {
		require.NoError(t, f.svc.HandleNotification(context.Background(), signed(orderId, "gw-tx-1", status, "200.00")))
	}
	assert.Equal(t, entity.SubscriptionOrderFailed, f.orderStatus(t, orderId))
	assert.Equal(t, f.basic.Id, f.planId(t))
	assert.Zero(t, f.gatewayTransactions("gw-tx-1"))
}
