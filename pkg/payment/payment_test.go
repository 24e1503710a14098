package payment

import (
	"context"
	"errors"
	"testing"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/memory"
	"eventhub-accounting-be/pkg/ledger"
	"eventhub-accounting-be/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProcessor(store *memory.Store, gw Gateway) *Processor {
	log := logger.NewNopLogger()
	return NewProcessor(ledger.New(store, metrics.Nop(), log), gw, log)
}

func seedWallet(store *memory.Store, balance string) (uuid.UUID, uuid.UUID) {
	userId, walletId := uuid.New(), uuid.New()
	store.Seed(func(w memory.Writer) {
		w.Wallet(entity.Wallet{Id: walletId, UserId: userId, Balance: decimal.RequireFromString(balance)})
	})
	return userId, walletId
}

func collect(t *testing.T, store *memory.Store, p *Processor, req Request) (*Result, error) {
	t.Helper()
	ctx := context.Background()
	uow := store.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	res, err := p.Collect(ctx, uow, req)
	if err != nil {
		return nil, err
	}
	require.NoError(t, uow.Commit())
	return res, nil
}

func TestCollectWallet(t *testing.T) {
	store := memory.NewStore()
	p := newProcessor(store, nil)
	userId, walletId := seedWallet(store, "150.00")

	res, err := collect(t, store, p, Request{
		Method:      entity.PaymentMethodWallet,
		UserId:      userId,
		Amount:      decimal.RequireFromString("100.00"),
		Description: "Ticket purchase",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, res.Status)
	require.NotNil(t, res.WalletTransaction)
	assert.Equal(t, entity.WalletDebit, res.WalletTransaction.Direction)

	store.Snapshot(func(r memory.Reader) {
		assert.Equal(t, "50.00", r.Wallet(walletId).Balance.StringFixed(2))
	})

	_, err = collect(t, store, p, Request{
		Method: entity.PaymentMethodWallet,
		UserId: userId,
		Amount: decimal.RequireFromString("50.01"),
	})
	assert.True(t, apperror.IsReason(err, apperror.ReasonInsufficientBalance))
}

func TestCollectWalletWithoutWallet(t *testing.T) {
	store := memory.NewStore()
	p := newProcessor(store, nil)

	_, err := collect(t, store, p, Request{Method: entity.PaymentMethodWallet, UserId: uuid.New(), Amount: decimal.NewFromInt(1)})
	assert.True(t, apperror.IsReason(err, apperror.ReasonWalletNotFound))
}

func TestCollectCard(t *testing.T) {
	tests := []struct {
		name    string
		status  ChargeStatus
		gwErr   error
		want    Status
		wantErr apperror.Kind
	}{
		{name: "captured", status: ChargeSucceeded, want: StatusPaid},
		{name: "pending", status: ChargePending, want: StatusPending},
		{name: "declined", status: ChargeDeclined, wantErr: apperror.KindExternalPayment},
		{name: "gateway down", gwErr: errors.New("timeout"), wantErr: apperror.KindExternalPayment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			gw := NewStubGateway(tt.status)
			gw.Err = tt.gwErr
			p := newProcessor(store, gw)

			res, err := collect(t, store, p, Request{
				Method:    entity.PaymentMethodCard,
				UserId:    uuid.New(),
				Amount:    decimal.NewFromInt(300),
				OrderId:   "BKG-1",
				CardToken: "tok",
			})
			if tt.wantErr != "" {
				assert.True(t, apperror.IsKind(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Status)
			assert.NotEmpty(t, res.GatewayTxId)
			require.Len(t, gw.Charges(), 1)
			assert.Equal(t, "BKG-1", gw.Charges()[0].OrderId)
		})
	}
}

func TestCollectRejectsUnsupportedMethodAndZeroAmount(t *testing.T) {
	store := memory.NewStore()
	p := newProcessor(store, NewStubGateway(ChargeSucceeded))

	_, err := collect(t, store, p, Request{Method: "bank_transfer", Amount: decimal.NewFromInt(1)})
	assert.True(t, apperror.IsReason(err, apperror.ReasonUnsupportedPayment))

	_, err = collect(t, store, p, Request{Method: entity.PaymentMethodWallet, Amount: decimal.Zero})
	assert.True(t, apperror.IsReason(err, apperror.ReasonInvalidAmount))

	_, err = collect(t, store, p, Request{Method: entity.PaymentMethodCard, Amount: decimal.NewFromInt(1)})
	assert.True(t, apperror.IsReason(err, apperror.ReasonPaymentDeclined))
}

func TestNotificationSignature(t *testing.T) {
	n := Notification{OrderId: "BKG-42", StatusCode: "200", GrossAmount: "300000.00", TransactionStatus: "settlement"}
	n.SignatureKey = Signature(n.OrderId, n.StatusCode, n.GrossAmount, "server-key")

	assert.True(t, n.VerifySignature("server-key"))
	assert.False(t, n.VerifySignature("other-key"))
	assert.False(t, n.VerifySignature(""))

	n.GrossAmount = "1.00"
	assert.False(t, n.VerifySignature("server-key"))
}

func TestNotificationOutcome(t *testing.T) {
	cases := map[string]NotificationOutcome{
		"settlement": NotificationSettled,
		"capture":    NotificationSettled,
		"pending":    NotificationPending,
		"deny":       NotificationFailed,
		"expire":     NotificationFailed,
		"refund":     NotificationRefunded,
	}
	for status, want := range cases {
		n := Notification{TransactionStatus: status, FraudStatus: "accept"}
		assert.Equal(t, want, n.Outcome(), status)
	}

	challenged := Notification{TransactionStatus: "capture", FraudStatus: "challenge"}
	assert.Equal(t, NotificationPending, challenged.Outcome())
}

func TestSubscriptionOrderId(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewSubscriptionOrderId()
		assert.LessOrEqual(t, len(id), 50)
		assert.True(t, IsSubscriptionOrderId(id))
		_, dup := seen[id]
		require.False(t, dup, "order id %s reused after %d attempts", id, i)
		seen[id] = struct{}{}
	}

	assert.False(t, IsSubscriptionOrderId(BookingOrderId(uuid.New())))
	assert.False(t, IsSubscriptionOrderId("SUB-not-a-uuid"))

	bookingId := uuid.New()
	got, ok := ParseBookingOrderId(BookingOrderId(bookingId))
	assert.True(t, ok)
	assert.Equal(t, bookingId, got)
}
