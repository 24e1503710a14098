package ledger

import (
	"context"
	"sync"
	"testing"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/memory"
	"eventhub-accounting-be/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLedger(t *testing.T, balance string) (*Ledger, *memory.Store, uuid.UUID) {
	t.Helper()
	store := memory.NewStore()
	walletId := uuid.New()
	store.Seed(func(w memory.Writer) {
		w.Wallet(entity.Wallet{Id: walletId, UserId: uuid.New(), Balance: decimal.Zero})
	})
	l := New(store, metrics.Nop(), logger.NewNopLogger())
	if balance != "0" {
		_, err := l.Deposit(context.Background(), walletId, dec(balance), "opening balance")
		require.NoError(t, err)
	}
	return l, store, walletId
}

func mutate(t *testing.T, l *Ledger, store *memory.Store, debit bool, e Entry) error {
	t.Helper()
	ctx := context.Background()
	uow := store.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	var err error
	if debit {
		_, err = l.Debit(ctx, uow, e)
	} else {
		_, err = l.Credit(ctx, uow, e)
	}
	if err != nil {
		return err
	}
	return uow.Commit()
}

func TestDebitRejectsInsufficientBalance(t *testing.T) {
	l, store, walletId := newLedger(t, "50.00")

	err := mutate(t, l, store, true, Entry{WalletId: walletId, Amount: dec("50.01"), Type: entity.WalletTransactionPayment})
	assert.True(t, apperror.IsReason(err, apperror.ReasonInsufficientBalance))

	store.Snapshot(func(r memory.Reader) {
		assert.True(t, r.Wallet(walletId).Balance.Equal(dec("50.00")))
		assert.Len(t, r.WalletTransactions(), 1)
	})
}

func TestDebitToExactlyZero(t *testing.T) {
	l, store, walletId := newLedger(t, "50.00")

	err := mutate(t, l, store, true, Entry{WalletId: walletId, Amount: dec("50.00"), Type: entity.WalletTransactionWithdrawal})
	require.NoError(t, err)

	store.Snapshot(func(r memory.Reader) {
		assert.True(t, r.Wallet(walletId).Balance.IsZero())
	})
}

func TestRejectsNonPositiveAndSubCentAmounts(t *testing.T) {
	l, store, walletId := newLedger(t, "0")

	for _, amount := range []string{"0", "-5", "1.005"} {
		err := mutate(t, l, store, false, Entry{WalletId: walletId, Amount: dec(amount), Type: entity.WalletTransactionDeposit})
		assert.True(t, apperror.IsReason(err, apperror.ReasonInvalidAmount), amount)
	}
}

func TestRejectsWrongDirectionForType(t *testing.T) {
	l, store, walletId := newLedger(t, "10.00")

	err := mutate(t, l, store, false, Entry{WalletId: walletId, Amount: dec("1"), Type: entity.WalletTransactionWithdrawal})
	assert.Error(t, err)

	err = mutate(t, l, store, true, Entry{WalletId: walletId, Amount: dec("1"), Type: entity.WalletTransactionRefund})
	assert.Error(t, err)
}

func TestMissingWallet(t *testing.T) {
	l, store, _ := newLedger(t, "0")

	err := mutate(t, l, store, false, Entry{WalletId: uuid.New(), Amount: dec("1"), Type: entity.WalletTransactionDeposit})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestReplayMatchesBalance(t *testing.T) {
	l, store, walletId := newLedger(t, "100.00")
	bookingId := uuid.New()

	steps := []struct {
		debit bool
		entry Entry
	}{
		{true, Entry{Amount: dec("30.50"), Type: entity.WalletTransactionPayment, BookingId: &bookingId}},
		{false, Entry{Amount: dec("10.25"), Type: entity.WalletTransactionRefund, BookingId: &bookingId}},
		{false, Entry{Amount: dec("9300.00"), Type: entity.WalletTransactionPayment}},
		{true, Entry{Amount: dec("1000.00"), Type: entity.WalletTransactionWithdrawal}},
	}
	for _, s := range steps {
		s.entry.WalletId = walletId
		require.NoError(t, mutate(t, l, store, s.debit, s.entry))
	}

	rec, err := l.Reconcile(context.Background(), walletId)
	require.NoError(t, err)
	assert.True(t, rec.Balanced)
	assert.Equal(t, 5, rec.Transactions)
	assert.True(t, rec.StoredBalance.Equal(dec("8379.75")), rec.StoredBalance.String())
	assert.True(t, rec.ReplayedTotal.Equal(rec.StoredBalance))

	checked, mismatched, err := l.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, checked)
	assert.Empty(t, mismatched)
}

func TestReconcileDetectsDrift(t *testing.T) {
	l, store, walletId := newLedger(t, "20.00")
	store.Seed(func(w memory.Writer) {
		w.Wallet(entity.Wallet{Id: walletId, Balance: dec("25.00")})
	})

	rec, err := l.Reconcile(context.Background(), walletId)
	require.NoError(t, err)
	assert.False(t, rec.Balanced)
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	l, store, walletId := newLedger(t, "100.00")

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, rejected := 0, 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx := context.Background()
			uow := store.NewUnitOfWork(ctx)
			if err := uow.Begin(ctx); err != nil {
				return
			}
			defer uow.Rollback()
			_, err := l.Debit(ctx, uow, Entry{WalletId: walletId, Amount: dec("15.00"), Type: entity.WalletTransactionPayment})
			if err == nil {
				err = uow.Commit()
			}
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if apperror.IsReason(err, apperror.ReasonInsufficientBalance) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 6, succeeded)
	assert.Equal(t, workers-6, rejected)

	rec, err := l.Reconcile(context.Background(), walletId)
	require.NoError(t, err)
	assert.True(t, rec.Balanced)
	assert.True(t, rec.StoredBalance.Equal(dec("10.00")))
}
