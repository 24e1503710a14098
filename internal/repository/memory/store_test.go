package memory

import (
	"context"
	"errors"
	"testing"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollbackDiscardsWrites(t *testing.T) {
	store := NewStore()
	walletId := uuid.New()
	store.Seed(func(w Writer) {
		w.Wallet(entity.Wallet{Id: walletId, UserId: uuid.New(), Balance: decimal.NewFromInt(10)})
	})

	ctx := context.Background()
	uow := store.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	wallet, err := uow.WalletRepository().FindById(ctx, walletId, contract.LockForUpdate)
	require.NoError(t, err)
	wallet.Balance = decimal.NewFromInt(99)
	require.NoError(t, uow.WalletRepository().UpdateBalance(ctx, wallet))
	require.NoError(t, uow.Rollback())

	store.Snapshot(func(r Reader) {
		assert.True(t, r.Wallet(walletId).Balance.Equal(decimal.NewFromInt(10)))
	})
}

func TestCommitPublishesWrites(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	uow := store.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	wallet := &entity.Wallet{UserId: uuid.New(), Balance: decimal.Zero}
	require.NoError(t, uow.WalletRepository().Create(ctx, wallet))
	require.NoError(t, uow.Commit())
	require.NoError(t, uow.Rollback())

	store.Snapshot(func(r Reader) {
		assert.Equal(t, wallet.UserId, r.Wallet(wallet.Id).UserId)
	})
}

func TestFailHookAbortsWrite(t *testing.T) {
	store := NewStore()
	boom := errors.New("disk full")
	store.FailOn(func(op string) error {
		if op == "wallet.create" {
			return boom
		}
		return nil
	})

	ctx := context.Background()
	err := store.NewUnitOfWork(ctx).WalletRepository().Create(ctx, &entity.Wallet{UserId: uuid.New()})
	assert.ErrorIs(t, err, boom)
}
