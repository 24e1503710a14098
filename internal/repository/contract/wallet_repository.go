package contract

import (
	"context"

	"eventhub-accounting-be/internal/entity"

	"github.com/google/uuid"
)

type WalletRepository interface {
	Create(ctx context.Context, wallet *entity.Wallet) error
	FindById(ctx context.Context, id uuid.UUID, lock LockMode) (*entity.Wallet, error)
	FindByUserId(ctx context.Context, userId uuid.UUID, lock LockMode) (*entity.Wallet, error)
	FindAllIds(ctx context.Context) ([]uuid.UUID, error)
	// UpdateBalance writes only the balance column.
	UpdateBalance(ctx context.Context, wallet *entity.Wallet) error

	CreateTransaction(ctx context.Context, tx *entity.WalletTransaction) error
	// FindTransactions returns oldest first. limit <= 0 returns everything.
	FindTransactions(ctx context.Context, walletId uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error)
}
