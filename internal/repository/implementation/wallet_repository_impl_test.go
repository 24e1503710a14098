package implementation

import (
	"context"
	"testing"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/pkg/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMockedDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
	})

	db, err := database.NewGormDBFromConn(conn)
	require.NoError(t, err)
	return db, mock
}

func newMockedWallets(t *testing.T) (contract.WalletRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newMockedDB(t)
	return NewWalletRepository(db), mock
}

func TestWalletFindByUserIdTakesRowLock(t *testing.T) {
	repo, mock := newMockedWallets(t)
	userId, walletId := uuid.New(), uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "user_id", "balance", "created_at", "updated_at"}).
		AddRow(walletId.String(), userId.String(), "125.50", now, now)
	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE user_id = \$1 ORDER BY "wallets"\."id" LIMIT .* FOR UPDATE`).
		WillReturnRows(rows)

	wallet, err := repo.FindByUserId(context.Background(), userId, contract.LockForUpdate)
	require.NoError(t, err)
	require.NotNil(t, wallet)
	assert.Equal(t, walletId, wallet.Id)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("125.50")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletFindByIdMissingRowIsNil(t *testing.T) {
	repo, mock := newMockedWallets(t)

	mock.ExpectQuery(`SELECT \* FROM "wallets" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance", "created_at", "updated_at"}))

	wallet, err := repo.FindById(context.Background(), uuid.New(), contract.LockNone)
	require.NoError(t, err)
	assert.Nil(t, wallet)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletUpdateBalanceDeadlockIsConflict(t *testing.T) {
	repo, mock := newMockedWallets(t)

	mock.ExpectExec(`UPDATE "wallets" SET "balance"=\$1`).
		WillReturnError(&pgconn.PgError{Code: pgDeadlockDetected, Message: "deadlock detected"})

	err := repo.UpdateBalance(context.Background(), &entity.Wallet{Id: uuid.New(), Balance: decimal.NewFromInt(10)})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletFindTransactionsOldestFirst(t *testing.T) {
	repo, mock := newMockedWallets(t)
	walletId := uuid.New()
	older := time.Now().Add(-time.Hour)

	rows := sqlmock.NewRows([]string{"id", "wallet_id", "type", "direction", "amount", "description", "booking_id", "event_id", "created_at"}).
		AddRow(uuid.New().String(), walletId.String(), string(entity.WalletTransactionDeposit), string(entity.WalletCredit), "100.00", "top-up", nil, nil, older).
		AddRow(uuid.New().String(), walletId.String(), string(entity.WalletTransactionPayment), string(entity.WalletDebit), "40.00", "ticket", nil, nil, older.Add(time.Minute))
	mock.ExpectQuery(`SELECT \* FROM "wallet_transactions" WHERE wallet_id = \$1 ORDER BY created_at ASC LIMIT`).
		WillReturnRows(rows)

	txs, err := repo.FindTransactions(context.Background(), walletId, 20, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, entity.WalletCredit, txs[0].Direction)
	assert.True(t, txs[1].Amount.Equal(decimal.NewFromInt(40)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
