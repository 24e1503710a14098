package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/model"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/unitofwork"
	"eventhub-accounting-be/pkg/database"
	"eventhub-accounting-be/pkg/ledger"
	"eventhub-accounting-be/pkg/metrics"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err, "Failed to connect to DB")
	require.NoError(t, database.AutoMigrate(gormDB))
	return gormDB
}

func TestGormConnection(t *testing.T) {
	gormDB := openDB(t)

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.SubscriptionRepository())
	assert.NotNil(t, uow.WalletRepository())

	sqlDB, _ := gormDB.DB()
	assert.NoError(t, sqlDB.Ping())
}

func TestWalletLedgerRoundTrip(t *testing.T) {
	gormDB := openDB(t)
	ctx := context.Background()

	user := model.User{
		Id:       uuid.New(),
		Email:    "test-integration-" + uuid.New().String() + "@example.com",
		FullName: "Integration Test User",
		Role:     string(entity.UserRoleUser),
	}
	require.NoError(t, gormDB.Create(&user).Error)
	t.Cleanup(func() {
		gormDB.Exec("DELETE FROM wallet_transactions WHERE wallet_id IN (SELECT id FROM wallets WHERE user_id = ?)", user.Id)
		gormDB.Exec("DELETE FROM wallets WHERE user_id = ?", user.Id)
		gormDB.Exec("DELETE FROM users WHERE id = ?", user.Id)
	})

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	wallet := &entity.Wallet{Id: uuid.New(), UserId: user.Id, Balance: decimal.Zero, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	require.NoError(t, uowFactory.NewUnitOfWork(ctx).WalletRepository().Create(ctx, wallet))

	led := ledger.New(uowFactory, metrics.Nop(), logger.NewNopLogger())
	_, err := led.Deposit(ctx, wallet.Id, decimal.RequireFromString("150.00"), "integration top-up")
	require.NoError(t, err)

	uow := uowFactory.NewUnitOfWork(ctx)
	stored, err := uow.WalletRepository().FindByUserId(ctx, user.Id, contract.LockNone)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Balance.Equal(decimal.RequireFromString("150.00")))

	rec, err := led.Reconcile(ctx, wallet.Id)
	require.NoError(t, err)
	assert.True(t, rec.Balanced)
	assert.Equal(t, 1, rec.Transactions)
}
