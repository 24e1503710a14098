package implementation

import (
	"context"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/mapper"
	"eventhub-accounting-be/internal/model"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/scope"
	"eventhub-accounting-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WalletRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WalletMapper
}

func NewWalletRepository(db *gorm.DB) contract.WalletRepository {
	return &WalletRepositoryImpl{
		db:     db,
		mapper: mapper.NewWalletMapper(),
	}
}

func (r *WalletRepositoryImpl) Create(ctx context.Context, wallet *entity.Wallet) error {
	m := r.mapper.ToModel(wallet)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*wallet = *r.mapper.ToEntity(m)
	return nil
}

func (r *WalletRepositoryImpl) FindById(ctx context.Context, id uuid.UUID, lock contract.LockMode) (*entity.Wallet, error) {
	var m model.Wallet
	query := applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id}, specification.Lock(lock))
	found, err := first(query, &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WalletRepositoryImpl) FindByUserId(ctx context.Context, userId uuid.UUID, lock contract.LockMode) (*entity.Wallet, error) {
	var m model.Wallet
	query := applySpecifications(r.db.WithContext(ctx), specification.ByUserID{UserID: userId}, specification.Lock(lock))
	found, err := first(query, &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WalletRepositoryImpl) FindAllIds(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&model.Wallet{}).Order("created_at").Pluck("id", &ids).Error; err != nil {
		return nil, translateError(err)
	}
	return ids, nil
}

func (r *WalletRepositoryImpl) UpdateBalance(ctx context.Context, wallet *entity.Wallet) error {
	err := r.db.WithContext(ctx).Model(&model.Wallet{Id: wallet.Id}).
		Update("balance", wallet.Balance).Error
	return translateError(err)
}

func (r *WalletRepositoryImpl) CreateTransaction(ctx context.Context, tx *entity.WalletTransaction) error {
	m := r.mapper.TransactionToModel(tx)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*tx = *r.mapper.TransactionToEntity(m)
	return nil
}

func (r *WalletRepositoryImpl) FindTransactions(ctx context.Context, walletId uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error) {
	var models []*model.WalletTransaction
	query := applySpecifications(r.db.WithContext(ctx), specification.ByWalletID{WalletID: walletId}).
		Scopes(scope.OrderByCreatedAsc)
	if limit > 0 {
		query = specification.Pagination{Limit: limit, Offset: offset}.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, translateError(err)
	}
	txs := make([]*entity.WalletTransaction, len(models))
	for i, m := range models {
		txs[i] = r.mapper.TransactionToEntity(m)
	}
	return txs, nil
}
