package service

import (
	"context"

	"eventhub-accounting-be/internal/dto"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/unitofwork"
	"eventhub-accounting-be/pkg/admin/mapper"
	"eventhub-accounting-be/pkg/ledger"

	"github.com/google/uuid"
)

type WalletService interface {
	GetWallet(ctx context.Context, userId uuid.UUID) (*dto.WalletResponse, error)
	GetTransactions(ctx context.Context, userId uuid.UUID, req *dto.WalletTransactionListRequest) (*dto.WalletTransactionListResponse, error)
}

type walletService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewWalletService(uowFactory unitofwork.RepositoryFactory) WalletService {
	return &walletService{
		uowFactory: uowFactory,
	}
}

func (s *walletService) GetWallet(ctx context.Context, userId uuid.UUID) (*dto.WalletResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	wallet, err := ledger.WalletForUser(ctx, uow, userId, contract.LockNone)
	if err != nil {
		return nil, err
	}
	return mapper.WalletToResponse(wallet), nil
}

// GetTransactions pages through the wallet's log, oldest first.
func (s *walletService) GetTransactions(ctx context.Context, userId uuid.UUID, req *dto.WalletTransactionListRequest) (*dto.WalletTransactionListResponse, error) {
	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	wallet, err := ledger.WalletForUser(ctx, uow, userId, contract.LockNone)
	if err != nil {
		return nil, err
	}
	txs, err := uow.WalletRepository().FindTransactions(ctx, wallet.Id, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	return &dto.WalletTransactionListResponse{
		Items: mapper.WalletTransactionsToResponse(txs),
		Page:  page,
		Limit: limit,
	}, nil
}
