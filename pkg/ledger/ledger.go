// Package ledger mutates wallet balances. Every mutation locks the wallet row
// inside the caller's unit of work and appends exactly one transaction record.
package ledger

import (
	"context"
	"fmt"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/unitofwork"
	"eventhub-accounting-be/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const logModule = "LEDGER"

type Entry struct {
	WalletId    uuid.UUID
	Amount      decimal.Decimal
	Type        entity.WalletTransactionType
	Description string
	BookingId   *uuid.UUID
	EventId     *uuid.UUID
}

type Ledger struct {
	uowFactory unitofwork.RepositoryFactory
	metrics    *metrics.Metrics
	logger     logger.ILogger
}

func New(uowFactory unitofwork.RepositoryFactory, m *metrics.Metrics, log logger.ILogger) *Ledger {
	return &Ledger{
		uowFactory: uowFactory,
		metrics:    m,
		logger:     log,
	}
}

var creditTypes = map[entity.WalletTransactionType]bool{
	entity.WalletTransactionDeposit: true,
	entity.WalletTransactionRefund:  true,
	entity.WalletTransactionPayment: true,
}

var debitTypes = map[entity.WalletTransactionType]bool{
	entity.WalletTransactionWithdrawal: true,
	entity.WalletTransactionPayment:    true,
}

// Credit adds e.Amount to the wallet. uow must have an open transaction.
func (l *Ledger) Credit(ctx context.Context, uow unitofwork.UnitOfWork, e Entry) (*entity.WalletTransaction, error) {
	if !creditTypes[e.Type] {
		return nil, fmt.Errorf("ledger: %s cannot be credited", e.Type)
	}
	return l.apply(ctx, uow, e, entity.WalletCredit)
}

// Debit subtracts e.Amount from the wallet, rejecting with
// insufficient_wallet_balance when the balance would go negative.
func (l *Ledger) Debit(ctx context.Context, uow unitofwork.UnitOfWork, e Entry) (*entity.WalletTransaction, error) {
	if !debitTypes[e.Type] {
		return nil, fmt.Errorf("ledger: %s cannot be debited", e.Type)
	}
	return l.apply(ctx, uow, e, entity.WalletDebit)
}

func (l *Ledger) apply(ctx context.Context, uow unitofwork.UnitOfWork, e Entry, direction entity.WalletDirection) (*entity.WalletTransaction, error) {
	if !e.Amount.IsPositive() {
		return nil, apperror.Reject(apperror.ReasonInvalidAmount, "amount must be greater than zero")
	}
	if !e.Amount.Equal(e.Amount.Round(2)) {
		return nil, apperror.Reject(apperror.ReasonInvalidAmount, "amount has more than two decimal places")
	}

	repo := uow.WalletRepository()
	wallet, err := repo.FindById(ctx, e.WalletId, contract.LockForUpdate)
	if err != nil {
		return nil, fmt.Errorf("lock wallet %s: %w", e.WalletId, err)
	}
	if wallet == nil {
		return nil, apperror.NotFound(apperror.ReasonWalletNotFound, "wallet not found")
	}

	switch direction {
	case entity.WalletDebit:
		if wallet.Balance.LessThan(e.Amount) {
			l.logger.Info(logModule, "Debit rejected: insufficient balance", map[string]interface{}{
				"wallet_id": wallet.Id.String(),
				"balance":   wallet.Balance.StringFixed(2),
				"amount":    e.Amount.StringFixed(2),
			})
			return nil, apperror.Reject(apperror.ReasonInsufficientBalance, "insufficient wallet balance")
		}
		wallet.Balance = wallet.Balance.Sub(e.Amount)
	default:
		wallet.Balance = wallet.Balance.Add(e.Amount)
	}

	if err := repo.UpdateBalance(ctx, wallet); err != nil {
		return nil, fmt.Errorf("update wallet %s balance: %w", wallet.Id, err)
	}

	tx := &entity.WalletTransaction{
		Id:          uuid.New(),
		WalletId:    wallet.Id,
		Type:        e.Type,
		Direction:   direction,
		Amount:      e.Amount.Round(2),
		Description: e.Description,
		BookingId:   e.BookingId,
		EventId:     e.EventId,
	}
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("record wallet transaction: %w", err)
	}

	l.metrics.LedgerMutation(string(direction), string(e.Type))
	l.logger.Debug(logModule, "Wallet mutated", map[string]interface{}{
		"wallet_id":   wallet.Id.String(),
		"direction":   string(direction),
		"type":        string(e.Type),
		"amount":      tx.Amount.StringFixed(2),
		"new_balance": wallet.Balance.StringFixed(2),
	})
	return tx, nil
}

// WalletForUser returns the user's wallet under lock, or a wallet_not_found rejection.
func WalletForUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, lock contract.LockMode) (*entity.Wallet, error) {
	wallet, err := uow.WalletRepository().FindByUserId(ctx, userId, lock)
	if err != nil {
		return nil, fmt.Errorf("find wallet of user %s: %w", userId, err)
	}
	if wallet == nil {
		return nil, apperror.NotFound(apperror.ReasonWalletNotFound, "wallet not found")
	}
	return wallet, nil
}

// Deposit credits a wallet in its own unit of work, retrying once on lock contention.
func (l *Ledger) Deposit(ctx context.Context, walletId uuid.UUID, amount decimal.Decimal, description string) (*entity.WalletTransaction, error) {
	var tx *entity.WalletTransaction
	err := apperror.RetryOnConflict(ctx, func(ctx context.Context) error {
		uow := l.uowFactory.NewUnitOfWork(ctx)
		if err := uow.Begin(ctx); err != nil {
			return err
		}
		defer uow.Rollback()

		var err error
		tx, err = l.Credit(ctx, uow, Entry{
			WalletId:    walletId,
			Amount:      amount,
			Type:        entity.WalletTransactionDeposit,
			Description: description,
		})
		if err != nil {
			return err
		}
		return uow.Commit()
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}
