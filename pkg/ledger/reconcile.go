package ledger

import (
	"context"
	"fmt"

	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Reconciliation struct {
	WalletId       uuid.UUID       `json:"wallet_id"`
	StoredBalance  decimal.Decimal `json:"stored_balance"`
	ReplayedTotal  decimal.Decimal `json:"replayed_total"`
	Transactions   int             `json:"transactions"`
	Balanced       bool            `json:"balanced"`
	MinimumBalance decimal.Decimal `json:"minimum_balance"`
}

// Reconcile replays a wallet's transaction log from zero and compares the
// result with the stored balance. The replay must never dip below zero either.
func (l *Ledger) Reconcile(ctx context.Context, walletId uuid.UUID) (Reconciliation, error) {
	uow := l.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return Reconciliation{}, err
	}
	defer uow.Rollback()

	repo := uow.WalletRepository()
	wallet, err := repo.FindById(ctx, walletId, contract.LockNone)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("find wallet %s: %w", walletId, err)
	}
	if wallet == nil {
		return Reconciliation{}, apperror.NotFound(apperror.ReasonWalletNotFound, "wallet not found")
	}

	txs, err := repo.FindTransactions(ctx, walletId, 0, 0)
	if err != nil {
		return Reconciliation{}, fmt.Errorf("load transactions of wallet %s: %w", walletId, err)
	}

	running := decimal.Zero
	minimum := decimal.Zero
	for _, tx := range txs {
		running = running.Add(tx.Signed())
		if running.LessThan(minimum) {
			minimum = running
		}
	}

	rec := Reconciliation{
		WalletId:       walletId,
		StoredBalance:  wallet.Balance,
		ReplayedTotal:  running,
		Transactions:   len(txs),
		Balanced:       running.Equal(wallet.Balance) && !minimum.IsNegative(),
		MinimumBalance: minimum,
	}
	if !rec.Balanced {
		l.logger.Error(logModule, "Wallet does not reconcile", map[string]interface{}{
			"wallet_id":      walletId.String(),
			"stored_balance": wallet.Balance.StringFixed(2),
			"replayed_total": running.StringFixed(2),
			"minimum":        minimum.StringFixed(2),
		})
	}
	return rec, nil
}

// ReconcileAll checks every wallet and returns the ones that do not balance.
func (l *Ledger) ReconcileAll(ctx context.Context) (checked int, mismatched []Reconciliation, err error) {
	ids, err := l.uowFactory.NewUnitOfWork(ctx).WalletRepository().FindAllIds(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("list wallets: %w", err)
	}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return checked, mismatched, err
		}
		rec, err := l.Reconcile(ctx, id)
		if err != nil {
			return checked, mismatched, err
		}
		checked++
		if !rec.Balanced {
			mismatched = append(mismatched, rec)
		}
	}
	return checked, mismatched, nil
}
