package mapper

import (
	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/model"
)

type WalletMapper struct{}

func NewWalletMapper() *WalletMapper {
	return &WalletMapper{}
}

func (m *WalletMapper) ToEntity(w *model.Wallet) *entity.Wallet {
	if w == nil {
		return nil
	}
	return &entity.Wallet{
		Id:        w.Id,
		UserId:    w.UserId,
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func (m *WalletMapper) ToModel(w *entity.Wallet) *model.Wallet {
	if w == nil {
		return nil
	}
	return &model.Wallet{
		Id:        w.Id,
		UserId:    w.UserId,
		Balance:   w.Balance,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func (m *WalletMapper) TransactionToEntity(t *model.WalletTransaction) *entity.WalletTransaction {
	if t == nil {
		return nil
	}
	return &entity.WalletTransaction{
		Id:          t.Id,
		WalletId:    t.WalletId,
		Type:        entity.WalletTransactionType(t.Type),
		Direction:   entity.WalletDirection(t.Direction),
		Amount:      t.Amount,
		Description: t.Description,
		BookingId:   t.BookingId,
		EventId:     t.EventId,
		CreatedAt:   t.CreatedAt,
	}
}

func (m *WalletMapper) TransactionToModel(t *entity.WalletTransaction) *model.WalletTransaction {
	if t == nil {
		return nil
	}
	return &model.WalletTransaction{
		Id:          t.Id,
		WalletId:    t.WalletId,
		Type:        string(t.Type),
		Direction:   string(t.Direction),
		Amount:      t.Amount,
		Description: t.Description,
		BookingId:   t.BookingId,
		EventId:     t.EventId,
		CreatedAt:   t.CreatedAt,
	}
}
