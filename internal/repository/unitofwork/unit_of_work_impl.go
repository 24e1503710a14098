package unitofwork

import (
	"context"
	"fmt"

	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

// Rollback is safe to defer after Commit.
func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.getDB())
}

func (u *UnitOfWorkImpl) EventRepository() contract.EventRepository {
	return implementation.NewEventRepository(u.getDB())
}

func (u *UnitOfWorkImpl) TicketRepository() contract.TicketRepository {
	return implementation.NewTicketRepository(u.getDB())
}

func (u *UnitOfWorkImpl) BookingRepository() contract.BookingRepository {
	return implementation.NewBookingRepository(u.getDB())
}

func (u *UnitOfWorkImpl) CouponRepository() contract.CouponRepository {
	return implementation.NewCouponRepository(u.getDB())
}

func (u *UnitOfWorkImpl) WalletRepository() contract.WalletRepository {
	return implementation.NewWalletRepository(u.getDB())
}

func (u *UnitOfWorkImpl) RevenueRepository() contract.RevenueRepository {
	return implementation.NewRevenueRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SubscriptionRepository() contract.SubscriptionRepository {
	return implementation.NewSubscriptionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) BadgeRepository() contract.BadgeRepository {
	return implementation.NewBadgeRepository(u.getDB())
}
