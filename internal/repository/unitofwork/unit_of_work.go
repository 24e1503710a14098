package unitofwork

import (
	"context"

	"eventhub-accounting-be/internal/repository/contract"
)

// UnitOfWork groups repository calls into one transaction. Reads with a
// LockMode other than LockNone only make sense after Begin.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	EventRepository() contract.EventRepository
	TicketRepository() contract.TicketRepository
	BookingRepository() contract.BookingRepository
	CouponRepository() contract.CouponRepository
	WalletRepository() contract.WalletRepository
	RevenueRepository() contract.RevenueRepository
	SubscriptionRepository() contract.SubscriptionRepository
	BadgeRepository() contract.BadgeRepository
}
