package contract

import (
	"context"

	"eventhub-accounting-be/internal/entity"

	"github.com/google/uuid"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	Update(ctx context.Context, booking *entity.Booking) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindById(ctx context.Context, id uuid.UUID, lock LockMode) (*entity.Booking, error)
	FindByGatewayReference(ctx context.Context, reference string, lock LockMode) (*entity.Booking, error)

	// SumPaidRevenue aggregates subtotal and total over paid bookings of an event.
	SumPaidRevenue(ctx context.Context, eventId uuid.UUID) (entity.BookingRevenue, error)
	CountPaidByUser(ctx context.Context, userId uuid.UUID) (int, error)

	CreatePurchase(ctx context.Context, purchase *entity.TicketPurchase) error
	UpdatePurchase(ctx context.Context, purchase *entity.TicketPurchase) error
	DeletePurchase(ctx context.Context, id uuid.UUID) error
	FindPurchasesByBooking(ctx context.Context, bookingId uuid.UUID) ([]*entity.TicketPurchase, error)
}

type CouponRepository interface {
	Create(ctx context.Context, coupon *entity.Coupon) error
	Update(ctx context.Context, coupon *entity.Coupon) error
	FindByCode(ctx context.Context, code string, lock LockMode) (*entity.Coupon, error)
	HasRedeemed(ctx context.Context, couponId, userId uuid.UUID) (bool, error)
	CreateRedemption(ctx context.Context, redemption *entity.CouponRedemption) error
}
