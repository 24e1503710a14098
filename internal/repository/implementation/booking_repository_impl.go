package implementation

import (
	"context"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/mapper"
	"eventhub-accounting-be/internal/model"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BookingMapper
}

func NewBookingRepository(db *gorm.DB) contract.BookingRepository {
	return &BookingRepositoryImpl{
		db:     db,
		mapper: mapper.NewBookingMapper(),
	}
}

func (r *BookingRepositoryImpl) Create(ctx context.Context, booking *entity.Booking) error {
	m := r.mapper.ToModel(booking)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*booking = *r.mapper.ToEntity(m)
	return nil
}

func (r *BookingRepositoryImpl) Update(ctx context.Context, booking *entity.Booking) error {
	m := r.mapper.ToModel(booking)
	return translateError(r.db.WithContext(ctx).Save(m).Error)
}

func (r *BookingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Delete(&model.Booking{}, "id = ?", id).Error)
}

func (r *BookingRepositoryImpl) FindById(ctx context.Context, id uuid.UUID, lock contract.LockMode) (*entity.Booking, error) {
	var m model.Booking
	query := applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id}, specification.Lock(lock))
	found, err := first(query, &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BookingRepositoryImpl) FindByGatewayReference(ctx context.Context, reference string, lock contract.LockMode) (*entity.Booking, error) {
	var m model.Booking
	query := applySpecifications(
		r.db.WithContext(ctx),
		specification.Filter("gateway_reference", reference),
		specification.Lock(lock),
	)
	found, err := first(query, &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *BookingRepositoryImpl) SumPaidRevenue(ctx context.Context, eventId uuid.UUID) (entity.BookingRevenue, error) {
	var row struct {
		Subtotal decimal.Decimal
		Total    decimal.Decimal
	}
	query := applySpecifications(
		r.db.WithContext(ctx).Model(&model.Booking{}),
		specification.ByEventID{EventID: eventId},
		specification.PaidBookings{},
	)
	err := query.
		Select("COALESCE(SUM(subtotal), 0) AS subtotal, COALESCE(SUM(total), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return entity.BookingRevenue{}, translateError(err)
	}
	return entity.BookingRevenue{Subtotal: row.Subtotal, Total: row.Total}, nil
}

func (r *BookingRepositoryImpl) CountPaidByUser(ctx context.Context, userId uuid.UUID) (int, error) {
	var count int64
	query := applySpecifications(
		r.db.WithContext(ctx).Model(&model.Booking{}),
		specification.ByUserID{UserID: userId},
		specification.PaidBookings{},
	)
	err := query.Count(&count).Error
	return int(count), translateError(err)
}

func (r *BookingRepositoryImpl) CreatePurchase(ctx context.Context, purchase *entity.TicketPurchase) error {
	m := r.mapper.PurchaseToModel(purchase)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*purchase = *r.mapper.PurchaseToEntity(m)
	return nil
}

func (r *BookingRepositoryImpl) UpdatePurchase(ctx context.Context, purchase *entity.TicketPurchase) error {
	m := r.mapper.PurchaseToModel(purchase)
	return translateError(r.db.WithContext(ctx).Save(m).Error)
}

func (r *BookingRepositoryImpl) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Delete(&model.TicketPurchase{}, "id = ?", id).Error)
}

func (r *BookingRepositoryImpl) FindPurchasesByBooking(ctx context.Context, bookingId uuid.UUID) ([]*entity.TicketPurchase, error) {
	var models []*model.TicketPurchase
	query := applySpecifications(
		r.db.WithContext(ctx),
		specification.Filter("booking_id", bookingId),
		specification.OrderBy{Field: "created_at"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, translateError(err)
	}
	purchases := make([]*entity.TicketPurchase, len(models))
	for i, m := range models {
		purchases[i] = r.mapper.PurchaseToEntity(m)
	}
	return purchases, nil
}

type CouponRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BookingMapper
}

func NewCouponRepository(db *gorm.DB) contract.CouponRepository {
	return &CouponRepositoryImpl{
		db:     db,
		mapper: mapper.NewBookingMapper(),
	}
}

func (r *CouponRepositoryImpl) Create(ctx context.Context, coupon *entity.Coupon) error {
	m := r.mapper.CouponToModel(coupon)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*coupon = *r.mapper.CouponToEntity(m)
	return nil
}

func (r *CouponRepositoryImpl) Update(ctx context.Context, coupon *entity.Coupon) error {
	m := r.mapper.CouponToModel(coupon)
	return translateError(r.db.WithContext(ctx).Save(m).Error)
}

func (r *CouponRepositoryImpl) FindByCode(ctx context.Context, code string, lock contract.LockMode) (*entity.Coupon, error) {
	var m model.Coupon
	query := applySpecifications(r.db.WithContext(ctx), specification.Filter("code", code), specification.Lock(lock))
	found, err := first(query, &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.CouponToEntity(&m), nil
}

func (r *CouponRepositoryImpl) HasRedeemed(ctx context.Context, couponId, userId uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CouponRedemption{}).
		Where("coupon_id = ? AND user_id = ?", couponId, userId).
		Count(&count).Error
	return count > 0, translateError(err)
}

func (r *CouponRepositoryImpl) CreateRedemption(ctx context.Context, redemption *entity.CouponRedemption) error {
	m := &model.CouponRedemption{
		Id:        redemption.Id,
		CouponId:  redemption.CouponId,
		UserId:    redemption.UserId,
		BookingId: redemption.BookingId,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	redemption.Id = m.Id
	redemption.RedeemedAt = m.RedeemedAt
	return nil
}
