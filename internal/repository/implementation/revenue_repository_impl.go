package implementation

import (
	"context"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/mapper"
	"eventhub-accounting-be/internal/model"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/scope"
	"eventhub-accounting-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RevenueRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EventMapper
}

func NewRevenueRepository(db *gorm.DB) contract.RevenueRepository {
	return &RevenueRepositoryImpl{
		db:     db,
		mapper: mapper.NewEventMapper(),
	}
}

func (r *RevenueRepositoryImpl) Create(ctx context.Context, distribution *entity.RevenueDistribution) error {
	m := r.mapper.DistributionToModel(distribution)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*distribution = *r.mapper.DistributionToEntity(m)
	return nil
}

func (r *RevenueRepositoryImpl) FindByEventId(ctx context.Context, eventId uuid.UUID) (*entity.RevenueDistribution, error) {
	var m model.RevenueDistribution
	found, err := first(applySpecifications(r.db.WithContext(ctx), specification.ByEventID{EventID: eventId}), &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.DistributionToEntity(&m), nil
}

func (r *RevenueRepositoryImpl) FindAll(ctx context.Context, since time.Time, limit, offset int) ([]*entity.RevenueDistribution, int, error) {
	var models []*model.RevenueDistribution
	var total int64

	base := r.db.WithContext(ctx).Model(&model.RevenueDistribution{}).
		Scopes(scope.Since("distributed_at", since))
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	query := applySpecifications(base.Session(&gorm.Session{}),
		specification.OrderBy{Field: "distributed_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, 0, translateError(err)
	}

	result := make([]*entity.RevenueDistribution, len(models))
	for i, m := range models {
		result[i] = r.mapper.DistributionToEntity(m)
	}
	return result, int(total), nil
}

func (r *RevenueRepositoryImpl) SumSince(ctx context.Context, since time.Time) (entity.RevenueTotals, error) {
	var row struct {
		TotalRevenue    decimal.Decimal
		AdminAmount     decimal.Decimal
		OrganizerAmount decimal.Decimal
		Count           int64
	}
	err := r.db.WithContext(ctx).Model(&model.RevenueDistribution{}).
		Scopes(scope.Since("distributed_at", since)).
		Select(`COALESCE(SUM(total_revenue), 0) AS total_revenue,
			COALESCE(SUM(admin_amount), 0) AS admin_amount,
			COALESCE(SUM(organizer_amount), 0) AS organizer_amount,
			COUNT(*) AS count`).
		Scan(&row).Error
	if err != nil {
		return entity.RevenueTotals{}, translateError(err)
	}
	return entity.RevenueTotals{
		TotalRevenue:    row.TotalRevenue,
		AdminAmount:     row.AdminAmount,
		OrganizerAmount: row.OrganizerAmount,
		Count:           int(row.Count),
	}, nil
}
