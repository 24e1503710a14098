package contract

import (
	"context"
	"time"

	"eventhub-accounting-be/internal/entity"

	"github.com/google/uuid"
)

type RevenueRepository interface {
	Create(ctx context.Context, distribution *entity.RevenueDistribution) error
	FindByEventId(ctx context.Context, eventId uuid.UUID) (*entity.RevenueDistribution, error)
	// FindAll lists distributions newest first, at or after since when it is set.
	FindAll(ctx context.Context, since time.Time, limit, offset int) ([]*entity.RevenueDistribution, int, error)
	SumSince(ctx context.Context, since time.Time) (entity.RevenueTotals, error)
}
