package contract

import (
	"context"
	"time"

	"eventhub-accounting-be/internal/entity"

	"github.com/google/uuid"
)

type UserRepository interface {
	FindById(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

type BadgeRepository interface {
	FindActiveByRole(ctx context.Context, role entity.UserRole) ([]*entity.Badge, error)
	HasBadge(ctx context.Context, userId, badgeId uuid.UUID) (bool, error)
	Assign(ctx context.Context, userBadge *entity.UserBadge) error
}

type NotificationRecord struct {
	UserId     uuid.UUID
	TypeCode   string
	EntityType string
	EntityId   *uuid.UUID
	Title      string
	Message    string
	Metadata   map[string]interface{}
	EmailSent  bool
	CreatedAt  time.Time
}

type NotificationRepository interface {
	Create(ctx context.Context, record *NotificationRecord) error
}
