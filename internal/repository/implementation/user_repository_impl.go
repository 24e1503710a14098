package implementation

import (
	"context"
	"encoding/json"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/mapper"
	"eventhub-accounting-be/internal/model"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var m model.User
	found, err := first(applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id}), &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

type BadgeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewBadgeRepository(db *gorm.DB) contract.BadgeRepository {
	return &BadgeRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *BadgeRepositoryImpl) FindActiveByRole(ctx context.Context, role entity.UserRole) ([]*entity.Badge, error) {
	var models []*model.Badge
	query := applySpecifications(r.db.WithContext(ctx), specification.ActiveOnly{}, specification.Filter("applicable_role", string(role)))
	if err := query.Find(&models).Error; err != nil {
		return nil, translateError(err)
	}
	badges := make([]*entity.Badge, len(models))
	for i, m := range models {
		badges[i] = r.mapper.BadgeToEntity(m)
	}
	return badges, nil
}

func (r *BadgeRepositoryImpl) HasBadge(ctx context.Context, userId, badgeId uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", userId, badgeId).
		Count(&count).Error
	return count > 0, translateError(err)
}

func (r *BadgeRepositoryImpl) Assign(ctx context.Context, userBadge *entity.UserBadge) error {
	m := r.mapper.UserBadgeToModel(userBadge)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	userBadge.Id = m.Id
	return nil
}

type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) contract.NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, record *contract.NotificationRecord) error {
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return err
	}
	m := &model.Notification{
		UserID:     record.UserId,
		TypeCode:   record.TypeCode,
		EntityType: record.EntityType,
		EntityID:   record.EntityId,
		Title:      record.Title,
		Message:    record.Message,
		Metadata:   datatypes.JSON(metadata),
		EmailSent:  record.EmailSent,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	record.CreatedAt = m.CreatedAt
	return nil
}
