package mapper

import (
	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:                u.Id,
		Email:             u.Email,
		FullName:          u.FullName,
		Role:              entity.UserRole(u.Role),
		OrganizerVerified: u.OrganizerVerified,
		CreatedAt:         u.CreatedAt,
	}
}

func (m *UserMapper) BadgeToEntity(b *model.Badge) *entity.Badge {
	if b == nil {
		return nil
	}
	return &entity.Badge{
		Id:             b.Id,
		Name:           b.Name,
		Description:    b.Description,
		TargetCount:    b.TargetCount,
		ApplicableRole: entity.UserRole(b.ApplicableRole),
		CriteriaType:   entity.BadgeCriteria(b.CriteriaType),
		IsActive:       b.IsActive,
	}
}

func (m *UserMapper) UserBadgeToModel(b *entity.UserBadge) *model.UserBadge {
	if b == nil {
		return nil
	}
	return &model.UserBadge{
		Id:         b.Id,
		UserId:     b.UserId,
		BadgeId:    b.BadgeId,
		DateEarned: b.DateEarned,
	}
}
