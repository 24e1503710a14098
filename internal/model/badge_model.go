package model

import (
	"time"

	"github.com/google/uuid"
)

type Badge struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description    string    `gorm:"type:text"`
	TargetCount    int       `gorm:"default:1"`
	ApplicableRole string    `gorm:"type:varchar(20);not null"`
	CriteriaType   string    `gorm:"type:varchar(50);not null"`
	IsActive       bool      `gorm:"default:true"`
}

func (Badge) TableName() string {
	return "badges"
}

type UserBadge struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_badge"`
	BadgeId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_badge"`
	DateEarned time.Time `gorm:"not null"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
