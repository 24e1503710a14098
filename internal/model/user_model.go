package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email             string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName          string    `gorm:"type:varchar(255);not null"`
	Role              string    `gorm:"type:varchar(50);not null;default:'user'"`
	OrganizerVerified bool      `gorm:"default:false"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}
