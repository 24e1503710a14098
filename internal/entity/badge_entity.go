// FILE: internal/entity/badge_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type BadgeCriteria string

const (
	BadgeCriteriaEventAttended BadgeCriteria = "event_attended"
	BadgeCriteriaEventCreated  BadgeCriteria = "event_created"
)

type Badge struct {
	Id             uuid.UUID
	Name           string
	Description    string
	TargetCount    int
	ApplicableRole UserRole
	CriteriaType   BadgeCriteria
	IsActive       bool
}

type UserBadge struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	BadgeId    uuid.UUID
	DateEarned time.Time
}
