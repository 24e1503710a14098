// FILE: internal/entity/user_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser      UserRole = "user"
	UserRoleOrganizer UserRole = "organizer"
	UserRoleAdmin     UserRole = "admin"
)

// User is read-only identity owned by the auth service.
type User struct {
	Id                uuid.UUID
	Email             string
	FullName          string
	Role              UserRole
	OrganizerVerified bool
	CreatedAt         time.Time
}
