package specification

import (
	"eventhub-accounting-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate takes a row lock. With SkipLocked rows held by another
// transaction are left out instead of waited on.
type ForUpdate struct {
	SkipLocked bool
}

func (s ForUpdate) Apply(db *gorm.DB) *gorm.DB {
	locking := clause.Locking{Strength: "UPDATE"}
	if s.SkipLocked {
		locking.Options = "SKIP LOCKED"
	}
	return db.Clauses(locking)
}

// noLock is the zero-value specification for LockNone.
type noLock struct{}

func (noLock) Apply(db *gorm.DB) *gorm.DB { return db }

// Lock translates a repository lock mode into a specification.
func Lock(mode contract.LockMode) Specification {
	switch mode {
	case contract.LockForUpdate:
		return ForUpdate{}
	case contract.LockSkipLocked:
		return ForUpdate{SkipLocked: true}
	default:
		return noLock{}
	}
}
