package scope

import (
	"time"

	"gorm.io/gorm"
)

func OrderByCreatedAsc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// Since keeps rows whose column is at or after t. A zero t keeps everything.
func Since(column string, t time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if t.IsZero() {
			return db
		}
		return db.Where(column+" >= ?", t)
	}
}
