package implementation

import (
	"errors"
	"fmt"

	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/repository/specification"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// translateError maps lock contention reported by Postgres to apperror.ErrConcurrencyConflict.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%w: %s", apperror.ErrConcurrencyConflict, pgErr.Message)
		}
	}
	return err
}

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// first runs First and reports a missing row as nil, nil.
func first(query *gorm.DB, dest interface{}) (bool, error) {
	if err := query.First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, translateError(err)
	}
	return true, nil
}
