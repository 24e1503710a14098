package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DistributionCandidate matches published, undistributed events that ended before Cutoff.
type DistributionCandidate struct {
	Cutoff time.Time
}

func (s DistributionCandidate) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_published = ? AND revenue_distributed = ? AND end_date IS NOT NULL AND end_date < ?", true, false, s.Cutoff)
}

// AfterCandidate pages past the last seen (end_date, id) pair.
type AfterCandidate struct {
	EndDate time.Time
	ID      uuid.UUID
}

func (s AfterCandidate) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(end_date, id) > (?, ?)", s.EndDate, s.ID)
}

type ByEventID struct {
	EventID uuid.UUID
}

func (s ByEventID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("event_id = ?", s.EventID)
}

type ByUserID struct {
	UserID uuid.UUID
}

func (s ByUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type ByWalletID struct {
	WalletID uuid.UUID
}

func (s ByWalletID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("wallet_id = ?", s.WalletID)
}

// PaidBookings keeps bookings whose payment completed.
type PaidBookings struct{}

func (PaidBookings) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("payment_status = ?", "paid")
}

type ActiveOnly struct{}

func (ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}
