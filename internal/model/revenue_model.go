package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RevenueDistribution struct {
	Id                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventId           uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	AdminPercentage   decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	TotalRevenue      decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	TotalParticipants int             `gorm:"not null"`
	AdminAmount       decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	OrganizerAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	DistributedAt     time.Time       `gorm:"not null;index"`
	IsDistributed     bool            `gorm:"default:true"`
}

func (RevenueDistribution) TableName() string {
	return "revenue_distributions"
}
