package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Event struct {
	Id                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizerId        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title              string     `gorm:"type:varchar(255);not null"`
	StartDate          time.Time  `gorm:"not null"`
	EndDate            *time.Time `gorm:"index:idx_events_distribution,priority:3"`
	IsPublished        bool       `gorm:"default:false;index:idx_events_distribution,priority:1"`
	RevenueDistributed bool       `gorm:"default:false;index:idx_events_distribution,priority:2"`
	CreatedAt          time.Time  `gorm:"autoCreateTime"`
}

func (Event) TableName() string {
	return "events"
}

type Ticket struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventId      uuid.UUID       `gorm:"type:uuid;not null;index"`
	TicketType   string          `gorm:"type:varchar(50);not null"`
	Price        decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Quantity     int             `gorm:"not null"`
	SoldQuantity int             `gorm:"default:0;not null"`
}

func (Ticket) TableName() string {
	return "tickets"
}
