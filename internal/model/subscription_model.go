package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type PlanFeatures struct {
	EmailNotification bool `json:"email_notification"`
	GroupChat         bool `json:"group_chat"`
	PersonalChat      bool `json:"personal_chat"`
	AdvancedAnalytics bool `json:"advanced_analytics"`
	TicketScanning    bool `json:"ticket_scanning"`
	LiveStreaming     bool `json:"live_streaming"`
}

type SubscriptionPlan struct {
	Id                 uuid.UUID                        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name               string                           `gorm:"type:varchar(100);not null"`
	Tier               string                           `gorm:"type:varchar(20);uniqueIndex;not null"`
	Description        string                           `gorm:"type:text"`
	Price              decimal.Decimal                  `gorm:"type:decimal(15,2);not null"`
	EventJoinLimit     int                              `gorm:"default:0"` // -1 = unlimited
	EventCreationLimit int                              `gorm:"default:0"` // -1 = unlimited
	Features           datatypes.JSONType[PlanFeatures] `gorm:"type:jsonb"`
	IsActive           bool                             `gorm:"default:true"`
	CreatedAt          time.Time                        `gorm:"autoCreateTime"`
	UpdatedAt          time.Time                        `gorm:"autoUpdateTime"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

type UserSubscription struct {
	Id                       uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId                   uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null"`
	PlanId                   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Plan                     SubscriptionPlan `gorm:"foreignKey:PlanId"`
	StartDate                time.Time        `gorm:"not null"`
	EndDate                  time.Time        `gorm:"not null;index"`
	IsActive                 bool             `gorm:"default:true;index"`
	PaymentMethod            string           `gorm:"type:varchar(20)"`
	PaymentId                string           `gorm:"type:varchar(255)"`
	EventsJoinedThisMonth    int              `gorm:"default:0"`
	EventsOrganizedThisMonth int              `gorm:"default:0"`
	CreatedAt                time.Time        `gorm:"autoCreateTime"`
	UpdatedAt                time.Time        `gorm:"autoUpdateTime"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}

type SubscriptionTransaction struct {
	Id                    uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubscriptionId        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount                decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Type                  string          `gorm:"type:varchar(20);not null"`
	PaymentMethod         string          `gorm:"type:varchar(20)"`
	ExternalTransactionId *string         `gorm:"type:varchar(255);uniqueIndex"`
	IsRefunded            bool            `gorm:"default:false"`
	CreatedAt             time.Time       `gorm:"autoCreateTime;index"`
}

func (SubscriptionTransaction) TableName() string {
	return "subscription_transactions"
}

type SubscriptionOrder struct {
	Id                    uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderId               string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	UserId                uuid.UUID       `gorm:"type:uuid;not null;index"`
	PlanId                uuid.UUID       `gorm:"type:uuid;not null"`
	Type                  string          `gorm:"type:varchar(20);not null"`
	Amount                decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Status                string          `gorm:"type:varchar(20);not null;default:'pending'"`
	ExternalTransactionId *string         `gorm:"type:varchar(255)"`
	CreatedAt             time.Time       `gorm:"autoCreateTime"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime"`
}

func (SubscriptionOrder) TableName() string {
	return "subscription_orders"
}
