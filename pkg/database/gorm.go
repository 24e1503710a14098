package database

import (
	"database/sql"
	"log"
	"os"
	"time"

	"eventhub-accounting-be/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getLogger(logSQL bool) logger.Interface {
	level := logger.Warn
	if logSQL {
		level = logger.Info
	}
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true, // Don't include params in the SQL log
			Colorful:                  true,
		},
	)
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return nil
}

func NewGormDBFromDSN(dsn string, logSQL bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: getLogger(logSQL),
	})
	if err != nil {
		return nil, err
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	return db, nil
}

// NewGormDBFromConn wraps an existing connection, e.g. a sqlmock one.
func NewGormDBFromConn(conn *sql.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
}

// Models lists every table owned by the accounting engine, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Event{},
		&model.Ticket{},
		&model.Coupon{},
		&model.Booking{},
		&model.TicketPurchase{},
		&model.CouponRedemption{},
		&model.Wallet{},
		&model.WalletTransaction{},
		&model.RevenueDistribution{},
		&model.SubscriptionPlan{},
		&model.UserSubscription{},
		&model.SubscriptionTransaction{},
		&model.SubscriptionOrder{},
		&model.Badge{},
		&model.UserBadge{},
		&model.Notification{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
