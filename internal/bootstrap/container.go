package bootstrap

import (
	"context"
	"fmt"
	"time"

	"eventhub-accounting-be/internal/config"
	"eventhub-accounting-be/internal/controller"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/pkg/mailer"
	"eventhub-accounting-be/internal/repository/implementation"
	"eventhub-accounting-be/internal/repository/memory"
	"eventhub-accounting-be/internal/repository/unitofwork"
	"eventhub-accounting-be/internal/service"
	adminEvents "eventhub-accounting-be/pkg/admin/events"
	"eventhub-accounting-be/pkg/admin/refund"
	"eventhub-accounting-be/pkg/admin/revenue"
	"eventhub-accounting-be/pkg/admin/subscription"
	"eventhub-accounting-be/pkg/admin/usage"
	"eventhub-accounting-be/pkg/badge"
	"eventhub-accounting-be/pkg/booking"
	"eventhub-accounting-be/pkg/ledger"
	"eventhub-accounting-be/pkg/metrics"
	pktNats "eventhub-accounting-be/pkg/nats"
	"eventhub-accounting-be/pkg/payment"
	"eventhub-accounting-be/pkg/scheduler"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	WalletController       controller.IWalletController
	BookingController      controller.IBookingController
	SubscriptionController controller.ISubscriptionController
	PaymentController      controller.IPaymentController
	AdminController        controller.IAdminController

	// Engines (exposed for the CLI and the cron runner)
	Ledger      *ledger.Ledger
	Distributor *revenue.Distributor
	Manager     *subscription.Manager
	Tracker     *usage.Tracker
	Scheduler   *scheduler.Scheduler

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService
	Subscriber          *pktNats.Subscriber

	Logger   logger.ILogger
	Registry *prometheus.Registry

	closers []func()
}

// NewContainer wires every component. Unreachable NATS or Redis degrade
// features with a warning; only invalid configuration is an error.
func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(c.Registry)

	// 2. Event Bus
	// NATS carries accounting events to other services; without it events are dropped with a warning.
	var bus adminEvents.Bus
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS publisher, events disabled", map[string]interface{}{
			"url":   cfg.App.NatsURL,
			"error": err.Error(),
		})
	} else {
		bus = natsPub
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL, sysLogger)
	if err != nil {
		sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS subscriber, notifications disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		c.Subscriber = natsSub
		c.closers = append(c.closers, natsSub.Close)
	}
	publisher := adminEvents.NewNatsPublisher(bus, sysLogger)

	// In-process queue for post-commit badge checks
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Payment
	var gateway payment.Gateway
	if cfg.Payment.MidtransServerKey != "" {
		gateway = payment.NewMidtransGateway(cfg.Payment.MidtransServerKey, cfg.Payment.MidtransIsProduction, sysLogger)
	} else {
		// Without a server key every card charge is declined; wallet payments still work.
		sysLogger.Warn("BOOTSTRAP", "MIDTRANS_SERVER_KEY not set, card payments are declined", nil)
		gateway = payment.NewStubGateway(payment.ChargeDeclined)
	}

	// 4. Engines
	c.Ledger = ledger.New(uowFactory, m, sysLogger)
	processor := payment.NewProcessor(c.Ledger, gateway, sysLogger)
	planCache := memory.NewPlanCache(cfg.Accounting.PlanCacheTTL)

	c.Tracker = usage.NewTracker(uowFactory, m, sysLogger)
	c.Distributor = revenue.NewDistributor(uowFactory, c.Ledger, publisher, m, sysLogger, revenue.OptionsFromConfig(cfg.Accounting))
	c.Manager = subscription.NewManager(uowFactory, processor, planCache, publisher, m, sysLogger, subscription.OptionsFromConfig(cfg.Accounting))

	badgeQueue := badge.NewQueue(pubSub)
	checker := badge.NewChecker(uowFactory, publisher, sysLogger)
	checkout := booking.NewService(uowFactory, c.Tracker, processor, publisher, badgeQueue, m, sysLogger)
	refunds := refund.NewProcessor(uowFactory, c.Ledger, publisher, m, sysLogger, refund.OptionsFromConfig(cfg.Accounting))

	// 5. Scheduler
	c.Scheduler = scheduler.New(cfg.Scheduler, c.newLocker(cfg), m, sysLogger)
	jobs := scheduler.AccountingJobs(cfg.Scheduler, scheduler.Services{
		Distributor: c.Distributor,
		Manager:     c.Manager,
		Tracker:     c.Tracker,
		Clock:       time.Now,
	})
	if err := c.Scheduler.RegisterAll(jobs); err != nil {
		c.Close()
		return nil, fmt.Errorf("register scheduler jobs: %w", err)
	}

	// 6. Background Services
	c.ConsumerService = service.NewConsumerService(pubSub, checker, sysLogger)

	notifyLogger := logger.NewIsolatedLogger(cfg.App.NotifyLogFilePath)
	c.NotificationService = service.NewNotificationService(
		uowFactory,
		implementation.NewNotificationRepository(db),
		mailer.NewEmailService(cfg.SMTP, notifyLogger),
		notifyLogger,
	)

	// 7. Services
	walletService := service.NewWalletService(uowFactory)
	bookingService := service.NewBookingService(checkout, refunds)
	subscriptionService := service.NewSubscriptionService(c.Manager, c.Tracker)
	paymentService := service.NewPaymentService(cfg.Payment.MidtransServerKey, checkout, c.Manager, processor, sysLogger)
	adminService := service.NewAdminService(uowFactory, c.Distributor, c.Manager, c.Tracker, c.Ledger, sysLogger)

	// 8. Controllers
	c.WalletController = controller.NewWalletController(walletService)
	c.BookingController = controller.NewBookingController(bookingService)
	c.SubscriptionController = controller.NewSubscriptionController(subscriptionService)
	c.PaymentController = controller.NewPaymentController(paymentService)
	c.AdminController = controller.NewAdminController(adminService)

	return c, nil
}

// newLocker uses Redis so only one replica runs each tick; a single instance
// falls back to an in-process lock.
func (c *Container) newLocker(cfg *config.Config) scheduler.Locker {
	if cfg.App.RedisURL == "" {
		return scheduler.NewLocalLocker()
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		c.Logger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		c.Logger.Warn("BOOTSTRAP", "Failed to connect to Redis, scheduler lock is process-local", map[string]interface{}{
			"error": err.Error(),
		})
		_ = rdb.Close()
		return scheduler.NewLocalLocker()
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return scheduler.NewRedisLocker(rdb)
}

// Close releases broker and cache connections in reverse order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
