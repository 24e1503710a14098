package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"eventhub-accounting-be/internal/bootstrap"
	"eventhub-accounting-be/internal/config"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/pkg/database"
)

// The cron runner executes the accounting jobs without serving HTTP. Replicas
// may run side by side; the Redis lock keeps each tick single.
func main() {
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.LogSQL)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container, err := bootstrap.NewContainer(gormDB, cfg, sysLogger)
	if err != nil {
		log.Panicf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.Scheduler.Run(ctx); err != nil {
		sysLogger.Error("CRON", "Scheduler stopped with error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
