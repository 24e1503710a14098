package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventhub-accounting-be/internal/bootstrap"
	"eventhub-accounting-be/internal/config"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/server"
	"eventhub-accounting-be/internal/tracer"
	"eventhub-accounting-be/pkg/database"

	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction())

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.App.ServiceName, cfg.App.OtelEndpoint, sysLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.LogSQL)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(gormDB, cfg, sysLogger)
	if err != nil {
		log.Panicf("Unable to bootstrap: %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	// 5. Background Services
	if err := container.ConsumerService.Consume(gctx); err != nil {
		log.Panicf("Unable to start badge consumer: %v", err)
	}
	if container.Subscriber != nil {
		if err := container.NotificationService.Start(gctx, container.Subscriber); err != nil {
			sysLogger.Warn("MAIN", "Notification worker not started", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if cfg.Scheduler.Enabled {
		g.Go(func() error {
			return container.Scheduler.Run(gctx)
		})
	}

	// 6. HTTP Server
	srv := server.New(cfg, container)
	g.Go(srv.Run)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		sysLogger.Error("MAIN", "Service stopped with error", map[string]interface{}{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	sysLogger.Info("MAIN", "Service stopped", nil)
}
