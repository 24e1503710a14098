package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"eventhub-accounting-be/internal/bootstrap"
	"eventhub-accounting-be/internal/config"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/pkg/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red("error: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "accountingctl",
		Short:         "Operate the event platform accounting engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCommand(),
		newSeedPlansCommand(),
		newDistributeCommand(),
		newResetCountersCommand(),
		newExpireCommand(),
		newReconcileCommand(),
		newRunJobCommand(),
	)
	return root
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.Connection == "" {
		return nil, fmt.Errorf("DB_CONNECTION_STRING is not set")
	}
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.LogSQL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// withContainer builds the full dependency graph for commands that drive the engines.
func withContainer(run func(ctx context.Context, c *bootstrap.Container, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		db, err := openDatabase(cfg)
		if err != nil {
			return err
		}

		c, err := bootstrap.NewContainer(db, cfg, logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.IsProduction()))
		if err != nil {
			return err
		}
		defer c.Close()

		return run(cmd.Context(), c, args)
	}
}
