package main

import (
	"context"
	"fmt"
	"time"

	"eventhub-accounting-be/internal/bootstrap"
	"eventhub-accounting-be/internal/config"
	"eventhub-accounting-be/pkg/admin/revenue"
	"eventhub-accounting-be/pkg/database"
	"eventhub-accounting-be/pkg/ledger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the accounting tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase(config.Load())
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			fmt.Println(green("migrated"), gray(fmt.Sprintf("%d tables", len(database.Models()))))
			return nil
		},
	}
}

func newSeedPlansCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-plans",
		Short: "Create the default trial, basic and premium plans when missing",
		RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, args []string) error {
			created, err := c.Manager.SeedDefaultPlans(ctx)
			if err != nil {
				return err
			}
			fmt.Println(green("plans seeded"), gray(fmt.Sprintf("%d created", created)))
			return nil
		}),
	}
}

func newDistributeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "distribute",
		Short: "Run one revenue distribution cycle now",
		RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, args []string) error {
			report, err := c.Distributor.RunCycle(ctx, time.Now())
			if err != nil {
				return err
			}
			printReport(report)
			if report.Failed > 0 {
				return fmt.Errorf("%d events failed", report.Failed)
			}
			return nil
		}),
	}
}

func printReport(report *revenue.Report) {
	fmt.Printf("%s processed=%d skipped=%d failed=%d %s\n",
		bold("distribution"), report.Processed, report.Skipped, report.Failed, gray(report.Elapsed.String()))
	for _, e := range report.Events {
		switch e.Outcome {
		case revenue.OutcomeProcessed:
			fmt.Printf("  %s %s revenue=%s admin=%s organizer=%s\n", green("✓"), e.EventId,
				e.TotalRevenue.StringFixed(2), e.AdminAmount.StringFixed(2), e.OrganizerAmount.StringFixed(2))
		case revenue.OutcomeSkipped:
			fmt.Printf("  %s %s %s\n", yellow("-"), e.EventId, gray("already distributed"))
		default:
			fmt.Printf("  %s %s %s\n", red("✗"), e.EventId, e.Error)
		}
	}
}

func newResetCountersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-counters",
		Short: "Zero the monthly usage counters of all active subscriptions",
		RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, args []string) error {
			count, err := c.Tracker.ResetMonthlyCounters(ctx)
			if err != nil {
				return err
			}
			fmt.Println(green("counters reset"), gray(fmt.Sprintf("%d subscriptions", count)))
			return nil
		}),
	}
}

func newExpireCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Deactivate subscriptions past their end date",
		RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, args []string) error {
			count, err := c.Manager.ExpireSweep(ctx, time.Now())
			if err != nil {
				return err
			}
			fmt.Println(green("expired"), gray(fmt.Sprintf("%d subscriptions", count)))
			return nil
		}),
	}
}

func newReconcileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [wallet-id]",
		Short: "Replay wallet logs against stored balances (all wallets when no id is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, args []string) error {
			if len(args) == 1 {
				walletId, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid wallet id: %w", err)
				}
				rec, err := c.Ledger.Reconcile(ctx, walletId)
				if err != nil {
					return err
				}
				printReconciliation(rec)
				if !rec.Balanced {
					return fmt.Errorf("wallet %s does not balance", walletId)
				}
				return nil
			}

			checked, mismatched, err := c.Ledger.ReconcileAll(ctx)
			if err != nil {
				return err
			}
			for _, rec := range mismatched {
				printReconciliation(rec)
			}
			fmt.Printf("%s checked=%d mismatched=%d\n", bold("reconcile"), checked, len(mismatched))
			if len(mismatched) > 0 {
				return fmt.Errorf("%d wallets do not balance", len(mismatched))
			}
			return nil
		}),
	}
}

func printReconciliation(rec ledger.Reconciliation) {
	mark := green("✓")
	if !rec.Balanced {
		mark = red("✗")
	}
	fmt.Printf("  %s %s stored=%s replayed=%s transactions=%d min=%s\n", mark, rec.WalletId,
		rec.StoredBalance.StringFixed(2), rec.ReplayedTotal.StringFixed(2), rec.Transactions, rec.MinimumBalance.StringFixed(2))
}

func newRunJobCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run-job <name>",
		Short: "Run one scheduler job now with its lock, retries and timeout",
		Args:  cobra.ExactArgs(1),
		RunE: withContainer(func(ctx context.Context, c *bootstrap.Container, args []string) error {
			if err := c.Scheduler.Execute(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println(green("job finished"), gray(args[0]))
			return nil
		}),
	}
}
