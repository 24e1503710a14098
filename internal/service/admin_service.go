package service

import (
	"context"
	"time"

	"eventhub-accounting-be/internal/dto"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/unitofwork"
	"eventhub-accounting-be/pkg/admin/dashboard"
	"eventhub-accounting-be/pkg/admin/mapper"
	"eventhub-accounting-be/pkg/admin/revenue"
	"eventhub-accounting-be/pkg/admin/subscription"
	"eventhub-accounting-be/pkg/admin/usage"
	"eventhub-accounting-be/pkg/ledger"

	"github.com/google/uuid"
)

type IAdminService interface {
	// Revenue
	DistributeRevenue(ctx context.Context) (*dto.DistributionRunResponse, error)
	GetDistributions(ctx context.Context, req *dto.RevenueListRequest) (*dto.RevenueListResponse, error)
	GetRevenueSummary(ctx context.Context, period string) (*dto.RevenueSummaryResponse, error)

	// Subscription maintenance
	ResetUsageCounters(ctx context.Context) (*dto.AffectedRowsResponse, error)
	ExpireSubscriptions(ctx context.Context) (*dto.AffectedRowsResponse, error)

	// Ledger
	ReconcileWallet(ctx context.Context, walletId uuid.UUID) (*ledger.Reconciliation, error)
}

type adminService struct {
	uowFactory  unitofwork.RepositoryFactory
	distributor *revenue.Distributor
	dashboard   *dashboard.Aggregator
	manager     *subscription.Manager
	tracker     *usage.Tracker
	ledger      *ledger.Ledger
	logger      logger.ILogger
	clock       func() time.Time
}

func NewAdminService(
	uowFactory unitofwork.RepositoryFactory,
	distributor *revenue.Distributor,
	manager *subscription.Manager,
	tracker *usage.Tracker,
	led *ledger.Ledger,
	logger logger.ILogger,
) IAdminService {
	return &adminService{
		uowFactory:  uowFactory,
		distributor: distributor,
		dashboard:   dashboard.NewAggregator(logger),
		manager:     manager,
		tracker:     tracker,
		ledger:      led,
		logger:      logger,
		clock:       time.Now,
	}
}

// DistributeRevenue runs one distribution cycle on demand. Events already
// distributed by the scheduler are skipped.
func (s *adminService) DistributeRevenue(ctx context.Context) (*dto.DistributionRunResponse, error) {
	report, err := s.distributor.RunCycle(ctx, s.clock())
	if err != nil {
		return nil, err
	}
	s.logger.Info("ADMIN", "Manual revenue distribution finished", map[string]interface{}{
		"processed": report.Processed,
		"skipped":   report.Skipped,
		"failed":    report.Failed,
	})
	return mapper.ReportToResponse(report), nil
}

func (s *adminService) GetDistributions(ctx context.Context, req *dto.RevenueListRequest) (*dto.RevenueListResponse, error) {
	period, err := dashboard.ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}
	return s.dashboard.GetDistributions(ctx, s.uowFactory.NewUnitOfWork(ctx), period, s.clock(), req.Page, req.Limit)
}

func (s *adminService) GetRevenueSummary(ctx context.Context, period string) (*dto.RevenueSummaryResponse, error) {
	p, err := dashboard.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	return s.dashboard.GetSummary(ctx, s.uowFactory.NewUnitOfWork(ctx), p, s.clock())
}

func (s *adminService) ResetUsageCounters(ctx context.Context) (*dto.AffectedRowsResponse, error) {
	count, err := s.tracker.ResetMonthlyCounters(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.AffectedRowsResponse{Affected: count}, nil
}

func (s *adminService) ExpireSubscriptions(ctx context.Context) (*dto.AffectedRowsResponse, error) {
	count, err := s.manager.ExpireSweep(ctx, s.clock())
	if err != nil {
		return nil, err
	}
	return &dto.AffectedRowsResponse{Affected: count}, nil
}

func (s *adminService) ReconcileWallet(ctx context.Context, walletId uuid.UUID) (*ledger.Reconciliation, error) {
	rec, err := s.ledger.Reconcile(ctx, walletId)
	if err != nil {
		return nil, err
	}
	if !rec.Balanced {
		s.logger.Warn("ADMIN", "Wallet does not reconcile", map[string]interface{}{
			"wallet_id": walletId.String(),
			"stored":    rec.StoredBalance.StringFixed(2),
			"replayed":  rec.ReplayedTotal.StringFixed(2),
		})
	}
	return &rec, nil
}
