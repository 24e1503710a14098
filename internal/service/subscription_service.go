package service

import (
	"context"
	"time"

	"eventhub-accounting-be/internal/dto"
	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/pkg/admin/mapper"
	"eventhub-accounting-be/pkg/admin/subscription"
	"eventhub-accounting-be/pkg/admin/usage"

	"github.com/google/uuid"
)

type SubscriptionService interface {
	// Public
	GetPlans(ctx context.Context) ([]dto.PlanResponse, error)

	// User
	GetCurrent(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionResponse, error)
	StartTrial(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionResponse, error)
	Purchase(ctx context.Context, userId uuid.UUID, req *dto.SubscriptionChangeRequest) (*dto.SubscriptionChangeResponse, error)
	QuoteUpgrade(ctx context.Context, userId uuid.UUID, req *dto.UpgradeQuoteRequest) (*dto.UpgradeQuoteResponse, error)
	Upgrade(ctx context.Context, userId uuid.UUID, req *dto.SubscriptionChangeRequest) (*dto.SubscriptionChangeResponse, error)
	Renew(ctx context.Context, userId uuid.UUID, req *dto.SubscriptionChangeRequest) (*dto.SubscriptionChangeResponse, error)
}

type subscriptionService struct {
	manager *subscription.Manager
	tracker *usage.Tracker
	clock   func() time.Time
}

func NewSubscriptionService(manager *subscription.Manager, tracker *usage.Tracker) SubscriptionService {
	return &subscriptionService{
		manager: manager,
		tracker: tracker,
		clock:   time.Now,
	}
}

func (s *subscriptionService) GetPlans(ctx context.Context) ([]dto.PlanResponse, error) {
	plans, err := s.manager.Plans(ctx)
	if err != nil {
		return nil, err
	}
	return mapper.PlansToResponse(plans), nil
}

// GetCurrent returns the subscription with this month's usage.
func (s *subscriptionService) GetCurrent(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionResponse, error) {
	sub, err := s.manager.Current(ctx, userId)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperror.NotFound(apperror.ReasonSubscriptionRequired, "no subscription found")
	}

	summary, err := s.tracker.Usage(ctx, userId)
	if err != nil {
		return nil, err
	}
	res := mapper.SubscriptionToResponse(sub, s.clock())
	res.Usage = mapper.UsageToResponse(summary)
	return res, nil
}

func (s *subscriptionService) StartTrial(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionResponse, error) {
	sub, err := s.manager.StartTrial(ctx, userId)
	if err != nil {
		return nil, err
	}
	return mapper.SubscriptionToResponse(sub, s.clock()), nil
}

func (s *subscriptionService) Purchase(ctx context.Context, userId uuid.UUID, req *dto.SubscriptionChangeRequest) (*dto.SubscriptionChangeResponse, error) {
	if req.PlanId == nil {
		return nil, apperror.Reject(apperror.ReasonInvalidRequest, "plan_id is required")
	}
	return s.change(ctx, s.manager.Purchase, userId, req)
}

func (s *subscriptionService) QuoteUpgrade(ctx context.Context, userId uuid.UUID, req *dto.UpgradeQuoteRequest) (*dto.UpgradeQuoteResponse, error) {
	quote, err := s.manager.QuoteUpgrade(ctx, userId, req.PlanId, s.clock())
	if err != nil {
		return nil, err
	}
	return mapper.QuoteToResponse(quote), nil
}

func (s *subscriptionService) Upgrade(ctx context.Context, userId uuid.UUID, req *dto.SubscriptionChangeRequest) (*dto.SubscriptionChangeResponse, error) {
	if req.PlanId == nil {
		return nil, apperror.Reject(apperror.ReasonInvalidRequest, "plan_id is required")
	}
	return s.change(ctx, s.manager.Upgrade, userId, req)
}

// Renew keeps the current plan when plan_id is omitted.
func (s *subscriptionService) Renew(ctx context.Context, userId uuid.UUID, req *dto.SubscriptionChangeRequest) (*dto.SubscriptionChangeResponse, error) {
	return s.change(ctx, s.manager.Renew, userId, req)
}

func (s *subscriptionService) change(
	ctx context.Context,
	apply func(context.Context, subscription.ChangeRequest) (*subscription.ChangeResult, error),
	userId uuid.UUID,
	req *dto.SubscriptionChangeRequest,
) (*dto.SubscriptionChangeResponse, error) {
	res, err := apply(ctx, subscription.ChangeRequest{
		UserId:    userId,
		PlanId:    req.PlanId,
		Method:    entity.PaymentMethod(req.PaymentMethod),
		CardToken: req.CardToken,
	})
	if err != nil {
		return nil, err
	}
	return mapper.ChangeToResponse(res, s.clock()), nil
}
