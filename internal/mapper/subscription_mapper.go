package mapper

import (
	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/model"

	"gorm.io/datatypes"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) PlanToEntity(p *model.SubscriptionPlan) *entity.SubscriptionPlan {
	if p == nil {
		return nil
	}
	f := p.Features.Data()
	return &entity.SubscriptionPlan{
		Id:                 p.Id,
		Name:               p.Name,
		Tier:               entity.PlanTier(p.Tier),
		Description:        p.Description,
		Price:              p.Price,
		EventJoinLimit:     p.EventJoinLimit,
		EventCreationLimit: p.EventCreationLimit,
		Features: entity.PlanFeatures{
			EmailNotification: f.EmailNotification,
			GroupChat:         f.GroupChat,
			PersonalChat:      f.PersonalChat,
			AdvancedAnalytics: f.AdvancedAnalytics,
			TicketScanning:    f.TicketScanning,
			LiveStreaming:     f.LiveStreaming,
		},
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m *SubscriptionMapper) PlanToModel(p *entity.SubscriptionPlan) *model.SubscriptionPlan {
	if p == nil {
		return nil
	}
	return &model.SubscriptionPlan{
		Id:                 p.Id,
		Name:               p.Name,
		Tier:               string(p.Tier),
		Description:        p.Description,
		Price:              p.Price,
		EventJoinLimit:     p.EventJoinLimit,
		EventCreationLimit: p.EventCreationLimit,
		Features: datatypes.NewJSONType(model.PlanFeatures{
			EmailNotification: p.Features.EmailNotification,
			GroupChat:         p.Features.GroupChat,
			PersonalChat:      p.Features.PersonalChat,
			AdvancedAnalytics: p.Features.AdvancedAnalytics,
			TicketScanning:    p.Features.TicketScanning,
			LiveStreaming:     p.Features.LiveStreaming,
		}),
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m *SubscriptionMapper) UserSubscriptionToEntity(s *model.UserSubscription) *entity.UserSubscription {
	if s == nil {
		return nil
	}
	sub := &entity.UserSubscription{
		Id:                       s.Id,
		UserId:                   s.UserId,
		PlanId:                   s.PlanId,
		StartDate:                s.StartDate,
		EndDate:                  s.EndDate,
		IsActive:                 s.IsActive,
		PaymentMethod:            s.PaymentMethod,
		PaymentId:                s.PaymentId,
		EventsJoinedThisMonth:    s.EventsJoinedThisMonth,
		EventsOrganizedThisMonth: s.EventsOrganizedThisMonth,
		CreatedAt:                s.CreatedAt,
		UpdatedAt:                s.UpdatedAt,
	}
	if plan := m.PlanToEntity(&s.Plan); plan != nil {
		sub.Plan = *plan
	}
	return sub
}

// UserSubscriptionToModel leaves the Plan association empty so Save never touches plans.
func (m *SubscriptionMapper) UserSubscriptionToModel(s *entity.UserSubscription) *model.UserSubscription {
	if s == nil {
		return nil
	}
	return &model.UserSubscription{
		Id:                       s.Id,
		UserId:                   s.UserId,
		PlanId:                   s.PlanId,
		StartDate:                s.StartDate,
		EndDate:                  s.EndDate,
		IsActive:                 s.IsActive,
		PaymentMethod:            s.PaymentMethod,
		PaymentId:                s.PaymentId,
		EventsJoinedThisMonth:    s.EventsJoinedThisMonth,
		EventsOrganizedThisMonth: s.EventsOrganizedThisMonth,
		CreatedAt:                s.CreatedAt,
		UpdatedAt:                s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) TransactionToEntity(t *model.SubscriptionTransaction) *entity.SubscriptionTransaction {
	if t == nil {
		return nil
	}
	return &entity.SubscriptionTransaction{
		Id:                    t.Id,
		SubscriptionId:        t.SubscriptionId,
		Amount:                t.Amount,
		Type:                  entity.SubscriptionTransactionType(t.Type),
		PaymentMethod:         t.PaymentMethod,
		ExternalTransactionId: t.ExternalTransactionId,
		IsRefunded:            t.IsRefunded,
		CreatedAt:             t.CreatedAt,
	}
}

func (m *SubscriptionMapper) TransactionToModel(t *entity.SubscriptionTransaction) *model.SubscriptionTransaction {
	if t == nil {
		return nil
	}
	return &model.SubscriptionTransaction{
		Id:                    t.Id,
		SubscriptionId:        t.SubscriptionId,
		Amount:                t.Amount,
		Type:                  string(t.Type),
		PaymentMethod:         t.PaymentMethod,
		ExternalTransactionId: t.ExternalTransactionId,
		IsRefunded:            t.IsRefunded,
		CreatedAt:             t.CreatedAt,
	}
}

func (m *SubscriptionMapper) OrderToEntity(o *model.SubscriptionOrder) *entity.SubscriptionOrder {
	if o == nil {
		return nil
	}
	return &entity.SubscriptionOrder{
		Id:                    o.Id,
		OrderId:               o.OrderId,
		UserId:                o.UserId,
		PlanId:                o.PlanId,
		Type:                  entity.SubscriptionTransactionType(o.Type),
		Amount:                o.Amount,
		Status:                entity.SubscriptionOrderStatus(o.Status),
		ExternalTransactionId: o.ExternalTransactionId,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}

func (m *SubscriptionMapper) OrderToModel(o *entity.SubscriptionOrder) *model.SubscriptionOrder {
	if o == nil {
		return nil
	}
	return &model.SubscriptionOrder{
		Id:                    o.Id,
		OrderId:               o.OrderId,
		UserId:                o.UserId,
		PlanId:                o.PlanId,
		Type:                  string(o.Type),
		Amount:                o.Amount,
		Status:                string(o.Status),
		ExternalTransactionId: o.ExternalTransactionId,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}
