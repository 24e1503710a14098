package mapper

import (
	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/model"
)

type EventMapper struct{}

func NewEventMapper() *EventMapper {
	return &EventMapper{}
}

func (m *EventMapper) ToEntity(e *model.Event) *entity.Event {
	if e == nil {
		return nil
	}
	return &entity.Event{
		Id:                 e.Id,
		OrganizerId:        e.OrganizerId,
		Title:              e.Title,
		StartDate:          e.StartDate,
		EndDate:            e.EndDate,
		IsPublished:        e.IsPublished,
		RevenueDistributed: e.RevenueDistributed,
		CreatedAt:          e.CreatedAt,
	}
}

func (m *EventMapper) ToModel(e *entity.Event) *model.Event {
	if e == nil {
		return nil
	}
	return &model.Event{
		Id:                 e.Id,
		OrganizerId:        e.OrganizerId,
		Title:              e.Title,
		StartDate:          e.StartDate,
		EndDate:            e.EndDate,
		IsPublished:        e.IsPublished,
		RevenueDistributed: e.RevenueDistributed,
		CreatedAt:          e.CreatedAt,
	}
}

func (m *EventMapper) TicketToEntity(t *model.Ticket) *entity.Ticket {
	if t == nil {
		return nil
	}
	return &entity.Ticket{
		Id:           t.Id,
		EventId:      t.EventId,
		TicketType:   t.TicketType,
		Price:        t.Price,
		Quantity:     t.Quantity,
		SoldQuantity: t.SoldQuantity,
	}
}

func (m *EventMapper) TicketToModel(t *entity.Ticket) *model.Ticket {
	if t == nil {
		return nil
	}
	return &model.Ticket{
		Id:           t.Id,
		EventId:      t.EventId,
		TicketType:   t.TicketType,
		Price:        t.Price,
		Quantity:     t.Quantity,
		SoldQuantity: t.SoldQuantity,
	}
}

func (m *EventMapper) DistributionToEntity(d *model.RevenueDistribution) *entity.RevenueDistribution {
	if d == nil {
		return nil
	}
	return &entity.RevenueDistribution{
		Id:                d.Id,
		EventId:           d.EventId,
		AdminPercentage:   d.AdminPercentage,
		TotalRevenue:      d.TotalRevenue,
		TotalParticipants: d.TotalParticipants,
		AdminAmount:       d.AdminAmount,
		OrganizerAmount:   d.OrganizerAmount,
		DistributedAt:     d.DistributedAt,
		IsDistributed:     d.IsDistributed,
	}
}

func (m *EventMapper) DistributionToModel(d *entity.RevenueDistribution) *model.RevenueDistribution {
	if d == nil {
		return nil
	}
	return &model.RevenueDistribution{
		Id:                d.Id,
		EventId:           d.EventId,
		AdminPercentage:   d.AdminPercentage,
		TotalRevenue:      d.TotalRevenue,
		TotalParticipants: d.TotalParticipants,
		AdminAmount:       d.AdminAmount,
		OrganizerAmount:   d.OrganizerAmount,
		DistributedAt:     d.DistributedAt,
		IsDistributed:     d.IsDistributed,
	}
}
