package implementation

import (
	"context"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/mapper"
	"eventhub-accounting-be/internal/model"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EventMapper
}

func NewEventRepository(db *gorm.DB) contract.EventRepository {
	return &EventRepositoryImpl{
		db:     db,
		mapper: mapper.NewEventMapper(),
	}
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *entity.Event) error {
	m := r.mapper.ToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*event = *r.mapper.ToEntity(m)
	return nil
}

func (r *EventRepositoryImpl) FindById(ctx context.Context, id uuid.UUID, lock contract.LockMode) (*entity.Event, error) {
	var m model.Event
	query := applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id}, specification.Lock(lock))
	found, err := first(query, &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EventRepositoryImpl) FindDistributionCandidates(ctx context.Context, cutoff time.Time, after *contract.CandidateCursor, limit int) ([]contract.CandidateCursor, error) {
	specs := []specification.Specification{
		specification.DistributionCandidate{Cutoff: cutoff},
		specification.OrderBy{Field: "end_date"},
		specification.OrderBy{Field: "id"},
	}
	if after != nil {
		specs = append(specs, specification.AfterCandidate{EndDate: after.EndDate, ID: after.Id})
	}
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Event{}).Select("id", "end_date"), specs...)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []struct {
		Id      uuid.UUID
		EndDate time.Time
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	out := make([]contract.CandidateCursor, len(rows))
	for i, row := range rows {
		out[i] = contract.CandidateCursor{Id: row.Id, EndDate: row.EndDate}
	}
	return out, nil
}

func (r *EventRepositoryImpl) FindDistributable(ctx context.Context, id uuid.UUID, cutoff time.Time, lock contract.LockMode) (*entity.Event, error) {
	var m model.Event
	query := applySpecifications(
		r.db.WithContext(ctx),
		specification.ByID{ID: id},
		specification.DistributionCandidate{Cutoff: cutoff},
		specification.Lock(lock),
	)
	found, err := first(query, &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EventRepositoryImpl) MarkDistributed(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&model.Event{}).
		Where("id = ?", id).
		Update("revenue_distributed", true).Error
	return translateError(err)
}

func (r *EventRepositoryImpl) CountByOrganizer(ctx context.Context, organizerId uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Event{}).
		Where("organizer_id = ?", organizerId).
		Count(&count).Error
	return int(count), translateError(err)
}

type TicketRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EventMapper
}

func NewTicketRepository(db *gorm.DB) contract.TicketRepository {
	return &TicketRepositoryImpl{
		db:     db,
		mapper: mapper.NewEventMapper(),
	}
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, ticket *entity.Ticket) error {
	m := r.mapper.TicketToModel(ticket)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateError(err)
	}
	*ticket = *r.mapper.TicketToEntity(m)
	return nil
}

func (r *TicketRepositoryImpl) Update(ctx context.Context, ticket *entity.Ticket) error {
	m := r.mapper.TicketToModel(ticket)
	return translateError(r.db.WithContext(ctx).Save(m).Error)
}

func (r *TicketRepositoryImpl) FindById(ctx context.Context, id uuid.UUID, lock contract.LockMode) (*entity.Ticket, error) {
	var m model.Ticket
	query := applySpecifications(r.db.WithContext(ctx), specification.ByID{ID: id}, specification.Lock(lock))
	found, err := first(query, &m)
	if err != nil || !found {
		return nil, err
	}
	return r.mapper.TicketToEntity(&m), nil
}

func (r *TicketRepositoryImpl) FindByIds(ctx context.Context, ids []uuid.UUID, lock contract.LockMode) ([]*entity.Ticket, error) {
	var models []*model.Ticket
	// Stable lock order avoids deadlocks between checkouts touching the same tickets.
	query := applySpecifications(
		r.db.WithContext(ctx),
		specification.ByIDs{IDs: ids},
		specification.OrderBy{Field: "id"},
		specification.Lock(lock),
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, translateError(err)
	}
	tickets := make([]*entity.Ticket, len(models))
	for i, m := range models {
		tickets[i] = r.mapper.TicketToEntity(m)
	}
	return tickets, nil
}

func (r *TicketRepositoryImpl) FindByEvent(ctx context.Context, eventId uuid.UUID) ([]*entity.Ticket, error) {
	var models []*model.Ticket
	query := applySpecifications(r.db.WithContext(ctx), specification.ByEventID{EventID: eventId})
	if err := query.Find(&models).Error; err != nil {
		return nil, translateError(err)
	}
	tickets := make([]*entity.Ticket, len(models))
	for i, m := range models {
		tickets[i] = r.mapper.TicketToEntity(m)
	}
	return tickets, nil
}

func (r *TicketRepositoryImpl) SumSoldQuantity(ctx context.Context, eventId uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("event_id = ?", eventId).
		Select("COALESCE(SUM(sold_quantity), 0)").
		Scan(&total).Error
	return int(total), translateError(err)
}
