package contract

import (
	"context"
	"time"

	"eventhub-accounting-be/internal/entity"

	"github.com/google/uuid"
)

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	FindById(ctx context.Context, id uuid.UUID, lock LockMode) (*entity.Event, error)

	// FindDistributionCandidates lists published, undistributed events that ended before cutoff,
	// ordered by (end date, id) and starting after the given cursor when it is not nil.
	FindDistributionCandidates(ctx context.Context, cutoff time.Time, after *CandidateCursor, limit int) ([]CandidateCursor, error)
	// FindDistributable re-checks the candidate predicate for one event under the given lock.
	// It returns nil when the event no longer qualifies or is locked elsewhere.
	FindDistributable(ctx context.Context, id uuid.UUID, cutoff time.Time, lock LockMode) (*entity.Event, error)
	MarkDistributed(ctx context.Context, id uuid.UUID) error

	CountByOrganizer(ctx context.Context, organizerId uuid.UUID) (int, error)
}

// CandidateCursor is a position in the distribution candidate order.
type CandidateCursor struct {
	Id      uuid.UUID
	EndDate time.Time
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *entity.Ticket) error
	Update(ctx context.Context, ticket *entity.Ticket) error
	FindById(ctx context.Context, id uuid.UUID, lock LockMode) (*entity.Ticket, error)
	FindByIds(ctx context.Context, ids []uuid.UUID, lock LockMode) ([]*entity.Ticket, error)
	FindByEvent(ctx context.Context, eventId uuid.UUID) ([]*entity.Ticket, error)
	SumSoldQuantity(ctx context.Context, eventId uuid.UUID) (int, error)
}
