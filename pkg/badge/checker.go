// Package badge awards achievement badges once a user's bookings or
// organized events reach a badge's target count.
package badge

import (
	"context"
	"fmt"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/unitofwork"
	adminEvents "eventhub-accounting-be/pkg/admin/events"

	"github.com/google/uuid"
)

const logModule = "BADGE"

type Checker struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  adminEvents.Publisher
	logger     logger.ILogger
	clock      func() time.Time
}

func NewChecker(uowFactory unitofwork.RepositoryFactory, publisher adminEvents.Publisher, logger logger.ILogger) *Checker {
	return &Checker{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger,
		clock:      time.Now,
	}
}

// Check assigns every badge of the user's role whose criteria are met and
// returns the newly earned ones. Verified organizers get organizer badges.
func (c *Checker) Check(ctx context.Context, userId uuid.UUID) ([]*entity.Badge, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().FindById(ctx, userId)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	role := entity.UserRoleUser
	if user.OrganizerVerified {
		role = entity.UserRoleOrganizer
	}
	badges, err := uow.BadgeRepository().FindActiveByRole(ctx, role)
	if err != nil {
		return nil, err
	}

	counts := map[entity.BadgeCriteria]int{}
	count := func(criteria entity.BadgeCriteria) (int, error) {
		if n, ok := counts[criteria]; ok {
			return n, nil
		}
		var n int
		var err error
		switch criteria {
		case entity.BadgeCriteriaEventAttended:
			n, err = uow.BookingRepository().CountPaidByUser(ctx, userId)
		case entity.BadgeCriteriaEventCreated:
			n, err = uow.EventRepository().CountByOrganizer(ctx, userId)
		default:
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", criteria, err)
		}
		counts[criteria] = n
		return n, nil
	}

	var earned []*entity.Badge
	for _, b := range badges {
		has, err := uow.BadgeRepository().HasBadge(ctx, userId, b.Id)
		if err != nil {
			return nil, err
		}
		if has {
			continue
		}

		n, err := count(b.CriteriaType)
		if err != nil {
			return nil, err
		}
		if n < b.TargetCount {
			continue
		}

		if err := uow.BadgeRepository().Assign(ctx, &entity.UserBadge{
			Id:         uuid.New(),
			UserId:     userId,
			BadgeId:    b.Id,
			DateEarned: c.clock(),
		}); err != nil {
			return nil, fmt.Errorf("assign badge %s: %w", b.Name, err)
		}
		earned = append(earned, b)
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	for _, b := range earned {
		c.logger.Info(logModule, "Badge earned", map[string]interface{}{
			"user_id": userId.String(),
			"badge":   b.Name,
		})
		c.publisher.PublishBadgeEarned(ctx, userId, b)
	}
	return earned, nil
}
