package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/logger"
	pkgEvents "eventhub-accounting-be/pkg/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBus struct{}

func (failingBus) Publish(ctx context.Context, event pkgEvents.Event) error {
	return errors.New("nats unavailable")
}

func TestPublishRevenueDistributedUsesDeterministicId(t *testing.T) {
	rec := NewRecorder()
	pub := NewNatsPublisher(rec, logger.NewNopLogger())

	event := &entity.Event{Id: uuid.New(), OrganizerId: uuid.New(), Title: "Jazz Night"}
	d := &entity.RevenueDistribution{
		EventId:           event.Id,
		AdminPercentage:   decimal.NewFromInt(7),
		TotalRevenue:      decimal.NewFromInt(10000),
		TotalParticipants: 150,
		AdminAmount:       decimal.NewFromInt(700),
		OrganizerAmount:   decimal.NewFromInt(9300),
		DistributedAt:     time.Now(),
	}

	pub.PublishRevenueDistributed(context.Background(), event, d)
	pub.PublishRevenueDistributed(context.Background(), event, d)

	got := rec.Events(pkgEvents.TypeRevenueDistributed)
	require.Len(t, got, 2)
	assert.Equal(t, got[0].EventID(), got[1].EventID())
	assert.Equal(t, "9300.00", got[0].Payload()["organizer_amount"])
	assert.Equal(t, event.OrganizerId.String(), got[0].Payload()["user_id"])
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	pub := NewNatsPublisher(failingBus{}, logger.NewNopLogger())

	assert.NotPanics(t, func() {
		pub.PublishSubscriptionsExpired(context.Background(), 3, time.Now())
	})
}

func TestNilBusIsNoop(t *testing.T) {
	pub := NewNatsPublisher(nil, logger.NewNopLogger())

	assert.NotPanics(t, func() {
		pub.PublishBookingConfirmed(context.Background(), &entity.Booking{Id: uuid.New(), Total: decimal.Zero}, 1)
	})
}
