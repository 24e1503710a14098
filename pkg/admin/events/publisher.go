package events

import (
	"context"
	"sync"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/logger"
	pkgEvents "eventhub-accounting-be/pkg/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Publisher emits accounting events after the producing transaction commits.
// Publishing is best effort: failures are logged and never undo the commit.
type Publisher interface {
	PublishRevenueDistributed(ctx context.Context, event *entity.Event, distribution *entity.RevenueDistribution)
	PublishBookingConfirmed(ctx context.Context, booking *entity.Booking, quantity int)
	PublishBookingCancelled(ctx context.Context, booking *entity.Booking, cancelled int, refund decimal.Decimal)
	PublishSubscriptionChanged(ctx context.Context, eventType string, sub *entity.UserSubscription, amount decimal.Decimal)
	PublishSubscriptionsExpired(ctx context.Context, count int, at time.Time)
	PublishBadgeEarned(ctx context.Context, userId uuid.UUID, badge *entity.Badge)
}

// Bus is the transport the publisher writes to; pkg/nats.Publisher satisfies it.
type Bus interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

// NatsPublisher implements Publisher on top of a Bus.
type NatsPublisher struct {
	bus    Bus
	logger logger.ILogger
}

func NewNatsPublisher(bus Bus, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		bus:    bus,
		logger: logger,
	}
}

func (p *NatsPublisher) emit(ctx context.Context, evt pkgEvents.BaseEvent) {
	if p.bus == nil {
		return
	}
	if err := p.bus.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  evt.Type,
			"id":    evt.ID,
			"error": err.Error(),
		})
	}
}

// PublishRevenueDistributed emits REVENUE_DISTRIBUTED. The event id is derived
// from the event so a republish is deduplicated by the bus.
func (p *NatsPublisher) PublishRevenueDistributed(ctx context.Context, event *entity.Event, d *entity.RevenueDistribution) {
	p.emit(ctx, pkgEvents.New("revenue-distributed:"+event.Id.String(), pkgEvents.TypeRevenueDistributed, map[string]interface{}{
		"event_id":           event.Id.String(),
		"event_title":        event.Title,
		"user_id":            event.OrganizerId.String(),
		"admin_percentage":   d.AdminPercentage.StringFixed(2),
		"total_revenue":      d.TotalRevenue.StringFixed(2),
		"total_participants": d.TotalParticipants,
		"admin_amount":       d.AdminAmount.StringFixed(2),
		"organizer_amount":   d.OrganizerAmount.StringFixed(2),
		"entity_type":        "event",
		"entity_id":          event.Id.String(),
	}, d.DistributedAt))
}

func (p *NatsPublisher) PublishBookingConfirmed(ctx context.Context, b *entity.Booking, quantity int) {
	p.emit(ctx, pkgEvents.New("booking-confirmed:"+b.Id.String(), pkgEvents.TypeBookingConfirmed, map[string]interface{}{
		"booking_id":     b.Id.String(),
		"user_id":        b.UserId.String(),
		"event_id":       b.EventId.String(),
		"payment_method": string(b.PaymentMethod),
		"quantity":       quantity,
		"total":          b.Total.StringFixed(2),
		"entity_type":    "booking",
		"entity_id":      b.Id.String(),
	}, time.Now()))
}

func (p *NatsPublisher) PublishBookingCancelled(ctx context.Context, b *entity.Booking, cancelled int, refund decimal.Decimal) {
	p.emit(ctx, pkgEvents.New("", pkgEvents.TypeBookingCancelled, map[string]interface{}{
		"booking_id":    b.Id.String(),
		"user_id":       b.UserId.String(),
		"event_id":      b.EventId.String(),
		"quantity":      cancelled,
		"refund_amount": refund.StringFixed(2),
		"entity_type":   "booking",
		"entity_id":     b.Id.String(),
	}, time.Now()))
}

// PublishSubscriptionChanged emits one of the SUBSCRIPTION_PURCHASED,
// SUBSCRIPTION_UPGRADED or SUBSCRIPTION_RENEWED types.
func (p *NatsPublisher) PublishSubscriptionChanged(ctx context.Context, eventType string, sub *entity.UserSubscription, amount decimal.Decimal) {
	p.emit(ctx, pkgEvents.New("", eventType, map[string]interface{}{
		"subscription_id": sub.Id.String(),
		"user_id":         sub.UserId.String(),
		"plan_id":         sub.PlanId.String(),
		"plan_name":       sub.Plan.Name,
		"tier":            string(sub.Plan.Tier),
		"end_date":        sub.EndDate,
		"amount":          amount.StringFixed(2),
		"entity_type":     "subscription",
		"entity_id":       sub.Id.String(),
	}, time.Now()))
}

func (p *NatsPublisher) PublishSubscriptionsExpired(ctx context.Context, count int, at time.Time) {
	p.emit(ctx, pkgEvents.New("", pkgEvents.TypeSubscriptionExpired, map[string]interface{}{
		"count": count,
	}, at))
}

func (p *NatsPublisher) PublishBadgeEarned(ctx context.Context, userId uuid.UUID, badge *entity.Badge) {
	p.emit(ctx, pkgEvents.New("badge-earned:"+userId.String()+":"+badge.Id.String(), pkgEvents.TypeBadgeEarned, map[string]interface{}{
		"user_id":     userId.String(),
		"badge_id":    badge.Id.String(),
		"badge_name":  badge.Name,
		"entity_type": "badge",
		"entity_id":   badge.Id.String(),
	}, time.Now()))
}

// Recorder is an in-memory Bus that keeps every published event.
type Recorder struct {
	mu     sync.Mutex
	events []pkgEvents.Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(ctx context.Context, event pkgEvents.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns the recorded events of the given type, or all of them when eventType is empty.
func (r *Recorder) Events(eventType string) []pkgEvents.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []pkgEvents.Event
	for _, e := range r.events {
		if eventType == "" || e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}
