package payment

import (
	"strings"

	"github.com/google/uuid"
)

// Order ids route gateway notifications back to what was being paid for.
// Booking orders embed the booking id. Subscription orders are random and
// resolved through the stored subscription order row.
const (
	prefixBooking      = "BKG-"
	prefixSubscription = "SUB-"
)

func BookingOrderId(bookingId uuid.UUID) string {
	return prefixBooking + bookingId.String()
}

func ParseBookingOrderId(orderId string) (uuid.UUID, bool) {
	return parseOrderId(orderId, prefixBooking)
}

// NewSubscriptionOrderId returns a fresh order id for one subscription charge attempt.
func NewSubscriptionOrderId() string {
	return prefixSubscription + uuid.NewString()
}

func IsSubscriptionOrderId(orderId string) bool {
	_, ok := parseOrderId(orderId, prefixSubscription)
	return ok
}

func parseOrderId(orderId, prefix string) (uuid.UUID, bool) {
	if !strings.HasPrefix(orderId, prefix) {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(orderId, prefix))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
