package events

const (
	TypeRevenueDistributed    = "REVENUE_DISTRIBUTED"
	TypeBookingConfirmed      = "BOOKING_CONFIRMED"
	TypeBookingCancelled      = "BOOKING_CANCELLED"
	TypeSubscriptionPurchased = "SUBSCRIPTION_PURCHASED"
	TypeSubscriptionUpgraded  = "SUBSCRIPTION_UPGRADED"
	TypeSubscriptionRenewed   = "SUBSCRIPTION_RENEWED"
	TypeSubscriptionExpired   = "SUBSCRIPTION_EXPIRED"
	TypeBadgeEarned           = "BADGE_EARNED"
)

// SubjectPrefix is prepended to the event type to form the bus subject.
const SubjectPrefix = "accounting."

func Subject(eventType string) string {
	return SubjectPrefix + eventType
}
