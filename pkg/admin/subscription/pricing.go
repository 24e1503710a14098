package subscription

import (
	"eventhub-accounting-be/internal/entity"

	"github.com/shopspring/decimal"
)

var cycleDays = decimal.NewFromInt(entity.BillingCycleDays)

// Quote is the pro-rated price of switching plans mid-cycle.
type Quote struct {
	PaidAmount       decimal.Decimal
	DaysUsed         int
	DaysRemaining    int
	RemainingBalance decimal.Decimal
	TargetProrated   decimal.Decimal
	UpgradeCost      decimal.Decimal
}

// ComputeUpgradeCost credits the unused share of what was paid against the
// target plan's price for the remaining days. Intermediate values keep full
// precision; only the results are rounded to cents.
func ComputeUpgradeCost(paid decimal.Decimal, daysUsed, daysRemaining int, targetPrice decimal.Decimal) Quote {
	used := paid.Mul(decimal.NewFromInt(int64(daysUsed))).Div(cycleDays)
	remaining := decimal.Max(decimal.Zero, paid.Sub(used))

	prorated := targetPrice.Mul(decimal.NewFromInt(int64(daysRemaining))).Div(cycleDays)
	cost := decimal.Max(decimal.Zero, prorated.Sub(remaining))

	return Quote{
		PaidAmount:       paid,
		DaysUsed:         daysUsed,
		DaysRemaining:    daysRemaining,
		RemainingBalance: remaining.Round(2),
		TargetProrated:   prorated.Round(2),
		UpgradeCost:      cost.Round(2),
	}
}
