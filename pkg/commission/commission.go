// Package commission computes the platform's tiered share of event revenue.
package commission

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

type tier struct {
	minParticipants int
	rate            decimal.Decimal
}

// Tiers are ordered by descending lower bound; the first match wins.
var tiers = []tier{
	{minParticipants: 500, rate: decimal.RequireFromString("15.00")},
	{minParticipants: 200, rate: decimal.RequireFromString("10.00")},
	{minParticipants: 100, rate: decimal.RequireFromString("7.00")},
	{minParticipants: 0, rate: decimal.RequireFromString("5.00")},
}

// Rate returns the admin percentage for a participant count. Lower bounds are inclusive.
func Rate(participants int) decimal.Decimal {
	for _, t := range tiers {
		if participants >= t.minParticipants {
			return t.rate
		}
	}
	return tiers[len(tiers)-1].rate
}

type Split struct {
	Rate            decimal.Decimal
	AdminAmount     decimal.Decimal
	OrganizerAmount decimal.Decimal
}

// Compute splits revenue between platform and organizer. The organizer amount
// is derived by subtraction so the two always sum to totalRevenue.
func Compute(totalRevenue decimal.Decimal, participants int) Split {
	rate := Rate(participants)
	admin := totalRevenue.Mul(rate).Div(hundred).Round(2)
	return Split{
		Rate:            rate,
		AdminAmount:     admin,
		OrganizerAmount: totalRevenue.Sub(admin),
	}
}
