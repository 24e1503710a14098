package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		active   bool
		end      time.Time
		expected int
	}{
		{"inactive", false, now.AddDate(0, 0, 5), 0},
		{"expired", true, now.AddDate(0, 0, -3), 0},
		{"ends exactly now", true, now, 0},
		{"ends later today", true, now.Add(2 * time.Hour), 0},
		{"ends tomorrow morning", true, time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC), 1},
		{"twenty days left", true, now.AddDate(0, 0, 20), 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := UserSubscription{IsActive: tt.active, EndDate: tt.end}
			got := sub.DaysRemaining(now)
			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got, 0)
		})
	}

	// Still valid for two more hours, but no whole calendar day is left.
	sameDay := UserSubscription{IsActive: true, EndDate: now.Add(2 * time.Hour)}
	assert.True(t, sameDay.IsValid(now))
	assert.Zero(t, sameDay.DaysRemaining(now))
}

func TestUsageLimitsAreStrict(t *testing.T) {
	sub := UserSubscription{Plan: SubscriptionPlan{EventJoinLimit: 2, EventCreationLimit: 0}}

	assert.True(t, sub.CanJoinEvent())
	sub.IncrementJoined()
	assert.True(t, sub.CanJoinEvent())
	sub.IncrementJoined()
	assert.False(t, sub.CanJoinEvent())

	assert.False(t, sub.CanOrganizeEvent())

	sub.ResetMonthlyCounters()
	assert.Equal(t, 0, sub.EventsJoinedThisMonth)
	assert.True(t, sub.CanJoinEvent())
}

func TestUnlimitedPlanNeverBlocks(t *testing.T) {
	sub := UserSubscription{Plan: SubscriptionPlan{EventJoinLimit: UnlimitedUsage, EventCreationLimit: UnlimitedUsage}}
	for i := 0; i < 1000; i++ {
		sub.IncrementJoined()
		sub.IncrementOrganized()
	}
	assert.True(t, sub.CanJoinEvent())
	assert.True(t, sub.CanOrganizeEvent())
}

func TestDaysUsedClampsToCycle(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	sub := UserSubscription{StartDate: start}

	assert.Equal(t, 0, sub.DaysUsed(start.Add(-time.Hour)))
	assert.Equal(t, 10, sub.DaysUsed(start.AddDate(0, 0, 10)))
	assert.Equal(t, BillingCycleDays, sub.DaysUsed(start.AddDate(0, 0, 45)))
}

func TestEventEligibility(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	earlierToday := now.Add(-time.Hour)

	ended := Event{IsPublished: true, EndDate: &yesterday}
	assert.True(t, ended.EligibleForDistribution(now))

	endsToday := Event{IsPublished: true, EndDate: &earlierToday}
	assert.False(t, endsToday.EligibleForDistribution(now))

	draft := Event{IsPublished: false, EndDate: &yesterday}
	assert.False(t, draft.EligibleForDistribution(now))

	done := Event{IsPublished: true, RevenueDistributed: true, EndDate: &yesterday}
	assert.False(t, done.EligibleForDistribution(now))

	open := Event{IsPublished: true}
	assert.False(t, open.EligibleForDistribution(now))
}
