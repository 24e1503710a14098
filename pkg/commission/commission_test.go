package commission

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRateTiers(t *testing.T) {
	tests := []struct {
		participants int
		expected     string
	}{
		{0, "5.00"},
		{99, "5.00"},
		{100, "7.00"},
		{199, "7.00"},
		{200, "10.00"},
		{499, "10.00"},
		{500, "15.00"},
		{10000, "15.00"},
	}

	for _, tt := range tests {
		got := Rate(tt.participants)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)),
			"participants=%d: expected %s, got %s", tt.participants, tt.expected, got)
	}
}

func TestComputeScenario(t *testing.T) {
	split := Compute(decimal.RequireFromString("10000.00"), 150)

	assert.Equal(t, "7", split.Rate.String())
	assert.Equal(t, "700", split.AdminAmount.String())
	assert.Equal(t, "9300", split.OrganizerAmount.String())
}

func TestComputeSumsToTotal(t *testing.T) {
	revenues := []string{"0", "0.01", "0.07", "13.33", "99.99", "1234.56", "10000.00", "987654.31"}
	counts := []int{0, 42, 100, 150, 250, 499, 500, 9000}

	for _, r := range revenues {
		total := decimal.RequireFromString(r)
		for _, c := range counts {
			split := Compute(total, c)
			assert.True(t, split.AdminAmount.Add(split.OrganizerAmount).Equal(total),
				"revenue=%s participants=%d", r, c)
			assert.LessOrEqual(t, split.AdminAmount.Exponent(), int32(0))
			assert.GreaterOrEqual(t, split.AdminAmount.Exponent(), int32(-2))
		}
	}
}

func TestComputeRoundsHalfAwayFromZero(t *testing.T) {
	// 0.10 * 5% = 0.005 rounds to 0.01
	split := Compute(decimal.RequireFromString("0.10"), 10)
	assert.True(t, split.AdminAmount.Equal(decimal.RequireFromString("0.01")))
	assert.True(t, split.OrganizerAmount.Equal(decimal.RequireFromString("0.09")))
}
