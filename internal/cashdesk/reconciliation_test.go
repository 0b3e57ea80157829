package cashdesk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassifyTiers(t *testing.T) {
	cases := []struct {
		abs  string
		tier Tier
	}{
		{"0", TierNone},
		{"0.01", TierNone},
		{"0.02", TierMinor},
		{"2.00", TierMinor},
		{"5.00", TierMinor},
		{"5.01", TierSignificant},
		{"7.00", TierSignificant},
		{"10.00", TierSignificant},
		{"10.01", TierCritical},
		{"15.00", TierCritical},
		{"50.00", TierCritical},
		{"50.01", TierSevere},
		{"60.00", TierSevere},
		{"9999.99", TierSevere},
	}
	for _, tc := range cases {
		rule := Classify(decimal.RequireFromString(tc.abs))
		assert.Equal(t, tc.tier, rule.Tier, "abs=%s", tc.abs)
	}
}

func TestClassifyNegativeDiscrepancy(t *testing.T) {
	// Classification is over the absolute value — a shortage and an overage
	// of the same magnitude land in the same tier.
	short := Classify(decimal.RequireFromString("-7.00"))
	over := Classify(decimal.RequireFromString("7.00"))
	assert.Equal(t, short.Tier, over.Tier)
	assert.Equal(t, TierSignificant, short.Tier)
}

func TestTierRequirementsEscalate(t *testing.T) {
	none := Classify(decimal.RequireFromString("0.01"))
	assert.False(t, none.RequiresJustification)
	assert.False(t, none.RequiresAuthorization)
	assert.False(t, none.RequiresReview)

	significant := Classify(decimal.RequireFromString("7.00"))
	assert.True(t, significant.RequiresJustification)
	assert.False(t, significant.RequiresAuthorization)

	critical := Classify(decimal.RequireFromString("15.00"))
	assert.True(t, critical.RequiresJustification)
	assert.True(t, critical.RequiresAuthorization)
	assert.False(t, critical.RequiresReview)

	severe := Classify(decimal.RequireFromString("60.00"))
	assert.True(t, severe.RequiresJustification)
	assert.True(t, severe.RequiresAuthorization)
	assert.True(t, severe.RequiresReview)
}
