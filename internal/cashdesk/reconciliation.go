package cashdesk

import "github.com/shopspring/decimal"

// Tier classifies the absolute counted-vs-expected discrepancy at close time.
type Tier string

const (
	TierNone        Tier = "none"
	TierMinor       Tier = "minor"
	TierSignificant Tier = "significant"
	TierCritical    Tier = "critical"
	TierSevere      Tier = "severe"
)

// TierRule is one row of the reconciliation table. UpperBound is inclusive;
// Unbounded marks the terminal row.
type TierRule struct {
	Tier                  Tier
	UpperBound            decimal.Decimal
	Unbounded             bool
	RequiresJustification bool
	RequiresAuthorization bool
	RequiresReview        bool
}

// tierTable is the single source of truth for close-time gating, ordered by
// ascending upper bound. Adding a tier is a data change, not a control-flow
// change.
var tierTable = []TierRule{
	{Tier: TierNone, UpperBound: decimal.NewFromFloat(0.01)},
	{Tier: TierMinor, UpperBound: decimal.NewFromInt(5)},
	{Tier: TierSignificant, UpperBound: decimal.NewFromInt(10), RequiresJustification: true},
	{Tier: TierCritical, UpperBound: decimal.NewFromInt(50), RequiresJustification: true, RequiresAuthorization: true},
	{Tier: TierSevere, Unbounded: true, RequiresJustification: true, RequiresAuthorization: true, RequiresReview: true},
}

// Classify returns the rule matching the absolute discrepancy value.
func Classify(abs decimal.Decimal) TierRule {
	abs = abs.Abs()
	for _, rule := range tierTable {
		if rule.Unbounded || abs.LessThanOrEqual(rule.UpperBound) {
			return rule
		}
	}
	// Unreachable while the table keeps its unbounded terminal row.
	return tierTable[len(tierTable)-1]
}
