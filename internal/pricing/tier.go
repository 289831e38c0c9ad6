// Package pricing implements the reputation fee and escrow lifecycle engine:
// score-to-tier classification, basis-point fee math over smallest-unit
// integers, trade status derivation for both contract generations, and the
// escrow countdown. Every function is pure; callers own all I/O and timers.
package pricing

// FeeTier is the classification bucket controlling the trading fee.
type FeeTier string

const (
	TierVIP      FeeTier = "VIP"
	TierStandard FeeTier = "Standard"
	TierHighRisk FeeTier = "High Risk"
)

// TierConfig holds the score thresholds and fee rates for classification.
// Thresholds and rates are configuration, not code, so alternate fee
// schedules can be deployed without touching the classifier.
type TierConfig struct {
	VIPThreshold       int64   // score at or above this is VIP
	StandardThreshold  int64   // score at or above this (but below VIP) is Standard
	VIPFeePercent      float64
	StandardFeePercent float64
	HighRiskFeePercent float64
}

// DefaultTierConfig returns the production fee schedule: VIP at 2000+ pays
// nothing, Standard at 1000+ pays 1%, everyone else pays 2.5%.
func DefaultTierConfig() TierConfig {
	return TierConfig{
		VIPThreshold:       2000,
		StandardThreshold:  1000,
		VIPFeePercent:      0,
		StandardFeePercent: 1,
		HighRiskFeePercent: 2.5,
	}
}

// Classify maps a reputation score to its fee tier and fee percentage.
// First match wins, checked highest tier first. Scores below the Standard
// threshold, including zero and any out-of-contract negative value, fall
// into HighRisk; an unknown-reputation caller is charged conservatively.
func (c TierConfig) Classify(score int64) (FeeTier, float64) {
	switch {
	case score >= c.VIPThreshold:
		return TierVIP, c.VIPFeePercent
	case score >= c.StandardThreshold:
		return TierStandard, c.StandardFeePercent
	default:
		return TierHighRisk, c.HighRiskFeePercent
	}
}

// TierColor maps a tier to its display color token. Presentation only; the
// mapping is a pure function of the tier and nothing else.
func TierColor(tier FeeTier) string {
	switch tier {
	case TierVIP:
		return "neonGreen"
	case TierStandard:
		return "blue"
	default:
		return "warningOrange"
	}
}
