package pricing

import "math/big"

// ReputationQuote is the full pricing result for a trade: the tier and rate
// the score resolves to, plus the settlement breakdown at that rate.
type ReputationQuote struct {
	Score          int64           `json:"score"`
	Tier           FeeTier         `json:"tier"`
	FeePercent     float64         `json:"feePercent"`
	FeeBasisPoints int64           `json:"feeBasisPoints"`
	Quote          SettlementQuote `json:"quote"`
}

// BuildQuote classifies the score under cfg and prices basePrice (smallest
// units) at the resulting rate. Pure composition of Classify, ToBasisPoints
// and Quote; the score must already be resolved by the caller, so this is
// fully testable with no oracle or chain access.
func BuildQuote(cfg TierConfig, score int64, basePrice *big.Int) (ReputationQuote, error) {
	tier, feePercent := cfg.Classify(score)

	bps, err := ToBasisPoints(feePercent)
	if err != nil {
		return ReputationQuote{}, err
	}

	quote, err := Quote(basePrice, bps)
	if err != nil {
		return ReputationQuote{}, err
	}

	return ReputationQuote{
		Score:          score,
		Tier:           tier,
		FeePercent:     feePercent,
		FeeBasisPoints: bps,
		Quote:          quote,
	}, nil
}
