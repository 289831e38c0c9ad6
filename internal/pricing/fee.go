package pricing

import (
	"fmt"
	"math"
	"math/big"

	"github.com/trusttrade/trustd/internal/domain"
)

const bpsDenominator = 10000

var bpsDenom = big.NewInt(bpsDenominator)

// SettlementQuote is the fee breakdown for a trade at a given price and rate.
// All amounts are in the smallest currency unit (wei). The fee is charged on
// both sides: the buyer sends BasePrice+FeeAmount and the seller nets
// BasePrice-FeeAmount, each computed independently from the same rate and
// base price. That mirrors the deployed contract's arithmetic exactly and
// must not be collapsed into a single charge.
type SettlementQuote struct {
	BasePrice   *big.Int `json:"basePrice"`
	FeeAmount   *big.Int `json:"feeAmount"`
	TotalCost   *big.Int `json:"totalCost"`   // what the buyer sends
	NetProceeds *big.Int `json:"netProceeds"` // what the seller keeps
}

// ToBasisPoints converts a fee percentage to basis points, truncating toward
// zero to match the contract's integer semantics: 0 -> 0, 1 -> 100,
// 2.5 -> 250. A percentage outside [0,100] is rejected.
func ToBasisPoints(feePercent float64) (int64, error) {
	if feePercent < 0 || feePercent > 100 || math.IsNaN(feePercent) {
		return 0, fmt.Errorf("pricing: fee percent %v: %w", feePercent, domain.ErrInvalidFeeBps)
	}
	return int64(math.Floor(feePercent * 100)), nil
}

// Quote computes the settlement breakdown for basePrice (smallest units) at
// feeBasisPoints. The fee is price*bps/10000 with integer division, the same
// fixed-point math the contract runs; a one-unit divergence here makes the
// buyer's transaction revert on amount mismatch.
func Quote(basePrice *big.Int, feeBasisPoints int64) (SettlementQuote, error) {
	if feeBasisPoints < 0 || feeBasisPoints > bpsDenominator {
		return SettlementQuote{}, fmt.Errorf("pricing: %d bps: %w", feeBasisPoints, domain.ErrInvalidFeeBps)
	}
	if basePrice == nil || basePrice.Sign() <= 0 {
		return SettlementQuote{}, fmt.Errorf("pricing: quote: %w", domain.ErrInvalidPrice)
	}

	fee := new(big.Int).Mul(basePrice, big.NewInt(feeBasisPoints))
	fee.Quo(fee, bpsDenom)

	return SettlementQuote{
		BasePrice:   new(big.Int).Set(basePrice),
		FeeAmount:   fee,
		TotalCost:   new(big.Int).Add(basePrice, fee),
		NetProceeds: new(big.Int).Sub(basePrice, fee),
	}, nil
}
