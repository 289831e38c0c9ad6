// Package receipt builds settlement receipts for trades: the full fee
// breakdown at the rate locked into the trade, in both raw wei and display
// form. Receipts are served over the API and archived to blob storage for
// completed trades.
package receipt

import (
	"fmt"
	"math/big"
	"time"

	"github.com/trusttrade/trustd/internal/domain"
	"github.com/trusttrade/trustd/internal/pricing"
)

// Receipt is a point-in-time settlement record for a trade.
type Receipt struct {
	TradeID        string               `json:"tradeId"`
	Seller         string               `json:"seller"`
	Buyer          string               `json:"buyer,omitempty"`
	Token          string               `json:"token"`
	TokenSymbol    string               `json:"tokenSymbol,omitempty"`
	TokenAmount    string               `json:"tokenAmount"`
	FeeBasisPoints int64                `json:"feeBasisPoints"`
	Status         domain.DisplayStatus `json:"status"`
	Disputed       bool                 `json:"disputed,omitempty"`

	// Wei-exact settlement breakdown.
	EthPrice    string `json:"ethPrice"`
	FeeAmount   string `json:"feeAmount"`
	TotalCost   string `json:"totalCost"`
	NetProceeds string `json:"netProceeds"`

	// Display-formatted ether values.
	EthPriceDisplay    string `json:"ethPriceDisplay"`
	FeeAmountDisplay   string `json:"feeAmountDisplay"`
	TotalCostDisplay   string `json:"totalCostDisplay"`
	NetProceedsDisplay string `json:"netProceedsDisplay"`

	CreatedAt   int64     `json:"createdAt"`
	ExecutedAt  int64     `json:"executedAt,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Build derives the receipt for a trade snapshot. The fee math re-runs the
// same integer quote the contract used, seeded from the basis points locked
// into the trade at creation, so the receipt always matches what settled
// on-chain.
func Build(snap domain.TradeSnapshot, now time.Time) (Receipt, error) {
	price, ok := new(big.Int).SetString(snap.EthPrice, 10)
	if !ok {
		return Receipt{}, fmt.Errorf("receipt: trade %s: bad price %q", snap.ID, snap.EthPrice)
	}

	quote, err := pricing.Quote(price, snap.FeeBasisPoints)
	if err != nil {
		return Receipt{}, fmt.Errorf("receipt: trade %s: %w", snap.ID, err)
	}

	return Receipt{
		TradeID:        snap.ID,
		Seller:         snap.Seller,
		Buyer:          snap.Buyer,
		Token:          snap.Token,
		TokenSymbol:    snap.TokenSymbol,
		TokenAmount:    snap.TokenAmount,
		FeeBasisPoints: snap.FeeBasisPoints,
		Status:         snap.Status,
		Disputed:       snap.Disputed,

		EthPrice:    quote.BasePrice.String(),
		FeeAmount:   quote.FeeAmount.String(),
		TotalCost:   quote.TotalCost.String(),
		NetProceeds: quote.NetProceeds.String(),

		EthPriceDisplay:    pricing.FormatEther(quote.BasePrice),
		FeeAmountDisplay:   pricing.FormatEther(quote.FeeAmount),
		TotalCostDisplay:   pricing.FormatEther(quote.TotalCost),
		NetProceedsDisplay: pricing.FormatEther(quote.NetProceeds),

		CreatedAt:   snap.CreatedAt,
		ExecutedAt:  snap.ExecutedAt,
		GeneratedAt: now.UTC(),
	}, nil
}
