package subgraph

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/trusttrade/trustd/internal/domain"
)

// decodeTradeList unpacks a {"trades": [...]} payload into domain trades.
func decodeTradeList(data json.RawMessage) ([]domain.Trade, error) {
	var result struct {
		Trades []rawTrade `json:"trades"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("subgraph: decode trades: %w", err)
	}

	trades := make([]domain.Trade, 0, len(result.Trades))
	for _, rt := range result.Trades {
		trades = append(trades, convertTrade(rt))
	}
	return trades, nil
}

func convertTrade(rt rawTrade) domain.Trade {
	t := domain.Trade{
		ID:             rt.ID,
		TradeID:        parseInt(rt.TradeID),
		Seller:         rt.Seller.Address,
		Token:          rt.Token,
		TokenAmount:    rt.TokenAmount,
		EthPrice:       rt.EthPrice,
		FeeBasisPoints: parseInt(rt.FeeBasisPoints),
		Status:         domain.DisplayStatus(rt.Status),
		Disputed:       rt.Disputed,
		CreatedAt:      unixTime(parseInt(rt.CreatedAt)),
		EscrowDuration: parseInt(rt.EscrowDuration),
	}
	if rt.Buyer != nil {
		t.Buyer = rt.Buyer.Address
	}
	if ts := parseInt(rt.ExecutedAt); ts > 0 {
		at := unixTime(ts)
		t.ExecutedAt = &at
	}
	if ts := parseInt(rt.CompletedAt); ts > 0 {
		at := unixTime(ts)
		t.CompletedAt = &at
	}
	return t
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func unixTime(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}
