package receipt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trusttrade/trustd/internal/domain"
)

func TestBuild(t *testing.T) {
	snap := domain.TradeSnapshot{
		ID:             "42",
		Seller:         "0x2222222222222222222222222222222222222222",
		Buyer:          "0x3333333333333333333333333333333333333333",
		Token:          "0x4200000000000000000000000000000000000006",
		TokenSymbol:    "WETH",
		TokenAmount:    "5000000",
		EthPrice:       "50000000000000000", // 0.05 ETH
		FeeBasisPoints: 250,
		Status:         domain.StatusCompleted,
		CreatedAt:      1_700_000_000,
		ExecutedAt:     1_700_003_600,
	}

	r, err := Build(snap, time.Unix(1_700_010_000, 0))
	require.NoError(t, err)

	assert.Equal(t, "42", r.TradeID)
	assert.Equal(t, "1250000000000000", r.FeeAmount)
	assert.Equal(t, "51250000000000000", r.TotalCost)
	assert.Equal(t, "48750000000000000", r.NetProceeds)
	assert.Equal(t, "0.05", r.EthPriceDisplay)
	assert.Equal(t, "0.05125", r.TotalCostDisplay)
	assert.Equal(t, "0.04875", r.NetProceedsDisplay)
}

func TestBuild_BadPrice(t *testing.T) {
	_, err := Build(domain.TradeSnapshot{ID: "1", EthPrice: "not-a-number"}, time.Now())
	assert.Error(t, err)
}

func TestBuild_InvalidBps(t *testing.T) {
	_, err := Build(domain.TradeSnapshot{
		ID:             "1",
		EthPrice:       "1000",
		FeeBasisPoints: 20000,
	}, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidFeeBps)
}
