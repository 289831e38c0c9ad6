package pricing

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trusttrade/trustd/internal/domain"
)

func TestBuildQuote_VIPScenario(t *testing.T) {
	// score 2500 -> VIP, 0% -> 0 bps -> 1 ETH costs exactly 1 ETH both ways.
	oneEth, _ := new(big.Int).SetString("1000000000000000000", 10)

	rq, err := BuildQuote(DefaultTierConfig(), 2500, oneEth)
	require.NoError(t, err)

	assert.Equal(t, TierVIP, rq.Tier)
	assert.Equal(t, 0.0, rq.FeePercent)
	assert.Equal(t, int64(0), rq.FeeBasisPoints)
	assert.Equal(t, int64(0), rq.Quote.FeeAmount.Int64())
	assert.Equal(t, 0, rq.Quote.TotalCost.Cmp(oneEth))
	assert.Equal(t, 0, rq.Quote.NetProceeds.Cmp(oneEth))
}

func TestBuildQuote_HighRiskScenario(t *testing.T) {
	// score 500 -> High Risk, 2.5% -> 250 bps on 0.05 ETH.
	price, _ := new(big.Int).SetString("50000000000000000", 10)

	rq, err := BuildQuote(DefaultTierConfig(), 500, price)
	require.NoError(t, err)

	assert.Equal(t, TierHighRisk, rq.Tier)
	assert.Equal(t, 2.5, rq.FeePercent)
	assert.Equal(t, int64(250), rq.FeeBasisPoints)

	wantFee, _ := new(big.Int).SetString("1250000000000000", 10)
	wantTotal, _ := new(big.Int).SetString("51250000000000000", 10)
	wantNet, _ := new(big.Int).SetString("48750000000000000", 10)
	assert.Equal(t, 0, rq.Quote.FeeAmount.Cmp(wantFee))
	assert.Equal(t, 0, rq.Quote.TotalCost.Cmp(wantTotal))
	assert.Equal(t, 0, rq.Quote.NetProceeds.Cmp(wantNet))
}

func TestBuildQuote_StandardScenario(t *testing.T) {
	rq, err := BuildQuote(DefaultTierConfig(), 1500, big.NewInt(1_000_000))
	require.NoError(t, err)

	assert.Equal(t, TierStandard, rq.Tier)
	assert.Equal(t, int64(100), rq.FeeBasisPoints)
	assert.Equal(t, int64(10_000), rq.Quote.FeeAmount.Int64())
	assert.Equal(t, int64(1_010_000), rq.Quote.TotalCost.Int64())
	assert.Equal(t, int64(990_000), rq.Quote.NetProceeds.Int64())
}

func TestBuildQuote_RejectsBadPrice(t *testing.T) {
	_, err := BuildQuote(DefaultTierConfig(), 1500, big.NewInt(0))
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}
