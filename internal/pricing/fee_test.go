package pricing

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trusttrade/trustd/internal/domain"
)

func TestToBasisPoints(t *testing.T) {
	tests := []struct {
		percent float64
		bps     int64
	}{
		{0, 0},
		{1, 100},
		{2.5, 250},
		{0.015, 1}, // floors, never rounds up
		{0.999, 99},
		{100, 10000},
	}

	for _, tt := range tests {
		bps, err := ToBasisPoints(tt.percent)
		require.NoError(t, err)
		assert.Equal(t, tt.bps, bps, "percent %v", tt.percent)
	}
}

func TestToBasisPoints_RejectsOutOfRange(t *testing.T) {
	_, err := ToBasisPoints(-1)
	assert.ErrorIs(t, err, domain.ErrInvalidFeeBps)

	_, err = ToBasisPoints(101)
	assert.ErrorIs(t, err, domain.ErrInvalidFeeBps)
}

func TestQuote_OneEthZeroFee(t *testing.T) {
	oneEth, _ := new(big.Int).SetString("1000000000000000000", 10)

	q, err := Quote(oneEth, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(0), q.FeeAmount.Int64())
	assert.Equal(t, 0, q.TotalCost.Cmp(oneEth))
	assert.Equal(t, 0, q.NetProceeds.Cmp(oneEth))
}

func TestQuote_HighRiskRate(t *testing.T) {
	// 0.05 ETH at 250 bps: fee 1.25e15, buyer sends 5.125e16, seller nets 4.875e16.
	price, _ := new(big.Int).SetString("50000000000000000", 10)

	q, err := Quote(price, 250)
	require.NoError(t, err)

	wantFee, _ := new(big.Int).SetString("1250000000000000", 10)
	wantTotal, _ := new(big.Int).SetString("51250000000000000", 10)
	wantNet, _ := new(big.Int).SetString("48750000000000000", 10)

	assert.Equal(t, 0, q.FeeAmount.Cmp(wantFee))
	assert.Equal(t, 0, q.TotalCost.Cmp(wantTotal))
	assert.Equal(t, 0, q.NetProceeds.Cmp(wantNet))
}

func TestQuote_IntegerDivisionTruncates(t *testing.T) {
	// 999 * 250 / 10000 = 24.975 -> 24 in integer math.
	q, err := Quote(big.NewInt(999), 250)
	require.NoError(t, err)
	assert.Equal(t, int64(24), q.FeeAmount.Int64())
	assert.Equal(t, int64(1023), q.TotalCost.Int64())
	assert.Equal(t, int64(975), q.NetProceeds.Int64())
}

func TestQuote_DoubleSidedFeeInvariant(t *testing.T) {
	// totalCost - netProceeds == 2*fee for any price and rate: the fee is
	// charged once on each side.
	prices := []int64{1, 7, 999, 1_000_000, 123_456_789}
	rates := []int64{0, 1, 100, 250, 9999, 10000}

	for _, p := range prices {
		for _, r := range rates {
			q, err := Quote(big.NewInt(p), r)
			require.NoError(t, err)

			diff := new(big.Int).Sub(q.TotalCost, q.NetProceeds)
			twice := new(big.Int).Lsh(q.FeeAmount, 1)
			assert.Equal(t, 0, diff.Cmp(twice), "price %d rate %d", p, r)

			wantFee := big.NewInt(p * r / 10000)
			assert.Equal(t, 0, q.FeeAmount.Cmp(wantFee), "price %d rate %d", p, r)
		}
	}
}

func TestQuote_RejectsInvalidInputs(t *testing.T) {
	_, err := Quote(big.NewInt(100), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidFeeBps)

	_, err = Quote(big.NewInt(100), 10001)
	assert.ErrorIs(t, err, domain.ErrInvalidFeeBps)

	_, err = Quote(big.NewInt(0), 100)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = Quote(big.NewInt(-5), 100)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = Quote(nil, 100)
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestQuote_DoesNotAliasInput(t *testing.T) {
	price := big.NewInt(1000)
	q, err := Quote(price, 250)
	require.NoError(t, err)

	price.SetInt64(1)
	assert.Equal(t, int64(1000), q.BasePrice.Int64())
	assert.Equal(t, int64(1025), q.TotalCost.Int64())
}
