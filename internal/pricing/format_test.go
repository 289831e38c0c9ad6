package pricing

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUnits(t *testing.T) {
	oneEth, _ := new(big.Int).SetString("1000000000000000000", 10)
	onePointTwoFive, _ := new(big.Int).SetString("1250000000000000000", 10)

	assert.Equal(t, "1", FormatUnits(oneEth, 18))
	assert.Equal(t, "1.25", FormatUnits(onePointTwoFive, 18))
	assert.Equal(t, "0.000001", FormatUnits(big.NewInt(1), 6))
	assert.Equal(t, "1500000", FormatUnits(big.NewInt(1_500_000), 0))
	assert.Equal(t, "0", FormatUnits(nil, 18))
}

func TestFormatEther(t *testing.T) {
	fee, _ := new(big.Int).SetString("1250000000000000", 10)
	assert.Equal(t, "0.00125", FormatEther(fee))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "0", FormatPercent(0))
	assert.Equal(t, "1", FormatPercent(1))
	assert.Equal(t, "2.5", FormatPercent(2.5))
}
