package pricing

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FormatUnits renders a smallest-unit integer amount as a human decimal
// string, e.g. 1250000000000000000 wei at 18 decimals -> "1.25". This is the
// lossy display step: the result must never be parsed back into an amount
// that gets compared against or submitted to the contract.
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

// FormatEther is FormatUnits at the native 18 decimals.
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, 18)
}

// FormatPercent renders a fee percentage without float artifacts: 2.5 -> "2.5",
// 1 -> "1", 0 -> "0".
func FormatPercent(feePercent float64) string {
	return decimal.NewFromFloat(feePercent).String()
}
