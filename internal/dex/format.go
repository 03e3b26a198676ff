package dex

import (
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"liquidityRange/internal/fixedpoint"
)

// FormatTokenAmount renders a raw token amount with the token's decimals.
func FormatTokenAmount(value *uint256.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value.ToBig(), -int32(decimals)).String()
}

// HumanPrice converts a Q64.96 sqrt price to token1 per token0 in whole
// units, rounded to places decimal places.
func HumanPrice(sqrtPriceX96 *uint256.Int, decimals0, decimals1 uint8, places int32) decimal.Decimal {
	if sqrtPriceX96 == nil || sqrtPriceX96.IsZero() {
		return decimal.Zero
	}
	sqrt := decimal.NewFromBigInt(sqrtPriceX96.ToBig(), 0)
	q96 := decimal.NewFromBigInt(fixedpoint.Q96.ToBig(), 0)
	// Keep enough precision for tiny prices before rounding.
	ratio := sqrt.DivRound(q96, 40)
	price := ratio.Mul(ratio)
	price = price.Shift(int32(decimals0) - int32(decimals1))
	return price.Round(places)
}
