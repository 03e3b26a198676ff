package rangecalc

import (
	"errors"
	"fmt"

	"github.com/daoleno/uniswapv3-sdk/utils"
	"github.com/holiman/uint256"

	"liquidityRange/internal/fixedpoint"
)

const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

var ErrTickOutOfRange = errors.New("tick out of range")

var (
	MinSqrtRatio = fixedpoint.MustParse("4295128739")
	MaxSqrtRatio = fixedpoint.MustParse("1461446703485210103287273052203988822378723970342")
)

// SqrtPriceAtTick returns sqrt(1.0001^tick) as a Q64.96 value.
func SqrtPriceAtTick(tick int32) (*uint256.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, fmt.Errorf("sqrt price at tick %d: %w", tick, ErrTickOutOfRange)
	}
	ratio, err := utils.GetSqrtRatioAtTick(int(tick))
	if err != nil {
		return nil, fmt.Errorf("sqrt price at tick %d: %w", tick, err)
	}
	return fixedpoint.FromBig(ratio)
}

// TickAtSqrtPrice returns the greatest tick whose sqrt price is <= sqrtPriceX96.
func TickAtSqrtPrice(sqrtPriceX96 *uint256.Int) (int32, error) {
	if sqrtPriceX96 == nil {
		return 0, fmt.Errorf("tick at nil sqrt price: %w", ErrTickOutOfRange)
	}
	if sqrtPriceX96.Lt(MinSqrtRatio) || !sqrtPriceX96.Lt(MaxSqrtRatio) {
		return 0, fmt.Errorf("tick at sqrt price %s: %w", sqrtPriceX96.ToBig(), ErrTickOutOfRange)
	}
	tick, err := utils.GetTickAtSqrtRatio(sqrtPriceX96.ToBig())
	if err != nil {
		return 0, fmt.Errorf("tick at sqrt price %s: %w", sqrtPriceX96.ToBig(), err)
	}
	return int32(tick), nil
}
