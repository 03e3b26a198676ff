package liquidity

import (
	"fmt"

	"github.com/holiman/uint256"

	"liquidityRange/internal/fixedpoint"
)

// MaxLiquidity is the largest liquidity a V3 position can hold (uint128).
var MaxLiquidity = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

func sorted(sqrtA, sqrtB *uint256.Int) (*uint256.Int, *uint256.Int) {
	if sqrtA.Gt(sqrtB) {
		return sqrtB, sqrtA
	}
	return sqrtA, sqrtB
}

// ForAmount0 returns the liquidity amount0 buys between two sqrt prices.
func ForAmount0(sqrtA, sqrtB, amount0 *uint256.Int) (*uint256.Int, error) {
	sqrtA, sqrtB = sorted(sqrtA, sqrtB)
	intermediate, err := fixedpoint.MulDiv(sqrtA, sqrtB, fixedpoint.Q96)
	if err != nil {
		return nil, err
	}
	width, err := fixedpoint.Sub(sqrtB, sqrtA)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDiv(amount0, intermediate, width)
}

// ForAmount1 returns the liquidity amount1 buys between two sqrt prices.
func ForAmount1(sqrtA, sqrtB, amount1 *uint256.Int) (*uint256.Int, error) {
	sqrtA, sqrtB = sorted(sqrtA, sqrtB)
	width, err := fixedpoint.Sub(sqrtB, sqrtA)
	if err != nil {
		return nil, err
	}
	return fixedpoint.MulDiv(amount1, fixedpoint.Q96, width)
}

// ForAmounts returns the largest liquidity both amounts can pay for at the
// current price, following the V3 periphery LiquidityAmounts rules.
func ForAmounts(sqrtPrice, sqrtA, sqrtB, amount0, amount1 *uint256.Int) (*uint256.Int, error) {
	sqrtA, sqrtB = sorted(sqrtA, sqrtB)

	var (
		liquidity *uint256.Int
		err       error
	)
	switch {
	case !sqrtPrice.Gt(sqrtA):
		liquidity, err = ForAmount0(sqrtA, sqrtB, amount0)
	case sqrtPrice.Lt(sqrtB):
		var liquidity0, liquidity1 *uint256.Int
		liquidity0, err = ForAmount0(sqrtPrice, sqrtB, amount0)
		if err != nil {
			return nil, err
		}
		liquidity1, err = ForAmount1(sqrtA, sqrtPrice, amount1)
		if err != nil {
			return nil, err
		}
		liquidity = liquidity0
		if liquidity1.Lt(liquidity0) {
			liquidity = liquidity1
		}
	default:
		liquidity, err = ForAmount1(sqrtA, sqrtB, amount1)
	}
	if err != nil {
		return nil, err
	}
	if liquidity.Gt(MaxLiquidity) {
		return nil, fmt.Errorf("liquidity %s exceeds uint128: %w", liquidity.ToBig(), fixedpoint.ErrOverflow)
	}
	return liquidity, nil
}

// Amount0Delta returns the token0 amount backing liquidity between two sqrt prices.
func Amount0Delta(sqrtA, sqrtB, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	sqrtA, sqrtB = sorted(sqrtA, sqrtB)
	if sqrtA.IsZero() {
		return nil, fmt.Errorf("amount0 delta: %w", fixedpoint.ErrDivisionByZero)
	}

	numerator1, err := fixedpoint.Lsh(liquidity, 96)
	if err != nil {
		return nil, err
	}
	numerator2, err := fixedpoint.Sub(sqrtB, sqrtA)
	if err != nil {
		return nil, err
	}

	if roundUp {
		inner, err := fixedpoint.MulDivRoundingUp(numerator1, numerator2, sqrtB)
		if err != nil {
			return nil, err
		}
		return fixedpoint.DivRoundingUp(inner, sqrtA)
	}
	inner, err := fixedpoint.MulDiv(numerator1, numerator2, sqrtB)
	if err != nil {
		return nil, err
	}
	return fixedpoint.Div(inner, sqrtA)
}

// Amount1Delta returns the token1 amount backing liquidity between two sqrt prices.
func Amount1Delta(sqrtA, sqrtB, liquidity *uint256.Int, roundUp bool) (*uint256.Int, error) {
	sqrtA, sqrtB = sorted(sqrtA, sqrtB)
	width, err := fixedpoint.Sub(sqrtB, sqrtA)
	if err != nil {
		return nil, err
	}
	if roundUp {
		return fixedpoint.MulDivRoundingUp(liquidity, width, fixedpoint.Q96)
	}
	return fixedpoint.MulDiv(liquidity, width, fixedpoint.Q96)
}

// ForLiquidity returns the token amounts a position of the given liquidity
// holds at the current price. The pool side rounds up, quoting rounds down.
func ForLiquidity(sqrtPrice, sqrtA, sqrtB, liquidity *uint256.Int, roundUp bool) (*uint256.Int, *uint256.Int, error) {
	sqrtA, sqrtB = sorted(sqrtA, sqrtB)
	amount0 := new(uint256.Int)
	amount1 := new(uint256.Int)

	var err error
	switch {
	case !sqrtPrice.Gt(sqrtA):
		amount0, err = Amount0Delta(sqrtA, sqrtB, liquidity, roundUp)
	case sqrtPrice.Lt(sqrtB):
		amount0, err = Amount0Delta(sqrtPrice, sqrtB, liquidity, roundUp)
		if err != nil {
			return nil, nil, err
		}
		amount1, err = Amount1Delta(sqrtA, sqrtPrice, liquidity, roundUp)
	default:
		amount1, err = Amount1Delta(sqrtA, sqrtB, liquidity, roundUp)
	}
	if err != nil {
		return nil, nil, err
	}
	return amount0, amount1, nil
}
