package rangecalc

import (
	"fmt"

	"github.com/holiman/uint256"

	"liquidityRange/internal/fixedpoint"
	"liquidityRange/internal/model"
)

// MaxWidth is the exclusive upper bound of the width parameter.
const MaxWidth = 1000

// valueBits bounds the normalized amounts so that B^2 + 4AC stays within 256 bits
// (sqrtK < 2^38 in Q32).
const valueBits = 88

var (
	ErrZeroAmount0 = fmt.Errorf("%w: amount0 is zero", fixedpoint.ErrArithmetic)
	ErrZeroPrice   = fmt.Errorf("%w: sqrt price is zero", fixedpoint.ErrArithmetic)
)

// ErrPriceOutsideRange means the amounts are too lopsided to place the
// current price inside the solved range at fixed-point precision.
var ErrPriceOutsideRange = fmt.Errorf("%w: current price outside solved range", fixedpoint.ErrArithmetic)

// SqrtRatioQ32 returns floor(sqrt((1000+width)/(1000-width))) in Q32, the
// target ratio between the upper and lower sqrt prices.
func SqrtRatioQ32(width uint32) (*uint256.Int, error) {
	if width >= MaxWidth {
		return nil, fmt.Errorf("width %d: %w", width, model.ErrInvalidWidth)
	}
	num := new(uint256.Int).Lsh(uint256.NewInt(uint64(MaxWidth+width)), 64)
	ratio, err := fixedpoint.Div(num, uint256.NewInt(uint64(MaxWidth-width)))
	if err != nil {
		return nil, err
	}
	return fixedpoint.Sqrt(ratio), nil
}

// Solve derives sqrt price bounds around the current price such that amount0
// and amount1 buy the same liquidity and sqrtUpper/sqrtLow equals
// sqrt((1000+width)/(1000-width)). All inputs and outputs are Q64.96 or raw
// token units; every division truncates.
//
// With v0 = amount0*price and v1 = amount1 (both in token1 units) and
// sqrtLow = sqrtPrice*y, equating the two liquidity formulas gives
//
//	k*v0*y^2 + k*(v1-v0)*y - v1 = 0
//
// whose positive root is taken with an integer square root.
func Solve(sqrtPriceX96, amount0, amount1 *uint256.Int, width uint32) (*uint256.Int, *uint256.Int, error) {
	sqrtK, err := SqrtRatioQ32(width)
	if err != nil {
		return nil, nil, err
	}
	if sqrtPriceX96 == nil || sqrtPriceX96.IsZero() {
		return nil, nil, ErrZeroPrice
	}
	if amount0 == nil || amount0.IsZero() {
		return nil, nil, ErrZeroAmount0
	}
	if amount1 == nil {
		amount1 = new(uint256.Int)
	}

	v0, err := fixedpoint.MulDiv(amount0, sqrtPriceX96, fixedpoint.Q96)
	if err != nil {
		return nil, nil, fmt.Errorf("value of amount0: %w", err)
	}
	v0, err = fixedpoint.MulDiv(v0, sqrtPriceX96, fixedpoint.Q96)
	if err != nil {
		return nil, nil, fmt.Errorf("value of amount0: %w", err)
	}
	v0, v1 := normalize(v0, amount1.Clone())
	if v0.IsZero() {
		return nil, nil, fmt.Errorf("value of amount0 truncates to zero: %w", fixedpoint.ErrDivisionByZero)
	}

	yQ64, err := solveQuadratic(sqrtK, v0, v1)
	if err != nil {
		return nil, nil, err
	}

	sqrtLow, err := fixedpoint.MulDiv(sqrtPriceX96, yQ64, fixedpoint.Q64)
	if err != nil {
		return nil, nil, fmt.Errorf("sqrt low: %w", err)
	}
	sqrtUpper, err := fixedpoint.MulDiv(sqrtLow, sqrtK, fixedpoint.Q32)
	if err != nil {
		return nil, nil, fmt.Errorf("sqrt upper: %w", err)
	}
	// The range must contain the current price. When one side is worth
	// vastly more than the other, the true upper bound sits closer to the
	// price than the Q32 ratio can resolve.
	if sqrtUpper.Lt(sqrtPriceX96) || sqrtPriceX96.Lt(sqrtLow) {
		return nil, nil, fmt.Errorf("range %s-%s excludes sqrt price %s: %w",
			sqrtLow.ToBig(), sqrtUpper.ToBig(), sqrtPriceX96.ToBig(), ErrPriceOutsideRange)
	}
	return sqrtLow, sqrtUpper, nil
}

// normalize shifts both values right by the same amount until the larger one
// fits in valueBits. The root only depends on v1/v0.
func normalize(v0, v1 *uint256.Int) (*uint256.Int, *uint256.Int) {
	bits := v0.BitLen()
	if v1.BitLen() > bits {
		bits = v1.BitLen()
	}
	if bits <= valueBits {
		return v0, v1
	}
	shift := uint(bits - valueBits)
	return v0.Rsh(v0, shift), v1.Rsh(v1, shift)
}

// solveQuadratic returns y in Q64 for A*y^2 + B*y - C = 0 with
// A = k*v0, B = k*(v1-v0), C = v1*2^32 and k in Q32.
func solveQuadratic(sqrtK, v0, v1 *uint256.Int) (*uint256.Int, error) {
	a, err := fixedpoint.Mul(sqrtK, v0)
	if err != nil {
		return nil, fmt.Errorf("coefficient a: %w", err)
	}

	// B is signed; keep its magnitude and sign apart.
	negativeB := v0.Gt(v1)
	var diff *uint256.Int
	if negativeB {
		diff, err = fixedpoint.Sub(v0, v1)
	} else {
		diff, err = fixedpoint.Sub(v1, v0)
	}
	if err != nil {
		return nil, err
	}
	b, err := fixedpoint.Mul(sqrtK, diff)
	if err != nil {
		return nil, fmt.Errorf("coefficient b: %w", err)
	}

	bSquared, err := fixedpoint.Mul(b, b)
	if err != nil {
		return nil, fmt.Errorf("discriminant: %w", err)
	}
	fourAC, err := fixedpoint.Mul(a, v1)
	if err != nil {
		return nil, fmt.Errorf("discriminant: %w", err)
	}
	fourAC, err = fixedpoint.Lsh(fourAC, 34)
	if err != nil {
		return nil, fmt.Errorf("discriminant: %w", err)
	}
	disc, err := fixedpoint.Add(bSquared, fourAC)
	if err != nil {
		return nil, fmt.Errorf("discriminant: %w", err)
	}
	root := fixedpoint.Sqrt(disc)

	// Pick the root form that adds rather than subtracts the two large terms.
	if negativeB {
		numerator, err := fixedpoint.Add(root, b)
		if err != nil {
			return nil, fmt.Errorf("root numerator: %w", err)
		}
		twoA, err := fixedpoint.Lsh(a, 1)
		if err != nil {
			return nil, err
		}
		y, err := fixedpoint.MulDiv(numerator, fixedpoint.Q64, twoA)
		if err != nil {
			return nil, fmt.Errorf("root: %w", err)
		}
		return y, nil
	}

	// y = 2C / (B + sqrt(disc))
	twoC, err := fixedpoint.Lsh(v1, 33)
	if err != nil {
		return nil, err
	}
	denominator, err := fixedpoint.Add(b, root)
	if err != nil {
		return nil, fmt.Errorf("root denominator: %w", err)
	}
	y, err := fixedpoint.MulDiv(twoC, fixedpoint.Q64, denominator)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}
	return y, nil
}
