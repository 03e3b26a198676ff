package rangecalc

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidityRange/internal/fixedpoint"
	"liquidityRange/internal/liquidity"
	"liquidityRange/internal/model"
)

func ether(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(1_000_000_000_000_000_000))
}

// sqrtPriceFor returns floor(sqrt(price) * 2^96) for an integer price.
func sqrtPriceFor(price uint64) *uint256.Int {
	return fixedpoint.Sqrt(new(uint256.Int).Lsh(uint256.NewInt(price), 192))
}

func priceRatio(low, up *uint256.Int) float64 {
	r := new(big.Float).Quo(new(big.Float).SetInt(up.ToBig()), new(big.Float).SetInt(low.ToBig()))
	f, _ := r.Float64()
	return f * f
}

func relErr(got, want float64) float64 {
	d := got/want - 1
	if d < 0 {
		return -d
	}
	return d
}

func TestSolveRatioWithinOnePercent(t *testing.T) {
	sqrtPrice := sqrtPriceFor(4000)
	pairs := [][2]*uint256.Int{
		{ether(1), ether(4000)},
		{ether(1), uint256.NewInt(1)},
		{uint256.NewInt(1_000_000_000), ether(1_000_000_000)},
		{uint256.NewInt(1_000_000), uint256.NewInt(1_000_000)},
		{ether(250), ether(3)},
	}
	for width := uint32(0); width < MaxWidth; width++ {
		target := float64(1000+width) / float64(1000-width)
		for _, pair := range pairs {
			low, up, err := Solve(sqrtPrice, pair[0], pair[1], width)
			require.NoError(t, err, "width %d", width)
			require.False(t, up.Lt(low), "width %d: upper below lower", width)
			require.False(t, up.Lt(sqrtPrice), "width %d: upper below price", width)
			require.False(t, sqrtPrice.Lt(low), "width %d: lower above price", width)
			if e := relErr(priceRatio(low, up), target); e >= 0.01 {
				t.Fatalf("width %d amounts %s/%s: ratio error %.6f", width, pair[0], pair[1], e)
			}
		}
	}
}

func TestSolveScenario(t *testing.T) {
	sqrtPrice := sqrtPriceFor(4000)
	amount0, amount1 := ether(1), ether(4000)

	low, up, err := Solve(sqrtPrice, amount0, amount1, 100)
	require.NoError(t, err)
	assert.InDelta(t, 1100.0/900.0, priceRatio(low, up), 1100.0/900.0*0.01)
	assert.True(t, low.Lt(sqrtPrice))
	assert.True(t, sqrtPrice.Lt(up))

	// Both sides buy the same liquidity.
	l0, err := liquidity.ForAmount0(sqrtPrice, up, amount0)
	require.NoError(t, err)
	l1, err := liquidity.ForAmount1(low, sqrtPrice, amount1)
	require.NoError(t, err)
	l0f, _ := new(big.Float).SetInt(l0.ToBig()).Float64()
	l1f, _ := new(big.Float).SetInt(l1.ToBig()).Float64()
	assert.Less(t, relErr(l0f, l1f), 1e-6)

	alignment, err := Align(low, up, 10)
	require.NoError(t, err)
	assert.Equal(t, Alignment{RawLower: 81941, RawUpper: 83948, Lower: 81950, Upper: 83940}, alignment)
}

func TestSolveZeroAmount1StartsAtCurrentPrice(t *testing.T) {
	sqrtPrice := sqrtPriceFor(4000)
	low, up, err := Solve(sqrtPrice, ether(1), uint256.NewInt(0), 100)
	require.NoError(t, err)
	assert.Equal(t, sqrtPrice, low)
	assert.True(t, sqrtPrice.Lt(up))

	low, up, err = Solve(sqrtPrice, ether(1), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, low, up)
}

func TestSolveRejectsInvalidWidth(t *testing.T) {
	for _, width := range []uint32{1000, 1001, 5000} {
		_, _, err := Solve(sqrtPriceFor(4000), ether(1), ether(1), width)
		require.ErrorIs(t, err, model.ErrInvalidWidth)
	}
}

func TestSolveArithmeticPreconditions(t *testing.T) {
	sqrtPrice := sqrtPriceFor(4000)

	_, _, err := Solve(sqrtPrice, uint256.NewInt(0), ether(1), 100)
	require.ErrorIs(t, err, model.ErrArithmetic)

	_, _, err = Solve(sqrtPrice, nil, ether(1), 100)
	require.ErrorIs(t, err, model.ErrArithmetic)

	_, _, err = Solve(uint256.NewInt(0), ether(1), ether(1), 100)
	require.ErrorIs(t, err, model.ErrArithmetic)

	// amount0 * price overflows 256 bits.
	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	steep := new(uint256.Int).Lsh(uint256.NewInt(1), 150)
	_, _, err = Solve(steep, huge, ether(1), 100)
	require.ErrorIs(t, err, fixedpoint.ErrOverflow)
	require.ErrorIs(t, err, model.ErrArithmetic)
}

func TestSolveAndAlignAreDeterministic(t *testing.T) {
	sqrtPrice := sqrtPriceFor(1)
	amount0, amount1 := ether(3), ether(7)

	low, up, err := Solve(sqrtPrice, amount0, amount1, 250)
	require.NoError(t, err)
	first, err := Align(low, up, 60)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		l, u, err := Solve(sqrtPrice, amount0, amount1, 250)
		require.NoError(t, err)
		assert.Equal(t, low, l)
		assert.Equal(t, up, u)
		again, err := Align(l, u, 60)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	// Inputs are not mutated.
	assert.Equal(t, ether(3), amount0)
	assert.Equal(t, ether(7), amount1)
	assert.Equal(t, sqrtPriceFor(1), sqrtPrice)
}

func TestSqrtRatioQ32(t *testing.T) {
	k, err := SqrtRatioQ32(0)
	require.NoError(t, err)
	assert.Equal(t, fixedpoint.Q32, k)

	k, err = SqrtRatioQ32(600)
	require.NoError(t, err)
	// sqrt(1600/400) = 2
	assert.Equal(t, new(uint256.Int).Lsh(uint256.NewInt(2), 32), k)

	_, err = SqrtRatioQ32(MaxWidth)
	require.ErrorIs(t, err, model.ErrInvalidWidth)
}

func TestSolveLopsidedAmountsKeepPriceInside(t *testing.T) {
	sqrtPrice, err := SqrtPriceAtTick(0)
	require.NoError(t, err)

	// Up to 2^60 token1 per token0 the range still brackets the price.
	for shift := uint(0); shift <= 60; shift += 4 {
		amount1 := new(uint256.Int).Lsh(uint256.NewInt(1), shift)
		low, up, err := Solve(sqrtPrice, uint256.NewInt(1), amount1, 100)
		require.NoError(t, err, "shift %d", shift)
		assert.False(t, up.Lt(sqrtPrice), "shift %d", shift)
		assert.False(t, sqrtPrice.Lt(low), "shift %d", shift)
	}

	// Beyond that the upper bound is below Q32 resolution of the price.
	for shift := uint(64); shift <= 84; shift += 4 {
		amount1 := new(uint256.Int).Lsh(uint256.NewInt(1), shift)
		_, _, err := Solve(sqrtPrice, uint256.NewInt(1), amount1, 100)
		require.ErrorIs(t, err, ErrPriceOutsideRange, "shift %d", shift)
		require.ErrorIs(t, err, model.ErrArithmetic, "shift %d", shift)
	}
}
