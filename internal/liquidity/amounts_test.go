package liquidity

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidityRange/internal/fixedpoint"
)

func q96Times(num, den uint64) *uint256.Int {
	out, err := fixedpoint.MulDiv(fixedpoint.Q96, uint256.NewInt(num), uint256.NewInt(den))
	if err != nil {
		panic(err)
	}
	return out
}

func TestForAmountsInRangeNeverOverspends(t *testing.T) {
	sqrtA := q96Times(1, 1)
	sqrtB := q96Times(2, 1)
	sqrtP := q96Times(3, 2)
	amount0 := fixedpoint.MustParse("1000000000000000000")
	amount1 := fixedpoint.MustParse("3000000000000000000")

	liq, err := ForAmounts(sqrtP, sqrtA, sqrtB, amount0, amount1)
	require.NoError(t, err)
	require.False(t, liq.IsZero())

	owed0, owed1, err := ForLiquidity(sqrtP, sqrtA, sqrtB, liq, true)
	require.NoError(t, err)
	assert.False(t, owed0.Gt(amount0), "owed0 %s > %s", owed0.ToBig(), amount0.ToBig())
	assert.False(t, owed1.Gt(amount1), "owed1 %s > %s", owed1.ToBig(), amount1.ToBig())
}

func TestForAmountsBelowAndAboveRange(t *testing.T) {
	sqrtA := q96Times(2, 1)
	sqrtB := q96Times(3, 1)
	amount := fixedpoint.MustParse("1000000")

	below, err := ForAmounts(q96Times(1, 1), sqrtA, sqrtB, amount, new(uint256.Int))
	require.NoError(t, err)
	only0, err := ForAmount0(sqrtA, sqrtB, amount)
	require.NoError(t, err)
	assert.Equal(t, only0, below)

	above, err := ForAmounts(q96Times(4, 1), sqrtB, sqrtA, new(uint256.Int), amount)
	require.NoError(t, err)
	only1, err := ForAmount1(sqrtA, sqrtB, amount)
	require.NoError(t, err)
	assert.Equal(t, only1, above)

	owed0, owed1, err := ForLiquidity(q96Times(4, 1), sqrtA, sqrtB, above, false)
	require.NoError(t, err)
	assert.True(t, owed0.IsZero())
	assert.False(t, owed1.Gt(amount))
}

func TestAmount1DeltaRounding(t *testing.T) {
	sqrtA := q96Times(1, 1)
	sqrtB := new(uint256.Int).Add(sqrtA, uint256.NewInt(1))

	down, err := Amount1Delta(sqrtA, sqrtB, uint256.NewInt(1), false)
	require.NoError(t, err)
	up, err := Amount1Delta(sqrtA, sqrtB, uint256.NewInt(1), true)
	require.NoError(t, err)

	assert.True(t, down.IsZero())
	assert.Equal(t, uint64(1), up.Uint64())
}

func TestForAmountsEmptyRangeFails(t *testing.T) {
	sqrtA := q96Times(1, 1)
	_, err := ForAmounts(q96Times(1, 2), sqrtA, sqrtA, uint256.NewInt(1), uint256.NewInt(1))
	require.ErrorIs(t, err, fixedpoint.ErrDivisionByZero)
}

func TestLiquidityCapsAtUint128(t *testing.T) {
	sqrtA := q96Times(1, 1)
	sqrtB := new(uint256.Int).Add(sqrtA, uint256.NewInt(1))
	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 100)

	_, err := ForAmounts(new(uint256.Int), sqrtA, sqrtB, huge, huge)
	require.ErrorIs(t, err, fixedpoint.ErrOverflow)
}
