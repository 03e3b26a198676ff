package fixedpoint

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var maxUint256 = new(uint256.Int).SetAllOne()

func TestSqrtFloors(t *testing.T) {
	cases := map[uint64]uint64{
		0:   0,
		1:   1,
		3:   1,
		4:   2,
		15:  3,
		16:  4,
		999: 31,
	}
	for in, want := range cases {
		got := Sqrt(uint256.NewInt(in))
		assert.Equal(t, want, got.Uint64(), "sqrt(%d)", in)
	}

	big := MustParse("340282366920938463463374607431768211456") // 2^128
	assert.Equal(t, "18446744073709551616", String(Sqrt(big)))
}

func TestCheckedOperations(t *testing.T) {
	_, err := Add(maxUint256, uint256.NewInt(1))
	require.ErrorIs(t, err, ErrOverflow)
	require.ErrorIs(t, err, ErrArithmetic)

	_, err = Sub(uint256.NewInt(1), uint256.NewInt(2))
	require.ErrorIs(t, err, ErrUnderflow)

	_, err = Mul(maxUint256, uint256.NewInt(2))
	require.ErrorIs(t, err, ErrOverflow)

	_, err = Div(uint256.NewInt(1), new(uint256.Int))
	require.ErrorIs(t, err, ErrDivisionByZero)

	z, err := Mul(uint256.NewInt(6), uint256.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), z.Uint64())
}

func TestMulDivUsesWideIntermediate(t *testing.T) {
	// (2^255 * 4) / 8 overflows a 256-bit product but not the quotient.
	x := new(uint256.Int).Lsh(uint256.NewInt(1), 255)
	got, err := MulDiv(x, uint256.NewInt(4), uint256.NewInt(8))
	require.NoError(t, err)
	assert.Equal(t, new(uint256.Int).Lsh(uint256.NewInt(1), 254), got)

	_, err = MulDiv(maxUint256, maxUint256, uint256.NewInt(1))
	require.ErrorIs(t, err, ErrOverflow)

	_, err = MulDiv(uint256.NewInt(1), uint256.NewInt(1), new(uint256.Int))
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestMulDivTruncatesAndRoundsUp(t *testing.T) {
	down, err := MulDiv(uint256.NewInt(7), uint256.NewInt(3), uint256.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), down.Uint64())

	up, err := MulDivRoundingUp(uint256.NewInt(7), uint256.NewInt(3), uint256.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(11), up.Uint64())

	exact, err := MulDivRoundingUp(uint256.NewInt(8), uint256.NewInt(3), uint256.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, uint64(12), exact.Uint64())

	ceil, err := DivRoundingUp(uint256.NewInt(10), uint256.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), ceil.Uint64())
}

func TestLsh(t *testing.T) {
	z, err := Lsh(uint256.NewInt(1), 96)
	require.NoError(t, err)
	assert.Equal(t, Q96, z)

	_, err = Lsh(new(uint256.Int).Lsh(uint256.NewInt(1), 200), 60)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestParse(t *testing.T) {
	v, err := Parse("0x1000000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, Q96, v)

	_, err = Parse("-1")
	require.True(t, errors.Is(err, ErrUnderflow))

	_, err = Parse("not-a-number")
	require.Error(t, err)

	assert.Equal(t, "0", String(nil))
}
