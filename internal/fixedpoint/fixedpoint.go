package fixedpoint

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// ErrArithmetic is the parent of every fixed-point failure.
var ErrArithmetic = errors.New("arithmetic precondition violated")

var (
	ErrOverflow       = fmt.Errorf("%w: overflow", ErrArithmetic)
	ErrUnderflow      = fmt.Errorf("%w: underflow", ErrArithmetic)
	ErrDivisionByZero = fmt.Errorf("%w: division by zero", ErrArithmetic)
)

var (
	// Q32, Q64 and Q96 are the binary scales used across the solver.
	Q32 = new(uint256.Int).Lsh(uint256.NewInt(1), 32)
	Q64 = new(uint256.Int).Lsh(uint256.NewInt(1), 64)
	Q96 = new(uint256.Int).Lsh(uint256.NewInt(1), 96)
)

// Sqrt returns floor(sqrt(x)).
func Sqrt(x *uint256.Int) *uint256.Int {
	return new(uint256.Int).Sqrt(x)
}

// Add returns x+y or ErrOverflow.
func Add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, fmt.Errorf("add %s + %s: %w", x.ToBig(), y.ToBig(), ErrOverflow)
	}
	return z, nil
}

// Sub returns x-y or ErrUnderflow.
func Sub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, fmt.Errorf("sub %s - %s: %w", x.ToBig(), y.ToBig(), ErrUnderflow)
	}
	return z, nil
}

// Mul returns x*y or ErrOverflow.
func Mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, fmt.Errorf("mul %s * %s: %w", x.ToBig(), y.ToBig(), ErrOverflow)
	}
	return z, nil
}

// Div returns floor(x/d).
func Div(x, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("div %s: %w", x.ToBig(), ErrDivisionByZero)
	}
	return new(uint256.Int).Div(x, d), nil
}

// MulDiv returns floor(x*y/d) with a 512-bit intermediate product.
// The result must fit in 256 bits.
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("muldiv %s * %s: %w", x.ToBig(), y.ToBig(), ErrDivisionByZero)
	}
	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, fmt.Errorf("muldiv %s * %s / %s: %w", x.ToBig(), y.ToBig(), d.ToBig(), ErrOverflow)
	}
	return z, nil
}

// MulDivRoundingUp returns ceil(x*y/d).
func MulDivRoundingUp(x, y, d *uint256.Int) (*uint256.Int, error) {
	z, err := MulDiv(x, y, d)
	if err != nil {
		return nil, err
	}
	if new(uint256.Int).MulMod(x, y, d).IsZero() {
		return z, nil
	}
	return Add(z, uint256.NewInt(1))
}

// DivRoundingUp returns ceil(x/d).
func DivRoundingUp(x, d *uint256.Int) (*uint256.Int, error) {
	z, err := Div(x, d)
	if err != nil {
		return nil, err
	}
	if new(uint256.Int).Mod(x, d).IsZero() {
		return z, nil
	}
	return Add(z, uint256.NewInt(1))
}

// Lsh returns x<<n or ErrOverflow when bits are shifted out.
func Lsh(x *uint256.Int, n uint) (*uint256.Int, error) {
	if n >= 256 {
		if x.IsZero() {
			return new(uint256.Int), nil
		}
		return nil, fmt.Errorf("lsh %s by %d: %w", x.ToBig(), n, ErrOverflow)
	}
	if x.BitLen()+int(n) > 256 {
		return nil, fmt.Errorf("lsh %s by %d: %w", x.ToBig(), n, ErrOverflow)
	}
	return new(uint256.Int).Lsh(x, n), nil
}

// FromBig converts a non-negative big.Int that fits in 256 bits.
func FromBig(value *big.Int) (*uint256.Int, error) {
	if value == nil {
		return new(uint256.Int), nil
	}
	if value.Sign() < 0 {
		return nil, fmt.Errorf("from big %s: %w", value, ErrUnderflow)
	}
	z, overflow := uint256.FromBig(value)
	if overflow {
		return nil, fmt.Errorf("from big %s: %w", value, ErrOverflow)
	}
	return z, nil
}

// Parse reads a base-10 or 0x-prefixed unsigned integer.
func Parse(input string) (*uint256.Int, error) {
	value, ok := new(big.Int).SetString(input, 0)
	if !ok {
		return nil, fmt.Errorf("invalid uint256: %q", input)
	}
	return FromBig(value)
}

// MustParse is Parse for constants and tests.
func MustParse(input string) *uint256.Int {
	value, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return value
}

// String renders x in base 10; nil renders as "0".
func String(x *uint256.Int) string {
	if x == nil {
		return "0"
	}
	return x.ToBig().String()
}
