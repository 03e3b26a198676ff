package rangecalc

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"liquidityRange/internal/model"
)

var ErrInvalidTickSpacing = errors.New("invalid tick spacing")

// Alignment keeps the raw ticks next to the grid-aligned ones.
type Alignment struct {
	RawLower int32
	RawUpper int32
	Lower    int32
	Upper    int32
}

// Align converts sqrt price bounds to ticks on the spacing grid.
//
// The lower tick always moves up to the next grid line, a full spacing when it
// is already aligned. The upper tick is truncated toward zero, so negative
// ticks move up rather than down. When the result is empty the alignment is
// still returned together with ErrDegenerateRange.
func Align(sqrtLow, sqrtUpper *uint256.Int, spacing int32) (Alignment, error) {
	if spacing <= 0 {
		return Alignment{}, fmt.Errorf("align spacing %d: %w", spacing, ErrInvalidTickSpacing)
	}
	rawLower, err := TickAtSqrtPrice(sqrtLow)
	if err != nil {
		return Alignment{}, fmt.Errorf("align lower: %w", err)
	}
	rawUpper, err := TickAtSqrtPrice(sqrtUpper)
	if err != nil {
		return Alignment{}, fmt.Errorf("align upper: %w", err)
	}

	out := Alignment{
		RawLower: rawLower,
		RawUpper: rawUpper,
		Lower:    AlignLower(rawLower, spacing),
		Upper:    AlignUpper(rawUpper, spacing),
	}
	if out.Lower >= out.Upper {
		return out, fmt.Errorf("align [%d, %d] spacing %d -> [%d, %d]: %w",
			rawLower, rawUpper, spacing, out.Lower, out.Upper, model.ErrDegenerateRange)
	}
	return out, nil
}

// AlignLower returns tick + (spacing - tick%spacing) with truncating modulo.
func AlignLower(tick, spacing int32) int32 {
	return tick + (spacing - tick%spacing)
}

// AlignUpper returns tick - tick%spacing with truncating modulo.
func AlignUpper(tick, spacing int32) int32 {
	return tick - tick%spacing
}
