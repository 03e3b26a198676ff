package model

import (
	"errors"

	"liquidityRange/internal/fixedpoint"
)

// Error kinds surfaced by a range-creation operation. Callers match them with errors.Is.
var (
	ErrInvalidAddress        = errors.New("invalid address")
	ErrInvalidWidth          = errors.New("invalid width")
	ErrArithmetic            = fixedpoint.ErrArithmetic
	ErrCallbackAuthorization = errors.New("callback caller is not the expected pool")
	ErrDegenerateRange       = errors.New("degenerate tick range")
)
