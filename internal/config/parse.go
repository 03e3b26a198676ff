package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"liquidityRange/internal/fixedpoint"
	"liquidityRange/internal/model"
)

// ParseAddress converts a hex address. Empty input yields the zero address
// unless required is set.
func ParseAddress(name, input string, required bool) (common.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		if required {
			return common.Address{}, fmt.Errorf("%s is required: %w", name, model.ErrInvalidAddress)
		}
		return common.Address{}, nil
	}
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("%s %q: %w", name, input, model.ErrInvalidAddress)
	}
	return common.HexToAddress(input), nil
}

// ParseHash converts a 32-byte hex hash. Empty input yields the zero hash.
func ParseHash(name, input string) (common.Hash, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return common.Hash{}, nil
	}
	data, err := hexutil.Decode(input)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid %s: %s", name, input)
	}
	if len(data) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid %s length: %s", name, input)
	}
	return common.BytesToHash(data), nil
}

// ParseAmount reads a raw token amount in base 10 or 0x hex.
func ParseAmount(name, input string) (*uint256.Int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return new(uint256.Int), nil
	}
	amount, err := fixedpoint.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return amount, nil
}
