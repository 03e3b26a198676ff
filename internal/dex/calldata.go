package dex

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// EncodeMint returns calldata for pool.mint(recipient, tickLower, tickUpper, amount, data).
func EncodeMint(recipient common.Address, tickLower, tickUpper int32, amount *uint256.Int, data []byte) ([]byte, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	if amount == nil {
		amount = new(uint256.Int)
	}
	if amount.BitLen() > 128 {
		return nil, fmt.Errorf("mint amount %s exceeds uint128", amount.ToBig())
	}
	calldata, err := poolABI.Pack("mint", recipient, big.NewInt(int64(tickLower)), big.NewInt(int64(tickUpper)), amount.ToBig(), data)
	if err != nil {
		return nil, fmt.Errorf("pack mint: %w", err)
	}
	return calldata, nil
}
