package callback

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MintHandler is invoked by a pool exactly once during mint to collect the
// owed token amounts. caller is the address of the invoking pool.
type MintHandler interface {
	MintCallback(ctx context.Context, caller common.Address, amount0Owed, amount1Owed *uint256.Int, data []byte) error
}
