package model

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// PoolKey is the deterministic identity of a V3 pool.
type PoolKey struct {
	Token0 common.Address `json:"token0"`
	Token1 common.Address `json:"token1"`
	Fee    uint32         `json:"fee"`
}

// Sorted returns the key with token0 < token1.
func (k PoolKey) Sorted() PoolKey {
	if bytes.Compare(k.Token0.Bytes(), k.Token1.Bytes()) > 0 {
		k.Token0, k.Token1 = k.Token1, k.Token0
	}
	return k
}

// PoolState is the live pool view a range computation starts from.
type PoolState struct {
	Address      common.Address
	Key          PoolKey
	SqrtPriceX96 *uint256.Int
	Tick         int32
	TickSpacing  int32
	Liquidity    *uint256.Int
}

// PoolMeta captures immutable pool metadata with optional live fields.
type PoolMeta struct {
	Address     string     `json:"address"`
	Token0      string     `json:"token0"`
	Token1      string     `json:"token1"`
	Fee         uint32     `json:"fee"`
	TickSpacing int32      `json:"tick_spacing"`
	Liquidity   string     `json:"liquidity,omitempty"`
	Slot0       *PoolSlot0 `json:"slot0,omitempty"`
}

// PoolSlot0 includes select slot0 fields.
type PoolSlot0 struct {
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
}

// Key returns the pool key encoded in the metadata.
func (m PoolMeta) Key() PoolKey {
	return PoolKey{
		Token0: common.HexToAddress(m.Token0),
		Token1: common.HexToAddress(m.Token1),
		Fee:    m.Fee,
	}
}

// TokenMeta captures ERC20 metadata.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
}

// Label is the symbol when known, otherwise the address.
func (t TokenMeta) Label() string {
	if t.Symbol != "" {
		return t.Symbol
	}
	return t.Address
}
