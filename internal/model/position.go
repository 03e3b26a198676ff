package model

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"liquidityRange/internal/fixedpoint"
)

// PositionResult is the outcome of opening a range. Amount0/Amount1 are what
// the pool actually took and never exceed the requested amounts.
type PositionResult struct {
	Pool         common.Address
	SqrtLowX96   *uint256.Int
	SqrtUpperX96 *uint256.Int
	RawTickLower int32
	RawTickUpper int32
	TickLower    int32
	TickUpper    int32
	Liquidity    *uint256.Int
	Amount0      *uint256.Int
	Amount1      *uint256.Int
}

// RangeOpened is the notification emitted after a successful deposit.
type RangeOpened struct {
	Caller    common.Address
	Pool      common.Address
	Width     uint32
	TickLower int32
	TickUpper int32
	Liquidity *uint256.Int
	Amount0   *uint256.Int
	Amount1   *uint256.Int
	At        time.Time
}

// RangeOpenedRecord is the JSON form of RangeOpened; big integers are decimal strings.
type RangeOpenedRecord struct {
	Caller    string `json:"caller"`
	Pool      string `json:"pool"`
	Width     uint32 `json:"width"`
	TickLower int32  `json:"tick_lower"`
	TickUpper int32  `json:"tick_upper"`
	Liquidity string `json:"liquidity"`
	Amount0   string `json:"amount0"`
	Amount1   string `json:"amount1"`
	Timestamp string `json:"timestamp"`
}

// Record converts the notification for storage.
func (e RangeOpened) Record() RangeOpenedRecord {
	return RangeOpenedRecord{
		Caller:    e.Caller.Hex(),
		Pool:      e.Pool.Hex(),
		Width:     e.Width,
		TickLower: e.TickLower,
		TickUpper: e.TickUpper,
		Liquidity: fixedpoint.String(e.Liquidity),
		Amount0:   fixedpoint.String(e.Amount0),
		Amount1:   fixedpoint.String(e.Amount1),
		Timestamp: e.At.UTC().Format(time.RFC3339Nano),
	}
}
