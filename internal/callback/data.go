package callback

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"liquidityRange/internal/model"
)

// MintData is the opaque context passed to mint and echoed to the callback.
type MintData struct {
	Key   model.PoolKey
	Payer common.Address
}

var (
	mintDataOnce sync.Once
	mintDataArgs abi.Arguments
	mintDataErr  error
)

func mintDataArguments() (abi.Arguments, error) {
	mintDataOnce.Do(func() {
		addressType, err := abi.NewType("address", "", nil)
		if err != nil {
			mintDataErr = err
			return
		}
		feeType, err := abi.NewType("uint24", "", nil)
		if err != nil {
			mintDataErr = err
			return
		}
		mintDataArgs = abi.Arguments{
			{Name: "token0", Type: addressType},
			{Name: "token1", Type: addressType},
			{Name: "fee", Type: feeType},
			{Name: "payer", Type: addressType},
		}
	})
	return mintDataArgs, mintDataErr
}

// EncodeMintData ABI-encodes (token0, token1, fee, payer).
func EncodeMintData(data MintData) ([]byte, error) {
	args, err := mintDataArguments()
	if err != nil {
		return nil, fmt.Errorf("mint data arguments: %w", err)
	}
	encoded, err := args.Pack(data.Key.Token0, data.Key.Token1, new(big.Int).SetUint64(uint64(data.Key.Fee)), data.Payer)
	if err != nil {
		return nil, fmt.Errorf("pack mint data: %w", err)
	}
	return encoded, nil
}

// DecodeMintData reverses EncodeMintData.
func DecodeMintData(raw []byte) (MintData, error) {
	args, err := mintDataArguments()
	if err != nil {
		return MintData{}, fmt.Errorf("mint data arguments: %w", err)
	}
	values, err := args.Unpack(raw)
	if err != nil {
		return MintData{}, fmt.Errorf("unpack mint data: %w", err)
	}
	if len(values) != 4 {
		return MintData{}, fmt.Errorf("unpack mint data: got %d values", len(values))
	}
	token0, ok0 := values[0].(common.Address)
	token1, ok1 := values[1].(common.Address)
	fee, ok2 := values[2].(*big.Int)
	payer, ok3 := values[3].(common.Address)
	if !ok0 || !ok1 || !ok2 || !ok3 {
		return MintData{}, fmt.Errorf("unpack mint data: unexpected value types")
	}
	return MintData{
		Key:   model.PoolKey{Token0: token0, Token1: token1, Fee: uint32(fee.Uint64())},
		Payer: payer,
	}, nil
}
