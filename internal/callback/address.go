package callback

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"liquidityRange/internal/model"
)

// UniswapV3InitCodeHash is keccak256 of the UniswapV3Pool creation code.
var UniswapV3InitCodeHash = common.HexToHash("0xe34f199b19b2b4f47f68442619d555527d244f78a3297ea89325f843f87b8b54")

// UniswapV3Factory is the mainnet UniswapV3Factory deployment.
var UniswapV3Factory = common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")

var (
	saltArgsOnce sync.Once
	saltArgs     abi.Arguments
	saltArgsErr  error
)

func poolSaltArguments() (abi.Arguments, error) {
	saltArgsOnce.Do(func() {
		addressType, err := abi.NewType("address", "", nil)
		if err != nil {
			saltArgsErr = err
			return
		}
		feeType, err := abi.NewType("uint24", "", nil)
		if err != nil {
			saltArgsErr = err
			return
		}
		saltArgs = abi.Arguments{{Type: addressType}, {Type: addressType}, {Type: feeType}}
	})
	return saltArgs, saltArgsErr
}

// PoolSalt returns keccak256(abi.encode(token0, token1, fee)) for the sorted key.
func PoolSalt(key model.PoolKey) (common.Hash, error) {
	key = key.Sorted()
	args, err := poolSaltArguments()
	if err != nil {
		return common.Hash{}, fmt.Errorf("pool salt arguments: %w", err)
	}
	encoded, err := args.Pack(key.Token0, key.Token1, new(big.Int).SetUint64(uint64(key.Fee)))
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack pool key: %w", err)
	}
	return crypto.Keccak256Hash(encoded), nil
}

// PoolAddress derives the CREATE2 address of the pool identified by key.
func PoolAddress(factory common.Address, key model.PoolKey, initCodeHash common.Hash) (common.Address, error) {
	salt, err := PoolSalt(key)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.CreateAddress2(factory, salt, initCodeHash.Bytes()), nil
}
