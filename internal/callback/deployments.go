package callback

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"liquidityRange/internal/model"
)

// uniswapV3Factories maps chain IDs to the UniswapV3Factory deployed there.
var uniswapV3Factories = map[uint64]common.Address{
	1:        UniswapV3Factory,
	10:       UniswapV3Factory,
	56:       common.HexToAddress("0xdB1d10011AD0Ff90774D0C6Bb92e5C5c8b4461F7"),
	137:      UniswapV3Factory,
	8453:     common.HexToAddress("0x33128a8fC17869897dcE68Ed026d694621f6FDfD"),
	42161:    UniswapV3Factory,
	42220:    common.HexToAddress("0xAfE208a311B21f13EF87E33A90049fC17A7acDEc"),
	43114:    common.HexToAddress("0x740b1c1de25031C31FF4fC9A62f554A55cdC1baD"),
	11155111: common.HexToAddress("0x0227628f3F023bb0B980b67D528571c95c6DaC1c"),
}

// FactoryForChain returns the UniswapV3Factory deployment on chainID.
func FactoryForChain(chainID uint64) (common.Address, bool) {
	factory, ok := uniswapV3Factories[chainID]
	return factory, ok
}

// CheckFactory rejects a Uniswap V3 factory used on a chain where Uniswap V3
// lives at another address. Factories of other deployments (forks) and
// unknown chains pass, since pool verification still binds them.
func CheckFactory(chainID uint64, factory common.Address, initCodeHash common.Hash) error {
	if initCodeHash != (common.Hash{}) && initCodeHash != UniswapV3InitCodeHash {
		return nil
	}
	deployed, ok := uniswapV3Factories[chainID]
	if !ok || deployed == factory {
		return nil
	}
	for _, known := range uniswapV3Factories {
		if known == factory {
			return fmt.Errorf("factory %s is not the Uniswap V3 deployment on chain %d (want %s): %w",
				factory.Hex(), chainID, deployed.Hex(), model.ErrInvalidAddress)
		}
	}
	return nil
}
