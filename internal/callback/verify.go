package callback

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"liquidityRange/internal/model"
)

// Verifier authenticates mint callbacks against one factory deployment.
type Verifier struct {
	factory      common.Address
	initCodeHash common.Hash
}

// NewVerifier binds a factory and pool init code hash. A zero hash selects
// UniswapV3InitCodeHash.
func NewVerifier(factory common.Address, initCodeHash common.Hash) (*Verifier, error) {
	if factory == (common.Address{}) {
		return nil, fmt.Errorf("verifier factory: %w", model.ErrInvalidAddress)
	}
	if initCodeHash == (common.Hash{}) {
		initCodeHash = UniswapV3InitCodeHash
	}
	return &Verifier{factory: factory, initCodeHash: initCodeHash}, nil
}

func (v *Verifier) Factory() common.Address { return v.factory }

func (v *Verifier) InitCodeHash() common.Hash { return v.initCodeHash }

// PoolAddress derives the pool address for key under this verifier's factory.
func (v *Verifier) PoolAddress(key model.PoolKey) (common.Address, error) {
	return PoolAddress(v.factory, key, v.initCodeHash)
}

// Verify re-derives the pool address from key and fails unless caller is that pool.
// The returned key is sorted and identifies the authenticated pool.
func (v *Verifier) Verify(key model.PoolKey, caller common.Address) (model.PoolKey, error) {
	expected, err := v.PoolAddress(key)
	if err != nil {
		return model.PoolKey{}, fmt.Errorf("derive pool address: %w", err)
	}
	if caller != expected {
		return model.PoolKey{}, fmt.Errorf("caller %s, expected %s: %w", caller.Hex(), expected.Hex(), model.ErrCallbackAuthorization)
	}
	return key.Sorted(), nil
}

// Verify checks caller against the canonical Uniswap V3 init code hash.
func Verify(factory common.Address, key model.PoolKey, caller common.Address) (model.PoolKey, error) {
	v, err := NewVerifier(factory, UniswapV3InitCodeHash)
	if err != nil {
		return model.PoolKey{}, err
	}
	return v.Verify(key, caller)
}
