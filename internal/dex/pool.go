package dex

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityRange/internal/chain"
	"liquidityRange/internal/model"
)

// ChainPool reads a deployed V3 pool. It implements position.PoolReader; it
// cannot mint since minting happens in a transaction sent by the payer's
// contract.
type ChainPool struct {
	caller       ContractCaller
	address      common.Address
	metaCache    *PoolMetaCache
	tokenCache   *TokenMetaCache
	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger
}

func NewChainPool(caller ContractCaller, address common.Address, maxRetries int, retryBackoff time.Duration, logger *zap.Logger) *ChainPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChainPool{
		caller:       caller,
		address:      address,
		metaCache:    NewPoolMetaCache(),
		tokenCache:   NewTokenMetaCache(),
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
		logger:       logger,
	}
}

func (p *ChainPool) Address() common.Address { return p.address }

// Meta returns cached immutable metadata, fetching it on first use.
func (p *ChainPool) Meta(ctx context.Context) (model.PoolMeta, error) {
	if meta, ok := p.metaCache.Get(p.address); ok {
		return meta, nil
	}
	var meta model.PoolMeta
	err := chain.WithRetry(ctx, p.maxRetries, p.retryBackoff, func(ctx context.Context) error {
		var err error
		meta, err = FetchPoolMeta(ctx, p.caller, p.address, p.tokenCache, p.logger)
		return err
	})
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("fetch pool meta %s: %w", p.address.Hex(), err)
	}
	p.metaCache.Set(p.address, meta)
	return meta, nil
}

// Token returns cached token metadata loaded alongside the pool metadata.
func (p *ChainPool) Token(token common.Address) (model.TokenMeta, bool) {
	return p.tokenCache.Get(token)
}

// State reads the latest slot0 and liquidity.
func (p *ChainPool) State(ctx context.Context) (model.PoolState, error) {
	return p.StateAt(ctx, nil)
}

// StateAt reads slot0 and liquidity at block; nil means latest.
func (p *ChainPool) StateAt(ctx context.Context, block *big.Int) (model.PoolState, error) {
	meta, err := p.Meta(ctx)
	if err != nil {
		return model.PoolState{}, err
	}
	var state model.PoolState
	err = chain.WithRetry(ctx, p.maxRetries, p.retryBackoff, func(ctx context.Context) error {
		var err error
		state, err = FetchPoolState(ctx, p.caller, p.address, meta, block)
		return err
	})
	if err != nil {
		return model.PoolState{}, fmt.Errorf("fetch pool state %s: %w", p.address.Hex(), err)
	}
	return state, nil
}
