package simpool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"liquidityRange/internal/callback"
	"liquidityRange/internal/fixedpoint"
	"liquidityRange/internal/liquidity"
	"liquidityRange/internal/model"
	"liquidityRange/internal/rangecalc"
)

var (
	ErrReentrant           = errors.New("pool is locked")
	ErrInvalidTicks        = errors.New("invalid ticks")
	ErrZeroLiquidity       = errors.New("mint amount must be positive")
	ErrInsufficientPayment = errors.New("callback did not pay owed amount")
)

// DefaultTickSpacing returns the standard V3 spacing for a fee tier, or 0.
func DefaultTickSpacing(fee uint32) int32 {
	switch fee {
	case 100:
		return 1
	case 500:
		return 10
	case 3000:
		return 60
	case 10000:
		return 200
	}
	return 0
}

// Config describes a pool to simulate.
type Config struct {
	Factory      common.Address
	InitCodeHash common.Hash
	Key          model.PoolKey
	TickSpacing  int32
	SqrtPriceX96 *uint256.Int
}

type positionKey struct {
	owner common.Address
	lower int32
	upper int32
}

// Pool is an in-memory concentrated-liquidity pool that settles mints
// through a callback against a Ledger.
type Pool struct {
	mu     sync.Mutex
	locked bool

	address     common.Address
	key         model.PoolKey
	tickSpacing int32
	sqrtPrice   *uint256.Int
	tick        int32
	liquidity   *uint256.Int
	positions   map[positionKey]*uint256.Int

	ledger *Ledger
	logger *zap.Logger
}

// New creates an initialized pool at the factory-derived address.
func New(cfg Config, ledger *Ledger, logger *zap.Logger) (*Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger is nil")
	}
	if cfg.Factory == (common.Address{}) {
		return nil, fmt.Errorf("pool factory: %w", model.ErrInvalidAddress)
	}
	key := cfg.Key.Sorted()
	if key.Token0 == key.Token1 {
		return nil, fmt.Errorf("pool tokens must differ: %w", model.ErrInvalidAddress)
	}
	spacing := cfg.TickSpacing
	if spacing == 0 {
		spacing = DefaultTickSpacing(key.Fee)
	}
	if spacing <= 0 {
		return nil, fmt.Errorf("pool fee %d spacing %d: %w", key.Fee, spacing, rangecalc.ErrInvalidTickSpacing)
	}
	if cfg.SqrtPriceX96 == nil {
		return nil, fmt.Errorf("pool sqrt price is required")
	}
	tick, err := rangecalc.TickAtSqrtPrice(cfg.SqrtPriceX96)
	if err != nil {
		return nil, fmt.Errorf("initialize pool: %w", err)
	}
	initCodeHash := cfg.InitCodeHash
	if initCodeHash == (common.Hash{}) {
		initCodeHash = callback.UniswapV3InitCodeHash
	}
	address, err := callback.PoolAddress(cfg.Factory, key, initCodeHash)
	if err != nil {
		return nil, err
	}

	return &Pool{
		address:     address,
		key:         key,
		tickSpacing: spacing,
		sqrtPrice:   cfg.SqrtPriceX96.Clone(),
		tick:        tick,
		liquidity:   new(uint256.Int),
		positions:   make(map[positionKey]*uint256.Int),
		ledger:      ledger,
		logger:      logger,
	}, nil
}

func (p *Pool) Address() common.Address { return p.address }

func (p *Pool) Key() model.PoolKey { return p.key }

// State returns the current slot0 view.
func (p *Pool) State(_ context.Context) (model.PoolState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return model.PoolState{
		Address:      p.address,
		Key:          p.key,
		SqrtPriceX96: p.sqrtPrice.Clone(),
		Tick:         p.tick,
		TickSpacing:  p.tickSpacing,
		Liquidity:    p.liquidity.Clone(),
	}, nil
}

// Position returns the liquidity owned by owner in [lower, upper).
func (p *Pool) Position(owner common.Address, lower, upper int32) *uint256.Int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.positions[positionKey{owner: owner, lower: lower, upper: upper}]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

// Mint adds amount of liquidity for recipient and collects the owed tokens
// through exactly one call to handler. Any failure leaves the pool and
// ledger as they were before the call.
func (p *Pool) Mint(ctx context.Context, recipient common.Address, tickLower, tickUpper int32, amount *uint256.Int, data []byte, handler callback.MintHandler) (*uint256.Int, *uint256.Int, error) {
	p.mu.Lock()
	if p.locked {
		p.mu.Unlock()
		return nil, nil, ErrReentrant
	}
	p.locked = true
	sqrtPrice := p.sqrtPrice.Clone()
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.locked = false
		p.mu.Unlock()
	}()

	if err := p.checkTicks(tickLower, tickUpper); err != nil {
		return nil, nil, err
	}
	if amount == nil || amount.IsZero() {
		return nil, nil, ErrZeroLiquidity
	}
	if amount.Gt(liquidity.MaxLiquidity) {
		return nil, nil, fmt.Errorf("mint amount %s: %w", amount.ToBig(), fixedpoint.ErrOverflow)
	}

	sqrtA, err := rangecalc.SqrtPriceAtTick(tickLower)
	if err != nil {
		return nil, nil, err
	}
	sqrtB, err := rangecalc.SqrtPriceAtTick(tickUpper)
	if err != nil {
		return nil, nil, err
	}
	amount0, amount1, err := liquidity.ForLiquidity(sqrtPrice, sqrtA, sqrtB, amount, true)
	if err != nil {
		return nil, nil, fmt.Errorf("amounts owed: %w", err)
	}

	snap := p.ledger.snapshot()
	balance0Before := p.ledger.BalanceOf(p.key.Token0, p.address)
	balance1Before := p.ledger.BalanceOf(p.key.Token1, p.address)

	if err := handler.MintCallback(ctx, p.address, amount0.Clone(), amount1.Clone(), data); err != nil {
		p.ledger.restore(snap)
		return nil, nil, fmt.Errorf("mint callback: %w", err)
	}

	if err := p.checkPaid(p.key.Token0, balance0Before, amount0); err != nil {
		p.ledger.restore(snap)
		return nil, nil, err
	}
	if err := p.checkPaid(p.key.Token1, balance1Before, amount1); err != nil {
		p.ledger.restore(snap)
		return nil, nil, err
	}

	p.mu.Lock()
	pk := positionKey{owner: recipient, lower: tickLower, upper: tickUpper}
	current, ok := p.positions[pk]
	if !ok {
		current = new(uint256.Int)
	}
	p.positions[pk] = new(uint256.Int).Add(current, amount)
	if tickLower <= p.tick && p.tick < tickUpper {
		p.liquidity = new(uint256.Int).Add(p.liquidity, amount)
	}
	p.mu.Unlock()

	p.logger.Debug("mint settled",
		zap.String("pool", p.address.Hex()),
		zap.String("owner", recipient.Hex()),
		zap.Int32("tick_lower", tickLower),
		zap.Int32("tick_upper", tickUpper),
		zap.String("liquidity", fixedpoint.String(amount)),
		zap.String("amount0", fixedpoint.String(amount0)),
		zap.String("amount1", fixedpoint.String(amount1)),
	)
	return amount0, amount1, nil
}

func (p *Pool) checkTicks(tickLower, tickUpper int32) error {
	if tickLower >= tickUpper {
		return fmt.Errorf("tick lower %d not below upper %d: %w", tickLower, tickUpper, ErrInvalidTicks)
	}
	if tickLower < rangecalc.MinTick {
		return fmt.Errorf("tick lower %d below min: %w", tickLower, ErrInvalidTicks)
	}
	if tickUpper > rangecalc.MaxTick {
		return fmt.Errorf("tick upper %d above max: %w", tickUpper, ErrInvalidTicks)
	}
	if tickLower%p.tickSpacing != 0 || tickUpper%p.tickSpacing != 0 {
		return fmt.Errorf("ticks [%d, %d] off spacing %d: %w", tickLower, tickUpper, p.tickSpacing, ErrInvalidTicks)
	}
	return nil
}

func (p *Pool) checkPaid(token common.Address, before, owed *uint256.Int) error {
	if owed.IsZero() {
		return nil
	}
	want, err := fixedpoint.Add(before, owed)
	if err != nil {
		return err
	}
	if p.ledger.BalanceOf(token, p.address).Lt(want) {
		return fmt.Errorf("token %s owed %s: %w", token.Hex(), owed.ToBig(), ErrInsufficientPayment)
	}
	return nil
}
