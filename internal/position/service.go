package position

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"liquidityRange/internal/callback"
	"liquidityRange/internal/fixedpoint"
	"liquidityRange/internal/liquidity"
	"liquidityRange/internal/model"
	"liquidityRange/internal/notify"
	"liquidityRange/internal/rangecalc"
)

// ErrMintCallbackCount reports a pool that did not call back exactly once.
var ErrMintCallbackCount = errors.New("mint callback must run exactly once")

// PoolReader exposes the live pool view.
type PoolReader interface {
	State(ctx context.Context) (model.PoolState, error)
}

// Pool is the external pool collaborator. Mint must call handler exactly
// once before returning the amounts it collected.
type Pool interface {
	PoolReader
	Mint(ctx context.Context, recipient common.Address, tickLower, tickUpper int32, amount *uint256.Int, data []byte, handler callback.MintHandler) (*uint256.Int, *uint256.Int, error)
}

// TokenTransferer pulls approved tokens from an owner.
type TokenTransferer interface {
	TransferFrom(ctx context.Context, token, from, to common.Address, amount *uint256.Int) error
}

// Config is fixed for the lifetime of a Service.
type Config struct {
	Factory      common.Address
	InitCodeHash common.Hash
	// Recipient owns minted positions. Defaults to Payer.
	Recipient common.Address
	Payer     common.Address
}

// Service opens ranges. It holds no per-operation state and is safe for
// concurrent use.
type Service struct {
	cfg      Config
	verifier *callback.Verifier
	tokens   TokenTransferer
	sinks    notify.Multi
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(cfg Config, tokens TokenTransferer, logger *zap.Logger, sinks ...notify.Notifier) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	verifier, err := callback.NewVerifier(cfg.Factory, cfg.InitCodeHash)
	if err != nil {
		return nil, err
	}
	if cfg.Payer == (common.Address{}) {
		return nil, fmt.Errorf("service payer: %w", model.ErrInvalidAddress)
	}
	if cfg.Recipient == (common.Address{}) {
		cfg.Recipient = cfg.Payer
	}
	cfg.InitCodeHash = verifier.InitCodeHash()
	return &Service{
		cfg:      cfg,
		verifier: verifier,
		tokens:   tokens,
		sinks:    notify.Multi(sinks),
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *Service) Config() Config { return s.cfg }

// SqrtPriceAtTick exposes the tick math used for alignment.
func (s *Service) SqrtPriceAtTick(tick int32) (*uint256.Int, error) {
	return rangecalc.SqrtPriceAtTick(tick)
}

// Plan solves and aligns a range against state without touching the pool.
// Amount0 and Amount1 are the amounts the pool would charge.
func (s *Service) Plan(state model.PoolState, amount0, amount1 *uint256.Int, width uint32) (model.PositionResult, error) {
	if width >= rangecalc.MaxWidth {
		return model.PositionResult{}, fmt.Errorf("width %d: %w", width, model.ErrInvalidWidth)
	}
	if amount1 == nil {
		amount1 = new(uint256.Int)
	}

	sqrtLow, sqrtUpper, err := rangecalc.Solve(state.SqrtPriceX96, amount0, amount1, width)
	if err != nil {
		return model.PositionResult{}, fmt.Errorf("solve range: %w", err)
	}
	alignment, err := rangecalc.Align(sqrtLow, sqrtUpper, state.TickSpacing)
	s.logger.Debug("range solved",
		zap.String("pool", state.Address.Hex()),
		zap.Uint32("width", width),
		zap.String("sqrt_low", fixedpoint.String(sqrtLow)),
		zap.String("sqrt_upper", fixedpoint.String(sqrtUpper)),
		zap.Int32("raw_tick_lower", alignment.RawLower),
		zap.Int32("raw_tick_upper", alignment.RawUpper),
		zap.Int32("tick_lower", alignment.Lower),
		zap.Int32("tick_upper", alignment.Upper),
	)
	if err != nil {
		return model.PositionResult{}, fmt.Errorf("align range: %w", err)
	}

	sqrtA, err := rangecalc.SqrtPriceAtTick(alignment.Lower)
	if err != nil {
		return model.PositionResult{}, fmt.Errorf("aligned lower: %w", err)
	}
	sqrtB, err := rangecalc.SqrtPriceAtTick(alignment.Upper)
	if err != nil {
		return model.PositionResult{}, fmt.Errorf("aligned upper: %w", err)
	}
	liq, err := liquidity.ForAmounts(state.SqrtPriceX96, sqrtA, sqrtB, amount0, amount1)
	if err != nil {
		return model.PositionResult{}, fmt.Errorf("liquidity for amounts: %w", err)
	}
	if liq.IsZero() {
		return model.PositionResult{}, fmt.Errorf("liquidity for amounts is zero: %w", fixedpoint.ErrUnderflow)
	}
	owed0, owed1, err := liquidity.ForLiquidity(state.SqrtPriceX96, sqrtA, sqrtB, liq, true)
	if err != nil {
		return model.PositionResult{}, fmt.Errorf("amounts for liquidity: %w", err)
	}

	return model.PositionResult{
		Pool:         state.Address,
		SqrtLowX96:   sqrtLow,
		SqrtUpperX96: sqrtUpper,
		RawTickLower: alignment.RawLower,
		RawTickUpper: alignment.RawUpper,
		TickLower:    alignment.Lower,
		TickUpper:    alignment.Upper,
		Liquidity:    liq,
		Amount0:      owed0,
		Amount1:      owed1,
	}, nil
}

// OpenRange solves a range around the pool's current price for the given
// amounts and width, mints it, and reports what the pool collected.
func (s *Service) OpenRange(ctx context.Context, pool Pool, amount0, amount1 *uint256.Int, width uint32) (model.PositionResult, error) {
	if width >= rangecalc.MaxWidth {
		return model.PositionResult{}, fmt.Errorf("width %d: %w", width, model.ErrInvalidWidth)
	}
	state, err := pool.State(ctx)
	if err != nil {
		return model.PositionResult{}, fmt.Errorf("read pool state: %w", err)
	}
	result, err := s.Plan(state, amount0, amount1, width)
	if err != nil {
		return model.PositionResult{}, err
	}

	data, err := callback.EncodeMintData(callback.MintData{Key: state.Key, Payer: s.cfg.Payer})
	if err != nil {
		return model.PositionResult{}, err
	}
	settlement := &mintSettlement{
		service: s,
		event: model.RangeOpened{
			Caller:    s.cfg.Payer,
			Pool:      state.Address,
			Width:     width,
			TickLower: result.TickLower,
			TickUpper: result.TickUpper,
			Liquidity: result.Liquidity,
			At:        s.now().UTC(),
		},
	}
	real0, real1, err := pool.Mint(ctx, s.cfg.Recipient, result.TickLower, result.TickUpper, result.Liquidity, data, settlement)
	if err != nil {
		return model.PositionResult{}, fmt.Errorf("mint: %w", err)
	}
	if settlement.calls != 1 {
		return model.PositionResult{}, fmt.Errorf("pool %s invoked it %d times: %w", state.Address.Hex(), settlement.calls, ErrMintCallbackCount)
	}
	result.Amount0 = real0
	result.Amount1 = real1

	s.logger.Info("range minted",
		zap.String("pool", state.Address.Hex()),
		zap.Int32("tick_lower", result.TickLower),
		zap.Int32("tick_upper", result.TickUpper),
		zap.String("liquidity", fixedpoint.String(result.Liquidity)),
		zap.String("amount0", fixedpoint.String(real0)),
		zap.String("amount1", fixedpoint.String(real1)),
	)
	return result, nil
}

// MintCallback pays a pool during mint. The caller must be the pool derived
// from the factory and the key carried in data.
func (s *Service) MintCallback(ctx context.Context, caller common.Address, amount0Owed, amount1Owed *uint256.Int, data []byte) error {
	decoded, err := callback.DecodeMintData(data)
	if err != nil {
		return err
	}
	key, err := s.verifier.Verify(decoded.Key, caller)
	if err != nil {
		s.logger.Warn("mint callback rejected",
			zap.String("caller", caller.Hex()),
			zap.Error(err),
		)
		return err
	}
	if s.tokens == nil {
		return fmt.Errorf("token transferer is nil")
	}
	if amount0Owed != nil && !amount0Owed.IsZero() {
		if err := s.tokens.TransferFrom(ctx, key.Token0, decoded.Payer, caller, amount0Owed); err != nil {
			return fmt.Errorf("pay token0: %w", err)
		}
	}
	if amount1Owed != nil && !amount1Owed.IsZero() {
		if err := s.tokens.TransferFrom(ctx, key.Token1, decoded.Payer, caller, amount1Owed); err != nil {
			return fmt.Errorf("pay token1: %w", err)
		}
	}
	return nil
}

// mintSettlement wraps MintCallback for one OpenRange call. The notification
// is sent inside the callback so a failing sink undoes the mint.
type mintSettlement struct {
	service *Service
	event   model.RangeOpened
	calls   int
}

func (m *mintSettlement) MintCallback(ctx context.Context, caller common.Address, amount0Owed, amount1Owed *uint256.Int, data []byte) error {
	m.calls++
	if m.calls > 1 {
		return fmt.Errorf("call %d: %w", m.calls, ErrMintCallbackCount)
	}
	if err := m.service.MintCallback(ctx, caller, amount0Owed, amount1Owed, data); err != nil {
		return err
	}
	m.event.Amount0 = amount0Owed.Clone()
	m.event.Amount1 = amount1Owed.Clone()
	if err := m.service.sinks.Notify(ctx, m.event); err != nil {
		return fmt.Errorf("notify range opened: %w", err)
	}
	return nil
}
