package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"liquidityRange/internal/fixedpoint"
	"liquidityRange/internal/model"
)

// Notifier receives the event emitted after a range is opened.
type Notifier interface {
	Notify(ctx context.Context, event model.RangeOpened) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, event model.RangeOpened) error

func (f Func) Notify(ctx context.Context, event model.RangeOpened) error { return f(ctx, event) }

// LogNotifier writes events to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event model.RangeOpened) error {
	n.logger.Info("range opened",
		zap.String("caller", event.Caller.Hex()),
		zap.String("pool", event.Pool.Hex()),
		zap.Uint32("width", event.Width),
		zap.Int32("tick_lower", event.TickLower),
		zap.Int32("tick_upper", event.TickUpper),
		zap.String("liquidity", fixedpoint.String(event.Liquidity)),
		zap.String("amount0", fixedpoint.String(event.Amount0)),
		zap.String("amount1", fixedpoint.String(event.Amount1)),
	)
	return nil
}

// Multi fans an event out to every notifier in order and stops at the first error.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event model.RangeOpened) error {
	for i, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			return fmt.Errorf("notifier %d: %w", i, err)
		}
	}
	return nil
}
