package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"liquidityRange/internal/model"
)

func TestLogNotifierFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))

	event := model.RangeOpened{
		Pool:      common.HexToAddress("0x2222222222222222222222222222222222222222"),
		TickLower: -60,
		TickUpper: 120,
		Liquidity: uint256.NewInt(42),
	}
	require.NoError(t, n.Notify(context.Background(), event))

	entries := logs.FilterMessage("range opened").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "42", fields["liquidity"])
	assert.Equal(t, "0", fields["amount0"])
	assert.Equal(t, int32(-60), fields["tick_lower"])
	assert.Equal(t, event.Pool.Hex(), fields["pool"])
}

func TestMultiStopsAtFirstError(t *testing.T) {
	var seen []int
	boom := errors.New("boom")
	m := Multi{
		Func(func(context.Context, model.RangeOpened) error { seen = append(seen, 1); return nil }),
		nil,
		Func(func(context.Context, model.RangeOpened) error { seen = append(seen, 2); return boom }),
		Func(func(context.Context, model.RangeOpened) error { seen = append(seen, 3); return nil }),
	}
	err := m.Notify(context.Background(), model.RangeOpened{})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1, 2}, seen)
}
