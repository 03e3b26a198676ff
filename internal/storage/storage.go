package storage

import (
	"context"

	"liquidityRange/internal/model"
	"liquidityRange/internal/notify"
)

// Storage defines a journal for range notifications.
type Storage interface {
	PutRangeOpened(ctx context.Context, events ...model.RangeOpened) error
}

// AsNotifier journals every notification it receives.
func AsNotifier(s Storage) notify.Notifier {
	return notify.Func(func(ctx context.Context, event model.RangeOpened) error {
		return s.PutRangeOpened(ctx, event)
	})
}
