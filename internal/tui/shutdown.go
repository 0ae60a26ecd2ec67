package tui

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ShutdownManager tears hva-top down in order: views stop receiving frames,
// the channel closes, then buffered traces are flushed.
type ShutdownManager struct {
	// FlushTimeout bounds the tracing flush.
	FlushTimeout time.Duration

	// Unsubscribe detaches every view from the shared channel.
	Unsubscribe []func()

	// Disconnect closes the channel and cancels any pending reconnect.
	Disconnect func()

	// FlushTracing exports buffered spans.
	FlushTracing func(ctx context.Context) error

	// Cleanup runs last (log file close and similar).
	Cleanup func() error

	once sync.Once
	err  error
}

// NewShutdownManager creates a ShutdownManager with a 5-second flush timeout.
func NewShutdownManager() *ShutdownManager {
	return &ShutdownManager{
		FlushTimeout: 5 * time.Second,
	}
}

// Shutdown runs the teardown once; later calls return the first result.
func (sm *ShutdownManager) Shutdown() error {
	sm.once.Do(func() {
		for _, unsub := range sm.Unsubscribe {
			if unsub != nil {
				unsub()
			}
		}

		if sm.Disconnect != nil {
			sm.Disconnect()
		}

		var errs []error
		if sm.FlushTracing != nil {
			ctx, cancel := context.WithTimeout(context.Background(), sm.FlushTimeout)
			errs = append(errs, sm.FlushTracing(ctx))
			cancel()
		}

		if sm.Cleanup != nil {
			errs = append(errs, sm.Cleanup())
		}
		sm.err = errors.Join(errs...)
	})
	return sm.err
}
