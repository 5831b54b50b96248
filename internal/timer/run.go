package timer

import (
	"context"
	"time"
)

// DefaultInterval is the wall-clock length of one tick.
const DefaultInterval = time.Second

// Run calls fn once per interval until ctx is cancelled. It blocks; callers
// start it in a goroutine bound to the lifetime of the running timer.
func Run(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A tick racing with cancellation is dropped.
			if ctx.Err() != nil {
				return
			}
			fn()
		}
	}
}
