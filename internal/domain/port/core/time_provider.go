package core

import (
	"context"
	"time"
)

// TimeProvider abstracts the clock so ledger timestamps and retry backoff can be controlled in tests
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	// After waits for the duration to elapse and then sends the current time on the returned channel
	After(d time.Duration) <-chan time.Time
	WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc)
}
