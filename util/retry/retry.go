package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	db "minerperf/debug"
)

var ErrTimeout = errors.New("timeout")

// Bounds on the per-attempt timeout handed to f.
type Tbounds struct {
	Min time.Duration
	Max time.Duration
}

// Clip returns remaining clamped to [Min, Max].
func (b Tbounds) Clip(remaining time.Duration) time.Duration {
	return max(b.Min, min(b.Max, remaining))
}

// UntilDeadline calls f until it reports ok or timeout elapses, sleeping
// interval (clipped to the time left) between attempts. Each attempt
// gets a timeout of the remaining time, clipped to bounds. It never sleeps
// past the deadline. If no attempt succeeds, it returns an error wrapping
// ErrTimeout.
func UntilDeadline[T any](ctx context.Context, timeout, interval time.Duration, bounds Tbounds, f func(ctx context.Context, timeout time.Duration) (T, bool)) (T, error) {
	var zero T
	deadline := time.Now().Add(timeout)
	for i := 0; time.Now().Before(deadline); i++ {
		remaining := time.Until(deadline)
		if v, ok := f(ctx, bounds.Clip(remaining)); ok {
			db.DPrintf(db.RETRY, "ok after %d attempts", i+1)
			return v, nil
		}
		if err := Sleep(ctx, min(interval, time.Until(deadline))); err != nil {
			return zero, err
		}
	}
	return zero, fmt.Errorf("%w after %v", ErrTimeout, timeout)
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
