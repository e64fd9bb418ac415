package llm

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces a minimum interval between requests across all callers
// sharing the same instance. One Throttle is constructed at process start and
// injected into every Invoker, so the spacing is global rather than
// per-caller.
//
// There is no fairness guarantee: waiters are admitted in whatever order the
// mutex grants them.
type Throttle struct {
	mu          sync.Mutex
	minInterval time.Duration
	last        time.Time // start time of the most recent successful acquire

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewThrottle creates a throttle with the given minimum interval between
// acquires. A zero or negative interval disables waiting.
func NewThrottle(minInterval time.Duration) *Throttle {
	return &Throttle{
		minInterval: minInterval,
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// Acquire blocks until at least the configured interval has elapsed since the
// previous acquire claimed its slot, then claims the current time as the new
// slot. The shared timestamp is only read and updated under the lock; the
// sleep itself happens outside it so concurrent requests on other models are
// not serialized behind a waiter.
//
// Acquire returns early only if ctx is canceled.
func (t *Throttle) Acquire(ctx context.Context) error {
	for {
		t.mu.Lock()
		now := t.now()
		var wait time.Duration
		if !t.last.IsZero() {
			if elapsed := now.Sub(t.last); elapsed < t.minInterval {
				wait = t.minInterval - elapsed
			}
		}
		if wait <= 0 {
			t.last = now
			t.mu.Unlock()
			return ctx.Err()
		}
		t.mu.Unlock()

		if err := t.sleep(ctx, wait); err != nil {
			return err
		}
		// Another caller may have claimed the slot while we slept; re-check.
	}
}

// MinInterval returns the configured minimum interval.
func (t *Throttle) MinInterval() time.Duration {
	return t.minInterval
}

// sleepContext sleeps for d or until ctx is canceled, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
