package llm

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestThrottleSpacing_Sequential(t *testing.T) {
	interval := 30 * time.Millisecond
	throttle := NewThrottle(interval)
	ctx := context.Background()

	var completions []time.Time
	for i := 0; i < 4; i++ {
		if err := throttle.Acquire(ctx); err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		completions = append(completions, time.Now())
	}

	tolerance := 5 * time.Millisecond
	for i := 1; i < len(completions); i++ {
		gap := completions[i].Sub(completions[i-1])
		if gap < interval-tolerance {
			t.Errorf("acquires %d and %d completed %v apart, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestThrottleSpacing_Concurrent(t *testing.T) {
	interval := 20 * time.Millisecond
	throttle := NewThrottle(interval)
	ctx := context.Background()

	const callers = 5
	var mu sync.Mutex
	var completions []time.Time

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := throttle.Acquire(ctx); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			mu.Lock()
			completions = append(completions, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(completions) != callers {
		t.Fatalf("expected %d completions, got %d", callers, len(completions))
	}

	// Completion order is not guaranteed, so sort before checking gaps.
	for i := 0; i < len(completions); i++ {
		for j := i + 1; j < len(completions); j++ {
			if completions[j].Before(completions[i]) {
				completions[i], completions[j] = completions[j], completions[i]
			}
		}
	}

	tolerance := 5 * time.Millisecond
	for i := 1; i < len(completions); i++ {
		gap := completions[i].Sub(completions[i-1])
		if gap < interval-tolerance {
			t.Errorf("concurrent acquires %d and %d completed %v apart, want >= %v", i-1, i, gap, interval)
		}
	}
}

func TestThrottleZeroInterval(t *testing.T) {
	throttle := NewThrottle(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := throttle.Acquire(ctx); err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("zero-interval throttle should not wait, took %v", elapsed)
	}
}

func TestThrottleCancellation(t *testing.T) {
	throttle := NewThrottle(time.Hour)
	ctx := context.Background()

	// First acquire claims the slot immediately.
	if err := throttle.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}

	cancelCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- throttle.Acquire(cancelCtx)
	}()

	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Error("expected cancellation error from blocked Acquire")
		}
	case <-time.After(time.Second):
		t.Fatal("blocked Acquire did not return after cancellation")
	}
}

func TestThrottleFakeClock(t *testing.T) {
	throttle := NewThrottle(10 * time.Second)

	current := time.Unix(1000, 0)
	var slept []time.Duration
	throttle.now = func() time.Time { return current }
	throttle.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		current = current.Add(d)
		return nil
	}

	ctx := context.Background()
	if err := throttle.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire failed: %v", err)
	}
	if len(slept) != 0 {
		t.Errorf("first acquire should not sleep, slept %v", slept)
	}

	// Second acquire 3s later must wait the remaining 7s.
	current = current.Add(3 * time.Second)
	if err := throttle.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if len(slept) != 1 || slept[0] != 7*time.Second {
		t.Errorf("expected one 7s sleep, got %v", slept)
	}
}
