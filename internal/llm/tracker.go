package llm

import (
	"sync"
	"time"
)

// ModelErrorTracker keeps a rolling error count per model name so the invoker
// can rank fallback candidates by recent health. Errors older than the reset
// window are purged lazily on each call; a model whose count decays to zero
// is dropped entirely, so memory stays bounded by the number of recently
// failing models.
type ModelErrorTracker struct {
	mu          sync.Mutex
	resetWindow time.Duration
	errors      map[string][]time.Time

	now func() time.Time
}

// NewModelErrorTracker creates a tracker whose errors expire after
// resetWindow.
func NewModelErrorTracker(resetWindow time.Duration) *ModelErrorTracker {
	return &ModelErrorTracker{
		resetWindow: resetWindow,
		errors:      make(map[string][]time.Time),
		now:         time.Now,
	}
}

// RecordError registers an error for the given model at the current time.
func (t *ModelErrorTracker) RecordError(model string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.purgeLocked()
	t.errors[model] = append(t.errors[model], t.now())
}

// ErrorCount returns the number of errors recorded for model within the
// current window.
func (t *ModelErrorTracker) ErrorCount(model string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.purgeLocked()
	return len(t.errors[model])
}

// BestModel returns the candidate with the fewest errors in the current
// window. Ties break by position in the candidate list, so repeated calls
// with the same state are deterministic. An empty candidate list returns "".
func (t *ModelErrorTracker) BestModel(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.purgeLocked()

	best := candidates[0]
	bestCount := len(t.errors[best])
	for _, candidate := range candidates[1:] {
		if count := len(t.errors[candidate]); count < bestCount {
			best = candidate
			bestCount = count
		}
	}
	return best
}

// purgeLocked drops error timestamps older than the reset window and removes
// models with no remaining errors. Callers must hold t.mu.
func (t *ModelErrorTracker) purgeLocked() {
	cutoff := t.now().Add(-t.resetWindow)
	for model, stamps := range t.errors {
		kept := stamps[:0]
		for _, ts := range stamps {
			if ts.After(cutoff) {
				kept = append(kept, ts)
			}
		}
		if len(kept) == 0 {
			delete(t.errors, model)
			continue
		}
		t.errors[model] = kept
	}
}
