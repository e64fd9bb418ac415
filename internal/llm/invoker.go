package llm

import (
	"context"
	"fmt"
	"time"

	"blogforge/internal/core"
	"blogforge/internal/logger"
)

// Backend performs one raw generation call against a named model. It must
// classify rate-limit failures into *RateLimitError; any other error is
// treated as fatal and never retried.
type Backend interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Options collects the retry and fallback configuration for an Invoker.
type Options struct {
	MaxRetries     int           // attempts per model before the budget is spent
	RetryDelay     time.Duration // default backoff when the error carries no reset hint
	FallbackModels []string      // ordered fallback candidates; the primary model is always included
	SwitchDelay    time.Duration // short pause before retrying on a freshly switched model
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		MaxRetries:  3,
		RetryDelay:  20 * time.Second,
		SwitchDelay: 2 * time.Second,
	}
}

// Invoker wraps one logical "generate text from prompt" operation with
// global throttling, retry on rate limits, and automatic model switching.
// The throttle and tracker are process-wide singletons shared with every
// other Invoker; the model and options are per-invoker.
type Invoker struct {
	backend  Backend
	throttle *Throttle
	tracker  *ModelErrorTracker
	model    string // primary model for this invoker
	opts     Options

	sleep func(ctx context.Context, d time.Duration) error
}

// NewInvoker builds an invoker for the given primary model. throttle and
// tracker must be the shared instances; passing fresh ones is only
// appropriate in tests.
func NewInvoker(backend Backend, throttle *Throttle, tracker *ModelErrorTracker, model string, opts Options) *Invoker {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 20 * time.Second
	}
	if opts.SwitchDelay <= 0 {
		opts.SwitchDelay = 2 * time.Second
	}
	return &Invoker{
		backend:  backend,
		throttle: throttle,
		tracker:  tracker,
		model:    model,
		opts:     opts,
	}
}

// Model returns the invoker's primary model name.
func (inv *Invoker) Model() string {
	return inv.model
}

// candidates returns the primary model followed by the fallback list, with
// duplicates removed while preserving order.
func (inv *Invoker) candidates() []string {
	seen := map[string]bool{inv.model: true}
	models := []string{inv.model}
	for _, m := range inv.opts.FallbackModels {
		if !seen[m] {
			seen[m] = true
			models = append(models, m)
		}
	}
	return models
}

// Generate runs one logical generation request. On rate-limit errors it
// records the failure, switches to the healthiest untried fallback model when
// one exists, and otherwise backs off and retries on the current model. The
// total attempt budget is MaxRetries multiplied by the number of candidate
// models; spending it returns an *ExhaustedError naming every model tried.
// Fatal errors propagate immediately without retry.
func (inv *Invoker) Generate(ctx context.Context, prompt string) (string, error) {
	candidates := inv.candidates()
	budget := inv.opts.MaxRetries * len(candidates)

	current := inv.model
	tried := make(map[string]bool)
	var modelsTried []string
	var lastErr error
	trace := make([]core.InvocationAttempt, 0, budget)

	doSleep := inv.sleep
	if doSleep == nil {
		doSleep = sleepContext
	}

	for attempt := 1; attempt <= budget; attempt++ {
		if err := inv.throttle.Acquire(ctx); err != nil {
			return "", err
		}

		output, err := inv.backend.Generate(ctx, current, prompt)
		if err == nil {
			logger.Debug("llm call succeeded", "model", current, "attempt", attempt, "outcome", "success")
			return output, nil
		}

		if !tried[current] {
			tried[current] = true
			modelsTried = append(modelsTried, current)
		}

		if !IsRateLimit(err) {
			logger.Error("llm call failed", err, "model", current, "attempt", attempt, "outcome", "fatal")
			return "", fmt.Errorf("llm call on model %s failed: %w", current, err)
		}

		trace = append(trace, core.InvocationAttempt{Attempt: attempt, Model: current, Outcome: "rate_limited"})
		logger.Warn("llm call rate limited", "model", current, "attempt", attempt, "outcome", "rate_limited")
		inv.tracker.RecordError(current)
		lastErr = err

		if attempt == budget {
			break
		}

		// Prefer an untried model that is at least as healthy as the one
		// that just failed.
		if next, ok := inv.pickUntried(candidates, tried, current); ok {
			logger.Info("switching model", "from", current, "to", next)
			current = next
			if err := doSleep(ctx, inv.opts.SwitchDelay); err != nil {
				return "", err
			}
			continue
		}

		delay := RetryAfterHint(err)
		if delay <= 0 {
			delay = inv.opts.RetryDelay
		}
		logger.Info("backing off before retry", "model", current, "delay", delay.String())
		if err := doSleep(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", &ExhaustedError{
		ModelsTried: modelsTried,
		Attempts:    budget,
		Last:        lastErr,
		Trace:       trace,
	}
}

// pickUntried returns the best untried candidate if its recent error count is
// no worse than the current model's.
func (inv *Invoker) pickUntried(candidates []string, tried map[string]bool, current string) (string, bool) {
	untried := make([]string, 0, len(candidates))
	for _, m := range candidates {
		if !tried[m] {
			untried = append(untried, m)
		}
	}
	if len(untried) == 0 {
		return "", false
	}
	best := inv.tracker.BestModel(untried)
	if best == "" || inv.tracker.ErrorCount(best) > inv.tracker.ErrorCount(current) {
		return "", false
	}
	return best, true
}
