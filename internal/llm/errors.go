package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"blogforge/internal/core"
)

// RateLimitError is the typed form of a 429-class failure. Backends classify
// their transport errors into this type before the invoker sees them, so the
// retry loop never inspects strings or response objects itself.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration // zero when the backend carried no reset hint
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %s", e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("rate limited: %s", e.Message)
}

// ExhaustedError is the terminal failure returned when the full retry budget
// is spent. It carries the last underlying error, every model attempted, and
// the per-attempt trace for diagnostics.
type ExhaustedError struct {
	ModelsTried []string
	Attempts    int
	Last        error
	Trace       []core.InvocationAttempt
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("exhausted retry budget after %d attempts across models [%s]: %v",
		e.Attempts, strings.Join(e.ModelsTried, ", "), e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// rateLimitVocabulary covers backends whose errors reach us as plain strings.
var rateLimitVocabulary = []string{"429", "rate limit", "too many requests", "resource_exhausted", "quota"}

// IsRateLimit reports whether err represents a rate-limit condition. The
// check is layered because error shapes vary by transport: a typed
// RateLimitError wins, then a 429 status on a Gemini API error, then
// rate-limit vocabulary in the message.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}

	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, needle := range rateLimitVocabulary {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

// RetryAfterHint extracts the backend's rate-limit-reset hint from err, or
// zero if none was carried.
func RetryAfterHint(err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfter
	}
	return 0
}
