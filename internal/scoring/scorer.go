package scoring

import (
	"context"
	"encoding/json"
	"fmt"

	"blogforge/internal/core"
	"blogforge/internal/llm"
	"blogforge/internal/logger"
)

const maxScoreAttempts = 5

// Generator produces a model completion for a prompt. *llm.Invoker satisfies
// it; tests substitute canned responses.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ScoringError reports that every scoring attempt produced an unusable
// response. There is no fallback score: a draft that cannot be evaluated
// fails the whole generation request.
type ScoringError struct {
	Attempts int
	Last     error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ScoringError) Unwrap() error { return e.Last }

// Scorer evaluates drafts with an LLM rubric backed by rule-based metrics.
type Scorer struct {
	gen       Generator
	threshold int
}

func NewScorer(gen Generator, threshold int) *Scorer {
	return &Scorer{gen: gen, threshold: threshold}
}

// Score evaluates content against the five-category rubric. The model gets
// up to five attempts to return valid JSON, with progressively simpler
// prompts: full rubric on attempts 1-2, truncated on 3-4, minimal on 5.
// Parse and validation failures consume attempts; LLM transport errors do
// not, they propagate immediately since the invoker has already spent its
// own retry budget on them.
func (s *Scorer) Score(ctx context.Context, content, topic string, keywords []string) (*core.ScoreResult, error) {
	metrics := ComputeMetrics(content, keywords)

	var lastErr error
	for attempt := 1; attempt <= maxScoreAttempts; attempt++ {
		var prompt string
		switch {
		case attempt <= 2:
			prompt = fullScorePrompt(content, topic, keywords, metrics)
		case attempt <= 4:
			prompt = truncatedScorePrompt(content, topic)
		default:
			prompt = minimalScorePrompt(content)
		}

		response, err := s.gen.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("scoring call failed: %w", err)
		}

		result, err := parseScoreResponse(response)
		if err != nil {
			lastErr = err
			logger.Warn("score response rejected, retrying with simpler prompt",
				"attempt", attempt, "error", err.Error())
			continue
		}

		result.Metrics = metrics
		result.PassesThreshold = result.TotalScore >= s.threshold
		logger.Info("draft scored",
			"total", result.TotalScore, "passes_threshold", result.PassesThreshold)
		return result, nil
	}

	return nil, &ScoringError{Attempts: maxScoreAttempts, Last: lastErr}
}

// scorePayload mirrors the JSON shape the rubric prompt demands. Nilable
// fields let validation distinguish a missing key from an empty value, and
// json.Number rejects fractional scores without losing precision.
type scorePayload struct {
	CategoryScores         map[string]json.Number `json:"category_scores"`
	Feedback               map[string]string      `json:"feedback"`
	ImprovementSuggestions *[]string              `json:"improvement_suggestions"`
}

// parseScoreResponse extracts, decodes, and strictly validates a scoring
// response. Every category must appear in both category_scores and feedback,
// scores must be integers, and improvement_suggestions must be present as a
// list. Out-of-range values are reported as-is rather than clamped, so a
// misbehaving model surfaces in the total instead of being silently hidden.
func parseScoreResponse(response string) (*core.ScoreResult, error) {
	raw, err := llm.ExtractJSONObject(response)
	if err != nil {
		return nil, err
	}

	var payload scorePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("malformed score JSON: %w", err)
	}

	if payload.CategoryScores == nil {
		return nil, fmt.Errorf("missing category_scores")
	}
	if payload.Feedback == nil {
		return nil, fmt.Errorf("missing feedback")
	}
	if payload.ImprovementSuggestions == nil {
		return nil, fmt.Errorf("missing improvement_suggestions")
	}

	result := &core.ScoreResult{
		CategoryScores:         make(map[string]core.CategoryScore, len(core.CategoryOrder)),
		Feedback:               make(map[string]string, len(core.CategoryOrder)),
		ImprovementSuggestions: *payload.ImprovementSuggestions,
	}

	total := 0
	for _, category := range core.CategoryOrder {
		num, ok := payload.CategoryScores[category]
		if !ok {
			return nil, fmt.Errorf("category_scores missing %q", category)
		}
		score, err := num.Int64()
		if err != nil {
			return nil, fmt.Errorf("score for %q is not an integer: %q", category, num.String())
		}

		fb, ok := payload.Feedback[category]
		if !ok {
			return nil, fmt.Errorf("feedback missing %q", category)
		}

		result.CategoryScores[category] = core.CategoryScore{
			Score: int(score),
			Max:   core.CategoryMax[category],
		}
		result.Feedback[category] = fb
		total += int(score)
	}

	result.TotalScore = total
	return result, nil
}
