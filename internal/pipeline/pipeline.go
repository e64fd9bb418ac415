package pipeline

import (
	"context"
	"fmt"

	"blogforge/internal/core"
	"blogforge/internal/logger"
)

// Writer drafts and revises posts.
type Writer interface {
	Generate(ctx context.Context, topic, style string, plan *core.BlogPlan, chunks []core.ContextChunk) (string, error)
	Rewrite(ctx context.Context, original, topic string, score *core.ScoreResult, chunks []core.ContextChunk, keywords []string, iteration int) (string, error)
}

// Scorer evaluates a draft against the rubric.
type Scorer interface {
	Score(ctx context.Context, content, topic string, keywords []string) (*core.ScoreResult, error)
}

// Request carries everything one generation run needs.
type Request struct {
	Topic    string
	Keywords []string
	Style    string
	Plan     *core.BlogPlan
	Context  []core.ContextChunk
}

// Controller runs the bounded write-score-rewrite loop.
type Controller struct {
	writer            Writer
	scorer            Scorer
	maxIterations     int
	minScoreThreshold int
}

func NewController(writer Writer, scorer Scorer, maxIterations, minScoreThreshold int) *Controller {
	if maxIterations < 1 {
		maxIterations = 1
	}
	return &Controller{
		writer:            writer,
		scorer:            scorer,
		maxIterations:     maxIterations,
		minScoreThreshold: minScoreThreshold,
	}
}

// Run executes up to maxIterations write-then-score passes. Iteration 1 is a
// fresh draft; later iterations rewrite the previous draft using its score.
// The loop exits early once a draft reaches the threshold. The best draft by
// total score wins, with earlier iterations winning ties; a scoring failure
// on any iteration aborts the whole request, even when earlier iterations
// scored fine, because a result that cannot be evaluated cannot be trusted.
func (c *Controller) Run(ctx context.Context, req Request) (*core.IterationOutcome, error) {
	outcome := &core.IterationOutcome{
		History: make([]core.IterationRecord, 0, c.maxIterations),
	}

	var draft string
	var prevScore *core.ScoreResult

	for iteration := 1; iteration <= c.maxIterations; iteration++ {
		var err error
		if iteration == 1 {
			draft, err = c.writer.Generate(ctx, req.Topic, req.Style, req.Plan, req.Context)
		} else {
			draft, err = c.writer.Rewrite(ctx, draft, req.Topic, prevScore, req.Context, req.Keywords, iteration)
		}
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iteration, err)
		}

		score, err := c.scorer.Score(ctx, draft, req.Topic, req.Keywords)
		if err != nil {
			return nil, fmt.Errorf("iteration %d: %w", iteration, err)
		}

		outcome.History = append(outcome.History, core.IterationRecord{
			Iteration: iteration,
			Score:     *score,
			Text:      draft,
		})
		outcome.IterationCount = iteration
		outcome.FinalScore = *score

		// Strict improvement only: ties keep the earlier draft.
		if iteration == 1 || score.TotalScore > outcome.BestScore {
			outcome.BestText = draft
			outcome.BestScore = score.TotalScore
			outcome.BestIteration = iteration
		}

		logger.Info("iteration complete",
			"iteration", iteration,
			"score", score.TotalScore,
			"best", outcome.BestScore,
			"best_iteration", outcome.BestIteration)

		if score.TotalScore >= c.minScoreThreshold {
			logger.Info("threshold reached, stopping early",
				"score", score.TotalScore, "threshold", c.minScoreThreshold)
			break
		}

		prevScore = score
	}

	return outcome, nil
}
