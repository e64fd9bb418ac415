package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"blogforge/internal/core"
)

// fakeWriter emits predictable drafts and records rewrite inputs.
type fakeWriter struct {
	generateCalls int
	rewriteCalls  int
	rewriteScores []int // TotalScore seen on each rewrite
}

func (w *fakeWriter) Generate(ctx context.Context, topic, style string, plan *core.BlogPlan, chunks []core.ContextChunk) (string, error) {
	w.generateCalls++
	return "draft-1", nil
}

func (w *fakeWriter) Rewrite(ctx context.Context, original, topic string, score *core.ScoreResult, chunks []core.ContextChunk, keywords []string, iteration int) (string, error) {
	w.rewriteCalls++
	w.rewriteScores = append(w.rewriteScores, score.TotalScore)
	return fmt.Sprintf("draft-%d", iteration), nil
}

// fakeScorer returns a fixed sequence of total scores, or an error at a
// chosen call index.
type fakeScorer struct {
	scores  []int
	failAt  int // 1-based call index that errors; 0 disables
	calls   int
	failErr error
}

func (s *fakeScorer) Score(ctx context.Context, content, topic string, keywords []string) (*core.ScoreResult, error) {
	s.calls++
	if s.failAt != 0 && s.calls == s.failAt {
		return nil, s.failErr
	}
	idx := s.calls - 1
	if idx >= len(s.scores) {
		idx = len(s.scores) - 1
	}
	return &core.ScoreResult{TotalScore: s.scores[idx]}, nil
}

func TestRunTracksBestAcrossIterations(t *testing.T) {
	writer := &fakeWriter{}
	scorer := &fakeScorer{scores: []int{50, 30, 90, 60}}
	ctrl := NewController(writer, scorer, 4, 95)

	outcome, err := ctrl.Run(context.Background(), Request{Topic: "t"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if outcome.BestScore != 90 || outcome.BestIteration != 3 {
		t.Errorf("best = %d at iteration %d, want 90 at 3", outcome.BestScore, outcome.BestIteration)
	}
	if outcome.BestText != "draft-3" {
		t.Errorf("BestText = %q, want draft-3", outcome.BestText)
	}
	if outcome.IterationCount != 4 {
		t.Errorf("IterationCount = %d, want 4", outcome.IterationCount)
	}
	if outcome.FinalScore.TotalScore != 60 {
		t.Errorf("FinalScore = %d, want 60 (the last iteration)", outcome.FinalScore.TotalScore)
	}
	if len(outcome.History) != 4 {
		t.Errorf("History length = %d, want 4", len(outcome.History))
	}
	for i, rec := range outcome.History {
		if rec.Iteration != i+1 {
			t.Errorf("History[%d].Iteration = %d, want %d", i, rec.Iteration, i+1)
		}
	}
}

func TestRunEarlyExitOnThreshold(t *testing.T) {
	writer := &fakeWriter{}
	scorer := &fakeScorer{scores: []int{85}}
	ctrl := NewController(writer, scorer, 5, 80)

	outcome, err := ctrl.Run(context.Background(), Request{Topic: "t"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if outcome.IterationCount != 1 {
		t.Errorf("IterationCount = %d, want 1 (early exit at 85 >= 80)", outcome.IterationCount)
	}
	if writer.rewriteCalls != 0 {
		t.Errorf("rewrite must not run after the threshold is reached: %d calls", writer.rewriteCalls)
	}
	if outcome.BestScore != 85 {
		t.Errorf("BestScore = %d, want 85", outcome.BestScore)
	}
}

func TestRunStopsAtMaxIterations(t *testing.T) {
	writer := &fakeWriter{}
	scorer := &fakeScorer{scores: []int{40, 55}}
	ctrl := NewController(writer, scorer, 2, 80)

	outcome, err := ctrl.Run(context.Background(), Request{Topic: "t"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if outcome.IterationCount != 2 {
		t.Errorf("IterationCount = %d, want 2", outcome.IterationCount)
	}
	if writer.generateCalls != 1 || writer.rewriteCalls != 1 {
		t.Errorf("calls = %d generate, %d rewrite; want 1 and 1", writer.generateCalls, writer.rewriteCalls)
	}
	if outcome.BestText != "draft-2" || outcome.BestScore != 55 {
		t.Errorf("best = %q at %d, want draft-2 at 55", outcome.BestText, outcome.BestScore)
	}
}

func TestRunTieKeepsEarlierDraft(t *testing.T) {
	writer := &fakeWriter{}
	scorer := &fakeScorer{scores: []int{60, 60}}
	ctrl := NewController(writer, scorer, 2, 80)

	outcome, err := ctrl.Run(context.Background(), Request{Topic: "t"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.BestIteration != 1 || outcome.BestText != "draft-1" {
		t.Errorf("tie must keep the earlier draft, got iteration %d %q", outcome.BestIteration, outcome.BestText)
	}
}

func TestRunScoringFailureAborts(t *testing.T) {
	scoringErr := errors.New("scoring failed after 5 attempts")
	writer := &fakeWriter{}
	scorer := &fakeScorer{scores: []int{70}, failAt: 2, failErr: scoringErr}
	ctrl := NewController(writer, scorer, 3, 95)

	outcome, err := ctrl.Run(context.Background(), Request{Topic: "t"})
	if err == nil {
		t.Fatal("expected the scoring failure to abort the run")
	}
	if !errors.Is(err, scoringErr) {
		t.Errorf("error should wrap the scoring error, got %v", err)
	}
	if outcome != nil {
		t.Error("aborted run must not return a partial outcome")
	}
}

func TestRunRewriteReceivesPreviousScore(t *testing.T) {
	writer := &fakeWriter{}
	scorer := &fakeScorer{scores: []int{40, 55, 70}}
	ctrl := NewController(writer, scorer, 3, 95)

	if _, err := ctrl.Run(context.Background(), Request{Topic: "t"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []int{40, 55}
	if len(writer.rewriteScores) != len(want) {
		t.Fatalf("rewriteScores = %v, want %v", writer.rewriteScores, want)
	}
	for i := range want {
		if writer.rewriteScores[i] != want[i] {
			t.Errorf("rewrite %d saw score %d, want %d", i+1, writer.rewriteScores[i], want[i])
		}
	}
}

func TestRunWriterFailureAborts(t *testing.T) {
	writeErr := errors.New("all models exhausted")
	scorer := &fakeScorer{scores: []int{40}}
	ctrl := NewController(failingWriter{err: writeErr}, scorer, 3, 95)

	_, err := ctrl.Run(context.Background(), Request{Topic: "t"})
	if !errors.Is(err, writeErr) {
		t.Errorf("error should wrap the writer error, got %v", err)
	}
	if scorer.calls != 0 {
		t.Errorf("scorer must not run when drafting fails: %d calls", scorer.calls)
	}
}

type failingWriter struct{ err error }

func (w failingWriter) Generate(ctx context.Context, topic, style string, plan *core.BlogPlan, chunks []core.ContextChunk) (string, error) {
	return "", w.err
}

func (w failingWriter) Rewrite(ctx context.Context, original, topic string, score *core.ScoreResult, chunks []core.ContextChunk, keywords []string, iteration int) (string, error) {
	return "", w.err
}
