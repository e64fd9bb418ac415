package writer

import (
	"context"
	"fmt"

	"blogforge/internal/core"
	"blogforge/internal/logger"
)

// Generator produces a model completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Writer drafts and revises blog posts. It is stateless: everything a draft
// or rewrite needs is passed per call.
type Writer struct {
	gen Generator
}

func New(gen Generator) *Writer {
	return &Writer{gen: gen}
}

// Generate produces the first draft for a topic from the outline and any
// retrieved context.
func (w *Writer) Generate(ctx context.Context, topic, style string, plan *core.BlogPlan, chunks []core.ContextChunk) (string, error) {
	prompt := draftPrompt(topic, style, plan, chunks)

	logger.Info("generating initial draft", "topic", topic, "context_chunks", len(chunks))
	draft, err := w.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("draft generation failed: %w", err)
	}
	return draft, nil
}

// Rewrite revises a draft using the evaluator's category feedback and
// improvement suggestions. The previous draft is included verbatim so the
// model revises rather than starting over.
func (w *Writer) Rewrite(ctx context.Context, original, topic string, score *core.ScoreResult, chunks []core.ContextChunk, keywords []string, iteration int) (string, error) {
	prompt := rewritePrompt(original, topic, score, chunks, keywords, iteration)

	logger.Info("rewriting draft", "topic", topic, "iteration", iteration, "previous_score", score.TotalScore)
	revised, err := w.gen.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("rewrite failed (iteration %d): %w", iteration, err)
	}
	return revised, nil
}
