package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"blogforge/internal/config"
	"blogforge/internal/core"
	"blogforge/internal/llm"
	"blogforge/internal/logger"
	"blogforge/internal/pipeline"
	"blogforge/internal/planner"
	"blogforge/internal/rag"
	"blogforge/internal/research"
	"blogforge/internal/scoring"
	"blogforge/internal/writer"
)

// app wires the LLM stack and pipeline components from configuration. The
// throttle and error tracker are created once per app so every component's
// LLM calls share the same request spacing and model-health view.
type app struct {
	cfg        *config.Config
	invoker    *llm.Invoker
	planner    *planner.Planner
	writer     *writer.Writer
	scorer     *scoring.Scorer
	controller *pipeline.Controller
	provider   research.Provider
	fetcher    *research.Fetcher
	retriever  rag.Retriever
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Get()

	backend, err := llm.NewGeminiBackend(ctx, cfg.AI.Gemini.Temperature, cfg.AI.Gemini.MaxTokens)
	if err != nil {
		return nil, err
	}

	model := cfg.AI.Gemini.Model
	if model == "" {
		model = llm.DefaultModel
	}

	throttle := llm.NewThrottle(cfg.AI.Limits.MinRequestInterval)
	tracker := llm.NewModelErrorTracker(cfg.AI.Limits.ResetWindow)
	opts := llm.DefaultOptions()
	opts.MaxRetries = cfg.AI.Limits.MaxRetries
	opts.RetryDelay = cfg.AI.Limits.RetryDelay
	opts.FallbackModels = cfg.AI.Limits.FallbackModels
	invoker := llm.NewInvoker(backend, throttle, tracker, model, opts)

	w := writer.New(invoker)
	s := scoring.NewScorer(invoker, cfg.Generation.MinScoreThreshold)

	return &app{
		cfg:        cfg,
		invoker:    invoker,
		planner:    planner.New(invoker),
		writer:     w,
		scorer:     s,
		controller: pipeline.NewController(w, s, cfg.Generation.MaxIterations, cfg.Generation.MinScoreThreshold),
		provider:   newProvider(cfg),
		fetcher:    newFetcher(cfg),
		retriever:  rag.NewKeywordRetriever(),
	}, nil
}

// newProvider selects the research provider. Missing Google credentials fall
// back to the mock provider so generation still works offline.
func newProvider(cfg *config.Config) research.Provider {
	switch cfg.Search.Provider {
	case "google":
		if cfg.Search.Google.APIKey != "" && cfg.Search.Google.SearchID != "" {
			return research.NewGoogleProvider(cfg.Search.Google.APIKey, cfg.Search.Google.SearchID)
		}
		logger.Warn("google search credentials missing, using mock research provider")
		return research.NewMockProvider()
	case "mock":
		return research.NewMockProvider()
	default:
		logger.Warn("unknown search provider, using mock", "provider", cfg.Search.Provider)
		return research.NewMockProvider()
	}
}

func newFetcher(cfg *config.Config) *research.Fetcher {
	var interval time.Duration
	if rps := cfg.Search.Fetch.RequestsPerSec; rps > 0 {
		interval = time.Duration(float64(time.Second) / rps)
	}
	return research.NewFetcher(interval, cfg.Search.Fetch.Timeout)
}

// gatherContext runs the research phase: search, fetch page bodies, and
// retrieve the most relevant chunks. Research failures degrade to an empty
// context instead of failing the run, since a post can be written without it.
func (a *app) gatherContext(ctx context.Context, topic string, keywords []string) ([]core.ContextChunk, string) {
	results, err := a.provider.Search(ctx, topic, a.cfg.Search.MaxResults)
	if err != nil {
		logger.Warn("research search failed, continuing without context",
			"provider", a.provider.GetName(), "error", err.Error())
		return nil, ""
	}
	if len(results) == 0 {
		return nil, ""
	}

	enriched := a.fetcher.Enrich(ctx, results)
	chunks := a.retriever.Retrieve(topic, keywords, enriched)
	if k := a.cfg.Generation.ContextChunks; k > 0 && len(chunks) > k {
		chunks = chunks[:k]
	}

	logger.Info("research complete",
		"provider", a.provider.GetName(),
		"results", len(results), "usable_pages", len(enriched), "chunks", len(chunks))

	return chunks, research.Summarize(enriched)
}

// generateOnce runs the full pipeline for one topic: research, plan, then
// the iterative write-score loop.
func (a *app) generateOnce(ctx context.Context, topic, style string, keywords []string, withResearch bool) (*core.IterationOutcome, error) {
	var chunks []core.ContextChunk
	var summary string
	if withResearch {
		chunks, summary = a.gatherContext(ctx, topic, keywords)
	}

	plan, err := a.planner.CreatePlan(ctx, topic, keywords, summary)
	if err != nil {
		return nil, fmt.Errorf("planning: %w", err)
	}

	if style == "" {
		style = a.cfg.Generation.Style
	}

	return a.controller.Run(ctx, pipeline.Request{
		Topic:    topic,
		Keywords: keywords,
		Style:    style,
		Plan:     plan,
		Context:  chunks,
	})
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// saveDraft writes the best draft to the output directory and returns the
// file path.
func (a *app) saveDraft(topic string, outcome *core.IterationOutcome) (string, error) {
	dir := a.cfg.App.OutputDir
	if dir == "" {
		dir = "drafts"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(topic), "-"), "-")
	if slug == "" {
		slug = "draft"
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.md", time.Now().Format("2006-01-02"), slug))

	if err := os.WriteFile(path, []byte(outcome.BestText), 0o644); err != nil {
		return "", fmt.Errorf("failed to write draft to %s: %w", path, err)
	}
	return path, nil
}
