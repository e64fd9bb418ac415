package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"blogforge/internal/core"
	"blogforge/internal/llm"
	"blogforge/internal/logger"
)

const maxPlanAttempts = 5

// Generator produces a model completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PlanError reports that every planning attempt produced an unusable outline.
type PlanError struct {
	Attempts int
	Last     error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("planning failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *PlanError) Unwrap() error { return e.Last }

// Planner produces a structured article outline before drafting begins.
type Planner struct {
	gen Generator
}

func New(gen Generator) *Planner {
	return &Planner{gen: gen}
}

// CreatePlan asks the model for a structured outline. Parse failures consume
// up to five attempts, switching to a simplified prompt after two; LLM
// transport errors propagate immediately.
func (p *Planner) CreatePlan(ctx context.Context, topic string, keywords []string, researchSummary string) (*core.BlogPlan, error) {
	var lastErr error
	for attempt := 1; attempt <= maxPlanAttempts; attempt++ {
		var prompt string
		if attempt <= 2 {
			prompt = planPrompt(topic, keywords, researchSummary)
		} else {
			prompt = simplePlanPrompt(topic)
		}

		response, err := p.gen.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("planning call failed: %w", err)
		}

		plan, err := parsePlan(response)
		if err != nil {
			lastErr = err
			logger.Warn("plan response rejected, retrying",
				"attempt", attempt, "error", err.Error())
			continue
		}

		logger.Info("outline created", "topic", topic, "sections", plan.SectionCount())
		return plan, nil
	}

	return nil, &PlanError{Attempts: maxPlanAttempts, Last: lastErr}
}

func planPrompt(topic string, keywords []string, researchSummary string) string {
	var b strings.Builder

	b.WriteString("You are a content strategist. Create a blog post outline for the topic below.\n\n")
	b.WriteString("Topic: " + topic + "\n")
	if len(keywords) > 0 {
		b.WriteString("Target keywords: " + strings.Join(keywords, ", ") + "\n")
	}
	if researchSummary != "" {
		b.WriteString("\nResearch summary:\n" + researchSummary + "\n")
	}

	b.WriteString("\nRespond with ONLY a JSON object:\n")
	b.WriteString(`{"title": "<article title>", "intro": "<what the introduction covers>", "sections": [{"heading": "<h2 heading>", "description": "<what this section covers>"}]}`)
	b.WriteString("\n\nUse 3 to 6 sections. The title should include a target keyword when natural.\n")

	return b.String()
}

func simplePlanPrompt(topic string) string {
	return "Outline a blog post about \"" + topic + "\". Reply with ONLY JSON: " +
		`{"title": "...", "sections": [{"heading": "..."}]}` + "\n"
}

// parsePlan extracts and validates an outline. A plan needs a nonempty title
// and at least one section with a nonempty heading.
func parsePlan(response string) (*core.BlogPlan, error) {
	raw, err := llm.ExtractJSONObject(response)
	if err != nil {
		return nil, err
	}

	var plan core.BlogPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("malformed plan JSON: %w", err)
	}

	if strings.TrimSpace(plan.Title) == "" {
		return nil, fmt.Errorf("plan has no title")
	}
	if len(plan.Sections) == 0 {
		return nil, fmt.Errorf("plan has no sections")
	}
	for i, section := range plan.Sections {
		if strings.TrimSpace(section.Heading) == "" {
			return nil, fmt.Errorf("section %d has an empty heading", i+1)
		}
	}

	return &plan, nil
}
