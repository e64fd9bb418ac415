package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type cannedGenerator struct {
	responses []string
	err       error
	prompts   []string
}

func (g *cannedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	idx := len(g.prompts) - 1
	if idx >= len(g.responses) {
		idx = len(g.responses) - 1
	}
	return g.responses[idx], nil
}

const validPlanJSON = `{
  "title": "A Practical Guide to Connection Pooling",
  "intro": "Why pools exist and what goes wrong without them",
  "sections": [
    {"heading": "How Pools Work", "description": "lifecycle of a pooled connection"},
    {"heading": "Sizing the Pool", "description": "tradeoffs and formulas"},
    {"heading": "Common Failure Modes"}
  ]
}`

func TestCreatePlanValid(t *testing.T) {
	gen := &cannedGenerator{responses: []string{validPlanJSON}}
	p := New(gen)

	plan, err := p.CreatePlan(context.Background(), "connection pooling", []string{"connection pool"}, "pools reuse connections")
	if err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}

	if plan.Title != "A Practical Guide to Connection Pooling" {
		t.Errorf("Title = %q", plan.Title)
	}
	if plan.SectionCount() != 3 {
		t.Errorf("SectionCount = %d, want 3", plan.SectionCount())
	}
	if got := plan.Headings(); got[2] != "Common Failure Modes" {
		t.Errorf("Headings = %v", got)
	}

	prompt := gen.prompts[0]
	for _, want := range []string{"connection pooling", "connection pool", "pools reuse connections"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("plan prompt missing %q", want)
		}
	}
}

func TestCreatePlanFencedResponse(t *testing.T) {
	gen := &cannedGenerator{responses: []string{"Sure!\n```json\n" + validPlanJSON + "\n```"}}
	p := New(gen)

	plan, err := p.CreatePlan(context.Background(), "topic", nil, "")
	if err != nil {
		t.Fatalf("CreatePlan failed on fenced JSON: %v", err)
	}
	if plan.SectionCount() != 3 {
		t.Errorf("SectionCount = %d, want 3", plan.SectionCount())
	}
}

func TestCreatePlanRejectsInvalid(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"no title", `{"title": "", "sections": [{"heading": "A"}]}`},
		{"no sections", `{"title": "T", "sections": []}`},
		{"empty heading", `{"title": "T", "sections": [{"heading": "  "}]}`},
		{"not json", "here is your outline: first, an intro..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &cannedGenerator{responses: []string{tc.response, validPlanJSON}}
			p := New(gen)

			plan, err := p.CreatePlan(context.Background(), "topic", nil, "")
			if err != nil {
				t.Fatalf("CreatePlan failed: %v", err)
			}
			if len(gen.prompts) != 2 {
				t.Errorf("invalid plan must consume an attempt: %d calls", len(gen.prompts))
			}
			if plan.SectionCount() != 3 {
				t.Errorf("SectionCount = %d, want 3 from the retry", plan.SectionCount())
			}
		})
	}
}

func TestCreatePlanSimplifiesPromptAfterTwoFailures(t *testing.T) {
	gen := &cannedGenerator{responses: []string{"junk", "junk", validPlanJSON}}
	p := New(gen)

	if _, err := p.CreatePlan(context.Background(), "topic", nil, ""); err != nil {
		t.Fatalf("CreatePlan failed: %v", err)
	}
	if len(gen.prompts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(gen.prompts))
	}
	if gen.prompts[0] != gen.prompts[1] {
		t.Error("attempts 1 and 2 should use the same full prompt")
	}
	if gen.prompts[2] == gen.prompts[1] || len(gen.prompts[2]) >= len(gen.prompts[1]) {
		t.Error("attempt 3 should switch to the shorter simplified prompt")
	}
}

func TestCreatePlanExhaustsAttempts(t *testing.T) {
	gen := &cannedGenerator{responses: []string{"junk"}}
	p := New(gen)

	_, err := p.CreatePlan(context.Background(), "topic", nil, "")
	if err == nil {
		t.Fatal("expected plan error after five bad responses")
	}
	var planErr *PlanError
	if !errors.As(err, &planErr) {
		t.Fatalf("expected *PlanError, got %T: %v", err, err)
	}
	if planErr.Attempts != maxPlanAttempts {
		t.Errorf("Attempts = %d, want %d", planErr.Attempts, maxPlanAttempts)
	}
	if len(gen.prompts) != maxPlanAttempts {
		t.Errorf("expected %d calls, got %d", maxPlanAttempts, len(gen.prompts))
	}
}

func TestCreatePlanLLMErrorPropagates(t *testing.T) {
	transport := fmt.Errorf("all models exhausted")
	gen := &cannedGenerator{err: transport}
	p := New(gen)

	_, err := p.CreatePlan(context.Background(), "topic", nil, "")
	if !errors.Is(err, transport) {
		t.Errorf("error should wrap the transport error, got %v", err)
	}
	if len(gen.prompts) != 1 {
		t.Errorf("transport errors must not be retried by the planner: %d calls", len(gen.prompts))
	}
}
