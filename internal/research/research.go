package research

import (
	"context"
	"strings"

	"blogforge/internal/core"
)

// Provider is a pluggable search backend used to gather source material
// before planning and drafting.
type Provider interface {
	// Search returns up to maxResults ranked results for the query.
	Search(ctx context.Context, query string, maxResults int) ([]core.ResearchResult, error)
	// GetName returns a human-readable provider name for logs.
	GetName() string
}

// Summarize flattens research results into a short plain-text digest for the
// planner prompt.
func Summarize(results []core.ResearchResult) string {
	if len(results) == 0 {
		return ""
	}

	const maxPerResult = 300
	var b strings.Builder
	for _, r := range results {
		text := strings.TrimSpace(r.Content)
		if len(text) > maxPerResult {
			text = text[:maxPerResult]
		}
		b.WriteString("- " + r.Title + ": " + text + "\n")
	}
	return b.String()
}
