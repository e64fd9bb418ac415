package research

import (
	"context"

	"blogforge/internal/core"
)

// MockProvider implements Provider for testing and offline runs.
type MockProvider struct {
	name    string
	results []core.ResearchResult
}

// NewMockProvider creates a mock provider with canned results.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name: "Mock",
		results: []core.ResearchResult{
			{
				Title:     "Example Article 1",
				URL:       "https://example.com/article1",
				Content:   "This is a mock research result for testing purposes.",
				Relevance: 1.0,
			},
			{
				Title:     "Test Article 2",
				URL:       "https://test.org/article2",
				Content:   "Another mock research result with different content.",
				Relevance: 0.5,
			},
			{
				Title:     "Demo Article 3",
				URL:       "https://demo.net/article3",
				Content:   "Third mock result to simulate multiple search results.",
				Relevance: 0.33,
			},
		},
	}
}

// GetName returns the name of this provider
func (m *MockProvider) GetName() string {
	return m.name
}

// Search returns the canned results, truncated to maxResults.
func (m *MockProvider) Search(ctx context.Context, query string, maxResults int) ([]core.ResearchResult, error) {
	if maxResults <= 0 || maxResults > len(m.results) {
		maxResults = len(m.results)
	}
	out := make([]core.ResearchResult, maxResults)
	copy(out, m.results[:maxResults])
	return out, nil
}
