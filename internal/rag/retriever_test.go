package rag

import (
	"strings"
	"testing"

	"blogforge/internal/core"
)

func TestRetrieveRanksByOverlap(t *testing.T) {
	docs := []core.ResearchResult{
		{
			Title:   "Gardening Tips",
			URL:     "https://example.com/garden",
			Content: "Tomatoes grow best in full sun. Water them deeply twice a week.",
		},
		{
			Title:   "Database Tuning",
			URL:     "https://example.com/db",
			Content: "Connection pooling reduces database latency. A connection pool reuses database connections instead of opening new ones.",
		},
	}

	r := NewKeywordRetriever()
	chunks := r.Retrieve("database connection pooling", []string{"connection pool"}, docs)

	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	if chunks[0].SourceTitle != "Database Tuning" {
		t.Errorf("top chunk from %q, want the database document", chunks[0].SourceTitle)
	}
	if chunks[0].SourceURL != "https://example.com/db" {
		t.Errorf("SourceURL = %q", chunks[0].SourceURL)
	}
	for _, c := range chunks {
		if c.SourceTitle == "Gardening Tips" {
			t.Error("irrelevant document should not be retrieved")
		}
	}
}

func TestRetrieveLimitsToTopK(t *testing.T) {
	var docs []core.ResearchResult
	for i := 0; i < 10; i++ {
		docs = append(docs, core.ResearchResult{
			Title:   "Doc",
			Content: "caching improves performance in distributed systems",
		})
	}

	r := NewKeywordRetriever()
	chunks := r.Retrieve("caching performance", nil, docs)
	if len(chunks) > defaultTopK {
		t.Errorf("got %d chunks, want at most %d", len(chunks), defaultTopK)
	}
}

func TestRetrieveNoTermsOrNoMatch(t *testing.T) {
	r := NewKeywordRetriever()

	docs := []core.ResearchResult{{Title: "A", Content: "some text here"}}
	if got := r.Retrieve("", nil, docs); got != nil {
		t.Errorf("empty query should retrieve nothing, got %v", got)
	}
	if got := r.Retrieve("quantum chromodynamics", nil, docs); len(got) != 0 {
		t.Errorf("no overlapping terms should retrieve nothing, got %v", got)
	}
}

func TestRetrieveStopWordsIgnored(t *testing.T) {
	docs := []core.ResearchResult{
		{Title: "Filler", Content: "the and for with that this from they have been"},
	}
	r := NewKeywordRetriever()
	if got := r.Retrieve("the with from", nil, docs); len(got) != 0 {
		t.Errorf("stop-word-only query must not match, got %v", got)
	}
}

func TestSplitChunksParagraphBoundaries(t *testing.T) {
	para := strings.Repeat("word ", 60) // ~300 chars
	text := strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para) + "\n\n" + strings.TrimSpace(para)

	chunks := splitChunks(text, 650)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: lengths %v", len(chunks), chunkLengths(chunks))
	}
	for _, c := range chunks {
		if strings.HasPrefix(c, " ") || strings.HasSuffix(c, " ") {
			t.Errorf("chunk not trimmed: %q", c)
		}
	}
}

func TestSplitChunksShortText(t *testing.T) {
	chunks := splitChunks("short text", 800)
	if len(chunks) != 1 || chunks[0] != "short text" {
		t.Errorf("chunks = %v, want the text unsplit", chunks)
	}
	if got := splitChunks("   ", 800); got != nil {
		t.Errorf("blank text should yield no chunks, got %v", got)
	}
}

func chunkLengths(chunks []string) []int {
	out := make([]int, len(chunks))
	for i, c := range chunks {
		out[i] = len(c)
	}
	return out
}
