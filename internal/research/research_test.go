package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"blogforge/internal/core"
)

func TestGoogleProviderSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "go concurrency" {
			t.Errorf("query = %q, want %q", got, "go concurrency")
		}
		if got := r.URL.Query().Get("num"); got != "3" {
			t.Errorf("num = %q, want 3", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{"title": "Go Concurrency Patterns", "link": "https://example.com/a", "snippet": "Pipelines and cancellation."},
				{"title": "Share Memory By Communicating", "link": "https://example.com/b", "snippet": "Channels explained."}
			]
		}`))
	}))
	defer server.Close()

	provider := NewGoogleProvider("key", "cx")
	provider.baseURL = server.URL

	results, err := provider.Search(context.Background(), "go concurrency", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Title != "Go Concurrency Patterns" || results[0].URL != "https://example.com/a" {
		t.Errorf("first result = %+v", results[0])
	}
	if results[0].Relevance <= results[1].Relevance {
		t.Error("earlier ranks should carry higher relevance")
	}
}

func TestGoogleProviderAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "quota exceeded"}}`))
	}))
	defer server.Close()

	provider := NewGoogleProvider("key", "cx")
	provider.baseURL = server.URL

	_, err := provider.Search(context.Background(), "q", 3)
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected API error with message, got %v", err)
	}
}

func TestGoogleProviderHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewGoogleProvider("key", "cx")
	provider.baseURL = server.URL

	if _, err := provider.Search(context.Background(), "q", 3); err == nil {
		t.Error("expected error on HTTP 500")
	}
}

func TestMockProviderLimitsResults(t *testing.T) {
	provider := NewMockProvider()

	results, err := provider.Search(context.Background(), "anything", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}

	all, _ := provider.Search(context.Background(), "anything", 0)
	if len(all) != 3 {
		t.Errorf("maxResults<=0 should return all canned results, got %d", len(all))
	}
}

func TestFetcherExtractsArticleText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>T</title><script>var x=1;</script></head>
			<body><nav>Menu</nav>
			<article><h1>Real Heading</h1><p>First paragraph of content.</p><p>Second paragraph.</p></article>
			<footer>Copyright</footer></body></html>`))
	}))
	defer server.Close()

	fetcher := NewFetcher(0, 5*time.Second)
	text, err := fetcher.FetchText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchText failed: %v", err)
	}

	for _, want := range []string{"Real Heading", "First paragraph of content.", "Second paragraph."} {
		if !strings.Contains(text, want) {
			t.Errorf("extracted text missing %q: %q", want, text)
		}
	}
	for _, unwanted := range []string{"Menu", "Copyright", "var x=1"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("extracted text should not contain %q", unwanted)
		}
	}
}

func TestFetcherEnrichDropsEmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/good" {
			_, _ = w.Write([]byte(`<html><body><article><p>Useful body text.</p></article></body></html>`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(0, 5*time.Second)
	results := []core.ResearchResult{
		{Title: "Good", URL: server.URL + "/good", Content: "snippet a"},
		{Title: "Dead with snippet", URL: server.URL + "/dead", Content: "snippet b"},
		{Title: "Dead no snippet", URL: server.URL + "/dead2", Content: ""},
	}

	enriched := fetcher.Enrich(context.Background(), results)
	if len(enriched) != 2 {
		t.Fatalf("got %d enriched results, want 2", len(enriched))
	}
	if !strings.Contains(enriched[0].Content, "Useful body text.") {
		t.Errorf("fetched body should replace the snippet, got %q", enriched[0].Content)
	}
	if enriched[1].Content != "snippet b" {
		t.Errorf("unfetchable page should keep its snippet, got %q", enriched[1].Content)
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize(nil); got != "" {
		t.Errorf("Summarize(nil) = %q, want empty", got)
	}

	long := strings.Repeat("x", 500)
	summary := Summarize([]core.ResearchResult{
		{Title: "A", Content: "short content"},
		{Title: "B", Content: long},
	})
	if !strings.Contains(summary, "- A: short content") {
		t.Errorf("summary missing first result: %q", summary)
	}
	if strings.Contains(summary, long) {
		t.Error("summary should truncate long content")
	}
}
