package research

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"blogforge/internal/core"
	"blogforge/internal/logger"
)

var multiNewlineRe = regexp.MustCompile(`(\n\s*){2,}`)

// Fetcher downloads result pages and extracts readable text so the retriever
// works with article bodies instead of search snippets. Outbound requests are
// paced with a token-bucket limiter to stay polite toward source sites.
type Fetcher struct {
	client     *http.Client
	limiter    *rate.Limiter
	maxBodyLen int
	userAgent  string
}

// NewFetcher creates a fetcher that issues at most one request per interval.
func NewFetcher(interval time.Duration, timeout time.Duration) *Fetcher {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		maxBodyLen: 20000,
		userAgent:  "blogforge/1.0 (+https://github.com/blogforge/blogforge)",
	}
}

// Enrich replaces each result's snippet with extracted page text. Results
// whose pages cannot be fetched or yield no text keep their snippet; results
// with neither text nor snippet are dropped.
func (f *Fetcher) Enrich(ctx context.Context, results []core.ResearchResult) []core.ResearchResult {
	enriched := make([]core.ResearchResult, 0, len(results))
	for _, r := range results {
		text, err := f.FetchText(ctx, r.URL)
		if err != nil {
			logger.Warn("page fetch failed, keeping snippet", "url", r.URL, "error", err.Error())
		} else if text != "" {
			r.Content = text
		}
		if strings.TrimSpace(r.Content) == "" {
			continue
		}
		enriched = append(enriched, r)
	}
	return enriched
}

// FetchText downloads a page and extracts its readable text.
func (f *Fetcher) FetchText(ctx context.Context, pageURL string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", pageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch of %s failed with status: %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML from %s: %w", pageURL, err)
	}

	text := extractReadableText(doc)
	if len(text) > f.maxBodyLen {
		text = text[:f.maxBodyLen]
	}
	return text, nil
}

// extractReadableText pulls text from the main content area, falling back to
// the whole body when no semantic container is found.
func extractReadableText(doc *goquery.Document) string {
	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript").Remove()

	var b strings.Builder
	collect := func(s *goquery.Selection) {
		s.Find("p, h1, h2, h3, h4, h5, h6, li, blockquote, pre").Each(func(_ int, item *goquery.Selection) {
			if t := strings.TrimSpace(item.Text()); t != "" {
				b.WriteString(t)
				b.WriteString("\n\n")
			}
		})
	}

	for _, selector := range []string{"article", "main", "[role='main']", ".post-content", ".entry-content", "#content"} {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) { collect(s) })
		if b.Len() > 0 {
			break
		}
	}
	if b.Len() == 0 {
		doc.Find("body").Each(func(_ int, s *goquery.Selection) { collect(s) })
	}

	return strings.TrimSpace(multiNewlineRe.ReplaceAllString(b.String(), "\n\n"))
}
