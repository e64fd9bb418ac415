package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"blogforge/internal/core"
	"blogforge/internal/logger"
)

const googleSearchURL = "https://www.googleapis.com/customsearch/v1"

// GoogleProvider implements Provider using the Google Custom Search API.
type GoogleProvider struct {
	apiKey   string
	searchID string
	client   *http.Client
	baseURL  string
}

// NewGoogleProvider creates a Google Custom Search provider.
func NewGoogleProvider(apiKey, searchID string) *GoogleProvider {
	return &GoogleProvider{
		apiKey:   apiKey,
		searchID: searchID,
		client:   &http.Client{Timeout: 30 * time.Second},
		baseURL:  googleSearchURL,
	}
}

// GetName returns the name of this provider
func (g *GoogleProvider) GetName() string {
	return "Google Custom Search"
}

// Search queries the Custom Search API. Result relevance is derived from the
// rank position since the API does not expose a score.
func (g *GoogleProvider) Search(ctx context.Context, query string, maxResults int) ([]core.ResearchResult, error) {
	if maxResults <= 0 || maxResults > 10 {
		maxResults = 10 // Google CSE allows max 10 results per request
	}

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.searchID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, "GET", g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google CSE request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute Google CSE request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google CSE request failed with status: %d", resp.StatusCode)
	}

	var apiResponse struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error,omitempty"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse Google CSE response: %w", err)
	}

	if apiResponse.Error.Code != 0 {
		return nil, fmt.Errorf("google CSE API error (%d): %s", apiResponse.Error.Code, apiResponse.Error.Message)
	}

	var results []core.ResearchResult
	for i, item := range apiResponse.Items {
		results = append(results, core.ResearchResult{
			Title:     item.Title,
			URL:       item.Link,
			Content:   item.Snippet,
			Relevance: 1.0 / float64(i+1),
		})
	}

	logger.Info("Google Custom Search completed", "query", query, "results_found", len(results))

	return results, nil
}
