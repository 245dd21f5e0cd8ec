// Package websearch is the web-search external collaborator (spec.md §6):
// given a query, returns a list of {url, title, content, score}. Grounded
// structurally on the teacher's pkg/runbook/github.go HTTP client (context-
// aware request construction, status-code check, json.NewDecoder; the API
// key travels in the JSON request body, not in a bearer auth header) — no
// Tavily/SerpAPI Go SDK exists anywhere in the
// retrieval pack, so this is a plain net/http JSON REST client rather than
// a vendored or fabricated SDK.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Result is one raw search hit, in the shape spec.md §6 requires.
// PublishedDate is Tavily's raw "published_date" string (RFC3339 when
// present; Tavily omits it for sources that don't expose one), which
// convertResults parses into Article.PublishedDate.
type Result struct {
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

// Client is the web-search interface consumed by pkg/enrich's Search node.
type Client interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// TavilyClient calls the Tavily search API. Thread-safe: a single instance
// is shared across all worker goroutines (spec.md §5: "web search client:
// thread-safe rate-limited client").
type TavilyClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewTavilyClient builds a client rate-limited to qps requests/second,
// mirroring the teacher's pkg/runbook.NewGitHubClient constructor shape
// (30s timeout, injected auth token); it logs through slog.Default().
func NewTavilyClient(apiKey string, qps float64) *TavilyClient {
	if qps <= 0 {
		qps = 2
	}
	return &TavilyClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		baseURL:    "https://api.tavily.com/search",
		limiter:    rate.NewLimiter(rate.Limit(qps), 1),
		logger:     slog.Default(),
	}
}

type tavilySearchRequest struct {
	APIKey       string `json:"api_key"`
	Query        string `json:"query"`
	MaxResults   int    `json:"max_results"`
	SearchDepth  string `json:"search_depth"`
}

type tavilySearchResponse struct {
	Results []Result `json:"results"`
}

// Search calls the Tavily API with search_depth="advanced", matching
// original_source/src/retrieval/search_node.py's call shape exactly.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	reqBody := tavilySearchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: "advanced",
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned status %d", resp.StatusCode)
	}

	var parsed tavilySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	c.logger.Debug("web search completed", "query", query, "num_results", len(parsed.Results))
	return parsed.Results, nil
}
