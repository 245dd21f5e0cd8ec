package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/txjustice/media-enrich/pkg/state"
	"github.com/txjustice/media-enrich/pkg/websearch"
)

const maxSearchResults = 5

// Searcher builds a query per the active strategy and calls the web-search
// collaborator once, porting original_source/src/retrieval/search_node.py.
// It never retries internally — retry is the Coordinator's job (spec.md
// §4.2).
type Searcher struct {
	Client websearch.Client
}

// Run executes exactly one search call using st.NextStrategy, appends a
// SearchAttempt recording the outcome, and replaces RetrievedArticles.
func (s *Searcher) Run(ctx context.Context, st *state.EnrichmentState) *state.EnrichmentState {
	strategy := st.NextStrategy
	query := BuildSearchQuery(st, strategy)

	var (
		articles          []state.Article
		numResults        int
		avgRelevanceScore *float64
	)

	results, err := s.Client.Search(ctx, query, maxSearchResults)
	if err != nil {
		msg := fmt.Sprintf("Search failed: %v", err)
		st.ErrorMessage = &msg
		st.RetrievedArticles = []state.Article{}
	} else {
		articles = convertResults(results)
		numResults = len(articles)
		if numResults != 0 {
			var sum float64
			for _, a := range articles {
				sum += a.RelevanceScore
			}
			avg := sum / float64(numResults)
			avgRelevanceScore = &avg
		}
		st.RetrievedArticles = articles
	}

	st.SearchAttempts = append(st.SearchAttempts, state.SearchAttempt{
		Query:             query,
		Strategy:          strategy,
		NumResults:        numResults,
		AvgRelevanceScore: avgRelevanceScore,
		Timestamp:         time.Now(),
	})
	st.CurrentStage = state.StageSearch
	return st
}

// BuildSearchQuery constructs a deterministic query string from baseline
// fields and strategy, porting original_source/src/retrieval/search_node.py's
// build_search_query token-by-token. It is a pure function of (baseline
// fields, strategy) per spec.md §8's round-trip property.
func BuildSearchQuery(st *state.EnrichmentState, strategy state.SearchStrategyType) string {
	var dateToken, officer, civilian string

	switch strategy {
	case state.StrategyExactMatch:
		dateToken = formatDate(st.IncidentDate, "2006-01-02")
		officer = derefOrEmpty(st.OfficerName)
		civilian = derefOrEmpty(st.CivilianName)
	case state.StrategyTemporalExpand:
		dateToken = formatDate(st.IncidentDate, "January 2006")
		officer = derefOrEmpty(st.OfficerName)
		civilian = derefOrEmpty(st.CivilianName)
	case state.StrategyEntityDropped:
		dateToken = formatDate(st.IncidentDate, "January 2006")
	}

	var tokens []string
	if st.Location != nil && *st.Location != "" {
		tokens = append(tokens, *st.Location)
	}
	tokens = append(tokens, "Texas police shooting")
	if dateToken != "" {
		tokens = append(tokens, dateToken)
	}
	if officer != "" {
		tokens = append(tokens, officer)
	}
	if civilian != "" {
		tokens = append(tokens, civilian)
	}
	if st.Severity == "fatal" {
		tokens = append(tokens, st.Severity)
	}
	return strings.Join(tokens, " ")
}

func formatDate(d *time.Time, layout string) string {
	if d == nil {
		return ""
	}
	return d.Format(layout)
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// convertResults maps raw websearch.Result values into Article, truncating
// the snippet to the first 500 characters of content, matching
// original_source's _convert_tavily_result.
func convertResults(results []websearch.Result) []state.Article {
	articles := make([]state.Article, 0, len(results))
	for _, r := range results {
		content := r.Content
		snippet := content
		if runes := []rune(content); len(runes) > 500 {
			snippet = string(runes[:500])
		}
		articles = append(articles, state.Article{
			URL:            r.URL,
			Title:          r.Title,
			Snippet:        snippet,
			Content:        &content,
			PublishedDate:  parsePublishedDate(r.PublishedDate),
			RelevanceScore: r.Score,
		})
	}
	return articles
}

// publishedDateLayouts are the date formats Tavily is observed to return in
// published_date, tried in order; an empty or unparseable value yields nil
// rather than an error, since the field is best-effort on the provider side.
var publishedDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"Mon, 02 Jan 2006 15:04:05 MST",
}

func parsePublishedDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range publishedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
