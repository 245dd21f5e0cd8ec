package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/txjustice/media-enrich/pkg/state"
	"github.com/txjustice/media-enrich/pkg/websearch"
)

func ptrTime(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func ptrStr(s string) *string { return &s }

func baseState() *state.EnrichmentState {
	st := state.New("142", state.DatasetCiviliansShot)
	st.Location = ptrStr("Houston")
	st.IncidentDate = ptrTime(2018, time.March, 15)
	st.OfficerName = ptrStr("James Rodriguez")
	st.CivilianName = ptrStr("John Doe")
	st.Severity = "fatal"
	st.NextStrategy = state.StrategyExactMatch
	return st
}

func TestBuildSearchQuery_ExactMatch(t *testing.T) {
	st := baseState()
	got := BuildSearchQuery(st, state.StrategyExactMatch)
	assert.Equal(t, "Houston Texas police shooting 2018-03-15 James Rodriguez John Doe fatal", got)
}

func TestBuildSearchQuery_TemporalExpanded(t *testing.T) {
	st := baseState()
	got := BuildSearchQuery(st, state.StrategyTemporalExpand)
	assert.Equal(t, "Houston Texas police shooting March 2018 James Rodriguez John Doe fatal", got)
}

func TestBuildSearchQuery_EntityDropped(t *testing.T) {
	st := baseState()
	got := BuildSearchQuery(st, state.StrategyEntityDropped)
	assert.Equal(t, "Houston Texas police shooting March 2018 fatal", got)
}

func TestBuildSearchQuery_PureFunction(t *testing.T) {
	st := baseState()
	first := BuildSearchQuery(st, state.StrategyExactMatch)
	second := BuildSearchQuery(st, state.StrategyExactMatch)
	assert.Equal(t, first, second, "query construction must be a pure function of (baseline fields, strategy)")
}

func TestBuildSearchQuery_NonFatalOmitsSeverityToken(t *testing.T) {
	st := baseState()
	st.Severity = "non-fatal"
	got := BuildSearchQuery(st, state.StrategyExactMatch)
	assert.NotContains(t, got, "fatal")
}

type stubSearchClient struct {
	results []websearch.Result
	err     error
}

func (s stubSearchClient) Search(_ context.Context, _ string, _ int) ([]websearch.Result, error) {
	return s.results, s.err
}

func TestSearchNode_AppendsAttemptOnFailure(t *testing.T) {
	st := baseState()
	searcher := &Searcher{Client: stubSearchClient{err: errors.New("timeout")}}
	got := searcher.Run(context.Background(), st)

	assert.Len(t, got.SearchAttempts, 1)
	assert.Equal(t, 0, got.SearchAttempts[0].NumResults)
	assert.Nil(t, got.SearchAttempts[0].AvgRelevanceScore)
	assert.Empty(t, got.RetrievedArticles)
	assert.True(t, got.HasErrorPrefix("Search failed"))
	assert.Equal(t, state.StageSearch, got.CurrentStage)
}

func TestSearchNode_PopulatesArticlesAndAvgScore(t *testing.T) {
	st := baseState()
	searcher := &Searcher{Client: stubSearchClient{results: []websearch.Result{
		{URL: "https://a.example/1", Title: "Officer involved shooting in Houston", Content: "full body", Score: 0.9},
		{URL: "https://a.example/2", Title: "Second article", Content: "more body", Score: 0.5},
	}}}
	got := searcher.Run(context.Background(), st)

	assert.Len(t, got.RetrievedArticles, 2)
	assert.Len(t, got.SearchAttempts, 1)
	assert.Equal(t, 2, got.SearchAttempts[0].NumResults)
	assert.InDelta(t, 0.7, *got.SearchAttempts[0].AvgRelevanceScore, 1e-9)
	assert.Nil(t, got.ErrorMessage)
}

func TestSearchNode_PopulatesPublishedDateFromProvider(t *testing.T) {
	st := baseState()
	searcher := &Searcher{Client: stubSearchClient{results: []websearch.Result{
		{URL: "https://a.example/1", Title: "t", Content: "c", Score: 0.9, PublishedDate: "2018-03-15"},
	}}}
	got := searcher.Run(context.Background(), st)

	require.NotNil(t, got.RetrievedArticles[0].PublishedDate)
	assert.True(t, got.RetrievedArticles[0].PublishedDate.Equal(*ptrTime(2018, time.March, 15)))
}

func TestSearchNode_MissingOrUnparseablePublishedDateYieldsNil(t *testing.T) {
	st := baseState()
	searcher := &Searcher{Client: stubSearchClient{results: []websearch.Result{
		{URL: "https://a.example/1", Title: "no date", Content: "c", Score: 0.9},
		{URL: "https://a.example/2", Title: "garbage date", Content: "c", Score: 0.9, PublishedDate: "not-a-date"},
	}}}
	got := searcher.Run(context.Background(), st)

	assert.Nil(t, got.RetrievedArticles[0].PublishedDate)
	assert.Nil(t, got.RetrievedArticles[1].PublishedDate)
}

func TestSearchNode_SnippetTruncatedTo500Runes(t *testing.T) {
	st := baseState()
	longContent := make([]rune, 800)
	for i := range longContent {
		longContent[i] = 'x'
	}
	searcher := &Searcher{Client: stubSearchClient{results: []websearch.Result{
		{URL: "https://a.example/1", Title: "t", Content: string(longContent), Score: 1},
	}}}
	got := searcher.Run(context.Background(), st)
	assert.Len(t, []rune(got.RetrievedArticles[0].Snippet), 500)
	assert.Len(t, []rune(*got.RetrievedArticles[0].Content), 800)
}
