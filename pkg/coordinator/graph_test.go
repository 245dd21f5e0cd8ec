package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/txjustice/media-enrich/pkg/enrich"
	"github.com/txjustice/media-enrich/pkg/incidentdb"
	"github.com/txjustice/media-enrich/pkg/llmextract"
	"github.com/txjustice/media-enrich/pkg/state"
	"github.com/txjustice/media-enrich/pkg/websearch"
)

type fakeRepo struct {
	baseline *incidentdb.BaselineFields
	err      error
}

func (f fakeRepo) Lookup(_ context.Context, _ string, _ string) (*incidentdb.BaselineFields, error) {
	return f.baseline, f.err
}

type fakeSearch struct {
	byStrategy map[state.SearchStrategyType][]websearch.Result
	err        error
}

func (f fakeSearch) Search(_ context.Context, _ string, _ int) ([]websearch.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byStrategy[state.StrategyExactMatch], nil
}

type scriptedSearch struct {
	calls   int
	results [][]websearch.Result
	errs    []error
}

func (s *scriptedSearch) Search(_ context.Context, _ string, _ int) ([]websearch.Result, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.results) {
		return s.results[i], nil
	}
	return nil, nil
}

type fakeLLM struct {
	extractions []llmextract.Extraction
	err         error
}

func (f fakeLLM) Extract(_ context.Context, _, _ string, _ *time.Time, _ []llmextract.FieldDefinition) ([]llmextract.Extraction, error) {
	return f.extractions, f.err
}

func goodBaseline() *incidentdb.BaselineFields {
	officer := "James Rodriguez"
	civilian := "John Doe"
	location := "Houston"
	date := time.Date(2018, time.March, 15, 0, 0, 0, 0, time.UTC)
	return &incidentdb.BaselineFields{
		OfficerName:  &officer,
		CivilianName: &civilian,
		Location:     &location,
		IncidentDate: &date,
		Severity:     "fatal",
	}
}

func relevantResults() []websearch.Result {
	return []websearch.Result{
		{URL: "https://a.example/1", Title: "Houston officer James Rodriguez shooting", Content: "Police officer James Rodriguez shot John Doe in Houston on March 15, 2018.", Score: 0.9, PublishedDate: "2018-03-15"},
	}
}

func strVal(s string) *string { return &s }

func TestGraph_HappyPath(t *testing.T) {
	nodes := &Nodes{
		Extract:  &enrich.Extractor{Repo: fakeRepo{baseline: goodBaseline()}},
		Search:   &enrich.Searcher{Client: fakeSearch{byStrategy: map[state.SearchStrategyType][]websearch.Result{state.StrategyExactMatch: relevantResults()}}},
		Validate: &enrich.Validator{},
		Merge: &enrich.Merger{LLM: fakeLLM{extractions: []llmextract.Extraction{
			{FieldName: "weapon", Value: strVal("handgun")},
		}}},
	}
	st := state.New("142", state.DatasetCiviliansShot)
	got := Run(context.Background(), nodes, st)

	assert.Equal(t, state.StageComplete, got.CurrentStage)
	assert.False(t, got.RequiresHumanReview)
	assert.NotEmpty(t, got.ExtractedFields)
}

func TestGraph_RetryThenSucceed(t *testing.T) {
	scripted := &scriptedSearch{
		results: [][]websearch.Result{
			{{URL: "https://a.example/low", Title: "irrelevant", Content: "nothing useful", Score: 0.1}},
			relevantResults(),
		},
	}
	nodes := &Nodes{
		Extract:  &enrich.Extractor{Repo: fakeRepo{baseline: goodBaseline()}},
		Search:   &enrich.Searcher{Client: scripted},
		Validate: &enrich.Validator{},
		Merge: &enrich.Merger{LLM: fakeLLM{extractions: []llmextract.Extraction{
			{FieldName: "weapon", Value: strVal("handgun")},
		}}},
	}
	st := state.New("142", state.DatasetCiviliansShot)
	got := Run(context.Background(), nodes, st)

	assert.Equal(t, state.StageComplete, got.CurrentStage)
	assert.Equal(t, 1, got.RetryCount)
	assert.Len(t, got.SearchAttempts, 2)
}

func TestGraph_ExhaustedRetriesEscalates(t *testing.T) {
	scripted := &scriptedSearch{
		errs: []error{errors.New("down"), errors.New("down"), errors.New("down"), errors.New("down")},
	}
	nodes := &Nodes{
		Extract:  &enrich.Extractor{Repo: fakeRepo{baseline: goodBaseline()}},
		Search:   &enrich.Searcher{Client: scripted},
		Validate: &enrich.Validator{},
		Merge:    &enrich.Merger{LLM: fakeLLM{}},
	}
	st := state.New("142", state.DatasetCiviliansShot)
	got := Run(context.Background(), nodes, st)

	assert.Equal(t, state.StageEscalate, got.CurrentStage)
	assert.True(t, got.RequiresHumanReview)
	assert.Equal(t, state.ReasonMaxRetries, *got.EscalationReason)
}

func TestGraph_InterArticleConflictEscalates(t *testing.T) {
	nodes := &Nodes{
		Extract:  &enrich.Extractor{Repo: fakeRepo{baseline: goodBaseline()}},
		Search: &enrich.Searcher{Client: fakeSearch{byStrategy: map[state.SearchStrategyType][]websearch.Result{
			state.StrategyExactMatch: {
				{URL: "https://a.example/1", Title: "Article A", Content: "Police officer James Rodriguez shot John Doe in Houston on March 15, 2018.", Score: 0.9, PublishedDate: "2018-03-15"},
				{URL: "https://a.example/2", Title: "Article B", Content: "Police officer James Rodriguez shot John Doe in Houston on March 15, 2018.", Score: 0.9, PublishedDate: "2018-03-15"},
			},
		}}},
		Validate: &enrich.Validator{},
		Merge:    &enrich.Merger{LLM: &conflictingLLM{}},
	}
	st := state.New("142", state.DatasetCiviliansShot)
	got := Run(context.Background(), nodes, st)

	assert.Equal(t, state.StageEscalate, got.CurrentStage)
	assert.Equal(t, state.ReasonConflict, *got.EscalationReason)
	assert.Contains(t, got.ConflictingFields, state.FieldWeapon)
}

// conflictingLLM returns a different weapon value per call, simulating two
// articles that disagree with no fuzzy-tolerant plurality winner.
type conflictingLLM struct{ calls int }

func (c *conflictingLLM) Extract(_ context.Context, _, _ string, _ *time.Time, _ []llmextract.FieldDefinition) ([]llmextract.Extraction, error) {
	c.calls++
	if c.calls == 1 {
		return []llmextract.Extraction{{FieldName: "weapon", Value: strVal("handgun")}}, nil
	}
	return []llmextract.Extraction{{FieldName: "weapon", Value: strVal("knife")}}, nil
}

func TestGraph_CivilianNameAbsentStillSucceeds(t *testing.T) {
	officer := "James Rodriguez"
	location := "Houston"
	date := time.Date(2018, time.March, 15, 0, 0, 0, 0, time.UTC)
	baseline := &incidentdb.BaselineFields{OfficerName: &officer, Location: &location, IncidentDate: &date, Severity: "fatal"}

	nodes := &Nodes{
		Extract: &enrich.Extractor{Repo: fakeRepo{baseline: baseline}},
		Search: &enrich.Searcher{Client: fakeSearch{byStrategy: map[state.SearchStrategyType][]websearch.Result{
			state.StrategyExactMatch: {
				{URL: "https://a.example/1", Title: "Houston shooting", Content: "Police officer James Rodriguez was involved in a shooting in Houston on March 15, 2018.", Score: 0.9, PublishedDate: "2018-03-15"},
			},
		}}},
		Validate: &enrich.Validator{},
		Merge: &enrich.Merger{LLM: fakeLLM{extractions: []llmextract.Extraction{
			{FieldName: "weapon", Value: strVal("handgun")},
		}}},
	}
	st := state.New("142", state.DatasetCiviliansShot)
	got := Run(context.Background(), nodes, st)

	assert.Equal(t, state.StageComplete, got.CurrentStage)
	assert.Nil(t, got.CivilianName)
}
