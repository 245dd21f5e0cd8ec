package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/txjustice/media-enrich/pkg/incidentdb"
	"github.com/txjustice/media-enrich/pkg/state"
)

type fakeRepo struct {
	baseline *incidentdb.BaselineFields
	err      error
}

func (f fakeRepo) Lookup(_ context.Context, _ string, _ string) (*incidentdb.BaselineFields, error) {
	return f.baseline, f.err
}

func TestExtractor_Run_PopulatesBaselineFields(t *testing.T) {
	st := state.New("142", state.DatasetCiviliansShot)
	officer := "James Rodriguez"
	civilian := "John Doe"
	location := "Houston"
	extractor := &Extractor{Repo: fakeRepo{baseline: &incidentdb.BaselineFields{
		OfficerName:  &officer,
		CivilianName: &civilian,
		Location:     &location,
		Severity:     "fatal",
	}}}

	got := extractor.Run(context.Background(), st)
	assert.Equal(t, &officer, got.OfficerName)
	assert.Equal(t, &civilian, got.CivilianName)
	assert.Equal(t, "fatal", got.Severity)
	assert.Nil(t, got.ErrorMessage)
	assert.Equal(t, state.StageExtract, got.CurrentStage)
}

func TestExtractor_Run_NotFoundSetsErrorPrefix(t *testing.T) {
	st := state.New("999", state.DatasetOfficersShot)
	extractor := &Extractor{Repo: fakeRepo{err: incidentdb.ErrNotFound}}

	got := extractor.Run(context.Background(), st)
	assert.True(t, got.HasErrorPrefix("Extract failed"))
	assert.Nil(t, got.OfficerName)
	assert.Equal(t, state.StageExtract, got.CurrentStage)
}

func TestExtractor_Run_GenericDBErrorStillStampsExtractPrefix(t *testing.T) {
	st := state.New("142", state.DatasetCiviliansShot)
	extractor := &Extractor{Repo: fakeRepo{err: errors.New("connection refused")}}

	got := extractor.Run(context.Background(), st)
	assert.True(t, got.HasErrorPrefix("Extract failed"))
}
