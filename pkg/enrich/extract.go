// Package enrich implements the four deterministic/hybrid processing nodes
// of the enrichment pipeline (spec.md §4.1–§4.4): Extract, Search, Validate,
// Merge. Each node is a method on a small struct holding its external
// collaborator, grounded on the teacher's queue/executor.go pattern of
// injecting collaborators (dbClient, llmClient, ...) into the component
// that uses them rather than relying on globals.
package enrich

import (
	"context"
	"errors"
	"fmt"

	"github.com/txjustice/media-enrich/pkg/incidentdb"
	"github.com/txjustice/media-enrich/pkg/state"
)

// Extractor loads baseline incident fields from the incident-lookup
// collaborator, porting original_source/src/agents/extract_node.py.
type Extractor struct {
	Repo incidentdb.Repository
}

// Run looks up one incident row and populates the baseline fields on st.
// Any DB error or missing incident sets ErrorMessage with the "Extract
// failed: " prefix and leaves baseline fields nil; CurrentStage is always
// set to EXTRACT regardless of outcome so the coordinator can inspect it.
func (e *Extractor) Run(ctx context.Context, st *state.EnrichmentState) *state.EnrichmentState {
	baseline, err := e.Repo.Lookup(ctx, st.IncidentID, string(st.DatasetType))
	if err != nil {
		msg := formatExtractError(st.IncidentID, err)
		st.ErrorMessage = &msg
		st.CurrentStage = state.StageExtract
		return st
	}

	st.OfficerName = baseline.OfficerName
	st.CivilianName = baseline.CivilianName
	st.IncidentDate = baseline.IncidentDate
	st.Location = baseline.Location
	st.Severity = baseline.Severity
	st.CurrentStage = state.StageExtract
	return st
}

func formatExtractError(incidentID string, err error) string {
	if errors.Is(err, incidentdb.ErrNotFound) {
		return fmt.Sprintf("Extract failed: incident %s not found", incidentID)
	}
	return fmt.Sprintf("Extract failed: %v", err)
}
