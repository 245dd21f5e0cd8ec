// Package coordinator implements the gating/escalation node between the
// four processing nodes (spec.md §4.5) and the router loop that drives one
// incident's traversal end to end (spec.md §4.6), porting
// original_source/src/agents/coordinate_node.py.
package coordinator

import (
	"fmt"

	"github.com/txjustice/media-enrich/pkg/state"
)

// avgRelevanceScoreThreshold is the SEARCH-stage acceptance bar (spec.md
// §4.5: "A.avg_relevance_score exists and >= 0.5 → VALIDATE").
const avgRelevanceScoreThreshold = 0.5

// Dispatch inspects st.CurrentStage and applies the matching gate, setting
// NextStage (and, on escalation, EscalationReason/RequiresHumanReview). Every
// transition it makes is also appended to ReasoningSummary, one line per
// hop, so a terminal state carries a human-readable trail of how it got
// there (informational only — it never feeds back into routing). Any stage
// outside {EXTRACT, SEARCH, VALIDATE, MERGE} is returned unchanged — spec.md
// §4.5: "Any other current_stage ... state returned unchanged".
func Dispatch(st *state.EnrichmentState) *state.EnrichmentState {
	from := st.CurrentStage
	switch st.CurrentStage {
	case state.StageExtract:
		st = checkExtractResults(st)
	case state.StageSearch:
		st = checkSearchResults(st)
	case state.StageValidate:
		st = checkValidateResults(st)
	case state.StageMerge:
		st = checkMergeResults(st)
	default:
		return st
	}
	return recordTransition(st, from)
}

// recordTransition appends one "FROM -> TO" line to ReasoningSummary,
// including the escalation reason when the hop lands on ESCALATE.
func recordTransition(st *state.EnrichmentState, from state.PipelineStage) *state.EnrichmentState {
	line := fmt.Sprintf("%s -> %s", from, st.NextStage)
	if st.NextStage == state.StageEscalate && st.EscalationReason != nil {
		line = fmt.Sprintf("%s (%s)", line, *st.EscalationReason)
	}
	if st.ReasoningSummary == "" {
		st.ReasoningSummary = line
	} else {
		st.ReasoningSummary += "\n" + line
	}
	return st
}

func escalate(st *state.EnrichmentState, reason state.EscalationReason) *state.EnrichmentState {
	st.EscalationReason = &reason
	st.RequiresHumanReview = true
	st.NextStage = state.StageEscalate
	return st
}

// checkExtractResults gates after EXTRACT (spec.md §4.5 "After EXTRACT").
func checkExtractResults(st *state.EnrichmentState) *state.EnrichmentState {
	if st.HasErrorPrefix("Extract failed") {
		return escalate(st, state.ReasonExtractionError)
	}
	if st.CivilianName == nil && st.OfficerName == nil && st.IncidentDate == nil {
		return escalate(st, state.ReasonInsufficientSource)
	}
	st.NextStage = state.StageSearch
	return st
}

// retryHelper advances next_strategy to its successor, or escalates with
// MAX_RETRIES if the ladder is exhausted (spec.md §4.5 "Retry helper").
func retryHelper(st *state.EnrichmentState) *state.EnrichmentState {
	next, ok := state.NextStrategy(st.NextStrategy)
	if !ok {
		return escalate(st, state.ReasonMaxRetries)
	}
	st.RetryCount++
	st.NextStrategy = next
	st.NextStage = state.StageSearch
	return st
}

// checkSearchResults gates after SEARCH (spec.md §4.5 "After SEARCH").
func checkSearchResults(st *state.EnrichmentState) *state.EnrichmentState {
	if st.RetryCount > st.MaxRetries {
		return escalate(st, state.ReasonMaxRetries)
	}

	if st.HasErrorPrefix("Search failed") {
		return retryHelper(st)
	}

	if len(st.SearchAttempts) > 0 {
		latest := st.SearchAttempts[len(st.SearchAttempts)-1]
		if latest.AvgRelevanceScore != nil && *latest.AvgRelevanceScore >= avgRelevanceScoreThreshold {
			st.NextStage = state.StageValidate
			return st
		}
	}
	return retryHelper(st)
}

// checkValidateResults gates after VALIDATE (spec.md §4.5 "After VALIDATE").
func checkValidateResults(st *state.EnrichmentState) *state.EnrichmentState {
	for _, vr := range st.ValidationResults {
		if vr.Passed {
			st.NextStage = state.StageMerge
			return st
		}
	}
	return escalate(st, state.ReasonValidationError)
}

// checkMergeResults gates after MERGE (spec.md §4.5 "After MERGE").
func checkMergeResults(st *state.EnrichmentState) *state.EnrichmentState {
	if st.HasErrorPrefix("Merge failed") {
		return escalate(st, state.ReasonMergeError)
	}
	if len(st.ConflictingFields) > 0 {
		return escalate(st, state.ReasonConflict)
	}
	if len(st.ExtractedFields) == 0 {
		return escalate(st, state.ReasonInsufficientSource)
	}
	st.NextStage = state.StageComplete
	return st
}
