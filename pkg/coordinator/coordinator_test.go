package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/txjustice/media-enrich/pkg/state"
)

func ptrF(f float64) *float64 { return &f }
func ptrS(s string) *string   { return &s }

func newState() *state.EnrichmentState {
	st := state.New("1", state.DatasetCiviliansShot)
	st.CurrentStage = state.StageExtract
	return st
}

func TestCheckExtractResults_ErrorEscalates(t *testing.T) {
	st := newState()
	st.ErrorMessage = ptrS("Extract failed: incident 1 not found")
	got := checkExtractResults(st)
	assert.Equal(t, state.StageEscalate, got.NextStage)
	assert.Equal(t, state.ReasonExtractionError, *got.EscalationReason)
	assert.True(t, got.RequiresHumanReview)
}

func TestCheckExtractResults_AllIdentityFieldsMissingEscalates(t *testing.T) {
	st := newState()
	got := checkExtractResults(st)
	assert.Equal(t, state.StageEscalate, got.NextStage)
	assert.Equal(t, state.ReasonInsufficientSource, *got.EscalationReason)
}

func TestCheckExtractResults_ProceedsToSearch(t *testing.T) {
	st := newState()
	st.OfficerName = ptrS("James Rodriguez")
	got := checkExtractResults(st)
	assert.Equal(t, state.StageSearch, got.NextStage)
	assert.Nil(t, got.EscalationReason)
}

func TestCheckSearchResults_RetryCountExceedsMaxEscalates(t *testing.T) {
	st := newState()
	st.RetryCount = 4
	st.MaxRetries = 3
	got := checkSearchResults(st)
	assert.Equal(t, state.StageEscalate, got.NextStage)
	assert.Equal(t, state.ReasonMaxRetries, *got.EscalationReason)
}

func TestCheckSearchResults_SearchFailedInvokesRetryHelper(t *testing.T) {
	st := newState()
	st.ErrorMessage = ptrS("Search failed: timeout")
	st.NextStrategy = state.StrategyExactMatch
	got := checkSearchResults(st)
	assert.Equal(t, state.StageSearch, got.NextStage)
	assert.Equal(t, state.StrategyTemporalExpand, got.NextStrategy)
	assert.Equal(t, 1, got.RetryCount)
}

func TestCheckSearchResults_HighRelevanceProceedsToValidate(t *testing.T) {
	st := newState()
	st.SearchAttempts = []state.SearchAttempt{{AvgRelevanceScore: ptrF(0.5)}}
	got := checkSearchResults(st)
	assert.Equal(t, state.StageValidate, got.NextStage)
}

func TestCheckSearchResults_LowRelevanceRetries(t *testing.T) {
	st := newState()
	st.NextStrategy = state.StrategyExactMatch
	st.SearchAttempts = []state.SearchAttempt{{AvgRelevanceScore: ptrF(0.2)}}
	got := checkSearchResults(st)
	assert.Equal(t, state.StageSearch, got.NextStage)
	assert.Equal(t, state.StrategyTemporalExpand, got.NextStrategy)
}

func TestRetryHelper_ExhaustedLadderEscalatesMaxRetries(t *testing.T) {
	st := newState()
	st.NextStrategy = state.StrategyEntityDropped // last rung
	got := retryHelper(st)
	assert.Equal(t, state.StageEscalate, got.NextStage)
	assert.Equal(t, state.ReasonMaxRetries, *got.EscalationReason)
}

func TestCheckValidateResults_AnyPassedProceedsToMerge(t *testing.T) {
	st := newState()
	st.ValidationResults = []state.ValidationResult{{Passed: false}, {Passed: true}}
	got := checkValidateResults(st)
	assert.Equal(t, state.StageMerge, got.NextStage)
}

func TestCheckValidateResults_NonePassedEscalates(t *testing.T) {
	st := newState()
	st.ValidationResults = []state.ValidationResult{{Passed: false}}
	got := checkValidateResults(st)
	assert.Equal(t, state.StageEscalate, got.NextStage)
	assert.Equal(t, state.ReasonValidationError, *got.EscalationReason)
}

func TestCheckMergeResults_ErrorEscalates(t *testing.T) {
	st := newState()
	st.ErrorMessage = ptrS("Merge failed: model unavailable")
	got := checkMergeResults(st)
	assert.Equal(t, state.ReasonMergeError, *got.EscalationReason)
}

func TestCheckMergeResults_ConflictEscalates(t *testing.T) {
	st := newState()
	st.ConflictingFields = []state.MediaFeatureField{state.FieldWeapon}
	got := checkMergeResults(st)
	assert.Equal(t, state.ReasonConflict, *got.EscalationReason)
}

func TestCheckMergeResults_EmptyExtractedFieldsEscalates(t *testing.T) {
	st := newState()
	got := checkMergeResults(st)
	assert.Equal(t, state.ReasonInsufficientSource, *got.EscalationReason)
}

func TestCheckMergeResults_SuccessCompletes(t *testing.T) {
	st := newState()
	v := "handgun"
	st.ExtractedFields = []state.FieldExtraction{{FieldName: state.FieldWeapon, Value: &v}}
	got := checkMergeResults(st)
	assert.Equal(t, state.StageComplete, got.NextStage)
	assert.Nil(t, got.EscalationReason)
}

func TestDispatch_UnknownStageReturnsUnchanged(t *testing.T) {
	st := newState()
	st.CurrentStage = state.StageComplete
	got := Dispatch(st)
	assert.Equal(t, state.PipelineStage(""), got.NextStage)
}

func TestDispatch_AppendsOneReasoningSummaryLinePerTransition(t *testing.T) {
	st := newState()
	st.OfficerName = ptrS("James Rodriguez")
	got := Dispatch(st)
	assert.Equal(t, "EXTRACT -> SEARCH", got.ReasoningSummary)

	got.CurrentStage = state.StageSearch
	got.SearchAttempts = []state.SearchAttempt{{AvgRelevanceScore: ptrF(0.9)}}
	got = Dispatch(got)
	assert.Equal(t, "EXTRACT -> SEARCH\nSEARCH -> VALIDATE", got.ReasoningSummary)
}

func TestDispatch_EscalationLineIncludesReason(t *testing.T) {
	st := newState()
	got := Dispatch(st)
	assert.Equal(t, "EXTRACT -> ESCALATE (INSUFFICIENT_SOURCES)", got.ReasoningSummary)
}
