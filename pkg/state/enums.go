// Package state defines the EnrichmentState value and its enums — the single
// in-memory record threaded through every component of the enrichment
// pipeline for one incident.
package state

// DatasetType selects which of the two TJI datasets an incident belongs to.
// The two datasets differ in which entity is victim vs. actor and in how
// severity is recorded; see Extract's dataset-dependent mapping.
type DatasetType string

const (
	DatasetCiviliansShot DatasetType = "CIVILIANS_SHOT"
	DatasetOfficersShot  DatasetType = "OFFICERS_SHOT"
)

func (d DatasetType) IsValid() bool {
	switch d {
	case DatasetCiviliansShot, DatasetOfficersShot:
		return true
	}
	return false
}

// PipelineStage marks which node produced (CurrentStage) or will consume
// (NextStage) a given EnrichmentState. Only processing nodes set
// CurrentStage; only the Coordinator sets NextStage.
type PipelineStage string

const (
	StageExtract  PipelineStage = "EXTRACT"
	StageSearch   PipelineStage = "SEARCH"
	StageValidate PipelineStage = "VALIDATE"
	StageMerge    PipelineStage = "MERGE"
	StageComplete PipelineStage = "COMPLETE"
	StageEscalate PipelineStage = "ESCALATE"
)

func (p PipelineStage) IsValid() bool {
	switch p {
	case StageExtract, StageSearch, StageValidate, StageMerge, StageComplete, StageEscalate:
		return true
	}
	return false
}

// SearchStrategyType is the ordered escalation ladder for query construction.
// The order is total and defines how the coordinator's retry helper advances.
type SearchStrategyType string

const (
	StrategyExactMatch     SearchStrategyType = "EXACT_MATCH"
	StrategyTemporalExpand SearchStrategyType = "TEMPORAL_EXPANDED"
	StrategyEntityDropped  SearchStrategyType = "ENTITY_DROPPED"
)

// StrategyOrder is the total order used by the coordinator's retry helper to
// find the successor strategy. Index position IS the escalation rank.
var StrategyOrder = []SearchStrategyType{
	StrategyExactMatch,
	StrategyTemporalExpand,
	StrategyEntityDropped,
}

// NextStrategy returns the successor of s in StrategyOrder and true, or the
// zero value and false if s is the last strategy (or unknown).
func NextStrategy(s SearchStrategyType) (SearchStrategyType, bool) {
	for i, candidate := range StrategyOrder {
		if candidate == s {
			if i+1 < len(StrategyOrder) {
				return StrategyOrder[i+1], true
			}
			return "", false
		}
	}
	return "", false
}

// ConfidenceLevel grades how much the reconciliation algorithm trusts a
// converged field value. PENDING is an intermediate state assigned by the
// per-article LLM extraction step and always replaced before a field is
// admitted into ExtractedFields (invariant 4).
type ConfidenceLevel string

const (
	ConfidenceHigh    ConfidenceLevel = "HIGH"
	ConfidenceMedium  ConfidenceLevel = "MEDIUM"
	ConfidenceLow     ConfidenceLevel = "LOW"
	ConfidenceNone    ConfidenceLevel = "NONE"
	ConfidencePending ConfidenceLevel = "PENDING"
)

// EscalationReason explains why a traversal terminated at ESCALATE.
// COMPOSITE, LOW_CONFIDENCE, OVERWRITE, and SOFT_ANCHOR are reserved hooks
// for future policy and are never raised by the core today.
type EscalationReason string

const (
	ReasonExtractionError    EscalationReason = "EXTRACTION_ERROR"
	ReasonValidationError    EscalationReason = "VALIDATION_ERROR"
	ReasonMergeError         EscalationReason = "MERGE_ERROR"
	ReasonConflict           EscalationReason = "CONFLICT"
	ReasonComposite          EscalationReason = "COMPOSITE"
	ReasonLowConfidence      EscalationReason = "LOW_CONFIDENCE"
	ReasonOverwrite          EscalationReason = "OVERWRITE"
	ReasonSoftAnchor         EscalationReason = "SOFT_ANCHOR"
	ReasonMaxRetries         EscalationReason = "MAX_RETRIES"
	ReasonInsufficientSource EscalationReason = "INSUFFICIENT_SOURCES"
)

// MediaFeatureField is one of the nine attributes Merge attempts to extract
// from media coverage of an incident.
type MediaFeatureField string

const (
	FieldOfficerName    MediaFeatureField = "officer_name"
	FieldCivilianName   MediaFeatureField = "civilian_name"
	FieldCivilianAge    MediaFeatureField = "civilian_age"
	FieldCivilianRace   MediaFeatureField = "civilian_race"
	FieldWeapon         MediaFeatureField = "weapon"
	FieldLocationDetail MediaFeatureField = "location_detail"
	FieldTimeOfDay      MediaFeatureField = "time_of_day"
	FieldOutcome        MediaFeatureField = "outcome"
	FieldCircumstance   MediaFeatureField = "circumstance"
)

// AllMediaFeatureFields lists the nine fields in a fixed, deterministic
// order so that Merge's per-field loop is reproducible across runs.
var AllMediaFeatureFields = []MediaFeatureField{
	FieldOfficerName,
	FieldCivilianName,
	FieldCivilianAge,
	FieldCivilianRace,
	FieldWeapon,
	FieldLocationDetail,
	FieldTimeOfDay,
	FieldOutcome,
	FieldCircumstance,
}

// FieldToBaselineAttr marks the MediaFeatureFields that have a baseline
// counterpart on EnrichmentState and so go through Merge's reference
// cross-check step. Only officer_name and civilian_name have one; every
// other field skips that step entirely.
var FieldToBaselineAttr = map[MediaFeatureField]bool{
	FieldOfficerName:  true,
	FieldCivilianName: true,
}
