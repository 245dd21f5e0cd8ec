package state

import "time"

// Article is one news-article search result, converted from the web-search
// provider's response shape.
type Article struct {
	URL            string
	Title          string
	Snippet        string // first 500 characters of Content
	Content        *string
	SourceName     *string
	PublishedDate  *time.Time
	RelevanceScore float64 // 0..1
}

// SearchAttempt records one Search node invocation. Appended once per call,
// never mutated afterward (invariant 2: search_attempts is append-only and
// strictly time-ordered).
type SearchAttempt struct {
	Query             string
	Strategy          SearchStrategyType
	NumResults        int
	AvgRelevanceScore *float64
	Timestamp         time.Time
}

// NameMatch is a tri-state result: the civilian-name anchor check is
// explicitly "unknown" (not false) when civilian_name is unset, since name
// match is never required for validation to pass.
type NameMatch int

const (
	NameMatchUnknown NameMatch = iota
	NameMatchTrue
	NameMatchFalse
)

// ValidationResult is one article's anchor-match outcome.
type ValidationResult struct {
	Article         Article
	DateMatch       bool
	LocationMatch   bool
	VictimNameMatch NameMatch
	Passed          bool // DateMatch AND LocationMatch
}

// FieldExtraction is one reconciled MediaFeatureField value with provenance.
type FieldExtraction struct {
	FieldName         MediaFeatureField
	Value             *string // ages and booleans are stringified
	Confidence        ConfidenceLevel
	Sources           []string
	SourceQuotes      []string
	ExtractionMethod  string // default "llm"
	LLMReasoning      *string
}

// EnrichmentState is the root value that threads through every component of
// the pipeline for one incident. It is never shared between incidents.
type EnrichmentState struct {
	// Identity
	IncidentID  string
	DatasetType DatasetType

	// Baseline, populated by Extract
	OfficerName  *string
	CivilianName *string
	Location     *string
	IncidentDate *time.Time
	Severity     string // "fatal" | "non-fatal" | "unknown"

	// Search
	SearchAttempts    []SearchAttempt
	RetrievedArticles []Article

	// Validate
	ValidationResults []ValidationResult

	// Merge
	ExtractedFields   []FieldExtraction
	ConflictingFields []MediaFeatureField

	// Coordinator control
	RetryCount   int
	MaxRetries   int
	NextStrategy SearchStrategyType
	CurrentStage PipelineStage
	NextStage    PipelineStage

	// Escalation
	EscalationReason    *EscalationReason
	RequiresHumanReview bool

	// Output
	OutputFilePath   *string
	ReasoningSummary string
	CostUSD          float64
	ErrorMessage     *string
}

// New returns a freshly initialized state ready for the Extract node, with
// defaults matching spec.md §3 (retry_count=0, max_retries=3, next_strategy
// starting at the first rung of the escalation ladder).
func New(incidentID string, dataset DatasetType) *EnrichmentState {
	return &EnrichmentState{
		IncidentID:   incidentID,
		DatasetType:  dataset,
		MaxRetries:   3,
		NextStrategy: StrategyOrder[0],
	}
}

// HasErrorPrefix reports whether ErrorMessage is set and begins with prefix,
// the exact mechanism the coordinator uses to detect stage failures (spec.md
// §7: nodes never raise, they stamp error_message with a stage prefix).
func (s *EnrichmentState) HasErrorPrefix(prefix string) bool {
	if s.ErrorMessage == nil {
		return false
	}
	msg := *s.ErrorMessage
	if len(msg) < len(prefix) {
		return false
	}
	return msg[:len(prefix)] == prefix
}
