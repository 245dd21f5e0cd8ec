package enrich

import (
	"context"
	"time"

	"github.com/txjustice/media-enrich/pkg/fuzzy"
	"github.com/txjustice/media-enrich/pkg/state"
)

// maxDateSkewDays is the anchor-date tolerance (spec.md §4.3, §8: "exactly
// 3 days off → true; 4 days → false").
const maxDateSkewDays = 3

// Validator produces one ValidationResult per retrieved article, a pure
// function with no I/O, porting
// original_source/src/validation/validate_node.py.
type Validator struct{}

// Run validates every article in st.RetrievedArticles against the date and
// location anchors, and (when available) the civilian-name anchor.
// Deterministic and idempotent: running it twice on the same state yields
// identical results (spec.md §8).
func (v *Validator) Run(_ context.Context, st *state.EnrichmentState) *state.EnrichmentState {
	results := make([]state.ValidationResult, 0, len(st.RetrievedArticles))
	for _, article := range st.RetrievedArticles {
		results = append(results, validateArticle(article, st))
	}
	st.ValidationResults = results
	st.CurrentStage = state.StageValidate
	return st
}

func validateArticle(article state.Article, st *state.EnrichmentState) state.ValidationResult {
	dateMatch := checkDateMatch(publishedDate(article), st.IncidentDate)

	articleText := article.Title
	if article.Content != nil && *article.Content != "" {
		articleText = *article.Content
	}

	locationMatch := checkFuzzyMatch(articleText, st.Location)

	victimNameMatch := state.NameMatchUnknown
	if st.CivilianName != nil {
		if checkFuzzyMatch(articleText, st.CivilianName) {
			victimNameMatch = state.NameMatchTrue
		} else {
			victimNameMatch = state.NameMatchFalse
		}
	}

	return state.ValidationResult{
		Article:         article,
		DateMatch:       dateMatch,
		LocationMatch:   locationMatch,
		VictimNameMatch: victimNameMatch,
		Passed:          dateMatch && locationMatch,
	}
}

func publishedDate(a state.Article) *time.Time {
	return a.PublishedDate
}

// checkDateMatch reports whether the two dates are within maxDateSkewDays
// of each other; false if either is nil.
func checkDateMatch(articleDate, incidentDate *time.Time) bool {
	if articleDate == nil || incidentDate == nil {
		return false
	}
	diff := articleDate.Sub(*incidentDate)
	if diff < 0 {
		diff = -diff
	}
	return diff <= maxDateSkewDays*24*time.Hour
}

// checkFuzzyMatch reports whether text contains (or closely resembles) the
// reference string via case-insensitive partial ratio >= fuzzy.Threshold;
// false if reference is nil.
func checkFuzzyMatch(text string, reference *string) bool {
	if reference == nil {
		return false
	}
	return fuzzy.Matches(text, *reference)
}
