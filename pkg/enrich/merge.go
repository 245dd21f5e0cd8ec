package enrich

import (
	"context"
	"fmt"

	"github.com/txjustice/media-enrich/pkg/fuzzy"
	"github.com/txjustice/media-enrich/pkg/llmextract"
	"github.com/txjustice/media-enrich/pkg/state"
)

// maxMergeArticles bounds Merge to at most 5 LLM calls per traversal
// (spec.md §5); Search already caps retrieved articles at 5, but this is an
// explicit belt-and-suspenders bound at the Merge boundary.
const maxMergeArticles = 5

// costPerLLMCall is a flat per-call rate used to turn the LLM-call count
// into CostUSD, an informational figure surfaced to reviewers — it never
// gates routing.
const costPerLLMCall = 0.0015

// Merger performs per-article LLM field extraction, cross-article
// reconciliation, and reference-value cross-checks, porting
// original_source/src/merge/merge_node.py.
type Merger struct {
	LLM    llmextract.Client
	Fields []llmextract.FieldDefinition // defaults to fieldDefinitionList() when nil
}

// Run extracts structured fields from every retrieved article, reconciles
// them per field, and populates ExtractedFields / ConflictingFields. Sets
// CurrentStage := MERGE always; if extraction or reconciliation panics,
// ExtractedFields is cleared, ConflictingFields is set to nil and
// ErrorMessage is stamped with the "Merge failed: " prefix (spec.md §4.4).
func (m *Merger) Run(ctx context.Context, st *state.EnrichmentState) (out *state.EnrichmentState) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("Merge failed: %v", r)
			st.ErrorMessage = &msg
			st.ExtractedFields = []state.FieldExtraction{}
			st.ConflictingFields = nil
			st.CurrentStage = state.StageMerge
			out = st
		}
	}()

	fields := m.Fields
	if fields == nil {
		fields = fieldDefinitionList()
	}

	articles := st.RetrievedArticles
	if len(articles) > maxMergeArticles {
		articles = articles[:maxMergeArticles]
	}

	extractionsByField := make(map[state.MediaFeatureField][]state.FieldExtraction)
	var llmCalls int
	for _, article := range articles {
		perArticle := m.extractFields(ctx, article, fields, &llmCalls)
		for fieldName, extraction := range perArticle {
			extractionsByField[fieldName] = append(extractionsByField[fieldName], extraction)
		}
	}
	st.CostUSD += float64(llmCalls) * costPerLLMCall

	st.ConflictingFields = []state.MediaFeatureField{}
	st.ExtractedFields = []state.FieldExtraction{}

	for _, fieldName := range state.AllMediaFeatureFields {
		perField := extractionsByField[fieldName]
		if len(perField) == 0 {
			continue // spec.md §8: silently omitted, not a conflict
		}

		matched, converged := checkArticlesMatch(perField)
		if !matched {
			st.ConflictingFields = append(st.ConflictingFields, fieldName)
			continue
		}

		if state.FieldToBaselineAttr[fieldName] {
			baseline := baselineValue(st, fieldName)
			refMatched, refExtraction := checkReferenceMatch(*converged, baseline)
			if !refMatched {
				// "admit and flag": spec.md §9 deliberate open-question
				// resolution — the field is simultaneously conflicting
				// AND still admitted so reviewers can see both.
				st.ConflictingFields = append(st.ConflictingFields, fieldName)
			} else {
				converged = refExtraction
			}
		}

		st.ExtractedFields = append(st.ExtractedFields, *converged)
	}

	st.CurrentStage = state.StageMerge
	return st
}

// extractFields calls the LLM once for one article and returns a map keyed
// by field name, with each extraction's provenance stamped. Per-article
// failures are swallowed (that article contributes nothing) per spec.md
// §4.4, §7 — they never surface as a "Merge failed" error.
func (m *Merger) extractFields(ctx context.Context, article state.Article, fields []llmextract.FieldDefinition, llmCalls *int) map[state.MediaFeatureField]state.FieldExtraction {
	if article.Content == nil || *article.Content == "" {
		return nil
	}

	*llmCalls++
	results, err := m.LLM.Extract(ctx, article.Title, *article.Content, article.PublishedDate, fields)
	if err != nil {
		return nil
	}

	extractions := make(map[state.MediaFeatureField]state.FieldExtraction, len(results))
	for _, r := range results {
		if r.Value == nil {
			continue
		}
		method := "llm"
		extractions[state.MediaFeatureField(r.FieldName)] = state.FieldExtraction{
			FieldName:        state.MediaFeatureField(r.FieldName),
			Value:            r.Value,
			Confidence:       state.ConfidencePending,
			Sources:          []string{article.URL},
			SourceQuotes:     r.SourceQuotes,
			ExtractionMethod: method,
			LLMReasoning:     r.LLMReasoning,
		}
	}
	return extractions
}

// checkArticlesMatch checks cross-article consistency for one field,
// porting merge_node.py's check_articles_match. Returns (false, nil) when
// no extraction carries a value, or when there is no consensus (a
// conflict); the caller is responsible for recording a conflicting field
// name in ConflictingFields. Run never passes an all-null list, since
// extractFields drops null values, so an all-null field is omitted rather
// than recorded as a conflict.
func checkArticlesMatch(extracted []state.FieldExtraction) (bool, *state.FieldExtraction) {
	nonNull := make([]state.FieldExtraction, 0, len(extracted))
	for _, e := range extracted {
		if e.Value != nil {
			nonNull = append(nonNull, e)
		}
	}
	if len(nonNull) == 0 {
		return false, nil
	}

	if len(nonNull) == 1 {
		result := nonNull[0]
		result.Confidence = state.ConfidenceMedium
		return true, &result
	}

	allEqual := true
	first := *nonNull[0].Value
	for _, e := range nonNull[1:] {
		if *e.Value != first {
			allEqual = false
			break
		}
	}
	if allEqual {
		result := nonNull[0]
		result.Confidence = state.ConfidenceHigh
		return true, &result
	}

	mostCommon, winner := pluralityWinner(nonNull)
	for _, e := range nonNull {
		if *e.Value == mostCommon {
			continue
		}
		if fuzzy.Ratio(mostCommon, *e.Value) < fuzzy.Threshold {
			return false, nil
		}
	}
	winner.Confidence = state.ConfidenceMedium
	return true, &winner
}

// pluralityWinner returns the most frequent value among non-null
// extractions (ties broken by first occurrence, matching Python's
// Counter.most_common for equal counts) and the extraction carrying it.
func pluralityWinner(nonNull []state.FieldExtraction) (string, state.FieldExtraction) {
	counts := make(map[string]int)
	order := make([]string, 0, len(nonNull))
	for _, e := range nonNull {
		v := *e.Value
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}

	for _, e := range nonNull {
		if *e.Value == best {
			return best, e
		}
	}
	return best, nonNull[0]
}

// checkReferenceMatch compares the converged extraction against the
// baseline DB value, porting merge_node.py's check_reference_match. A nil
// baseline accepts the extraction as-is. A match overwrites the
// extraction's value with the baseline spelling (baseline is authoritative
// for spelling, spec.md §4.4). A mismatch returns (false, nil); the caller
// decides whether to still admit the extraction (spec.md's "admit and
// flag" rule — applied by Merger.Run, not here).
func checkReferenceMatch(extracted state.FieldExtraction, reference *string) (bool, *state.FieldExtraction) {
	if reference == nil {
		return true, &extracted
	}
	if extracted.Value == nil {
		return false, nil
	}
	if fuzzy.Ratio(*reference, *extracted.Value) < fuzzy.Threshold {
		return false, nil
	}
	overwritten := extracted
	overwritten.Value = reference
	return true, &overwritten
}

func baselineValue(st *state.EnrichmentState, field state.MediaFeatureField) *string {
	switch field {
	case state.FieldOfficerName:
		return st.OfficerName
	case state.FieldCivilianName:
		return st.CivilianName
	default:
		return nil
	}
}
