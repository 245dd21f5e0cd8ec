// Package fuzzy implements the Levenshtein-derived similarity measures used
// by the pipeline: the case-insensitive partial ratio (Matches) anchors
// Validate's location and name checks, and the plain Ratio drives Merge's
// cross-article and reference-value reconciliation (spec.md §4.3, §4.4,
// §9). No rapidfuzz-equivalent partial-ratio library exists anywhere in the
// retrieval pack, so this builds the measure on top of the pack's nearest
// primitive, github.com/agnivade/levenshtein, rather than hand-rolling edit
// distance from scratch.
//
// spec.md §9 is explicit that an implementation need not match the source
// library's exact internals as long as it satisfies: identity ⇒ 100,
// substring containment ⇒ 100, disjoint strings ⇒ 0, symmetric.
package fuzzy

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Threshold is the load-bearing similarity cutoff used throughout the
// pipeline (spec.md §4.3, §4.4, §9): ratio >= Threshold is a match.
const Threshold = 80

// Ratio returns a plain Levenshtein similarity in [0,100]: 100 minus the
// edit distance normalized by the longer string's length, scaled to 100.
// Two empty strings are defined as identical (ratio 100).
func Ratio(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	maxLen := len([]rune(a))
	if bl := len([]rune(b)); bl > maxLen {
		maxLen = bl
	}
	if maxLen == 0 {
		return 100
	}
	dist := levenshtein.ComputeDistance(a, b)
	score := 100.0 * (1.0 - float64(dist)/float64(maxLen))
	if score < 0 {
		score = 0
	}
	return int(score + 0.5)
}

// PartialRatio returns the best Ratio of the shorter string against every
// equal-length window of the longer string, so that one string being a
// substring of the other always scores 100 — the property spec.md §4.3 and
// §9 rely on for anchor matching (an article's full text containing an
// incident's location verbatim must match, even though the texts differ
// wildly in length).
func PartialRatio(a, b string) int {
	if a == "" || b == "" {
		if a == b {
			return 100
		}
		return 0
	}

	shorter, longer := a, b
	if len([]rune(a)) > len([]rune(b)) {
		shorter, longer = b, a
	}

	shortRunes := []rune(shorter)
	longRunes := []rune(longer)
	sLen, lLen := len(shortRunes), len(longRunes)

	if sLen == lLen {
		return Ratio(shorter, longer)
	}

	best := 0
	for start := 0; start+sLen <= lLen; start++ {
		window := string(longRunes[start : start+sLen])
		if r := Ratio(shorter, window); r > best {
			best = r
		}
		if best == 100 {
			break
		}
	}
	return best
}

// PartialRatioCI is PartialRatio over case-folded inputs, matching spec.md
// §4.3's "fuzzy partial ratio (case-insensitive)" wording used by Validate.
func PartialRatioCI(a, b string) int {
	return PartialRatio(strings.ToLower(a), strings.ToLower(b))
}

// Matches reports whether PartialRatioCI(a, b) meets Threshold.
func Matches(a, b string) bool {
	return PartialRatioCI(a, b) >= Threshold
}
