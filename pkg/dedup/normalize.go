// Package dedup flags possible duplicate locale records on the current page.
//
// Two records are duplicate candidates when their normalized names are equal
// or one name contains the other, or when both carry valid coordinates less
// than a kilometer apart. The scan is a pairwise same-page comparison with no
// cross-page awareness; it is a review aid, not a guaranteed-correct dedup
// engine.
package dedup

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldMarks decomposes characters and strips combining marks, so that
// "São Paulo" and "Sao Paulo" normalize to the same string.
var foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName canonicalizes a locale name for comparison: diacritics
// stripped, lowercased, whitespace collapsed to single spaces.
func NormalizeName(name string) string {
	folded, _, err := transform.String(foldMarks, name)
	if err != nil {
		folded = name
	}

	lowered := strings.ToLower(folded)
	return strings.Join(strings.Fields(lowered), " ")
}
