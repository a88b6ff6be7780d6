package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the case-folded form of value used for case-insensitive
// comparisons of nicknames, stopwords, and map names. Surrounding whitespace
// is trimmed first.
func Fold(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	// cases.Caser keeps state, so a fresh one per call stays safe for concurrent use.
	return cases.Fold().String(value)
}

// EqualFold reports whether a and b are equal after folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}
