// package match implements the text normalization and scoring rules that
// decide whether two independently sourced track records denote the same song.
//
// Matching is two-tiered: strict (case-fold only) comparison runs first, and
// normalized (diacritic/punctuation-insensitive) comparison is the fallback.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes a free-text metadata field for comparison.
//
// The input is lower-cased, decomposed (NFKD) with combining marks dropped,
// stripped of everything that is not alphanumeric or whitespace, and has
// whitespace runs collapsed to single spaces with the ends trimmed.
//
// Normalize is total and idempotent; empty or whitespace-only input yields "".
func Normalize(s string) string {
	s = norm.NFKD.String(strings.ToLower(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false

	for _, r := range s {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark from the NFKD decomposition, e.g. the accent of "é"
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingSpace = true
		}
	}

	return b.String()
}
