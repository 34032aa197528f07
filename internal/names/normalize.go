// Package names holds the predefined "cooked" list and the normalization
// used to compare user input against it.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes, drops nonspacing marks (accents) and recomposes.
// A transform.Transformer is stateful, so each call builds its own chain.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Normalize lowercases s and strips diacritics so that "Léa" and "Lea"
// compare equal. Surrounding whitespace is removed last, since dropping a
// mark can expose it.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(stripMarks(), strings.ToLower(s))
	if err != nil {
		// Only reachable on transformer bugs; fall back to the plain form.
		out = strings.ToLower(s)
	}
	return strings.TrimSpace(out)
}
