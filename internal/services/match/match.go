// Package match grades free-text answers leniently: case, diacritics,
// punctuation and spacing are ignored, and containment either way counts.
package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// đ has no combining decomposition, so it is folded by hand
var letterFolds = strings.NewReplacer("đ", "d", "Đ", "d")

// Normalize case-folds, strips diacritics and punctuation, and collapses whitespace
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	folded := cases.Fold().String(letterFolds.Replace(stripped))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Matches reports whether given is accepted for expected
func Matches(given, expected string) bool {
	g, e := Normalize(given), Normalize(expected)
	if g == "" || e == "" {
		return false
	}
	return g == e || strings.Contains(g, e) || strings.Contains(e, g)
}

// MatchesAny reports whether given matches any of the accepted answers
func MatchesAny(given string, accepted ...string) bool {
	for _, a := range accepted {
		if Matches(given, a) {
			return true
		}
	}
	return false
}
