// Package textnorm strips diacritics from dish names so pattern rules can
// match Czech text with or without accents.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize decomposes text and drops every combining mark. Case and all
// other characters are kept, so "Kuřecí řízek" becomes "Kureci rizek".
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lower-cases the normalized text.
func Fold(s string) string {
	return strings.ToLower(Normalize(s))
}
