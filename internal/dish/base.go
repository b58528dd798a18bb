package dish

import (
	"strings"
	"unicode"

	"lunch-menu-planner/internal/textnorm"
)

// Base returns the structural base of a dish name ("noky", "risotto", ...)
// or "" when the name has no recognized base.
func Base(name string) string {
	return baseOf(NewText(name))
}

func baseOf(t Text) string {
	b, _, _ := BaseRules.First(t)
	return b
}

// stemLen keeps enough of a Czech word to survive case endings
// ("kuřecí", "kuřecími" -> "kurec").
const stemLen = 5

var fillerWords = map[string]struct{}{
	"s": {}, "se": {}, "a": {}, "na": {}, "v": {}, "ve": {}, "z": {}, "ze": {},
	"k": {}, "ke": {}, "do": {}, "po": {}, "pod": {}, "od": {}, "with": {},
	"and": {}, "in": {}, "on": {}, "the": {}, "of": {},
}

// SimilarNames reports whether two dish names are near-identical variants,
// e.g. "Kuřecí řízek" and "Kuřecí řízek s bramborem": the shorter name's
// stemmed words (at least two) are all contained in the longer one.
func SimilarNames(a, b string) bool {
	sa, sb := stems(a), stems(b)
	if len(sa) > len(sb) {
		sa, sb = sb, sa
	}
	if len(sa) < 2 {
		return false
	}
	for s := range sa {
		if _, ok := sb[s]; !ok {
			return false
		}
	}
	return true
}

func stems(name string) map[string]struct{} {
	words := strings.FieldsFunc(textnorm.Fold(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, skip := fillerWords[w]; skip || len([]rune(w)) < 3 {
			continue
		}
		r := []rune(w)
		if len(r) > stemLen {
			r = r[:stemLen]
		}
		out[string(r)] = struct{}{}
	}
	return out
}
