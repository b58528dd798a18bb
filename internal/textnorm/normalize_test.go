package textnorm

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Kuřecí řízek", "Kureci rizek"},
		{"Bramborové halušky se zelím", "Bramborove halusky se zelim"},
		{"Svíčková na smetaně", "Svickova na smetane"},
		{"ÚTERÝ", "UTERY"},
		{"Gnocchi with spinach", "Gnocchi with spinach"},
		{"", ""},
		// decomposed input: "e" + combining caron
		{"ce\u030cocka", "cecocka"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

func TestNormalizeIdempotentAndMarkFree(t *testing.T) {
	corpus := []string{
		"Čočka na kyselo s vejcem",
		"Pečená vepřová krkovice, bramborový knedlík",
		"Zapečené těstoviny se šunkou a sýrem",
		"Minestrón",
		"Ďábelské kuřecí stripsy",
		"Crème brûlée",
		"a\u0323\u0301\u0308",
	}

	for _, s := range corpus {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", s)
		for _, r := range once {
			assert.False(t, unicode.Is(unicode.Mn, r), "combining mark %U left in %q", r, once)
			assert.False(t, r >= 0x0300 && r <= 0x036f, "combining diacritic %U left in %q", r, once)
		}
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "kureci steak s hranolky", Fold("KUŘECÍ Steak s hranolky"))
}
