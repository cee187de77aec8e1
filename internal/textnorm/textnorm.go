// Package textnorm folds titles into comparable tokens.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics ("Café" -> "cafe").
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

// Tokens splits the folded form of s on anything that is not a letter or
// digit. "&" becomes "and" so "Drum & Bass" and "Drum and Bass" agree.
func Tokens(s string) []string {
	folded := strings.ReplaceAll(Fold(s), "&", " and ")
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Set returns the distinct tokens of s.
func Set(s string) map[string]struct{} {
	tokens := Tokens(s)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Joined returns the tokens of s separated by single spaces. Two titles
// are considered equal when their Joined forms match.
func Joined(s string) string {
	return strings.Join(Tokens(s), " ")
}

// Overlap counts distinct tokens of a that also occur in b.
func Overlap(a, b string) int {
	bs := Set(b)
	n := 0
	for t := range Set(a) {
		if _, ok := bs[t]; ok {
			n++
		}
	}
	return n
}

// ContainsPhrase reports whether the token sequence of needle appears in
// haystack on token boundaries.
func ContainsPhrase(haystack, needle string) bool {
	h := Joined(haystack)
	n := Joined(needle)
	if n == "" || h == "" {
		return false
	}
	return h == n || strings.HasPrefix(h, n+" ") || strings.HasSuffix(h, " "+n) || strings.Contains(h, " "+n+" ")
}
