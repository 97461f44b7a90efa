package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minTermLength is the shortest term (exclusive, in runes) kept by tokenize.
const minTermLength = 2

// foldText lower-cases s and strips diacritics so "Información" and
// "informacion" compare equal.
func foldText(s string) string {
	// Transformers carry state; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// words splits folded text on anything that is not a letter or digit.
func words(folded string) []string {
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// tokenize returns the folded terms of s longer than minTermLength runes, in
// query order. Repeated terms are kept and each occurrence counts when scoring.
func tokenize(s string) []string {
	var terms []string
	for _, w := range words(foldText(s)) {
		if utf8.RuneCountInString(w) <= minTermLength {
			continue
		}
		terms = append(terms, w)
	}
	return terms
}

// containsAny reports whether folded contains any of the substrings.
func containsAny(folded string, substrs []string) bool {
	for _, s := range substrs {
		if strings.Contains(folded, s) {
			return true
		}
	}
	return false
}
