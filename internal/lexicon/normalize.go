package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes merchant text for matching and cache keys: upper
// case, diacritics stripped, punctuation and digits replaced by spaces,
// whitespace collapsed. Both lexicon keywords and transaction descriptions
// pass through here, so "HEMKÖP" and "hemkop" normalize identically.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := true
	for _, r := range norm.NFD.String(text) {
		switch {
		case unicode.In(r, unicode.Mn):
			// combining mark from NFD decomposition
			continue
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToUpper(r))
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// Tokenize splits normalized text into tokens, dropping tokens shorter than
// three characters. Short fragments (card scheme codes, city abbreviations)
// carry no signal and pollute frequency profiles.
func Tokenize(text string) []string {
	fields := strings.Fields(Normalize(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) >= 3 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
