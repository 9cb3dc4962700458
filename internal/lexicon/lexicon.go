// Package lexicon holds the curated keyword knowledge base used for
// rule-based classification, along with the text normalization shared by
// every matching component.
package lexicon

import "strings"

// AmountSign restricts a lexicon entry to transactions of one sign.
type AmountSign string

// Amount sign constants.
const (
	SignAny      AmountSign = ""
	SignPositive AmountSign = "positive"
	SignNegative AmountSign = "negative"
)

// Entry maps a set of merchant keywords to one category. Entries are
// evaluated in declaration order; the first matching entry wins, which keeps
// tie-breaking deterministic and documented rather than incidental.
type Entry struct {
	Category string
	Sign     AmountSign
	Keywords []string
}

// Lexicon is an ordered list of keyword entries for one locale.
type Lexicon struct {
	entries []Entry
}

// New builds a Lexicon from entries, normalizing every keyword once up
// front. Entry order is preserved.
func New(entries []Entry) *Lexicon {
	normalized := make([]Entry, 0, len(entries))
	for _, e := range entries {
		keywords := make([]string, 0, len(e.Keywords))
		for _, kw := range e.Keywords {
			if n := Normalize(kw); n != "" {
				keywords = append(keywords, n)
			}
		}
		if len(keywords) == 0 {
			continue
		}
		normalized = append(normalized, Entry{
			Category: e.Category,
			Sign:     e.Sign,
			Keywords: keywords,
		})
	}
	return &Lexicon{entries: normalized}
}

// WithCategoryKeywords returns a new Lexicon with per-category locale
// keywords appended after the built-in entries. Built-in entries keep their
// precedence; catalog keywords only extend coverage.
func (l *Lexicon) WithCategoryKeywords(keywords map[string][]string, order []string) *Lexicon {
	entries := make([]Entry, len(l.entries), len(l.entries)+len(keywords))
	copy(entries, l.entries)

	for _, category := range order {
		kws := keywords[category]
		if len(kws) == 0 {
			continue
		}
		entries = append(entries, Entry{Category: category, Keywords: kws})
	}

	return New(entries)
}

// Match returns the category of the first entry (in declaration order) with
// a keyword present in the description, or "" when nothing matches. Single
// word keywords must match a whole token; multi-word keywords match as a
// normalized substring. positive reports the sign of the transaction amount
// for entries carrying a sign filter.
func (l *Lexicon) Match(description string, positive bool) (category string, ok bool) {
	normalized := Normalize(description)
	if normalized == "" {
		return "", false
	}
	tokens := make(map[string]struct{})
	for _, t := range strings.Fields(normalized) {
		tokens[t] = struct{}{}
	}

	for _, entry := range l.entries {
		if entry.Sign == SignPositive && !positive {
			continue
		}
		if entry.Sign == SignNegative && positive {
			continue
		}
		for _, kw := range entry.Keywords {
			if keywordMatches(kw, normalized, tokens) {
				return entry.Category, true
			}
		}
	}

	return "", false
}

// Entries returns a copy of the entries in declaration order.
func (l *Lexicon) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Categories returns the distinct category names in declaration order.
func (l *Lexicon) Categories() []string {
	seen := make(map[string]struct{}, len(l.entries))
	var out []string
	for _, e := range l.entries {
		if _, ok := seen[e.Category]; ok {
			continue
		}
		seen[e.Category] = struct{}{}
		out = append(out, e.Category)
	}
	return out
}

func keywordMatches(keyword, normalized string, tokens map[string]struct{}) bool {
	if strings.ContainsRune(keyword, ' ') {
		return strings.Contains(normalized, keyword)
	}
	_, ok := tokens[keyword]
	return ok
}
