// Package rules implements the deterministic pattern classifier backed by
// the curated category lexicon.
package rules

import (
	"context"
	"fmt"

	"github.com/oskarw/kassa/internal/lexicon"
	"github.com/oskarw/kassa/internal/model"
)

// Confidence is the fixed confidence assigned to every lexicon match. The
// lexicon is curated, so matches are trusted uniformly; there is no partial
// scoring.
const Confidence = 0.95

// Classifier matches transaction descriptions against the lexicon. It is
// stateless apart from the injected lexicon and category catalog, so it is
// safe for concurrent use.
type Classifier struct {
	lexicon    *lexicon.Lexicon
	categories map[string]int64 // category name -> id
}

// NewClassifier creates a pattern classifier over the given lexicon.
// categories maps known category names to their IDs; lexicon entries naming
// an unknown category never match.
func NewClassifier(lex *lexicon.Lexicon, categories []model.Category) *Classifier {
	byName := make(map[string]int64, len(categories))
	for _, c := range categories {
		byName[c.Name] = c.ID
	}
	return &Classifier{lexicon: lex, categories: byName}
}

// Method identifies suggestions produced by this strategy.
func (c *Classifier) Method() model.ClassificationMethod {
	return model.MethodRule
}

// Classify returns a fixed-confidence suggestion for the first lexicon entry
// matching the description, or nil when nothing matches. A missing
// description is a valid "no suggestion" outcome, not an error.
func (c *Classifier) Classify(_ context.Context, txn model.Transaction) (*model.Suggestion, error) {
	category, ok := c.lexicon.Match(txn.Description, txn.Amount.IsPositive())
	if !ok {
		return nil, nil
	}

	id, known := c.categories[category]
	if !known {
		// Lexicon names a category absent from the catalog; treat as no match.
		return nil, nil
	}

	return &model.Suggestion{
		Category:   category,
		CategoryID: id,
		Confidence: Confidence,
		Method:     model.MethodRule,
		Rationale:  fmt.Sprintf("lexicon keyword match for %q", category),
	}, nil
}
