package engine

import (
	"context"

	"github.com/oskarw/kassa/internal/model"
)

// Strategy proposes a category for a single transaction. A (nil, nil) return
// means the strategy had nothing to say, which is not an error.
type Strategy interface {
	// Method identifies the strategy for attribution and floor lookup.
	Method() model.ClassificationMethod

	// Classify returns a suggestion, no suggestion, or an error. Strategies
	// must treat missing descriptions and other bad input as "no suggestion".
	Classify(ctx context.Context, txn model.Transaction) (*model.Suggestion, error)
}

// Rebuilder is implemented by strategies that learn from confirmed history
// and need retraining before a batch run.
type Rebuilder interface {
	RebuildFrom(ctx context.Context, transactions []model.Transaction, categories []model.Category, minSamples int) error
}
