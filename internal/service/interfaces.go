// Package service defines the contracts between the classification engine
// and its collaborators.
package service

import (
	"context"

	"github.com/oskarw/kassa/internal/model"
)

// Storage is the persistence boundary the engine consumes. Import-side
// deduplication is the storage layer's responsibility: transactions are
// uniquely keyed by their external verification identifier, so the engine
// only ever sees each transaction once.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetUncategorizedTransactions(ctx context.Context) ([]model.Transaction, error)
	GetClassifiedTransactions(ctx context.Context) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)

	// AssignCategory records one classification event: category, confidence
	// and method are set together or not at all. Returns common.ErrNotFound
	// when the transaction or category does not exist.
	AssignCategory(ctx context.Context, transactionID string, categoryID int64, confidence float64, method model.ClassificationMethod) error

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
