package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oskarw/kassa/internal/common"
	"github.com/oskarw/kassa/internal/model"
)

func testStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testTransaction(id, verification string) model.Transaction {
	return model.Transaction{
		ID:             id,
		VerificationID: verification,
		Date:           time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC),
		Description:    "ICA SUPERMARKET STOCKHOLM",
		Amount:         decimal.RequireFromString("-450.50"),
	}
}

func TestMigrateSeedsCategories(t *testing.T) {
	s := testStorage(t)

	categories, err := s.GetCategories(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, categories, "migrations must seed the default categories")

	mat, err := s.GetCategoryByName(context.Background(), "Mat")
	require.NoError(t, err)
	assert.NotEmpty(t, mat.Keywords, "seeded category should carry keywords")

	fallback, err := s.GetCategoryByName(context.Background(), "Övrigt")
	require.NoError(t, err)
	assert.Empty(t, fallback.Keywords, "fallback category must carry no keywords")

	_, err = s.GetCategoryByName(context.Background(), "Okänd")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := testStorage(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestSaveTransactionsDeduplicates(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	inserted, err := s.SaveTransactions(ctx, []model.Transaction{
		testTransaction("t1", "v1"),
		testTransaction("t2", "v2"),
	})
	require.NoError(t, err)
	require.Equal(t, 2, inserted)

	// Overlapping re-import: one known reference, one new.
	inserted, err = s.SaveTransactions(ctx, []model.Transaction{
		testTransaction("t3", "v2"),
		testTransaction("t4", "v4"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted, "duplicate reference skipped")

	pending, err := s.GetUncategorizedTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 3)
}

func TestAssignCategory(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	_, err := s.SaveTransactions(ctx, []model.Transaction{testTransaction("t1", "v1")})
	require.NoError(t, err)
	mat, err := s.GetCategoryByName(ctx, "Mat")
	require.NoError(t, err)

	require.NoError(t, s.AssignCategory(ctx, "t1", mat.ID, 0.95, model.MethodRule))

	txn, err := s.GetTransactionByID(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, txn.CategoryID)
	assert.Equal(t, mat.ID, *txn.CategoryID)
	require.NotNil(t, txn.Confidence)
	assert.InDelta(t, 0.95, *txn.Confidence, 1e-9)
	require.NotNil(t, txn.Method)
	assert.Equal(t, model.MethodRule, *txn.Method)
	assert.True(t, txn.Amount.Equal(decimal.RequireFromString("-450.50")))

	classified, err := s.GetClassifiedTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, classified, 1)
	pending, err := s.GetUncategorizedTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestAssignCategoryErrors(t *testing.T) {
	s := testStorage(t)
	ctx := context.Background()

	_, err := s.SaveTransactions(ctx, []model.Transaction{testTransaction("t1", "v1")})
	require.NoError(t, err)
	mat, err := s.GetCategoryByName(ctx, "Mat")
	require.NoError(t, err)

	assert.ErrorIs(t, s.AssignCategory(ctx, "missing", mat.ID, 0.9, model.MethodRule), common.ErrNotFound)
	assert.ErrorIs(t, s.AssignCategory(ctx, "t1", 9999, 0.9, model.MethodRule), common.ErrNotFound)
	assert.Error(t, s.AssignCategory(ctx, "t1", mat.ID, 1.5, model.MethodRule), "out of range confidence")
	assert.Error(t, s.AssignCategory(ctx, "t1", mat.ID, 0.9, "telepathy"), "unknown method")

	// None of the failed attempts may have partially written anything.
	txn, err := s.GetTransactionByID(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, txn.Classified())
	assert.Nil(t, txn.Confidence)
	assert.Nil(t, txn.Method)
}

func TestGetTransactionByIDNotFound(t *testing.T) {
	s := testStorage(t)
	_, err := s.GetTransactionByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
