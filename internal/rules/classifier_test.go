package rules

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oskarw/kassa/internal/lexicon"
	"github.com/oskarw/kassa/internal/model"
)

func testCategories() []model.Category {
	return []model.Category{
		{ID: 1, Name: "Mat"},
		{ID: 2, Name: "Transport"},
		{ID: 3, Name: "Hälsa"},
		{ID: 4, Name: "Nöje"},
		{ID: 5, Name: "Boende"},
		{ID: 6, Name: "Inkomst"},
	}
}

func TestClassify(t *testing.T) {
	c := NewClassifier(lexicon.Default(), testCategories())

	tests := []struct {
		name         string
		description  string
		amount       string
		wantCategory string
		wantID       int64
		wantMatch    bool
	}{
		{
			name:         "grocery purchase",
			description:  "ICA SUPERMARKET STOCKHOLM",
			amount:       "-450.50",
			wantCategory: "Mat",
			wantID:       1,
			wantMatch:    true,
		},
		{
			name:         "salary deposit",
			description:  "LÖN FEBRUARI",
			amount:       "32000.00",
			wantCategory: "Inkomst",
			wantID:       6,
			wantMatch:    true,
		},
		{
			name:        "salary keyword on a debit",
			description: "LÖN FEBRUARI",
			amount:      "-32000.00",
			wantMatch:   false,
		},
		{
			name:        "unknown merchant",
			description: "BYGGMAX TUMBA",
			amount:      "-1299.00",
			wantMatch:   false,
		},
		{
			name:        "empty description",
			description: "",
			amount:      "-100.00",
			wantMatch:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := model.Transaction{
				ID:          "txn-1",
				Description: tt.description,
				Amount:      decimal.RequireFromString(tt.amount),
			}
			sug, err := c.Classify(context.Background(), txn)
			require.NoError(t, err)
			if !tt.wantMatch {
				assert.Nil(t, sug)
				return
			}
			require.NotNil(t, sug)
			assert.Equal(t, tt.wantCategory, sug.Category)
			assert.Equal(t, tt.wantID, sug.CategoryID)
			assert.InDelta(t, Confidence, sug.Confidence, 1e-9)
			assert.Equal(t, model.MethodRule, sug.Method)
		})
	}
}

func TestClassifyUnknownCatalogCategory(t *testing.T) {
	// Lexicon names a category the catalog does not carry.
	c := NewClassifier(lexicon.Default(), []model.Category{{ID: 1, Name: "Transport"}})

	txn := model.Transaction{
		ID:          "txn-1",
		Description: "ICA SUPERMARKET",
		Amount:      decimal.RequireFromString("-100.00"),
	}
	sug, err := c.Classify(context.Background(), txn)
	require.NoError(t, err)
	assert.Nil(t, sug, "uncatalogued category must yield no suggestion")
}
