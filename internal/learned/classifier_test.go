package learned

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oskarw/kassa/internal/model"
)

func catalog() []model.Category {
	return []model.Category{
		{ID: 1, Name: "Mat"},
		{ID: 2, Name: "Transport"},
	}
}

func confirmed(id string, description, amount string, categoryID int64) model.Transaction {
	return model.Transaction{
		ID:          id,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
		CategoryID:  &categoryID,
	}
}

func trainingSet() []model.Transaction {
	return []model.Transaction{
		confirmed("m1", "ICA SUPERMARKET STOCKHOLM", "-450.00", 1),
		confirmed("m2", "ICA SUPERMARKET STOCKHOLM", "-430.00", 1),
		confirmed("m3", "ICA SUPERMARKET STOCKHOLM", "-470.00", 1),
		confirmed("t1", "SHELL BENSINSTATION", "-580.00", 2),
		confirmed("t2", "SHELL BENSINSTATION", "-600.00", 2),
		confirmed("t3", "SHELL BENSINSTATION", "-620.00", 2),
	}
}

func TestClassifyEmptyProfile(t *testing.T) {
	c := NewClassifier(0)

	txn := model.Transaction{Description: "ICA SUPERMARKET", Amount: decimal.RequireFromString("-100.00")}
	sug, err := c.Classify(context.Background(), txn)
	require.NoError(t, err)
	assert.Nil(t, sug, "empty profile must yield no suggestion")
}

func TestClassifyTrainedProfile(t *testing.T) {
	c := NewClassifier(0)
	require.NoError(t, c.RebuildFrom(context.Background(), trainingSet(), catalog(), 3))

	tests := []struct {
		name         string
		description  string
		amount       string
		wantCategory string
		wantMatch    bool
	}{
		{
			name:         "strong overlap and typical amount",
			description:  "ICA SUPERMARKET STOCKHOLM",
			amount:       "-450.00",
			wantCategory: "Mat",
			wantMatch:    true,
		},
		{
			name:         "partial overlap",
			description:  "ICA NARA HORNSTULL",
			amount:       "-445.00",
			wantCategory: "Mat",
			wantMatch:    true,
		},
		{
			name:        "no overlap and atypical amount",
			description: "HELT OKAND MOTPART",
			amount:      "99999.00",
			wantMatch:   false,
		},
		{
			name:        "empty description",
			description: "",
			amount:      "-450.00",
			wantMatch:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := model.Transaction{
				ID:          "q",
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
			assert.Equal(t, model.MethodLearned, sug.Method)
			assert.GreaterOrEqual(t, sug.Confidence, c.floor)
			assert.LessOrEqual(t, sug.Confidence, confidenceCap)
		})
	}
}

func TestClassifyConfidenceCapped(t *testing.T) {
	c := NewClassifier(0)
	require.NoError(t, c.RebuildFrom(context.Background(), trainingSet(), catalog(), 3))

	// Perfect word overlap plus exact mean amount saturates the raw score.
	txn := model.Transaction{
		ID:          "q",
		Description: "ICA SUPERMARKET STOCKHOLM",
		Amount:      decimal.RequireFromString("-450.00"),
	}
	sug, err := c.Classify(context.Background(), txn)
	require.NoError(t, err)
	require.NotNil(t, sug)
	assert.InDelta(t, confidenceCap, sug.Confidence, 1e-9)
}

func TestBuildProfileMinSamples(t *testing.T) {
	transactions := trainingSet()[:2] // only two Mat samples
	profile := BuildProfile(transactions, catalog(), 3)
	assert.True(t, profile.Empty(), "profile should be empty below the sample minimum")
}

func TestBuildProfileSkipsBadInput(t *testing.T) {
	unknownID := int64(99)
	transactions := append(trainingSet(),
		model.Transaction{ID: "u1", Description: "NO CATEGORY", Amount: decimal.RequireFromString("-5.00")},
		model.Transaction{ID: "u2", Description: "GHOST", Amount: decimal.RequireFromString("-5.00"), CategoryID: &unknownID},
		confirmed("u3", "12 34", "-5.00", 1), // tokenizes to nothing
	)

	profile := BuildProfile(transactions, catalog(), 3)
	require.Len(t, profile.Categories, 2)

	mat := profile.Categories["Mat"]
	assert.Equal(t, 3, mat.SampleCount)
	assert.InDelta(t, -450.0, mat.MeanAmount, 1e-9)
	assert.Len(t, mat.CommonWords, 3)
}

func TestRebuildFromCanceledContext(t *testing.T) {
	c := NewClassifier(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, c.RebuildFrom(ctx, trainingSet(), catalog(), 3))
	assert.True(t, c.Profile().Empty(), "profile must stay untouched after canceled rebuild")
}
