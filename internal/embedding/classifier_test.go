package embedding

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oskarw/kassa/internal/model"
)

// fakeEmbedder maps texts onto fixed axes so centroid geometry is exact:
// grocery-looking text embeds along x, fuel-looking text along y.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(text string) ([]float32, error) {
	switch {
	case strings.Contains(text, "ICA"):
		return []float32{1, 0, 0}, nil
	case strings.Contains(text, "SHELL"):
		return []float32{0, 1, 0}, nil
	default:
		return []float32{0, 0, 1}, nil
	}
}

func (f fakeEmbedder) EmbedBatch(texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (fakeEmbedder) Close() error { return nil }

func confirmed(id, description string, categoryID int64) model.Transaction {
	return model.Transaction{
		ID:          id,
		Description: description,
		Amount:      decimal.RequireFromString("-100.00"),
		CategoryID:  &categoryID,
	}
}

func trainedClassifier(t *testing.T) *Classifier {
	t.Helper()
	c := NewClassifier(fakeEmbedder{}, 0.5, slog.Default())
	err := c.RebuildFrom(context.Background(),
		[]model.Transaction{
			confirmed("m1", "ICA SUPERMARKET", 1),
			confirmed("m2", "ICA KVANTUM", 1),
			confirmed("t1", "SHELL BENSIN", 2),
			confirmed("t2", "SHELL MACKEN", 2),
		},
		[]model.Category{{ID: 1, Name: "Mat"}, {ID: 2, Name: "Transport"}},
		2,
	)
	require.NoError(t, err)
	return c
}

func TestClassifyNearestCentroid(t *testing.T) {
	c := trainedClassifier(t)

	txn := model.Transaction{ID: "q", Description: "ICA NARA", Amount: decimal.RequireFromString("-50.00")}
	sug, err := c.Classify(context.Background(), txn)
	require.NoError(t, err)
	require.NotNil(t, sug)
	assert.Equal(t, "Mat", sug.Category)
	assert.Equal(t, int64(1), sug.CategoryID)
	assert.Equal(t, model.MethodML, sug.Method)
	assert.GreaterOrEqual(t, sug.Confidence, 0.99, "axis-aligned match should score near 1")
}

func TestClassifyBelowFloor(t *testing.T) {
	c := trainedClassifier(t)

	// Embeds orthogonally to both centroids, similarity 0.
	txn := model.Transaction{ID: "q", Description: "OKAND MOTPART", Amount: decimal.RequireFromString("-50.00")}
	sug, err := c.Classify(context.Background(), txn)
	require.NoError(t, err)
	assert.Nil(t, sug, "similarity below the floor must suggest nothing")
}

func TestClassifyWithoutCentroids(t *testing.T) {
	c := NewClassifier(fakeEmbedder{}, 0.5, slog.Default())

	txn := model.Transaction{ID: "q", Description: "ICA NARA", Amount: decimal.RequireFromString("-50.00")}
	sug, err := c.Classify(context.Background(), txn)
	require.NoError(t, err)
	assert.Nil(t, sug, "untrained classifier must suggest nothing")
}

func TestRebuildFromRespectsMinSamples(t *testing.T) {
	c := NewClassifier(fakeEmbedder{}, 0.5, slog.Default())
	err := c.RebuildFrom(context.Background(),
		[]model.Transaction{confirmed("m1", "ICA SUPERMARKET", 1)},
		[]model.Category{{ID: 1, Name: "Mat"}},
		2,
	)
	require.NoError(t, err)

	txn := model.Transaction{ID: "q", Description: "ICA NARA", Amount: decimal.RequireFromString("-50.00")}
	sug, err := c.Classify(context.Background(), txn)
	require.NoError(t, err)
	assert.Nil(t, sug, "a category below the sample minimum must not score")
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 0}, b: []float32{1, 0}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "length mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0},
		{name: "zero vector", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
