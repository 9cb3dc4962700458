package inference

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oskarw/kassa/internal/model"
)

type stubClient struct {
	response  string
	err       error
	calls     int
	available bool
}

func (s *stubClient) Generate(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubClient) CheckAvailable(_ context.Context) error {
	if !s.available {
		return errors.New("model not loaded")
	}
	return nil
}

func testClassifier(t *testing.T, client Client) *Classifier {
	t.Helper()
	c := newClassifierWithClient(Config{
		Model:          "test",
		RequestTimeout: time.Second,
		CacheTTL:       time.Minute,
		RateLimit:      600,
	}, client, []model.Category{
		{ID: 1, Name: "Mat"},
		{ID: 2, Name: "Transport"},
	}, slog.Default())
	t.Cleanup(c.Close)
	return c
}

func icaTxn() model.Transaction {
	return model.Transaction{
		ID:          "txn-1",
		Description: "ICA SUPERMARKET STOCKHOLM",
		Amount:      decimal.RequireFromString("-450.50"),
	}
}

func TestClassifySuggestion(t *testing.T) {
	stub := &stubClient{response: `{"category": "Mat", "confidence": 0.8}`}
	c := testClassifier(t, stub)

	sug, err := c.Classify(context.Background(), icaTxn())
	require.NoError(t, err)
	require.NotNil(t, sug)
	assert.Equal(t, "Mat", sug.Category)
	assert.Equal(t, int64(1), sug.CategoryID)
	assert.InDelta(t, 0.8, sug.Confidence, 1e-9)
	assert.Equal(t, model.MethodLLM, sug.Method)
}

func TestClassifyConfidenceCeiling(t *testing.T) {
	stub := &stubClient{response: `{"category": "Mat", "confidence": 0.99}`}
	c := testClassifier(t, stub)

	sug, err := c.Classify(context.Background(), icaTxn())
	require.NoError(t, err)
	require.NotNil(t, sug)
	assert.InDelta(t, confidenceCeiling, sug.Confidence, 1e-9)
}

func TestClassifyCachesResult(t *testing.T) {
	stub := &stubClient{response: `{"category": "Mat", "confidence": 0.8}`}
	c := testClassifier(t, stub)

	for i := 0; i < 3; i++ {
		_, err := c.Classify(context.Background(), icaTxn())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, stub.calls, "cache should absorb repeats")
}

func TestClassifyServiceTrouble(t *testing.T) {
	tests := []struct {
		name string
		stub *stubClient
	}{
		{name: "request error", stub: &stubClient{err: errors.New("connection refused")}},
		{name: "garbage response", stub: &stubClient{response: "I am not sure about this one."}},
		{name: "unknown category", stub: &stubClient{response: `{"category": "Resor", "confidence": 0.9}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClassifier(t, tt.stub)
			sug, err := c.Classify(context.Background(), icaTxn())
			require.NoError(t, err, "service trouble must not surface as an error")
			assert.Nil(t, sug)
		})
	}
}

func TestClassifySkipsShortDescriptions(t *testing.T) {
	stub := &stubClient{response: `{"category": "Mat", "confidence": 0.8}`}
	c := testClassifier(t, stub)

	txn := icaTxn()
	txn.Description = "AB"
	sug, err := c.Classify(context.Background(), txn)
	require.NoError(t, err)
	assert.Nil(t, sug)
	assert.Equal(t, 0, stub.calls)
}

func TestCheckAvailable(t *testing.T) {
	c := testClassifier(t, &stubClient{available: true})
	assert.NoError(t, c.CheckAvailable(context.Background()))
}
