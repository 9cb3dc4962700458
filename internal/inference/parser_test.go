package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse(t *testing.T) {
	categories := map[string]int64{
		"Mat":       1,
		"Transport": 2,
		"Nöje":      4,
	}

	tests := []struct {
		name           string
		content        string
		wantCategory   string
		wantID         int64
		wantConfidence float64
		wantOK         bool
	}{
		{
			name:           "clean json",
			content:        `{"category": "Mat", "confidence": 0.9}`,
			wantCategory:   "Mat",
			wantID:         1,
			wantConfidence: 0.9,
			wantOK:         true,
		},
		{
			name:           "json in markdown fence",
			content:        "```json\n{\"category\": \"Transport\", \"confidence\": 0.8}\n```",
			wantCategory:   "Transport",
			wantID:         2,
			wantConfidence: 0.8,
			wantOK:         true,
		},
		{
			name:           "json surrounded by prose",
			content:        `Sure! Here is my answer: {"category": "Mat", "confidence": 0.7} Hope that helps.`,
			wantCategory:   "Mat",
			wantID:         1,
			wantConfidence: 0.7,
			wantOK:         true,
		},
		{
			name:           "json with case drift",
			content:        `{"category": "mat", "confidence": 0.6}`,
			wantCategory:   "Mat",
			wantID:         1,
			wantConfidence: 0.6,
			wantOK:         true,
		},
		{
			name:    "explicit null category",
			content: `{"category": null, "confidence": 0}`,
			wantOK:  false,
		},
		{
			name:    "unknown category in json",
			content: `{"category": "Resor", "confidence": 0.9}`,
			wantOK:  false,
		},
		{
			name:           "confidence clamped to one",
			content:        `{"category": "Mat", "confidence": 3.5}`,
			wantCategory:   "Mat",
			wantID:         1,
			wantConfidence: 1.0,
			wantOK:         true,
		},
		{
			name:           "plain text naming a category",
			content:        "This looks like Transport to me.",
			wantCategory:   "Transport",
			wantID:         2,
			wantConfidence: fallbackConfidence,
			wantOK:         true,
		},
		{
			name:           "plain text fallback is deterministic on ties",
			content:        "Could be Transport or Mat.",
			wantCategory:   "Mat",
			wantID:         1,
			wantConfidence: fallbackConfidence,
			wantOK:         true,
		},
		{
			name:    "garbage",
			content: "I cannot help with that.",
			wantOK:  false,
		},
		{
			name:    "empty",
			content: "",
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, id, confidence, ok := parseResponse(tt.content, categories)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantCategory, category)
			assert.Equal(t, tt.wantID, id)
			assert.InDelta(t, tt.wantConfidence, confidence, 1e-9)
		})
	}
}
