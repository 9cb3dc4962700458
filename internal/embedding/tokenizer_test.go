package embedding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVocab(t *testing.T) *tokenizer {
	t.Helper()
	lines := []string{
		"[PAD]", "[UNK]", "[CLS]", "[SEP]",
		"ica", "super", "##market", "stockholm", "coop", ".",
	}
	path := filepath.Join(t.TempDir(), "vocab.txt")
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	tok, err := newTokenizer(path)
	require.NoError(t, err)
	return tok
}

func TestSplit(t *testing.T) {
	tok := testVocab(t)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "lowercases", input: "ICA Stockholm", want: []string{"ica", "stockholm"}},
		{name: "strips diacritics", input: "NÄRA", want: []string{"nara"}},
		{name: "splits punctuation", input: "ica.coop", want: []string{"ica", ".", "coop"}},
		{name: "collapses whitespace", input: "  ica \t coop ", want: []string{"ica", "coop"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tok.split(tt.input))
		})
	}
}

func TestWordpiece(t *testing.T) {
	tok := testVocab(t)

	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{name: "whole words", input: []string{"ica", "stockholm"}, want: []string{"ica", "stockholm"}},
		{name: "subword decomposition", input: []string{"supermarket"}, want: []string{"super", "##market"}},
		{name: "unknown word", input: []string{"zebra"}, want: []string{"[UNK]"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tok.wordpiece(tt.input))
		})
	}
}

func TestEncode(t *testing.T) {
	tok := testVocab(t)

	ids, mask := tok.encode("ica stockholm")
	require.Len(t, ids, maxSeqLen)
	require.Len(t, mask, maxSeqLen)

	// [CLS] ica stockholm [SEP] then padding.
	wantIDs := []int64{2, 4, 7, 3}
	for i, want := range wantIDs {
		assert.Equal(t, want, ids[i], "ids[%d]", i)
		assert.Equal(t, int64(1), mask[i], "mask[%d]", i)
	}
	assert.Zero(t, ids[len(wantIDs)], "padding positions must be zero")
	assert.Zero(t, mask[len(wantIDs)], "padding positions must be zero")
}

func TestEncodeBatchPadsToLongest(t *testing.T) {
	tok := testVocab(t)

	batch := tok.encodeBatch([]string{"ica", "ica coop stockholm"})
	require.Equal(t, int64(2), batch.batchSize)
	// Longest is [CLS] + 3 tokens + [SEP].
	require.Equal(t, int64(5), batch.seqLen)
	assert.Equal(t, batch.batchSize*batch.seqLen, int64(len(batch.inputIDs)))

	// First sequence has [CLS] ica [SEP] real tokens, then padding.
	realTokens := 0
	for _, m := range batch.attentionMask[:batch.seqLen] {
		if m == 1 {
			realTokens++
		}
	}
	assert.Equal(t, 3, realTokens)
}

func TestMeanPool(t *testing.T) {
	// 1 sample, 3 positions (last padded), 2 dims.
	hidden := []float32{
		1, 2,
		3, 4,
		100, 100,
	}
	mask := []int64{1, 1, 0}

	got := meanPool(hidden, mask, 1, 3, 2)
	assert.Equal(t, []float32{2, 3}, got)
}

func TestMeanPoolAllPadding(t *testing.T) {
	got := meanPool([]float32{1, 2}, []int64{0}, 1, 1, 2)
	assert.Equal(t, []float32{0, 0}, got)
}
