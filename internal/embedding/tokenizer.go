package embedding

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// maxSeqLen bounds the encoded sequence length. Bank descriptions are short,
// so this is generous headroom rather than a practical limit.
const maxSeqLen = 64

// encoded holds tokenized texts packed for inference. All slices are flat
// [batchSize * seqLen].
type encoded struct {
	inputIDs      []int64
	attentionMask []int64
	tokenTypeIDs  []int64
	batchSize     int64
	seqLen        int64
}

// tokenizer performs BERT-style WordPiece tokenization: lowercase, strip
// diacritics, split on whitespace and punctuation, then greedy
// longest-match subword lookup.
type tokenizer struct {
	vocab *vocab
}

func newTokenizer(vocabPath string) (*tokenizer, error) {
	v, err := loadVocab(vocabPath)
	if err != nil {
		return nil, err
	}
	return &tokenizer{vocab: v}, nil
}

// encode converts one text into padded ID and mask slices of length maxSeqLen,
// wrapped in [CLS] and [SEP].
func (t *tokenizer) encode(text string) (ids, mask []int64) {
	tokens := t.wordpiece(t.split(text))
	if len(tokens) > maxSeqLen-2 {
		tokens = tokens[:maxSeqLen-2]
	}

	ids = make([]int64, maxSeqLen)
	mask = make([]int64, maxSeqLen)

	ids[0] = t.vocab.clsID
	mask[0] = 1
	for i, tok := range tokens {
		ids[i+1] = t.vocab.lookup(tok)
		mask[i+1] = 1
	}
	ids[len(tokens)+1] = t.vocab.sepID
	mask[len(tokens)+1] = 1

	return ids, mask
}

// encodeBatch packs multiple texts into flat slices padded to the longest
// sequence in the batch.
func (t *tokenizer) encodeBatch(texts []string) encoded {
	n := len(texts)
	if n == 0 {
		return encoded{}
	}

	type seq struct {
		ids  []int64
		mask []int64
	}
	seqs := make([]seq, n)
	maxLen := int64(0)

	for i, text := range texts {
		ids, mask := t.encode(text)
		var realLen int64
		for _, m := range mask {
			if m == 1 {
				realLen++
			}
		}
		seqs[i] = seq{ids: ids, mask: mask}
		if realLen > maxLen {
			maxLen = realLen
		}
	}

	batchSize := int64(n)
	seqLen := maxLen
	total := batchSize * seqLen

	out := encoded{
		inputIDs:      make([]int64, total),
		attentionMask: make([]int64, total),
		tokenTypeIDs:  make([]int64, total),
		batchSize:     batchSize,
		seqLen:        seqLen,
	}
	for i, s := range seqs {
		offset := int64(i) * seqLen
		copy(out.inputIDs[offset:offset+seqLen], s.ids[:seqLen])
		copy(out.attentionMask[offset:offset+seqLen], s.mask[:seqLen])
	}
	return out
}

// split applies the pre-tokenization pass: clean control characters,
// lowercase, strip diacritics, split on whitespace and punctuation. Swedish
// merchant strings carry å, ä, ö and the occasional é, so diacritic
// stripping keeps ICA NÄRA and ICA NARA on the same tokens.
func (t *tokenizer) split(text string) []string {
	text = cleanText(text)
	text = strings.ToLower(text)
	text = stripDiacritics(text)

	var tokens []string
	for _, word := range strings.Fields(text) {
		tokens = append(tokens, splitOnPunctuation(word)...)
	}
	return tokens
}

func (t *tokenizer) wordpiece(tokens []string) []string {
	var result []string
	for _, token := range tokens {
		if len(token) == 0 {
			continue
		}
		result = append(result, t.wordpieceToken(token)...)
	}
	return result
}

// wordpieceToken decomposes one word into subwords by greedy longest match.
func (t *tokenizer) wordpieceToken(token string) []string {
	runes := []rune(token)
	if len(runes) > 200 {
		return []string{"[UNK]"}
	}

	var subTokens []string
	start := 0
	for start < len(runes) {
		end := len(runes)
		found := false
		for end > start {
			sub := string(runes[start:end])
			if start > 0 {
				sub = "##" + sub
			}
			if t.vocab.contains(sub) {
				subTokens = append(subTokens, sub)
				found = true
				break
			}
			end--
		}
		if !found {
			return []string{"[UNK]"}
		}
		start = end
	}
	return subTokens
}

func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == 0 || r == 0xFFFD || isControl(r) {
			continue
		}
		if isWhitespace(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func stripDiacritics(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range norm.NFD.String(text) {
		if unicode.In(r, unicode.Mn) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func splitOnPunctuation(word string) []string {
	var tokens []string
	var current strings.Builder
	for _, r := range word {
		if isPunctuation(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
			tokens = append(tokens, string(r))
		} else {
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}
	return tokens
}

func isWhitespace(r rune) bool {
	if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}
	return unicode.IsControl(r)
}

func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) ||
		(r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}
