package embedding

import "fmt"

// Embedder produces sentence vectors from transaction descriptions.
type Embedder interface {
	Embed(text string) ([]float32, error)
	EmbedBatch(texts []string) ([][]float32, error)
	Close() error
}

// ONNXEmbedder runs a local BERT-style sentence encoder through ONNX Runtime.
// The pipeline is tokenize, infer, then mean pool over real tokens.
type ONNXEmbedder struct {
	session *session
	tok     *tokenizer
}

// New loads the ONNX model and its WordPiece vocabulary.
func New(modelPath, vocabPath string) (*ONNXEmbedder, error) {
	sess, err := newSession(modelPath)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}

	tok, err := newTokenizer(vocabPath)
	if err != nil {
		sess.close()
		return nil, fmt.Errorf("embedding: %w", err)
	}

	return &ONNXEmbedder{session: sess, tok: tok}, nil
}

// Dim returns the embedding dimensionality.
func (e *ONNXEmbedder) Dim() int {
	return int(e.session.dim)
}

// Embed produces the vector for a single description.
func (e *ONNXEmbedder) Embed(text string) ([]float32, error) {
	vectors, err := e.EmbedBatch([]string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch produces vectors for multiple descriptions in one inference
// call, padded to the longest sequence in the batch.
func (e *ONNXEmbedder) EmbedBatch(texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batch := e.tok.encodeBatch(texts)

	hidden, err := e.session.run(
		batch.inputIDs, batch.attentionMask, batch.tokenTypeIDs,
		batch.batchSize, batch.seqLen,
	)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}

	pooled := meanPool(hidden, batch.attentionMask, batch.batchSize, batch.seqLen, e.session.dim)

	dim := e.session.dim
	vectors := make([][]float32, batch.batchSize)
	for i := int64(0); i < batch.batchSize; i++ {
		vectors[i] = pooled[i*dim : (i+1)*dim]
	}
	return vectors, nil
}

// Close releases ONNX Runtime resources.
func (e *ONNXEmbedder) Close() error {
	if e.session != nil {
		return e.session.close()
	}
	return nil
}
