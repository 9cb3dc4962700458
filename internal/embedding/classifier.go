package embedding

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/oskarw/kassa/internal/model"
)

// DefaultFloor is the minimum cosine similarity before a centroid match is
// worth suggesting.
const DefaultFloor = 0.5

// centroid is the mean embedding of one category's confirmed descriptions.
type centroid struct {
	category   string
	categoryID int64
	vector     []float32
	samples    int
}

type centroidSet struct {
	centroids []centroid
}

// Classifier suggests categories by comparing a description's sentence
// embedding against per-category centroids built from confirmed
// transactions. It implements engine.Strategy.
type Classifier struct {
	embedder  Embedder
	logger    *slog.Logger
	centroids atomic.Pointer[centroidSet]
	floor     float64
}

// NewClassifier creates a centroid classifier with no centroids yet. Until
// Rebuild runs it suggests nothing.
func NewClassifier(embedder Embedder, floor float64, logger *slog.Logger) *Classifier {
	if floor <= 0 {
		floor = DefaultFloor
	}
	c := &Classifier{
		embedder: embedder,
		logger:   logger,
		floor:    floor,
	}
	c.centroids.Store(&centroidSet{})
	return c
}

// Method reports how this classifier's suggestions are attributed.
func (c *Classifier) Method() model.ClassificationMethod {
	return model.MethodML
}

// RebuildFrom recomputes the per-category centroids from confirmed
// transactions. Categories with fewer than minSamples usable descriptions are
// left out. The swap is atomic, so concurrent Classify calls see either the
// old or the new set, never a partial one.
func (c *Classifier) RebuildFrom(ctx context.Context, transactions []model.Transaction, categories []model.Category, minSamples int) error {
	if minSamples < 1 {
		minSamples = 1
	}

	byID := make(map[int64]string, len(categories))
	for _, cat := range categories {
		byID[cat.ID] = cat.Name
	}

	grouped := make(map[int64][]string)
	for _, txn := range transactions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if txn.CategoryID == nil {
			continue
		}
		if _, known := byID[*txn.CategoryID]; !known {
			continue
		}
		description := strings.TrimSpace(txn.Description)
		if description == "" {
			continue
		}
		grouped[*txn.CategoryID] = append(grouped[*txn.CategoryID], description)
	}

	set := &centroidSet{}
	for id, descriptions := range grouped {
		if len(descriptions) < minSamples {
			continue
		}
		vectors, err := c.embedder.EmbedBatch(descriptions)
		if err != nil {
			return err
		}
		set.centroids = append(set.centroids, centroid{
			category:   byID[id],
			categoryID: id,
			vector:     meanVector(vectors),
			samples:    len(descriptions),
		})
	}
	sort.Slice(set.centroids, func(i, j int) bool {
		return set.centroids[i].category < set.centroids[j].category
	})

	c.centroids.Store(set)
	c.logger.Debug("embedding centroids rebuilt", "categories", len(set.centroids))
	return nil
}

// Classify embeds the description and returns the nearest centroid when its
// cosine similarity clears the floor.
func (c *Classifier) Classify(ctx context.Context, txn model.Transaction) (*model.Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set := c.centroids.Load()
	if len(set.centroids) == 0 {
		return nil, nil
	}

	description := strings.TrimSpace(txn.Description)
	if description == "" {
		return nil, nil
	}

	vector, err := c.embedder.Embed(description)
	if err != nil {
		return nil, err
	}

	best := -1
	bestSim := -1.0
	for i, cent := range set.centroids {
		sim := cosineSimilarity(vector, cent.vector)
		if sim > bestSim {
			best = i
			bestSim = sim
		}
	}
	if best < 0 || bestSim < c.floor {
		return nil, nil
	}

	winner := set.centroids[best]
	confidence := bestSim
	if confidence > 1 {
		confidence = 1
	}

	return &model.Suggestion{
		Category:   winner.category,
		CategoryID: winner.categoryID,
		Confidence: confidence,
		Method:     model.MethodML,
		Rationale:  "description embedding near category centroid",
	}, nil
}

// Close releases the underlying embedder.
func (c *Classifier) Close() error {
	return c.embedder.Close()
}

func meanVector(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	out := make([]float32, dim)
	for _, vec := range vectors {
		for d := 0; d < dim && d < len(vec); d++ {
			out[d] += vec[d]
		}
	}
	inv := 1.0 / float32(len(vectors))
	for d := range out {
		out[d] *= inv
	}
	return out
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
