package learned

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"github.com/oskarw/kassa/internal/lexicon"
	"github.com/oskarw/kassa/internal/model"
)

// Scoring weights and bounds. Token overlap dominates, amount proximity
// refines, and a small boost rewards categories with more training data.
const (
	wordWeight    = 0.7
	amountWeight  = 0.3
	maxBoost      = 0.1
	boostDivisor  = 100.0
	confidenceCap = 0.95

	// DefaultFloor is the minimum evidence required to emit a suggestion.
	DefaultFloor = 0.4
)

// Classifier scores transactions against the current Profile snapshot.
// The profile is replaced wholesale via SetProfile; concurrent Classify
// calls always read one consistent snapshot.
type Classifier struct {
	profile atomic.Pointer[Profile]
	floor   float64
}

// NewClassifier creates a learned classifier with the given evidence floor.
// A floor of zero selects DefaultFloor.
func NewClassifier(floor float64) *Classifier {
	if floor <= 0 {
		floor = DefaultFloor
	}
	c := &Classifier{floor: floor}
	c.profile.Store(&Profile{})
	return c
}

// Method identifies suggestions produced by this strategy.
func (c *Classifier) Method() model.ClassificationMethod {
	return model.MethodLearned
}

// SetProfile swaps in a freshly built profile snapshot.
func (c *Classifier) SetProfile(p *Profile) {
	if p == nil {
		p = &Profile{}
	}
	c.profile.Store(p)
}

// Profile returns the current snapshot.
func (c *Classifier) Profile() *Profile {
	return c.profile.Load()
}

// RebuildFrom builds a new profile from confirmed transactions and swaps it
// in atomically.
func (c *Classifier) RebuildFrom(ctx context.Context, transactions []model.Transaction, categories []model.Category, minSamples int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.SetProfile(BuildProfile(transactions, categories, minSamples))
	return nil
}

// Classify scores the transaction against every trained category and emits
// the best one if its normalized confidence clears the evidence floor. An
// empty profile or an empty description yields no suggestion, never an error.
func (c *Classifier) Classify(_ context.Context, txn model.Transaction) (*model.Suggestion, error) {
	profile := c.profile.Load()
	if profile.Empty() {
		return nil, nil
	}

	tokens := lexicon.Tokenize(txn.Description)
	if len(tokens) == 0 {
		return nil, nil
	}
	tokenSet := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = struct{}{}
	}

	amount := txn.AmountValue()

	// Iterate in name order so equal scores break ties deterministically.
	names := make([]string, 0, len(profile.Categories))
	for name := range profile.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	var best *CategoryProfile
	var bestScore, sum float64
	for _, name := range names {
		cp := profile.Categories[name]
		score := scoreCategory(cp, tokenSet, amount)
		sum += score
		if score > bestScore {
			bestScore = score
			best = cp
		}
	}

	if best == nil || bestScore == 0 {
		return nil, nil
	}

	// Normalize across categories: a score that towers over the rest keeps
	// its value, competing categories drag the confidence down.
	confidence := bestScore
	if sum > 1 {
		confidence = bestScore / sum
	}
	if confidence > confidenceCap {
		confidence = confidenceCap
	}
	if confidence < c.floor {
		return nil, nil
	}

	return &model.Suggestion{
		Category:   best.Category,
		CategoryID: best.CategoryID,
		Confidence: confidence,
		Method:     model.MethodLearned,
		Rationale:  fmt.Sprintf("matched %d of %d profile keywords over %d samples", countMatches(best, tokenSet), len(best.CommonWords), best.SampleCount),
	}, nil
}

// scoreCategory combines token overlap, amount proximity, and a training
// volume boost into one raw score.
func scoreCategory(cp *CategoryProfile, tokens map[string]struct{}, amount float64) float64 {
	var score float64

	if len(cp.CommonWords) > 0 {
		matched := countMatches(cp, tokens)
		score += wordWeight * float64(matched) / float64(len(cp.CommonWords))
	}

	if cp.StdAmount > 0 {
		diff := math.Abs(amount - cp.MeanAmount)
		amountScore := 1 - diff/(cp.StdAmount*2)
		if amountScore > 0 {
			score += amountWeight * amountScore
		}
	} else if amount >= cp.MinAmount && amount <= cp.MaxAmount {
		// Degenerate range: every training amount was identical.
		score += amountWeight
	}

	if score > 0 {
		boost := float64(cp.SampleCount) / boostDivisor
		if boost > maxBoost {
			boost = maxBoost
		}
		score += boost
	}

	return score
}

func countMatches(cp *CategoryProfile, tokens map[string]struct{}) int {
	matched := 0
	for _, w := range cp.CommonWords {
		if _, ok := tokens[w]; ok {
			matched++
		}
	}
	return matched
}
