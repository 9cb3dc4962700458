// Package learned implements the statistical classifier that scores
// transactions against per-category profiles built from the user's own
// classified history.
package learned

import (
	"math"
	"sort"
	"time"

	"github.com/oskarw/kassa/internal/lexicon"
	"github.com/oskarw/kassa/internal/model"
)

// maxCommonWords bounds how many high-frequency tokens a category profile
// keeps for scoring.
const maxCommonWords = 10

// CategoryProfile is the statistical summary for one category: which tokens
// its transactions use and how, and the amount range they fall in.
type CategoryProfile struct {
	TokenFreq   map[string]float64 // normalized token -> relative frequency
	CommonWords []string           // top tokens seen more than once, by frequency
	Category    string
	CategoryID  int64
	MeanAmount  float64
	StdAmount   float64
	MinAmount   float64
	MaxAmount   float64
	SampleCount int
}

// Profile is an immutable snapshot of every category's statistics. It is
// rebuilt as a whole and swapped in atomically, never patched in place, so
// concurrent readers always see a consistent view.
type Profile struct {
	BuiltAt    time.Time
	Categories map[string]*CategoryProfile
}

// Empty reports whether the profile has no trained categories.
func (p *Profile) Empty() bool {
	return p == nil || len(p.Categories) == 0
}

// BuildProfile derives a fresh Profile from classified transactions.
// Transactions referencing a category missing from the catalog are skipped,
// so a profile never references a category that does not exist. Categories
// with fewer than minSamples transactions are excluded entirely to avoid
// overfitting on noise.
func BuildProfile(transactions []model.Transaction, categories []model.Category, minSamples int) *Profile {
	if minSamples < 1 {
		minSamples = 1
	}

	byID := make(map[int64]model.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	type accum struct {
		tokens  map[string]int
		amounts []float64
	}
	data := make(map[int64]*accum)

	for _, txn := range transactions {
		if txn.CategoryID == nil {
			continue
		}
		cat, ok := byID[*txn.CategoryID]
		if !ok {
			continue
		}
		tokens := lexicon.Tokenize(txn.Description)
		if len(tokens) == 0 {
			continue
		}

		a := data[cat.ID]
		if a == nil {
			a = &accum{tokens: make(map[string]int)}
			data[cat.ID] = a
		}
		for _, t := range tokens {
			a.tokens[t]++
		}
		a.amounts = append(a.amounts, txn.AmountValue())
	}

	profiles := make(map[string]*CategoryProfile)
	for id, a := range data {
		if len(a.amounts) < minSamples {
			continue
		}
		cat := byID[id]
		profiles[cat.Name] = buildCategoryProfile(cat, a.tokens, a.amounts)
	}

	return &Profile{BuiltAt: time.Now(), Categories: profiles}
}

func buildCategoryProfile(cat model.Category, tokenCounts map[string]int, amounts []float64) *CategoryProfile {
	total := 0
	for _, n := range tokenCounts {
		total += n
	}

	freq := make(map[string]float64, len(tokenCounts))
	for token, n := range tokenCounts {
		freq[token] = float64(n) / float64(total)
	}

	// Tokens seen more than once, most frequent first.
	var common []string
	for token, n := range tokenCounts {
		if n > 1 {
			common = append(common, token)
		}
	}
	sort.Slice(common, func(i, j int) bool {
		if tokenCounts[common[i]] != tokenCounts[common[j]] {
			return tokenCounts[common[i]] > tokenCounts[common[j]]
		}
		return common[i] < common[j]
	})
	if len(common) > maxCommonWords {
		common = common[:maxCommonWords]
	}

	mean, std := meanStd(amounts)
	minAmt, maxAmt := amounts[0], amounts[0]
	for _, v := range amounts[1:] {
		if v < minAmt {
			minAmt = v
		}
		if v > maxAmt {
			maxAmt = v
		}
	}

	return &CategoryProfile{
		Category:    cat.Name,
		CategoryID:  cat.ID,
		TokenFreq:   freq,
		CommonWords: common,
		MeanAmount:  mean,
		StdAmount:   std,
		MinAmount:   minAmt,
		MaxAmount:   maxAmt,
		SampleCount: len(amounts),
	}
}

func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	if len(values) < 2 {
		return mean, 0
	}
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
