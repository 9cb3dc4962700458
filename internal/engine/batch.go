package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oskarw/kassa/internal/common"
	"github.com/oskarw/kassa/internal/model"
)

// Default batch policy thresholds. Both bounds are inclusive: a confidence
// exactly at the auto-apply threshold is applied, and one exactly at the
// review floor is still suggested.
const (
	DefaultAutoApplyThreshold = 0.75
	DefaultReviewFloor        = 0.40
	DefaultBatchConcurrency   = 4
)

// maxReviewSuggestions bounds how many considered suggestions a review item
// carries; reviewers only ever look at the top few.
const maxReviewSuggestions = 3

// BatchConfig holds the decision policy for a batch run.
type BatchConfig struct {
	AutoApplyThreshold float64
	ReviewFloor        float64
	Concurrency        int
}

// DefaultBatchConfig returns the default batch policy.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		AutoApplyThreshold: DefaultAutoApplyThreshold,
		ReviewFloor:        DefaultReviewFloor,
		Concurrency:        DefaultBatchConcurrency,
	}
}

func (c *BatchConfig) validate() error {
	if c.AutoApplyThreshold < 0 || c.AutoApplyThreshold > 1 {
		return fmt.Errorf("%w: auto-apply threshold must be in [0,1], got %.2f",
			common.ErrInvalidConfig, c.AutoApplyThreshold)
	}
	if c.ReviewFloor < 0 || c.ReviewFloor > 1 {
		return fmt.Errorf("%w: review floor must be in [0,1], got %.2f",
			common.ErrInvalidConfig, c.ReviewFloor)
	}
	if c.ReviewFloor > c.AutoApplyThreshold {
		return fmt.Errorf("%w: review floor %.2f exceeds auto-apply threshold %.2f",
			common.ErrInvalidConfig, c.ReviewFloor, c.AutoApplyThreshold)
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultBatchConcurrency
	}
	return nil
}

// ProgressFunc is called after each transaction finishes, with the number
// completed so far and the total.
type ProgressFunc func(done, total int)

// per-transaction batch outcome
type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeAuto
	outcomeReview
	outcomeFailed
)

type batchResult struct {
	review  *model.ReviewSuggestion
	outcome outcome
}

// ClassifyBatch runs the full strategy chain over the given transactions and
// applies the three-way decision policy: confidence at or above the
// auto-apply threshold is assigned immediately, confidence at or above the
// review floor becomes a suggestion for manual confirmation, and anything
// below is left untouched. One transaction failing never aborts the run; the
// failure is counted and the run continues. Only context cancellation stops
// a run early, and even then the partial report is returned.
func (e *Engine) ClassifyBatch(ctx context.Context, transactions []model.Transaction, cfg BatchConfig, progress ProgressFunc) (*model.BatchReport, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	report := &model.BatchReport{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	e.logger.Info("batch classification started",
		"run_id", report.RunID,
		"transactions", len(transactions),
		"auto_apply_threshold", cfg.AutoApplyThreshold,
		"review_floor", cfg.ReviewFloor)

	slots := make([]batchResult, len(transactions))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	sem := make(chan struct{}, cfg.Concurrency)

	for i := range transactions {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			slots[i] = e.classifyOne(ctx, transactions[i], cfg)

			mu.Lock()
			done++
			if progress != nil {
				progress(done, len(transactions))
			}
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	for i := range slots {
		switch slots[i].outcome {
		case outcomeAuto:
			report.AutoCount++
		case outcomeReview:
			report.Suggestions = append(report.Suggestions, *slots[i].review)
		case outcomeFailed:
			report.FailedCount++
		default:
			report.SkippedCount++
		}
	}
	report.Duration = time.Since(report.StartedAt)

	e.logger.Info("batch classification finished",
		"run_id", report.RunID,
		"auto_applied", report.AutoCount,
		"for_review", len(report.Suggestions),
		"skipped", report.SkippedCount,
		"failed", report.FailedCount,
		"duration", report.Duration)

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// ClassifyPending fetches every uncategorized transaction and runs
// ClassifyBatch over it. Running it twice in a row is harmless: transactions
// assigned in the first run are no longer pending in the second.
func (e *Engine) ClassifyPending(ctx context.Context, cfg BatchConfig, progress ProgressFunc) (*model.BatchReport, error) {
	transactions, err := e.storage.GetUncategorizedTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending transactions: %w", err)
	}
	return e.ClassifyBatch(ctx, transactions, cfg, progress)
}

func (e *Engine) classifyOne(ctx context.Context, txn model.Transaction, cfg BatchConfig) (s batchResult) {
	result, err := e.Classify(ctx, txn)
	if err != nil {
		s.outcome = outcomeFailed
		return s
	}
	if !result.Resolved() {
		s.outcome = outcomeSkipped
		return s
	}

	winner := result.Winner
	switch {
	case winner.Confidence >= cfg.AutoApplyThreshold:
		err := e.storage.AssignCategory(ctx, txn.ID, winner.CategoryID, winner.Confidence, winner.Method)
		if err != nil {
			e.logger.Warn("failed to apply classification",
				"transaction_id", txn.ID,
				"category", winner.Category,
				"error", err)
			s.outcome = outcomeFailed
			return s
		}
		e.logger.Debug("classification applied",
			"transaction_id", txn.ID,
			"category", winner.Category,
			"confidence", winner.Confidence,
			"method", winner.Method)
		s.outcome = outcomeAuto
	case winner.Confidence >= cfg.ReviewFloor:
		considered := result.Considered
		if len(considered) > maxReviewSuggestions {
			considered = considered[:maxReviewSuggestions]
		}
		s.outcome = outcomeReview
		s.review = &model.ReviewSuggestion{
			Transaction: txn,
			Suggested:   winner,
			Considered:  considered,
		}
	default:
		s.outcome = outcomeSkipped
	}
	return s
}
