// Package engine combines the classification strategies into one
// confidence-ranked decision per transaction and applies that decision in
// bulk.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oskarw/kassa/internal/model"
	"github.com/oskarw/kassa/internal/service"
)

// Default per-strategy confidence floors. A suggestion below its strategy's
// floor never wins, regardless of what the other strategies produced.
const (
	DefaultRuleFloor    = 0.9
	DefaultLearnedFloor = 0.4
	DefaultMLFloor      = 0.5
	DefaultLLMFloor     = 0.5
)

// DefaultMinProfileSamples is the minimum confirmed transactions a category
// needs before the learning strategies train on it.
const DefaultMinProfileSamples = 3

// Config holds orchestration options.
type Config struct {
	Floors            map[model.ClassificationMethod]float64
	FastPathThreshold float64
	MinProfileSamples int
}

// DefaultConfig returns the default orchestration configuration.
func DefaultConfig() Config {
	return Config{
		Floors: map[model.ClassificationMethod]float64{
			model.MethodRule:    DefaultRuleFloor,
			model.MethodLearned: DefaultLearnedFloor,
			model.MethodML:      DefaultMLFloor,
			model.MethodLLM:     DefaultLLMFloor,
		},
		FastPathThreshold: DefaultFastPathThreshold,
		MinProfileSamples: DefaultMinProfileSamples,
	}
}

// Engine orchestrates the classification strategies for single transactions.
// Strategies are strictly prioritized: the pattern classifier first, then the
// slow strategies in the order given. The first strategy whose suggestion
// clears its own floor wins outright, even when a lower-priority strategy
// would have reported a higher raw confidence. Priority reflects trust in
// the method, not score comparison.
type Engine struct {
	storage service.Storage
	pattern Strategy
	floors  map[model.ClassificationMethod]float64
	logger  *slog.Logger
	slow    []Strategy
	router  Router

	minProfileSamples int
}

// New creates an engine. pattern is the fast local strategy consulted for
// every transaction; slow holds the remaining strategies in priority order
// and is only consulted when the router escalates.
func New(storage service.Storage, pattern Strategy, slow []Strategy, cfg Config, logger *slog.Logger) (*Engine, error) {
	if pattern == nil {
		return nil, fmt.Errorf("engine requires a pattern strategy")
	}

	defaults := DefaultConfig()
	floors := defaults.Floors
	for method, floor := range cfg.Floors {
		if !method.Valid() {
			return nil, fmt.Errorf("confidence floor for unknown method %q", method)
		}
		if floor < 0 || floor > 1 {
			return nil, fmt.Errorf("confidence floor for %s must be in [0,1], got %.2f", method, floor)
		}
		floors[method] = floor
	}

	minSamples := cfg.MinProfileSamples
	if minSamples <= 0 {
		minSamples = defaults.MinProfileSamples
	}

	return &Engine{
		storage:           storage,
		pattern:           pattern,
		slow:              slow,
		router:            NewRouter(cfg.FastPathThreshold),
		floors:            floors,
		logger:            logger,
		minProfileSamples: minSamples,
	}, nil
}

// Classify runs the strategy chain for one transaction. The returned result
// retains every suggestion considered, in strategy priority order, for audit.
// An unresolved result means no strategy cleared its floor and the
// transaction stays uncategorized. Strategy failures are logged and treated
// as no suggestion; only context cancellation aborts.
func (e *Engine) Classify(ctx context.Context, txn model.Transaction) (*model.Result, error) {
	var considered []model.Suggestion

	patternSug := e.runStrategy(ctx, e.pattern, txn)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if patternSug != nil {
		considered = append(considered, *patternSug)
	}

	if e.router.ShouldEscalate(patternSug) {
		for _, strategy := range e.slow {
			sug := e.runStrategy(ctx, strategy, txn)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if sug != nil {
				considered = append(considered, *sug)
			}
		}
	}

	result := &model.Result{Considered: considered}
	if winner := e.pickWinner(considered); winner != nil {
		result.Winner = *winner
	}
	return result, nil
}

// RebuildProfiles retrains every strategy that learns from history, using all
// confirmed transactions in storage. Called before a batch run so the
// learning strategies see the latest confirmations.
func (e *Engine) RebuildProfiles(ctx context.Context) error {
	transactions, err := e.storage.GetClassifiedTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load classified transactions: %w", err)
	}
	categories, err := e.storage.GetCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	for _, strategy := range append([]Strategy{e.pattern}, e.slow...) {
		rebuilder, ok := strategy.(Rebuilder)
		if !ok {
			continue
		}
		if err := rebuilder.RebuildFrom(ctx, transactions, categories, e.minProfileSamples); err != nil {
			return fmt.Errorf("failed to rebuild %s profile: %w", strategy.Method(), err)
		}
		e.logger.Info("strategy profile rebuilt",
			"method", strategy.Method(),
			"training_transactions", len(transactions))
	}
	return nil
}

// runStrategy executes one strategy, converting failures into no suggestion.
func (e *Engine) runStrategy(ctx context.Context, strategy Strategy, txn model.Transaction) *model.Suggestion {
	sug, err := strategy.Classify(ctx, txn)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		e.logger.Warn("strategy failed",
			"method", strategy.Method(),
			"transaction_id", txn.ID,
			"error", err)
		return nil
	}
	return sug
}

// pickWinner returns the first suggestion, in priority order, whose
// confidence clears its own strategy's floor. considered is already in
// priority order because the strategies run that way.
func (e *Engine) pickWinner(considered []model.Suggestion) *model.Suggestion {
	for i := range considered {
		sug := &considered[i]
		if sug.Confidence >= e.floors[sug.Method] {
			return sug
		}
	}
	return nil
}
