package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oskarw/kassa/internal/config"
	"github.com/oskarw/kassa/internal/embedding"
	"github.com/oskarw/kassa/internal/engine"
	"github.com/oskarw/kassa/internal/inference"
	"github.com/oskarw/kassa/internal/learned"
	"github.com/oskarw/kassa/internal/lexicon"
	"github.com/oskarw/kassa/internal/model"
	"github.com/oskarw/kassa/internal/rules"
	"github.com/oskarw/kassa/internal/storage"
)

// openStorage opens the configured database and brings the schema up to
// date.
func openStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	db, err := storage.NewSQLiteStorage(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// buildEngine assembles the strategy chain from the configuration. The
// returned cleanup releases strategy resources and must run before the
// process exits.
func buildEngine(ctx context.Context, cfg *config.Config, db *storage.SQLiteStorage) (*engine.Engine, func(), error) {
	logger := slog.Default()

	categories, err := db.GetCategories(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, nil, fmt.Errorf("no categories in database, run migrations first")
	}

	catKeywords := make(map[string][]string, len(categories))
	order := make([]string, 0, len(categories))
	for _, cat := range categories {
		catKeywords[cat.Name] = cat.Keywords
		order = append(order, cat.Name)
	}

	lex := lexicon.Default().WithCategoryKeywords(catKeywords, order)
	pattern := rules.NewClassifier(lex, categories)

	floors := cfg.Classification.MethodFloors()
	learnedFloor := learned.DefaultFloor
	if floor, ok := floors[model.MethodLearned]; ok {
		learnedFloor = floor
	}

	var (
		slow     []engine.Strategy
		cleanups []func()
	)
	slow = append(slow, learned.NewClassifier(learnedFloor))

	if cfg.Embedding.Enabled {
		embedder, embErr := embedding.New(cfg.Embedding.ModelPath, cfg.Embedding.VocabPath)
		if embErr != nil {
			return nil, nil, fmt.Errorf("failed to load embedding model: %w", embErr)
		}
		ml := embedding.NewClassifier(embedder, cfg.Embedding.Floor, logger)
		slow = append(slow, ml)
		cleanups = append(cleanups, func() { _ = ml.Close() })
	}

	if cfg.Inference.Enabled {
		adapter, infErr := inference.NewClassifier(inference.Config{
			BaseURL:        cfg.Inference.BaseURL,
			Model:          cfg.Inference.Model,
			RequestTimeout: cfg.Inference.Timeout,
			CacheTTL:       cfg.Inference.CacheTTL,
			RateLimit:      cfg.Inference.RateLimit,
		}, categories, logger)
		if infErr != nil {
			return nil, nil, infErr
		}
		if probeErr := adapter.CheckAvailable(ctx); probeErr != nil {
			// A dead service would cost a full timeout per transaction, so
			// it is left out of the chain for this run.
			logger.Warn("inference service unavailable, continuing without it",
				"base_url", cfg.Inference.BaseURL,
				"error", probeErr)
			adapter.Close()
		} else {
			slow = append(slow, adapter)
			cleanups = append(cleanups, adapter.Close)
		}
	}

	eng, err := engine.New(db, pattern, slow, engine.Config{
		Floors:            floors,
		FastPathThreshold: cfg.Classification.FastPathThreshold,
		MinProfileSamples: cfg.Classification.MinProfileSamples,
	}, logger)
	if err != nil {
		for _, cleanup := range cleanups {
			cleanup()
		}
		return nil, nil, err
	}

	cleanup := func() {
		for _, fn := range cleanups {
			fn()
		}
	}
	return eng, cleanup, nil
}
