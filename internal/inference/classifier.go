package inference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oskarw/kassa/internal/common"
	"github.com/oskarw/kassa/internal/model"
)

// confidenceCeiling caps the confidence reported by the external service.
// The service is free-text and self-graded, so its scores are never allowed
// to outrank the deterministic strategies.
const confidenceCeiling = 0.85

// minDescriptionLength is the shortest description worth sending out. Anything
// below it carries no usable signal and would only burn a request.
const minDescriptionLength = 3

// Config holds configuration for the external inference classifier.
type Config struct {
	BaseURL        string
	Model          string
	RequestTimeout time.Duration
	CacheTTL       time.Duration
	RateLimit      int
	MaxRetries     int
	RetryDelay     time.Duration
}

// Classifier suggests categories by prompting a locally hosted language
// model service. It implements engine.Strategy.
type Classifier struct {
	client      Client
	cache       *suggestionCache
	logger      *slog.Logger
	rateLimiter *rateLimiter
	categories  map[string]int64
	names       []string
	timeout     time.Duration
	retryOpts   common.RetryOptions
}

// NewClassifier creates a classifier backed by the given service. categories
// is the catalog the service may choose from; responses naming anything else
// are discarded.
func NewClassifier(cfg Config, categories []model.Category, logger *slog.Logger) (*Classifier, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: inference model name is required", common.ErrMissingConfig)
	}
	client := newOllamaClient(cfg.BaseURL, cfg.Model)
	return newClassifierWithClient(cfg, client, categories, logger), nil
}

func newClassifierWithClient(cfg Config, client Client, categories []model.Category, logger *slog.Logger) *Classifier {
	byName := make(map[string]int64, len(categories))
	names := make([]string, 0, len(categories))
	for _, cat := range categories {
		byName[cat.Name] = cat.ID
		names = append(names, cat.Name)
	}

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	retryOpts := common.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Classifier{
		client:      client,
		cache:       newSuggestionCache(cfg.CacheTTL),
		logger:      logger,
		rateLimiter: newRateLimiter(cfg.RateLimit),
		categories:  byName,
		names:       names,
		timeout:     timeout,
		retryOpts:   retryOpts,
	}
}

// Method reports how this classifier's suggestions are attributed.
func (c *Classifier) Method() model.ClassificationMethod {
	return model.MethodLLM
}

// CheckAvailable verifies the service is reachable and serves the configured
// model. Called once at startup; the probe is retried with backoff because a
// locally managed service may still be warming up.
func (c *Classifier) CheckAvailable(ctx context.Context) error {
	return common.WithRetry(ctx, func() error {
		if err := c.client.CheckAvailable(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: true}
		}
		return nil
	}, c.retryOpts)
}

// Classify asks the external service for a suggestion. Service trouble of any
// kind is logged and reported as "no suggestion", never as an error; the
// service being down must not take classification down with it.
func (c *Classifier) Classify(ctx context.Context, txn model.Transaction) (*model.Suggestion, error) {
	description := strings.TrimSpace(txn.Description)
	if len([]rune(description)) < minDescriptionLength {
		return nil, nil
	}

	amount := txn.AmountValue()
	key := cacheKey(description, amount)
	if suggestion, found := c.cache.get(key); found {
		c.logger.Debug("inference cache hit",
			"transaction_id", txn.ID,
			"category", suggestion.Category)
		return &suggestion, nil
	}

	if err := c.rateLimiter.wait(ctx); err != nil {
		c.logger.Warn("inference rate limit wait aborted",
			"transaction_id", txn.ID,
			"error", err)
		return nil, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := c.client.Generate(reqCtx, c.buildPrompt(description, amount))
	if err != nil {
		c.logger.Warn("inference request failed",
			"transaction_id", txn.ID,
			"error", err)
		return nil, nil
	}

	category, categoryID, confidence, ok := parseResponse(response, c.categories)
	if !ok {
		c.logger.Warn("inference response unusable",
			"transaction_id", txn.ID,
			"response_length", len(response))
		return nil, nil
	}

	if confidence > confidenceCeiling {
		confidence = confidenceCeiling
	}

	suggestion := model.Suggestion{
		Category:   category,
		CategoryID: categoryID,
		Confidence: confidence,
		Method:     model.MethodLLM,
		Rationale:  fmt.Sprintf("language model matched %q", category),
	}
	c.cache.set(key, suggestion)

	return &suggestion, nil
}

// buildPrompt asks for a strict JSON answer so parsing stays trivial. The
// category list keeps the model on the catalog instead of inventing names.
func (c *Classifier) buildPrompt(description string, amount float64) string {
	var sb strings.Builder
	sb.WriteString("You categorize Swedish bank transactions.\n\n")
	fmt.Fprintf(&sb, "Transaction: %q, amount %.2f SEK.\n", description, amount)
	sb.WriteString("Choose exactly one category from this list:\n")
	for _, name := range c.names {
		fmt.Fprintf(&sb, "- %s\n", name)
	}
	sb.WriteString("\nAnswer with only JSON in the form ")
	sb.WriteString(`{"category": "<name>", "confidence": <0.0-1.0>}.`)
	sb.WriteString(` If none fits, answer {"category": null, "confidence": 0}.`)
	return sb.String()
}

// Close releases the cache and rate limiter background goroutines.
func (c *Classifier) Close() {
	c.cache.Close()
	c.rateLimiter.Close()
}
