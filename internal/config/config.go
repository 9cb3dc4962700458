package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/oskarw/kassa/internal/common"
	"github.com/oskarw/kassa/internal/model"
)

// Config is the full application configuration, resolved from the config
// file, environment variables and flags.
type Config struct {
	Database       DatabaseConfig
	Logging        LoggingConfig
	Classification ClassificationConfig
	Inference      InferenceConfig
	Embedding      EmbeddingConfig
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string
	Format string
}

// ClassificationConfig holds the engine's decision policy.
type ClassificationConfig struct {
	Floors             map[string]float64
	AutoApplyThreshold float64
	ReviewFloor        float64
	FastPathThreshold  float64
	MinProfileSamples  int
	Concurrency        int
}

// InferenceConfig configures the external language model service.
type InferenceConfig struct {
	BaseURL   string
	Model     string
	Timeout   time.Duration
	CacheTTL  time.Duration
	RateLimit int
	Enabled   bool
}

// EmbeddingConfig configures the optional local sentence encoder.
type EmbeddingConfig struct {
	ModelPath string
	VocabPath string
	Floor     float64
	Enabled   bool
}

// SetDefaults registers every recognized option with its default value.
func SetDefaults() {
	viper.SetDefault("database.path", "~/.local/share/kassa/kassa.db")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("classification.auto_apply_threshold", 0.75)
	viper.SetDefault("classification.review_floor", 0.40)
	viper.SetDefault("classification.fast_path_threshold", 0.85)
	viper.SetDefault("classification.min_profile_samples", 3)
	viper.SetDefault("classification.concurrency", 4)

	viper.SetDefault("inference.enabled", false)
	viper.SetDefault("inference.base_url", "http://localhost:11434")
	viper.SetDefault("inference.model", "mistral")
	viper.SetDefault("inference.adapter_timeout", 15*time.Second)
	viper.SetDefault("inference.cache_ttl", 15*time.Minute)
	viper.SetDefault("inference.rate_limit", 60)

	viper.SetDefault("embedding.enabled", false)
	viper.SetDefault("embedding.floor", 0.5)
}

// Load resolves the configuration from viper and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Path: ExpandPath(viper.GetString("database.path")),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("logging.level"),
			Format: viper.GetString("logging.format"),
		},
		Classification: ClassificationConfig{
			AutoApplyThreshold: viper.GetFloat64("classification.auto_apply_threshold"),
			ReviewFloor:        viper.GetFloat64("classification.review_floor"),
			FastPathThreshold:  viper.GetFloat64("classification.fast_path_threshold"),
			MinProfileSamples:  viper.GetInt("classification.min_profile_samples"),
			Concurrency:        viper.GetInt("classification.concurrency"),
			Floors:             floatMap(viper.GetStringMap("classification.floors")),
		},
		Inference: InferenceConfig{
			Enabled:   viper.GetBool("inference.enabled"),
			BaseURL:   viper.GetString("inference.base_url"),
			Model:     viper.GetString("inference.model"),
			Timeout:   viper.GetDuration("inference.adapter_timeout"),
			CacheTTL:  viper.GetDuration("inference.cache_ttl"),
			RateLimit: viper.GetInt("inference.rate_limit"),
		},
		Embedding: EmbeddingConfig{
			Enabled:   viper.GetBool("embedding.enabled"),
			ModelPath: ExpandPath(viper.GetString("embedding.model_path")),
			VocabPath: ExpandPath(viper.GetString("embedding.vocab_path")),
			Floor:     viper.GetFloat64("embedding.floor"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configuration the engine could not run with. These are
// fatal at startup, never recovered mid-batch.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}

	cl := &c.Classification
	for name, value := range map[string]float64{
		"classification.auto_apply_threshold": cl.AutoApplyThreshold,
		"classification.review_floor":         cl.ReviewFloor,
		"classification.fast_path_threshold":  cl.FastPathThreshold,
	} {
		if value < 0 || value > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %.2f",
				common.ErrInvalidConfig, name, value)
		}
	}
	if cl.ReviewFloor > cl.AutoApplyThreshold {
		return fmt.Errorf("%w: review floor %.2f exceeds auto-apply threshold %.2f",
			common.ErrInvalidConfig, cl.ReviewFloor, cl.AutoApplyThreshold)
	}
	if cl.MinProfileSamples < 1 {
		return fmt.Errorf("%w: classification.min_profile_samples must be at least 1",
			common.ErrInvalidConfig)
	}
	if cl.Concurrency < 1 {
		return fmt.Errorf("%w: classification.concurrency must be at least 1",
			common.ErrInvalidConfig)
	}
	for method, floor := range cl.Floors {
		if !model.ClassificationMethod(method).Valid() {
			return fmt.Errorf("%w: confidence floor for unknown method %q",
				common.ErrInvalidConfig, method)
		}
		if floor < 0 || floor > 1 {
			return fmt.Errorf("%w: confidence floor for %s must be in [0,1], got %.2f",
				common.ErrInvalidConfig, method, floor)
		}
	}

	if c.Inference.Enabled {
		if c.Inference.Model == "" {
			return fmt.Errorf("%w: inference.model", common.ErrMissingConfig)
		}
		if c.Inference.Timeout <= 0 {
			return fmt.Errorf("%w: inference.adapter_timeout must be positive",
				common.ErrInvalidConfig)
		}
	}

	if c.Embedding.Enabled {
		if c.Embedding.ModelPath == "" {
			return fmt.Errorf("%w: embedding.model_path", common.ErrMissingConfig)
		}
		if c.Embedding.VocabPath == "" {
			return fmt.Errorf("%w: embedding.vocab_path", common.ErrMissingConfig)
		}
	}

	return nil
}

// MethodFloors converts the configured floors to engine keys.
func (c *ClassificationConfig) MethodFloors() map[model.ClassificationMethod]float64 {
	if len(c.Floors) == 0 {
		return nil
	}
	floors := make(map[model.ClassificationMethod]float64, len(c.Floors))
	for method, floor := range c.Floors {
		floors[model.ClassificationMethod(method)] = floor
	}
	return floors
}

func floatMap(raw map[string]any) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]float64, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case float64:
			out[key] = v
		case int:
			out[key] = float64(v)
		}
	}
	return out
}
