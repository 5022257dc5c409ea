// Package config provides configuration loading for answerd.
//
// Configuration is loaded from an optional YAML file and then overridden by
// environment variables. Every similarity threshold used by the match cascade
// lives here rather than as a constant in the code that applies it.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidConfig indicates an invalid configuration value.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds the complete answerd configuration.
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Chunker    ChunkerConfig    `koanf:"chunker"`
	Embeddings EmbeddingsConfig `koanf:"embeddings"`
	Generator  GeneratorConfig  `koanf:"generator"`
	Index      IndexConfig      `koanf:"index"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Cascade    CascadeConfig    `koanf:"cascade"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `koanf:"level"`

	// Format selects the encoder: json or console.
	Format string `koanf:"format"`
}

// ChunkerConfig holds document chunking configuration.
type ChunkerConfig struct {
	// TargetSize is the soft chunk size limit in characters. A chunk is
	// flushed when appending the next sentence would exceed it.
	TargetSize int `koanf:"target_size"`
}

// EmbeddingsConfig holds embedding provider configuration.
type EmbeddingsConfig struct {
	// Provider selects the embedder: tei or openai.
	Provider string `koanf:"provider"`

	// BaseURL is the base URL for the embedding API.
	BaseURL string `koanf:"base_url"`

	// Model is the embedding model name.
	Model string `koanf:"model"`

	// VectorSize is the expected embedding dimension. Build and load both
	// reject vectors of any other dimension.
	VectorSize int `koanf:"vector_size"`
}

// GeneratorConfig holds generative-fallback configuration.
type GeneratorConfig struct {
	// Provider selects the generator backend: ollama or openai.
	// Empty disables the generative tier (a fixed apology is used instead).
	Provider string `koanf:"provider"`

	// Model is the generation model name.
	Model string `koanf:"model"`

	// BaseURL overrides the provider's default server URL.
	BaseURL string `koanf:"base_url"`

	// Timeout bounds a single generation call. On expiry the cascade
	// substitutes the fixed apology text.
	Timeout time.Duration `koanf:"timeout"`

	// RatePerSecond throttles generation calls across all tenants.
	RatePerSecond float64 `koanf:"rate_per_second"`
}

// IndexConfig holds the on-disk index store configuration.
type IndexConfig struct {
	// Path is the directory holding persisted index artifacts.
	Path string `koanf:"path"`

	// TopK is the number of neighbors retrieved by the vector tier.
	TopK int `koanf:"top_k"`
}

// CatalogConfig holds tenant catalog configuration.
type CatalogConfig struct {
	// EntriesPath is a directory of per-tenant knowledge-base entry files
	// (JSON lists of {question, answer, category}). Empty disables loading.
	EntriesPath string `koanf:"entries_path"`

	// Watch enables reloading entry files when they change on disk.
	Watch bool `koanf:"watch"`
}

// CascadeConfig holds the per-tier acceptance thresholds.
//
// The defaults mirror the tuned values the cascade shipped with, but they
// are plain configuration: only the tier ordering is load-bearing.
type CascadeConfig struct {
	// GreetingThreshold is the minimum pattern score for the small-talk
	// tier. Kept high so business answers never shadow conversational ones.
	GreetingThreshold float64 `koanf:"greeting_threshold"`

	// ConversationThreshold is the minimum pattern score for the general
	// conversational tier, which runs across all categories.
	ConversationThreshold float64 `koanf:"conversation_threshold"`

	// KBThreshold is the minimum fuzzy-match score for the exact
	// knowledge-base tier.
	KBThreshold float64 `koanf:"kb_threshold"`

	// SubstringScore is the score assigned to bidirectional substring
	// containment during pattern matching.
	SubstringScore float64 `koanf:"substring_score"`

	// MinChunkLength rejects retrieved chunks shorter than this many
	// characters as fragment noise.
	MinChunkLength int `koanf:"min_chunk_length"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Chunker.TargetSize == 0 {
		c.Chunker.TargetSize = 500
	}
	if c.Embeddings.Provider == "" {
		c.Embeddings.Provider = "tei"
	}
	if c.Embeddings.BaseURL == "" {
		c.Embeddings.BaseURL = "http://localhost:8080"
	}
	if c.Embeddings.Model == "" {
		c.Embeddings.Model = "BAAI/bge-small-en-v1.5"
	}
	if c.Embeddings.VectorSize == 0 {
		c.Embeddings.VectorSize = 384
	}
	if c.Generator.Model == "" {
		c.Generator.Model = "llama3"
	}
	if c.Generator.Timeout == 0 {
		c.Generator.Timeout = 15 * time.Second
	}
	if c.Generator.RatePerSecond == 0 {
		c.Generator.RatePerSecond = 2
	}
	if c.Index.Path == "" {
		c.Index.Path = "~/.config/answerd/indices"
	}
	if c.Index.TopK == 0 {
		c.Index.TopK = 3
	}
	if c.Cascade.GreetingThreshold == 0 {
		c.Cascade.GreetingThreshold = 0.7
	}
	if c.Cascade.ConversationThreshold == 0 {
		c.Cascade.ConversationThreshold = 0.5
	}
	if c.Cascade.KBThreshold == 0 {
		c.Cascade.KBThreshold = 0.4
	}
	if c.Cascade.SubstringScore == 0 {
		c.Cascade.SubstringScore = 0.9
	}
	if c.Cascade.MinChunkLength == 0 {
		c.Cascade.MinChunkLength = 20
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: unknown logging format %q", ErrInvalidConfig, c.Logging.Format)
	}
	if c.Chunker.TargetSize <= 0 {
		return fmt.Errorf("%w: chunker target size must be positive", ErrInvalidConfig)
	}
	if c.Embeddings.VectorSize <= 0 {
		return fmt.Errorf("%w: embedding vector size must be positive", ErrInvalidConfig)
	}
	if c.Index.TopK <= 0 {
		return fmt.Errorf("%w: index top_k must be positive", ErrInvalidConfig)
	}
	if c.Generator.Timeout < 0 {
		return fmt.Errorf("%w: generator timeout cannot be negative", ErrInvalidConfig)
	}
	if c.Generator.RatePerSecond <= 0 {
		return fmt.Errorf("%w: generator rate_per_second must be positive", ErrInvalidConfig)
	}
	for _, t := range []struct {
		name  string
		value float64
	}{
		{"greeting_threshold", c.Cascade.GreetingThreshold},
		{"conversation_threshold", c.Cascade.ConversationThreshold},
		{"kb_threshold", c.Cascade.KBThreshold},
		{"substring_score", c.Cascade.SubstringScore},
	} {
		if t.value < 0 || t.value > 1 {
			return fmt.Errorf("%w: cascade %s must be in [0, 1], got %v", ErrInvalidConfig, t.name, t.value)
		}
	}
	if c.Cascade.MinChunkLength < 0 {
		return fmt.Errorf("%w: cascade min_chunk_length cannot be negative", ErrInvalidConfig)
	}
	return nil
}
