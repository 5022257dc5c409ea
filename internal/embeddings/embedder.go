// Package embeddings provides embedding generation for chunks and queries.
//
// The embedding model is an external capability: answerd owns none of its
// internals and only depends on the Embedder interface. Providers are
// expensive, long-lived singletons constructed once at process start and
// shared read-only across all tenants and requests.
package embeddings

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrDimensionMismatch indicates the provider returned a vector of an
	// unexpected dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Embedder generates vector embeddings from text.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts, one vector
	// per input text.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Config holds configuration for embedding providers.
type Config struct {
	// Provider selects the backend: "tei" or "openai".
	Provider string

	// BaseURL is the base URL for the embedding API.
	BaseURL string

	// Model is the embedding model name.
	Model string

	// APIKey is the API key (required for OpenAI, optional for TEI).
	APIKey string
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL required", ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: model required", ErrInvalidConfig)
	}
	return nil
}

// New constructs the provider named by the config.
func New(config Config) (Embedder, error) {
	switch config.Provider {
	case "", "tei":
		return NewTEI(config)
	case "openai":
		return NewLangchain(config)
	default:
		return nil, fmt.Errorf("%w: unknown embeddings provider %q", ErrInvalidConfig, config.Provider)
	}
}

// ValidateDimensions checks that every vector has the expected dimension.
// A zero expected dimension disables the check.
func ValidateDimensions(vectors [][]float32, expected int) error {
	if expected <= 0 {
		return nil
	}
	for i, v := range vectors {
		if len(v) != expected {
			return fmt.Errorf("%w: vector %d has dimension %d, expected %d",
				ErrDimensionMismatch, i, len(v), expected)
		}
	}
	return nil
}
