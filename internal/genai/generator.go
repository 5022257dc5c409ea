// Package genai provides the generative text capability used by the last
// cascade tier. Like the embedder, the generator is an external capability:
// a long-lived singleton injected at startup.
package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrGenerationFailed indicates the model call failed.
	ErrGenerationFailed = errors.New("text generation failed")
)

// Generator produces free text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds generator configuration.
type Config struct {
	// Provider selects the backend: "ollama" or "openai".
	Provider string

	// Model is the generation model name.
	Model string

	// BaseURL overrides the provider's default server URL.
	BaseURL string

	// APIKey is the API key (openai only).
	APIKey string
}

// New constructs the provider named by the config.
func New(config Config) (Generator, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("%w: model required", ErrInvalidConfig)
	}

	var (
		model llms.Model
		err   error
	)
	switch config.Provider {
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(config.Model)}
		if config.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(config.BaseURL))
		}
		model, err = ollama.New(opts...)
	case "openai":
		opts := []openai.Option{openai.WithModel(config.Model)}
		if config.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.BaseURL))
		}
		if config.APIKey != "" {
			opts = append(opts, openai.WithToken(config.APIKey))
		}
		model, err = openai.New(opts...)
	default:
		return nil, fmt.Errorf("%w: unknown generator provider %q", ErrInvalidConfig, config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", config.Provider, err)
	}

	return &langchainGenerator{model: model}, nil
}

// langchainGenerator adapts a langchaingo model to the Generator interface.
type langchainGenerator struct {
	model llms.Model
}

func (g *langchainGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return strings.TrimSpace(out), nil
}

var _ Generator = (*langchainGenerator)(nil)
