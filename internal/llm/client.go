// Package llm wraps the text-generation and embedding providers behind one
// small interface and holds helpers for reading untrusted model output.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/deusflow/headlines/internal/config"
)

// Temperature is used for every completion.
const Temperature float32 = 0.2

// ErrMissingAPIKey is returned when the configured provider has no key.
var ErrMissingAPIKey = errors.New("missing API key")

// Generator produces text from a system instruction and a user prompt.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Embedder returns one vector per input string, order-preserving.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// Client is everything the aggregation pipeline needs from a provider.
type Client interface {
	Generator
	Embedder
	Close() error
}

// NewFromConfig builds the client for cfg.Provider.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAISummaryModel, cfg.OpenAIEmbeddingModel)
	case config.ProviderGemini, "":
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiSummaryModel, cfg.GeminiEmbeddingModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
