package summarizer

import (
	"context"
	"fmt"

	"content-summarizer/internal/resilience/circuitbreaker"
)

// Provider names accepted by New.
const (
	ProviderHuggingFace = "huggingface"
	ProviderOpenAI      = "openai"
	ProviderClaude      = "claude"
	ProviderGemini      = "gemini"
	ProviderNoOp        = "noop"
)

// Backend is a summary.Model with the metadata the service needs for cache
// namespacing and health reporting.
type Backend interface {
	Summarize(ctx context.Context, text string) (string, error)
	Provider() string
	Model() string
	// CircuitBreaker returns nil for backends without one.
	CircuitBreaker() *circuitbreaker.CircuitBreaker
}

// New creates the backend named by provider.
// Backends holding resources (Gemini) also implement io.Closer.
func New(ctx context.Context, provider string, opts Options) (Backend, error) {
	if opts.Generation != (GenerationConfig{}) {
		if err := opts.Generation.Validate(); err != nil {
			return nil, fmt.Errorf("invalid generation config: %w", err)
		}
	}

	switch provider {
	case ProviderHuggingFace, "":
		return NewHuggingFace(opts), nil
	case ProviderOpenAI:
		b, err := NewOpenAI(opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	case ProviderClaude:
		b, err := NewClaude(opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	case ProviderGemini:
		b, err := NewGemini(ctx, opts)
		if err != nil {
			return nil, err
		}
		return b, nil
	case ProviderNoOp:
		return NewNoOp(opts.Generation), nil
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", provider)
	}
}

var (
	_ Backend = (*HuggingFace)(nil)
	_ Backend = (*OpenAI)(nil)
	_ Backend = (*Claude)(nil)
	_ Backend = (*Gemini)(nil)
	_ Backend = (*NoOp)(nil)
)
