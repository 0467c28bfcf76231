package summarizer

import (
	"context"
	"strings"

	"content-summarizer/internal/resilience/circuitbreaker"
)

// NoOp is a summarizer that returns the leading MaxLength words of its input.
// It needs no network access and is used for development and tests.
type NoOp struct {
	maxLength int
}

// NewNoOp creates a NoOp summarizer bounded by gen.MaxLength.
func NewNoOp(gen GenerationConfig) *NoOp {
	if gen.MaxLength < 1 {
		gen = DefaultGenerationConfig()
	}
	return &NoOp{maxLength: gen.MaxLength}
}

// Summarize returns the first MaxLength whitespace tokens of text.
func (n *NoOp) Summarize(_ context.Context, text string) (string, error) {
	words := strings.Fields(text)
	if len(words) > n.maxLength {
		words = words[:n.maxLength]
	}
	return strings.Join(words, " "), nil
}

// Provider implements Backend.
func (n *NoOp) Provider() string { return ProviderNoOp }

// Model implements Backend.
func (n *NoOp) Model() string { return "lead" }

// CircuitBreaker implements Backend. NoOp has no breaker.
func (n *NoOp) CircuitBreaker() *circuitbreaker.CircuitBreaker { return nil }
