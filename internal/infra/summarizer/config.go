// Package summarizer provides the model backends behind summary.Model.
// The default backend runs facebook/bart-large-cnn on the Hugging Face
// Inference API; OpenAI, Claude and Gemini backends receive a prompt that
// encodes the same length bounds. Every remote backend is wrapped with a
// circuit breaker, retry with backoff, structured logging and Prometheus metrics.
package summarizer

import (
	"errors"
	"fmt"
	"time"

	"content-summarizer/internal/resilience/retry"
)

// GenerationConfig holds the fixed decoding parameters. They are set once
// from configuration and never vary per request.
type GenerationConfig struct {
	// MaxLength is the upper bound of the summary in tokens.
	MaxLength int
	// MinLength is the lower bound of the summary in tokens.
	MinLength int
	// LengthPenalty > 1 favors longer beams.
	LengthPenalty float64
	// NumBeams is the beam width; 1 means greedy decoding.
	NumBeams int
	// EarlyStopping ends the search once NumBeams candidates are finished.
	EarlyStopping bool
}

// DefaultGenerationConfig returns the bart-large-cnn decoding defaults.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		MaxLength:     150,
		MinLength:     40,
		LengthPenalty: 2.0,
		NumBeams:      4,
		EarlyStopping: true,
	}
}

// Validate checks the decoding bounds.
func (c GenerationConfig) Validate() error {
	if c.MaxLength < 1 {
		return fmt.Errorf("max length must be positive, got %d", c.MaxLength)
	}
	if c.MinLength < 0 || c.MinLength > c.MaxLength {
		return fmt.Errorf("min length %d must be between 0 and max length %d", c.MinLength, c.MaxLength)
	}
	if c.NumBeams < 1 {
		return fmt.Errorf("num beams must be positive, got %d", c.NumBeams)
	}
	if c.LengthPenalty <= 0 {
		return fmt.Errorf("length penalty must be positive, got %v", c.LengthPenalty)
	}
	return nil
}

// Options configures a remote backend.
type Options struct {
	// Model is the provider model identifier. Empty selects the provider default.
	Model string
	// BaseURL overrides the provider endpoint (self-hosted inference, tests).
	BaseURL string
	// APIKey authenticates against the provider.
	APIKey string
	// Timeout bounds one Summarize call including retries.
	Timeout time.Duration
	// Generation holds the decoding parameters.
	Generation GenerationConfig
	// Retry controls backoff for retryable failures.
	Retry retry.Config
}

// ErrMissingAPIKey is returned when a provider that needs credentials has none.
var ErrMissingAPIKey = errors.New("api key is required")

func (o Options) withDefaults(model string) Options {
	if o.Model == "" {
		o.Model = model
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	if o.Generation == (GenerationConfig{}) {
		o.Generation = DefaultGenerationConfig()
	}
	if o.Retry.MaxAttempts == 0 {
		o.Retry = retry.AIAPIConfig()
	}
	return o
}

// buildPrompt asks an instruction-following model for a summary within the
// configured length bounds.
//
// Example output:
//
//	"Summarize the following text in 40 to 150 words. Reply with the summary only.\n\n{text}"
func buildPrompt(gen GenerationConfig, text string) string {
	return fmt.Sprintf("Summarize the following text in %d to %d words. Reply with the summary only.\n\n%s",
		gen.MinLength, gen.MaxLength, text)
}
