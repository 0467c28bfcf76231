// Package summary produces abstractive summaries of extracted text and runs the
// extract-then-summarize pipeline behind POST /summarize_text.
package summary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"content-summarizer/internal/observability/metrics"
	"content-summarizer/internal/observability/tracing"
	"content-summarizer/internal/utils/text"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Model generates a summary for text that already fits the input window.
// Implementations live in internal/infra/summarizer.
type Model interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Cache stores summaries keyed by a digest of the model input.
// A miss is reported as ("", false, nil).
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ErrModel wraps every failure reported by the summarization backend.
var ErrModel = errors.New("summarization failed")

// Limits bounds the model input and output, counted in whitespace tokens.
type Limits struct {
	// InputTokens is the model input window; longer inputs are truncated.
	InputTokens int
	// MaxTokens caps the summary; longer model output is clamped.
	MaxTokens int
}

// DefaultLimits matches the window and generation bound of facebook/bart-large-cnn.
func DefaultLimits() Limits {
	return Limits{InputTokens: 1024, MaxTokens: 150}
}

// Service summarizes text with a Model. It is immutable after construction
// and safe for concurrent use.
type Service struct {
	model     Model
	limits    Limits
	cache     Cache
	namespace string
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLimits overrides DefaultLimits.
func WithLimits(l Limits) Option {
	return func(s *Service) { s.limits = l }
}

// WithCache enables the summary cache. namespace identifies the backend and
// its generation settings so different models never share entries.
func WithCache(c Cache, namespace string) Option {
	return func(s *Service) {
		s.cache = c
		s.namespace = namespace
	}
}

// WithLogger sets the logger used for cache and truncation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a summarization service backed by model.
func NewService(model Model, opts ...Option) *Service {
	s := &Service{
		model:  model,
		limits: DefaultLimits(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize returns a summary of input.
//
// Empty or whitespace-only input returns "" without calling the model. Input
// longer than the window is cut to its first InputTokens tokens. Control
// tokens are stripped from the model output and the result is clamped to
// MaxTokens tokens. Backend failures wrap ErrModel; an empty summary for
// non-empty input is also reported as ErrModel.
func (s *Service) Summarize(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", nil
	}

	ctx, span := tracing.GetTracer().Start(ctx, "summary.summarize")
	defer span.End()

	windowed, truncated := text.TruncateTokens(input, s.limits.InputTokens)
	if truncated {
		metrics.RecordInputTruncated()
		s.logger.DebugContext(ctx, "input truncated to model window",
			slog.Int("input_tokens", text.CountTokens(input)),
			slog.Int("window", s.limits.InputTokens))
	}
	span.SetAttributes(
		attribute.Int("summary.input_chars", len(windowed)),
		attribute.Bool("summary.input_truncated", truncated),
	)

	key := s.cacheKey(windowed)
	if cached, ok := s.lookup(ctx, key); ok {
		span.SetAttributes(attribute.Bool("summary.cache_hit", true))
		return cached, nil
	}

	start := time.Now()
	raw, err := s.model.Summarize(ctx, windowed)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "model failed")
		return "", fmt.Errorf("%w: %w", ErrModel, err)
	}

	out := text.StripControlTokens(raw)
	if out == "" {
		span.SetStatus(codes.Error, "empty summary")
		return "", fmt.Errorf("%w: model returned an empty summary", ErrModel)
	}
	out, clamped := text.TruncateTokens(out, s.limits.MaxTokens)
	if clamped {
		s.logger.DebugContext(ctx, "summary clamped to max length",
			slog.Int("max_tokens", s.limits.MaxTokens))
	}

	s.store(ctx, key, out)
	s.logger.DebugContext(ctx, "summary generated",
		slog.Int("summary_tokens", text.CountTokens(out)),
		slog.Duration("duration", time.Since(start)))
	return out, nil
}

func (s *Service) cacheKey(windowed string) string {
	if s.cache == nil {
		return ""
	}
	sum := sha256.Sum256([]byte(s.namespace + "\x00" + windowed))
	return hex.EncodeToString(sum[:])
}

// lookup never fails the request: cache errors are logged and treated as misses.
func (s *Service) lookup(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	v, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCacheLookup("error")
		s.logger.WarnContext(ctx, "summary cache lookup failed", slog.Any("error", err))
		return "", false
	case !ok || v == "":
		metrics.RecordCacheLookup("miss")
		return "", false
	default:
		metrics.RecordCacheLookup("hit")
		return v, true
	}
}

func (s *Service) store(ctx context.Context, key, value string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		s.logger.WarnContext(ctx, "summary cache store failed", slog.Any("error", err))
	}
}
