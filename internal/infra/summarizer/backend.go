package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"content-summarizer/internal/resilience/circuitbreaker"
	"content-summarizer/internal/resilience/retry"
	"content-summarizer/internal/utils/text"

	"github.com/google/uuid"
)

// reliableCall holds the reliability wrapper shared by the remote backends.
type reliableCall struct {
	provider        string
	model           string
	generation      GenerationConfig
	timeout         time.Duration
	circuitBreaker  *circuitbreaker.CircuitBreaker
	retryConfig     retry.Config
	metricsRecorder SummaryMetricsRecorder
}

func newReliableCall(provider string, opts Options, cb circuitbreaker.Config) reliableCall {
	return reliableCall{
		provider:        provider,
		model:           opts.Model,
		generation:      opts.Generation,
		timeout:         opts.Timeout,
		circuitBreaker:  circuitbreaker.New(cb),
		retryConfig:     opts.Retry,
		metricsRecorder: NewPrometheusSummaryMetrics(),
	}
}

// Provider returns the backend name used in logs, metrics and cache keys.
func (r *reliableCall) Provider() string { return r.provider }

// Model returns the provider model identifier.
func (r *reliableCall) Model() string { return r.model }

// CircuitBreaker exposes the breaker for health reporting.
func (r *reliableCall) CircuitBreaker() *circuitbreaker.CircuitBreaker { return r.circuitBreaker }

// run executes call with a timeout, retry with backoff and the circuit breaker.
func (r *reliableCall) run(ctx context.Context, input string, call func(ctx context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var result string

	retryErr := retry.WithBackoff(ctx, r.retryConfig, func() error {
		cbResult, err := r.circuitBreaker.Execute(func() (interface{}, error) {
			return r.observe(ctx, input, call)
		})

		if err != nil {
			if circuitbreaker.IsUnavailable(err) {
				slog.WarnContext(ctx, "summarizer circuit breaker open, request rejected",
					slog.String("service", r.circuitBreaker.Name()),
					slog.String("state", r.circuitBreaker.State().String()))
				return fmt.Errorf("%s api unavailable: %w", r.provider, err)
			}
			return err
		}

		result = cbResult.(string)
		return nil
	})

	if retryErr != nil {
		return "", fmt.Errorf("%s summarize failed: %w", r.provider, retryErr)
	}

	return result, nil
}

// observe performs one backend call with structured logging and metrics.
func (r *reliableCall) observe(ctx context.Context, input string, call func(ctx context.Context) (string, error)) (string, error) {
	requestID := uuid.New().String()

	slog.DebugContext(ctx, "starting summarization",
		slog.String("request_id", requestID),
		slog.String("provider", r.provider),
		slog.String("model", r.model),
		slog.Int("input_tokens", text.CountTokens(input)))

	start := time.Now()
	summary, err := call(ctx)
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "summarization failed",
			slog.String("request_id", requestID),
			slog.String("provider", r.provider),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", err
	}

	summaryTokens := text.CountTokens(summary)
	withinLimit := summaryTokens <= r.generation.MaxLength

	slog.InfoContext(ctx, "summarization completed",
		slog.String("request_id", requestID),
		slog.String("provider", r.provider),
		slog.Int("summary_tokens", summaryTokens),
		slog.Int("max_length", r.generation.MaxLength),
		slog.Bool("within_limit", withinLimit),
		slog.Duration("duration", duration))

	if !withinLimit {
		slog.WarnContext(ctx, "summary exceeds max length",
			slog.String("request_id", requestID),
			slog.Int("summary_tokens", summaryTokens),
			slog.Int("limit", r.generation.MaxLength),
			slog.Int("excess", summaryTokens-r.generation.MaxLength))
	}

	r.metricsRecorder.RecordLength(r.provider, summaryTokens)
	r.metricsRecorder.RecordDuration(r.provider, duration)
	r.metricsRecorder.RecordCompliance(r.provider, withinLimit)
	if !withinLimit {
		r.metricsRecorder.RecordLimitExceeded(r.provider)
	}

	return summary, nil
}
