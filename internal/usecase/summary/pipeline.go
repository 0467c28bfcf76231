package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"content-summarizer/internal/domain/entity"
	"content-summarizer/internal/observability/metrics"
	"content-summarizer/internal/observability/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Extractor turns a Source into plain text.
type Extractor interface {
	Extract(ctx context.Context, src entity.Source) (string, error)
}

// Summarizer turns plain text into a summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Pipeline runs extraction followed by summarization. Build it once at
// startup and share it; it holds no per-request state.
type Pipeline struct {
	extractor  Extractor
	summarizer Summarizer
	logger     *slog.Logger
}

// NewPipeline creates a pipeline from its two stages.
func NewPipeline(extractor Extractor, summarizer Summarizer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{extractor: extractor, summarizer: summarizer, logger: logger}
}

// Run extracts the text of src and summarizes it. Errors from either stage
// are returned unchanged so callers can classify them with errors.Is.
func (p *Pipeline) Run(ctx context.Context, src entity.Source) (*entity.SummaryResult, error) {
	if src == nil {
		return nil, entity.ErrInvalidInput
	}
	kind := src.Kind()

	ctx, span := tracing.GetTracer().Start(ctx, "summary.run")
	defer span.End()
	span.SetAttributes(attribute.String("summary.source", kind.String()))

	start := time.Now()
	extracted, err := p.extractor.Extract(ctx, src)
	if err != nil {
		p.fail(ctx, span, kind, "extract_error", start, err)
		return nil, fmt.Errorf("extract %s: %w", kind, err)
	}

	out, err := p.summarizer.Summarize(ctx, extracted)
	if err != nil {
		p.fail(ctx, span, kind, outcomeOf(err), start, err)
		return nil, fmt.Errorf("summarize %s: %w", kind, err)
	}

	elapsed := time.Since(start)
	metrics.RecordSummaryRequest(kind.String(), "success", elapsed)
	p.logger.InfoContext(ctx, "summary completed",
		slog.String("source", entity.Describe(src)),
		slog.Int("input_chars", len(extracted)),
		slog.Int("summary_chars", len(out)),
		slog.Duration("duration", elapsed))

	return &entity.SummaryResult{
		Summary:    out,
		Source:     kind,
		InputChars: len(extracted),
		Duration:   elapsed,
	}, nil
}

func (p *Pipeline) fail(ctx context.Context, span trace.Span, kind entity.SourceKind, outcome string, start time.Time, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, outcome)
	metrics.RecordSummaryRequest(kind.String(), outcome, time.Since(start))
	p.logger.WarnContext(ctx, "summary failed",
		slog.String("source", kind.String()),
		slog.String("outcome", outcome),
		slog.Any("error", err))
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "summarize_error"
	}
}
