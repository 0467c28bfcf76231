package extract

import (
	"context"
	"fmt"
	"time"

	"content-summarizer/internal/domain/entity"
	"content-summarizer/internal/observability/metrics"
	"content-summarizer/internal/observability/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Service converts a Source into plain text. It holds no per-request state
// and is safe for concurrent use as long as its collaborators are.
type Service struct {
	PDF   PDFParser
	Pages PageFetcher
}

// NewService creates an extraction service.
func NewService(pdf PDFParser, pages PageFetcher) *Service {
	return &Service{PDF: pdf, Pages: pages}
}

// Extract returns the plain text of src.
//
//   - TextSource: the text unchanged.
//   - PDFSource: the data URI is decoded (ErrDecode on failure) and the text
//     of every page is joined with "\n" (ErrParse if the bytes are not a PDF).
//   - URLSource: the text of every <p> element joined with " " (ErrFetch,
//     ErrInvalidURL, ErrPrivateIP, ErrParse and friends on failure).
//
// Any other Source yields ErrUnsupportedSource.
func (s *Service) Extract(ctx context.Context, src entity.Source) (string, error) {
	kind := "unknown"
	if src != nil {
		kind = src.Kind().String()
	}

	ctx, span := tracing.GetTracer().Start(ctx, "extract."+kind)
	defer span.End()

	start := time.Now()
	text, err := s.extract(ctx, src)
	metrics.RecordExtraction(kind, err == nil, time.Since(start), len(text))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		return "", err
	}
	span.SetAttributes(attribute.Int("extract.chars", len(text)))
	return text, nil
}

func (s *Service) extract(ctx context.Context, src entity.Source) (string, error) {
	switch v := src.(type) {
	case entity.TextSource:
		return v.Text, nil

	case entity.PDFSource:
		data, err := DecodeDataURI(v.DataURI)
		if err != nil {
			return "", err
		}
		if s.PDF == nil {
			return "", fmt.Errorf("%w: no PDF parser configured", ErrUnsupportedSource)
		}
		return s.PDF.ExtractText(ctx, data)

	case entity.URLSource:
		if s.Pages == nil {
			return "", fmt.Errorf("%w: no page fetcher configured", ErrUnsupportedSource)
		}
		return s.Pages.FetchText(ctx, v.URL)

	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedSource, src)
	}
}
