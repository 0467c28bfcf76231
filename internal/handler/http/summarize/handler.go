package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"content-summarizer/internal/domain/entity"
	"content-summarizer/internal/handler/http/respond"
	"content-summarizer/internal/observability/logging"
	"content-summarizer/internal/resilience/circuitbreaker"
	"content-summarizer/internal/usecase/extract"
	"content-summarizer/internal/usecase/summary"
)

// Runner runs the extract-then-summarize pipeline. *summary.Pipeline
// implements it.
type Runner interface {
	Run(ctx context.Context, src entity.Source) (*entity.SummaryResult, error)
}

// Handler serves POST /summarize_text.
type Handler struct {
	Pipeline Runner
}

// Register mounts the handler on mux, wrapped by the given middleware
// (rate limit and timeout in production).
func Register(mux *http.ServeMux, pipeline Runner, wrap func(http.Handler) http.Handler) {
	var h http.Handler = Handler{Pipeline: pipeline}
	if wrap != nil {
		h = wrap(h)
	}
	mux.Handle("POST /summarize_text", h)
}

// ServeHTTP decodes the request, runs the pipeline and writes {"summary": ...}.
// Every failure is written as {"error": ...}; see classify for the mapping.
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	src, err := decode(r.Body)
	if err != nil {
		respond.WriteError(ctx, w, classify(nil, err))
		return
	}

	logging.FromContext(ctx).DebugContext(ctx, "summarize request",
		"source", entity.Describe(src))

	result, err := h.Pipeline.Run(ctx, src)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			logging.FromContext(ctx).InfoContext(ctx, "client went away before the summary was ready")
			return
		}
		respond.WriteError(ctx, w, classify(src, err))
		return
	}

	respond.JSON(w, http.StatusOK, Response{Summary: result.Summary})
}

func decode(body io.Reader) (entity.Source, error) {
	var req Request
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", entity.ErrInvalidInput, err)
	}
	return req.Source()
}

// classify maps a decode or pipeline error onto the status code and message
// returned to the client. The original error is kept for logging.
func classify(src entity.Source, err error) *respond.AppError {
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxErr):
		return respond.NewAppError(http.StatusRequestEntityTooLarge, "request body too large", err)

	case errors.Is(err, entity.ErrInvalidInput):
		return respond.NewAppError(http.StatusBadRequest, "Invalid input", err)

	case errors.Is(err, extract.ErrDecode):
		return respond.NewAppError(http.StatusBadRequest, "invalid PDF encoding", err)

	case extract.IsRejectedURL(err):
		return respond.NewAppError(http.StatusBadRequest, "invalid url", err)

	// Timeouts are checked before fetch failures: a fetch that timed out
	// wraps both.
	case errors.Is(err, extract.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return respond.NewAppError(http.StatusGatewayTimeout, "request timeout", err)

	case errors.Is(err, extract.ErrParse):
		if src != nil && src.Kind() == entity.SourceURL {
			return respond.NewAppError(http.StatusUnprocessableEntity, "could not extract text from page", err)
		}
		return respond.NewAppError(http.StatusUnprocessableEntity, "could not read PDF", err)

	case errors.Is(err, extract.ErrFetch),
		errors.Is(err, extract.ErrTooManyRedirects),
		errors.Is(err, extract.ErrBodyTooLarge):
		return respond.NewAppError(http.StatusBadGateway, "could not fetch url", err)

	case circuitbreaker.IsUnavailable(err):
		return respond.NewAppError(http.StatusServiceUnavailable, "summarizer unavailable", err)

	case errors.Is(err, summary.ErrModel):
		return respond.NewAppError(http.StatusBadGateway, "summarization failed", err)

	default:
		return respond.NewAppError(http.StatusInternalServerError, "internal server error", err)
	}
}
