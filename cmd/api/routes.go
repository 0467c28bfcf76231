package main

import (
	"log/slog"
	"net/http"

	"content-summarizer/internal/bootstrap"
	"content-summarizer/internal/config"
	hhttp "content-summarizer/internal/handler/http"
	"content-summarizer/internal/handler/http/requestid"
	"content-summarizer/internal/handler/http/static"
	"content-summarizer/internal/handler/http/summarize"
	"content-summarizer/internal/observability/tracing"
	"content-summarizer/web"
)

// newHandler builds the routes and the middleware chain.
//
// Order, outermost first: request ID, tracing, metrics, logging, recovery,
// security headers, body limit. POST /summarize_text additionally runs behind the rate
// limiter and the request timeout.
func newHandler(cfg *config.Config, app *bootstrap.App, limiter *hhttp.RateLimiter, logger *slog.Logger) (http.Handler, error) {
	mux := http.NewServeMux()

	if err := static.Register(mux, web.Assets(cfg.Server.StaticDir)); err != nil {
		return nil, err
	}

	summarizeChain := []hhttp.Middleware{}
	if limiter != nil {
		summarizeChain = append(summarizeChain, limiter.Limit)
	}
	summarizeChain = append(summarizeChain, hhttp.Timeout(cfg.Server.RequestTimeout))
	summarize.Register(mux, app.Pipeline, func(h http.Handler) http.Handler {
		return hhttp.Chain(h, summarizeChain...)
	})

	health := &hhttp.HealthHandler{
		Summarizer: app.Backend.CircuitBreaker(),
		Fetcher:    app.Fetcher.CircuitBreaker(),
		Cache:      app.Cache,
		Version:    cfg.Version,
	}
	mux.Handle("GET /health", health)
	mux.Handle("GET /ready", &hhttp.ReadyHandler{Summarizer: app.Backend.CircuitBreaker()})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	return hhttp.Chain(mux,
		requestid.Middleware,
		tracing.Middleware,
		hhttp.MetricsMiddleware,
		hhttp.Logging(logger),
		hhttp.Recover(logger),
		hhttp.SecurityHeaders(hhttp.PagePolicy().ReportOnly(cfg.Server.CSPReportOnly)),
		hhttp.LimitRequestBody(cfg.Server.MaxBodyBytes),
	), nil
}
