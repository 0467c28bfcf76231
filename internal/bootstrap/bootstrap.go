// Package bootstrap assembles the summarization pipeline from configuration.
// Both the API server and the CLI build their pipeline here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"content-summarizer/internal/config"
	"content-summarizer/internal/infra/cache"
	"content-summarizer/internal/infra/fetcher"
	"content-summarizer/internal/infra/pdf"
	"content-summarizer/internal/infra/summarizer"
	"content-summarizer/internal/resilience/retry"
	"content-summarizer/internal/usecase/extract"
	"content-summarizer/internal/usecase/summary"
)

// SummaryCache is a summary.Cache that can report its health and be closed.
type SummaryCache interface {
	summary.Cache
	Ping(ctx context.Context) error
	io.Closer
}

// App holds the wired components. The pipeline is immutable and shared by
// all requests.
type App struct {
	Pipeline *summary.Pipeline
	Backend  summarizer.Backend
	Fetcher  *fetcher.PageFetcher
	// Cache is nil when caching is disabled.
	Cache SummaryCache

	closers []io.Closer
}

// Build creates every component named by cfg.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fetchCfg := fetcher.Config{
		Timeout:        cfg.Fetch.Timeout,
		MaxBodySize:    cfg.Fetch.MaxBodyBytes,
		MaxRedirects:   cfg.Fetch.MaxRedirects,
		DenyPrivateIPs: cfg.Fetch.DenyPrivateIPs,
		UserAgent:      cfg.Fetch.UserAgent,
	}
	if err := fetchCfg.Validate(); err != nil {
		return nil, fmt.Errorf("fetch config: %w", err)
	}
	pages := fetcher.NewPageFetcher(fetchCfg)
	extractor := extract.NewService(pdf.NewParser(cfg.PDF.MaxPages), pages)

	backend, err := summarizer.New(ctx, cfg.Summarizer.Provider, backendOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("summarizer: %w", err)
	}

	app := &App{Backend: backend, Fetcher: pages}
	if c, ok := backend.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	opts := []summary.Option{
		summary.WithLimits(summary.Limits{
			InputTokens: cfg.Summarizer.InputTokens,
			MaxTokens:   cfg.Summarizer.MaxLength,
		}),
		summary.WithLogger(logger),
	}

	summaryCache, err := newCache(cfg.Cache)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	if summaryCache != nil {
		app.Cache = summaryCache
		app.closers = append(app.closers, summaryCache)
		opts = append(opts, summary.WithCache(summaryCache, CacheNamespace(backend, cfg.Summarizer)))
		logger.Info("summary cache enabled", slog.String("backend", cfg.Cache.Backend))
	}

	app.Pipeline = summary.NewPipeline(extractor, summary.NewService(backend, opts...), logger)

	logger.Info("summarizer ready",
		slog.String("provider", backend.Provider()),
		slog.String("model", backend.Model()),
		slog.Int("input_tokens", cfg.Summarizer.InputTokens),
		slog.Int("max_length", cfg.Summarizer.MaxLength))
	return app, nil
}

// Close releases backend clients and cache connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// CacheNamespace identifies the backend and its generation settings so a
// configuration change never serves summaries produced under the old one.
func CacheNamespace(b summarizer.Backend, s config.SummarizerConfig) string {
	return fmt.Sprintf("%s|%s|in=%d|len=%d-%d|beams=%d|lp=%g|es=%t",
		b.Provider(), b.Model(), s.InputTokens, s.MinLength, s.MaxLength,
		s.NumBeams, s.LengthPenalty, s.EarlyStopping)
}

func backendOptions(cfg *config.Config) summarizer.Options {
	rc := retry.AIAPIConfig()
	rc.MaxAttempts = cfg.Summarizer.RetryAttempts

	return summarizer.Options{
		Model:   cfg.Summarizer.Model,
		BaseURL: cfg.Summarizer.BaseURL,
		APIKey:  cfg.APIKey(),
		Timeout: cfg.Summarizer.Timeout,
		Generation: summarizer.GenerationConfig{
			MaxLength:     cfg.Summarizer.MaxLength,
			MinLength:     cfg.Summarizer.MinLength,
			LengthPenalty: cfg.Summarizer.LengthPenalty,
			NumBeams:      cfg.Summarizer.NumBeams,
			EarlyStopping: cfg.Summarizer.EarlyStopping,
		},
		Retry: rc,
	}
}

func newCache(c config.CacheConfig) (SummaryCache, error) {
	switch c.Backend {
	case "", "none":
		return nil, nil
	case "memory":
		return cache.NewMemory(c.MaxEntries, c.TTL), nil
	case "redis":
		return cache.NewRedis(cache.RedisConfig{
			Addr:      c.RedisAddr,
			Password:  c.RedisPassword,
			DB:        c.RedisDB,
			KeyPrefix: c.KeyPrefix,
			TTL:       c.TTL,
		}), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
}
