// Command api serves the summarizer web application.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-summarizer/internal/bootstrap"
	"content-summarizer/internal/config"
	hhttp "content-summarizer/internal/handler/http"
	"content-summarizer/internal/observability/logging"
	"content-summarizer/internal/observability/tracing"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default: $CONFIG_FILE)")
	flag.Parse()

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if err := run(*configPath); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Version == "dev" {
		cfg.Version = version
	}

	logger := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdownTracing := tracing.Init(cfg.Tracing.ServiceName, cfg.Version, cfg.Tracing.SampleRatio)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := shutdownTracing(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown failed", slog.Any("error", err))
			}
		}()
	}

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to release resources", slog.Any("error", err))
		}
	}()

	var limiter *hhttp.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = hhttp.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TrustProxy, cfg.RateLimit.IdleTTL)
		logger.Info("rate limiting enabled",
			slog.Float64("rps", cfg.RateLimit.RPS),
			slog.Int("burst", cfg.RateLimit.Burst),
			slog.Bool("trust_proxy", cfg.RateLimit.TrustProxy))
	}

	handler, err := newHandler(cfg, app, limiter, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	if limiter != nil {
		go limiter.RunCleanup(ctx, cfg.RateLimit.CleanupInterval)
	}

	logger.Info("server starting",
		slog.String("addr", ln.Addr().String()),
		slog.String("version", cfg.Version),
		slog.String("provider", app.Backend.Provider()))
	return serve(ctx, srv, ln, cfg.Server.ShutdownTimeout, logger)
}

// serve runs srv on ln until ctx is done, then drains in-flight requests for
// up to shutdownTimeout. Request contexts hang off a base context that is
// canceled only once draining has finished, so a shutdown signal lets running
// summaries complete and only the stragglers are cut off.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration, logger *slog.Logger) error {
	baseCtx, cancelBase := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelBase()
	srv.BaseContext = func(net.Listener) context.Context { return baseCtx }

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		cancelBase()
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}
