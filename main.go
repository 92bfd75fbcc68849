package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/s1natex/tasklist-api/internal/config"
	"github.com/s1natex/tasklist-api/internal/logging"
	"github.com/s1natex/tasklist-api/internal/middleware"
	"github.com/s1natex/tasklist-api/internal/tasks"
	"github.com/s1natex/tasklist-api/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server_error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger) // for third-party packages that use slog

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing_shutdown", slog.String("error", err.Error()))
		}
	}()

	repo, closeRepo, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeRepo(); err != nil {
			logger.Warn("store_close", slog.String("error", err.Error()))
		}
	}()

	svc := tasks.NewService(repo, logger)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newRouter(svc, cfg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listen", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server_shutdown")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// openStore constructs the configured repository and returns its closer.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (tasks.Repository, func() error, error) {
	if cfg.Driver == config.DriverMemory {
		logger.Info("store_open", slog.String("driver", cfg.Driver))
		return tasks.NewInMemoryRepo(), func() error { return nil }, nil
	}

	dsn, err := tasks.SQLiteFileDSN(cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite dsn: %w", err)
	}
	repo, err := tasks.NewSQLiteRepo(dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.ApplyMigrations(ctx); err != nil {
		_ = repo.Close()
		return nil, nil, err
	}

	size := "0 B"
	if fi, err := os.Stat(cfg.Path); err == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}
	logger.Info("store_open",
		slog.String("driver", cfg.Driver),
		slog.String("path", cfg.Path),
		slog.String("size", size),
	)
	return repo, repo.Close, nil
}

// newRouter wires the liveness endpoints, task routes, and middleware stack
func newRouter(svc *tasks.Service, cfg config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// RequestID first so downstream can include it (logger, errors, etc.)
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(15 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Trace-Id"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	r.Use(middleware.TracingMiddleware)
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.RateLimitMiddleware(middleware.NewLimiter(cfg.Limit.RPS, cfg.Limit.Burst)))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "App is working")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	tasks.RegisterRoutes(r, svc, logger)

	return r
}
