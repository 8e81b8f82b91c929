package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"salesdash/internal/api"
	"salesdash/internal/config"
	"salesdash/internal/engine"
	"salesdash/internal/logging"
	"salesdash/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	// 1. Metrics registry
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// 2. Loader + cache + service
	loader := engine.NewLoader(cfg.Data.Sheet, logger)
	store := engine.NewStore(loader, engine.WithTTL(cfg.Data.CacheTTL), engine.WithObserver(m))
	svc := engine.NewService(store, cfg.Data.Source, logger, m)

	// 3. HTTP server is live right away; requests load through the same cache
	e := api.NewServer(cfg.Server, api.NewHandler(svc, logger), reg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Warm the cache in the background
	go func() {
		t0 := time.Now()
		if _, err := store.Get(ctx, cfg.Data.Source); err != nil {
			logger.Error("initial load failed", slog.String("source", cfg.Data.Source), slog.Any("error", err))
			return
		}
		logger.Info("initial load complete", slog.Duration("elapsed", time.Since(t0)))
	}()

	go func() {
		logger.Info("server listening", slog.String("addr", cfg.Addr()), slog.String("source", cfg.Data.Source))
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
