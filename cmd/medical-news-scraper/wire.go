package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"medical-news-scraper/internal/app"
	"medical-news-scraper/internal/config"
	"medical-news-scraper/internal/fetcher"
	"medical-news-scraper/internal/observability"
	"medical-news-scraper/internal/scraper"
	"medical-news-scraper/internal/source"
	"medical-news-scraper/internal/storage"
	"medical-news-scraper/internal/storage/jsonl"
	"medical-news-scraper/internal/storage/mssql"
	"medical-news-scraper/internal/storage/postgres"
)

// deps собранные зависимости команды
type deps struct {
	cfg         *config.Config
	logger      *observability.Logger
	registry    *source.Registry
	promReg     *prometheus.Registry
	metrics     *observability.Metrics
	scraper     *scraper.Scraper
	coordinator *app.Coordinator
	scheduler   *app.Scheduler
	repo        storage.Repository
}

func buildDeps(flags *rootFlags) (*deps, error) {
	if err := config.LoadDotEnv(flags.envFile); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogPath, cfg.Observability.LogLevel)

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(promReg)

	s := scraper.NewScraper(
		fetcher.NewFetcher(cfg, logger),
		fetcher.NewChecker(nil, cfg.GetAvailabilityTTL(), logger, metrics),
		logger,
		metrics,
		scraper.Options{
			BackoffUnit:     cfg.GetBackoffUnit(),
			MaxBackoffUnits: cfg.Retry.MaxBackoffUnits,
			MaxKeywords:     cfg.Batch.MaxKeywords,
		},
	)

	registry := source.NewRegistry(sources)
	scheduler, err := app.NewScheduler(cfg.Scheduler, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Configuration loaded",
		"sources", registry.Len(),
		"max_attempts", cfg.Retry.MaxAttempts,
		"concurrency", cfg.Batch.Concurrency,
		"storage", cfg.Storage.Driver,
		"scheduler", cfg.Scheduler.Mode,
	)

	return &deps{
		cfg:         cfg,
		logger:      logger,
		registry:    registry,
		promReg:     promReg,
		metrics:     metrics,
		scraper:     s,
		coordinator: app.NewCoordinator(registry, s, cfg.Retry.MaxAttempts, cfg.Batch.Concurrency, logger, metrics),
		scheduler:   scheduler,
	}, nil
}

// pipeline открывает хранилище по конфигу; без драйвера записи идут в out
func (d *deps) pipeline(out io.Writer) (*app.Pipeline, error) {
	var err error
	switch d.cfg.Storage.Driver {
	case "mssql":
		d.repo, err = mssql.NewRepository(d.cfg.Storage.DSN, d.cfg.GetCommandTimeout(), d.logger)
	case "postgres":
		d.repo, err = postgres.NewRepository(d.cfg.Storage.DSN, d.cfg.GetCommandTimeout(), d.logger)
	default:
		d.repo = jsonl.NewRepository(out)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	return app.NewPipeline(d.registry, d.coordinator, app.PreviewSummarizer{}, d.repo, d.logger), nil
}

// serveMetrics поднимает /metrics, если задан адрес; возвращает функцию остановки
func (d *deps) serveMetrics(ctx context.Context) func() {
	addr := d.cfg.Observability.MetricsAddr
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler(d.promReg))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		d.logger.Info("Metrics server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("Metrics server failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			d.logger.Warn("Metrics server shutdown failed", "error", err)
		}
	}
}

func (d *deps) Close() {
	if d.repo != nil {
		if err := d.repo.Close(); err != nil {
			d.logger.Error("Failed to close storage", "error", err)
		}
	}
	_ = d.logger.Sync()
}

func shutdownContext(cmd *cobra.Command, d *deps) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return app.GracefulShutdown(parent, d.logger)
}

func printJSONLines[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
