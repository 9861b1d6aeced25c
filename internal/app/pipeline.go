package app

import (
	"context"
	"time"

	"medical-news-scraper/internal/checksum"
	"medical-news-scraper/internal/observability"
	"medical-news-scraper/internal/scraper"
	"medical-news-scraper/internal/source"
	"medical-news-scraper/internal/storage"
)

// Summarizer внешний сервис кратких пересказов
type Summarizer interface {
	Summarize(ctx context.Context, rec scraper.Record) (string, error)
}

// Job параметры одного прогона; пустая категория: все источники языка
type Job struct {
	Language string
	Category string
}

type RunStats struct {
	RunID       string
	Sources     int
	Scraped     int
	Failed      int
	Summarized  int
	Skipped     int // уже были в хранилище
	Stored      int
	New         int
	StoreErrors int
	Elapsed     time.Duration
}

// Pipeline сбор → суммаризация → сохранение
type Pipeline struct {
	registry    *source.Registry
	coordinator *Coordinator
	summarizer  Summarizer
	repo        storage.Repository
	checksum    *checksum.Generator
	logger      *observability.Logger
}

// NewPipeline summarizer и repo могут быть nil
func NewPipeline(
	registry *source.Registry,
	coordinator *Coordinator,
	summarizer Summarizer,
	repo storage.Repository,
	logger *observability.Logger,
) *Pipeline {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Pipeline{
		registry:    registry,
		coordinator: coordinator,
		summarizer:  summarizer,
		repo:        repo,
		checksum:    checksum.NewGenerator(),
		logger:      logger,
	}
}

func (p *Pipeline) sourcesFor(job Job) []source.Descriptor {
	if job.Category == "" {
		return p.registry.ByLanguage(job.Language)
	}
	return p.registry.ByCategory(job.Category, job.Language)
}

// RunOnce один прогон. Ошибка возвращается только при отмене контекста.
func (p *Pipeline) RunOnce(ctx context.Context, job Job) (RunStats, error) {
	start := time.Now()
	sources := p.sourcesFor(job)
	report := p.coordinator.Run(ctx, sources)

	stats := RunStats{
		RunID:   report.RunID,
		Sources: len(sources),
		Scraped: len(report.Successes),
		Failed:  len(report.Failures),
	}
	logger := p.logger.With("run_id", report.RunID, "language", job.Language, "category", job.Category)

	for _, rec := range report.Records() {
		if err := ctx.Err(); err != nil {
			stats.Elapsed = time.Since(start)
			return stats, err
		}
		p.process(ctx, logger, rec, &stats)
	}

	stats.Elapsed = time.Since(start)
	logger.Info("Pipeline run completed",
		"sources", stats.Sources,
		"scraped", stats.Scraped,
		"failed", stats.Failed,
		"summarized", stats.Summarized,
		"skipped", stats.Skipped,
		"stored", stats.Stored,
		"new", stats.New,
		"store_errors", stats.StoreErrors,
		"elapsed", stats.Elapsed,
	)
	return stats, ctx.Err()
}

func (p *Pipeline) process(ctx context.Context, logger *observability.Logger, rec scraper.Record, stats *RunStats) {
	stored := storage.NewStoredRecord(rec, "", p.checksum)

	// Повторно пересказывать уже сохранённую статью незачем
	if p.repo != nil {
		exists, err := p.repo.ExistsByCheckSum(ctx, stored.CheckSum)
		if err != nil {
			logger.Warn("Checksum lookup failed", "source", rec.SourceName, "error", err)
		} else if exists {
			stats.Skipped++
			return
		}
	}

	if p.summarizer != nil {
		summary, err := p.summarizer.Summarize(ctx, rec)
		if err != nil {
			// Запись сохраняем и без пересказа
			logger.Warn("Summarization failed", "source", rec.SourceName, "error", err)
		} else {
			stored.Summary = summary
			stats.Summarized++
		}
	}

	if p.repo == nil {
		return
	}
	isNew, err := p.repo.Upsert(ctx, stored)
	if err != nil {
		stats.StoreErrors++
		logger.Error("Failed to store record", "source", rec.SourceName, "checksum", stored.CheckSum, "error", err)
		return
	}
	stats.Stored++
	if isNew {
		stats.New++
	}
}
