package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"medical-news-scraper/internal/observability"
	"medical-news-scraper/internal/scraper"
	"medical-news-scraper/internal/source"
)

// SourceScraper обработка одного источника с повторами (реализует *scraper.Scraper)
type SourceScraper interface {
	AttemptWithRetry(ctx context.Context, src source.Descriptor, maxAttempts int) scraper.Outcome
}

type Coordinator struct {
	registry    *source.Registry
	scraper     SourceScraper
	logger      *observability.Logger
	metrics     *observability.Metrics
	maxAttempts int
	concurrency int
}

// NewCoordinator concurrency 0: все источники параллельно
func NewCoordinator(
	registry *source.Registry,
	s SourceScraper,
	maxAttempts int,
	concurrency int,
	logger *observability.Logger,
	metrics *observability.Metrics,
) *Coordinator {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Coordinator{
		registry:    registry,
		scraper:     s,
		logger:      logger,
		metrics:     metrics,
		maxAttempts: maxAttempts,
		concurrency: concurrency,
	}
}

// Report итог пакета: успехи и неудачи раздельно
type Report struct {
	RunID     string
	Successes []scraper.Outcome
	Failures  []scraper.Outcome
	Elapsed   time.Duration
}

// Records записи успешных источников
func (r Report) Records() []scraper.Record {
	records := make([]scraper.Record, 0, len(r.Successes))
	for _, o := range r.Successes {
		records = append(records, *o.Record)
	}
	return records
}

// ScrapeAll все источники языка. Ошибок не возвращает: неудачные источники просто отсутствуют.
func (c *Coordinator) ScrapeAll(ctx context.Context, language string) []scraper.Record {
	return c.Run(ctx, c.registry.ByLanguage(language)).Records()
}

// ScrapeByCategory источники языка, подходящие под категорию
func (c *Coordinator) ScrapeByCategory(ctx context.Context, category, language string) []scraper.Record {
	return c.Run(ctx, c.registry.ByCategory(category, language)).Records()
}

// Run обрабатывает источники параллельно; каждая задача пишет результат в свой слот
func (c *Coordinator) Run(ctx context.Context, sources []source.Descriptor) Report {
	report := Report{RunID: uuid.NewString()}
	logger := c.logger.With("run_id", report.RunID)

	if len(sources) == 0 {
		logger.Info("No qualifying sources, nothing to scrape")
		return report
	}

	start := time.Now()
	logger.Info("Batch started", "sources", len(sources), "concurrency", c.concurrency)

	outcomes := make([]scraper.Outcome, len(sources))
	var g errgroup.Group
	if c.concurrency > 0 {
		g.SetLimit(c.concurrency)
	}

	for i, src := range sources {
		g.Go(func() error {
			outcomes[i] = c.runOne(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		if o.OK() {
			report.Successes = append(report.Successes, o)
			continue
		}
		report.Failures = append(report.Failures, o)
		logger.Warn("Source excluded from batch",
			"source", o.Source,
			"reason", scraper.Reason(o.Err),
			"attempts", o.Attempts,
			"error", o.Err,
		)
	}

	report.Elapsed = time.Since(start)
	c.metrics.ObserveBatch(len(sources), report.Elapsed)
	logger.Info("Batch completed",
		"sources", len(sources),
		"succeeded", len(report.Successes),
		"failed", len(report.Failures),
		"elapsed", report.Elapsed,
	)
	return report
}

// runOne панику задачи превращает в неудачу источника, а не всего пакета
func (c *Coordinator) runOne(ctx context.Context, src source.Descriptor) (out scraper.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = scraper.Outcome{
				Source: src.Name,
				Err:    fmt.Errorf("%w: panic: %v", scraper.ErrUnexpected, r),
			}
			c.metrics.ObserveOutcome(src.Name, scraper.Reason(out.Err))
		}
	}()

	out = c.scraper.AttemptWithRetry(ctx, src, c.maxAttempts)
	if out.Source == "" {
		out.Source = src.Name
	}
	if !out.OK() && out.Err == nil {
		out.Err = fmt.Errorf("%w: empty outcome", scraper.ErrUnexpected)
	}
	return out
}
