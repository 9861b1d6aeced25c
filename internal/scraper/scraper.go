package scraper

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"medical-news-scraper/internal/fetcher"
	"medical-news-scraper/internal/normalize"
	"medical-news-scraper/internal/observability"
	"medical-news-scraper/internal/source"
)

// PageFetcher загрузка страницы от имени источника (реализует *fetcher.Fetcher)
type PageFetcher interface {
	Fetch(ctx context.Context, src source.Descriptor, target string) (*fetcher.Page, error)
}

// AvailabilityChecker предварительная проверка хоста (реализует *fetcher.Checker)
type AvailabilityChecker interface {
	IsReachable(ctx context.Context, rawURL string) bool
}

type Options struct {
	BackoffUnit     time.Duration
	MaxBackoffUnits int
	MaxKeywords     int
}

func DefaultOptions() Options {
	return Options{
		BackoffUnit:     time.Second,
		MaxBackoffUnits: 10,
		MaxKeywords:     DefaultMaxKeywords,
	}
}

type Scraper struct {
	fetcher   PageFetcher
	checker   AvailabilityChecker
	extractor *Extractor
	dates     *DateParser
	logger    *observability.Logger
	metrics   *observability.Metrics
	opts      Options

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewScraper(f PageFetcher, checker AvailabilityChecker, logger *observability.Logger, metrics *observability.Metrics, opts Options) *Scraper {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	defaults := DefaultOptions()
	if opts.BackoffUnit <= 0 {
		opts.BackoffUnit = defaults.BackoffUnit
	}
	if opts.MaxBackoffUnits <= 0 {
		opts.MaxBackoffUnits = defaults.MaxBackoffUnits
	}
	if opts.MaxKeywords <= 0 {
		opts.MaxKeywords = defaults.MaxKeywords
	}

	return &Scraper{
		fetcher:   f,
		checker:   checker,
		extractor: NewExtractor(logger, metrics),
		dates:     NewDateParser(),
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
		sleep:     sleepContext,
		now:       time.Now,
	}
}

// scrapeOnce одна попытка: загрузка, разбор, извлечение и проверка полей
func (s *Scraper) scrapeOnce(ctx context.Context, src source.Descriptor) (*Record, error) {
	page, err := s.fetcher.Fetch(ctx, src, src.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse HTML: %w", ErrIncompleteExtraction, err)
	}
	normalize.StripNoise(doc)

	extraction := s.extractor.Extract(doc, src.Selectors)
	if missing := extraction.Missing(source.FieldTitle, source.FieldContent); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteExtraction, strings.Join(names, ", "))
	}

	title, _ := extraction.Get(source.FieldTitle)
	content, _ := extraction.Get(source.FieldContent)

	record, err := newRecord(src, title, content, ExtractKeywords(content, s.opts.MaxKeywords), s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIncompleteExtraction, err)
	}
	return record, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
