package app

import (
	"context"

	"medical-news-scraper/internal/normalize"
	"medical-news-scraper/internal/scraper"
)

// PreviewSummarizer простой пересказ без внешнего сервиса: начало текста
type PreviewSummarizer struct {
	MaxChars int
}

func (p PreviewSummarizer) Summarize(_ context.Context, rec scraper.Record) (string, error) {
	max := p.MaxChars
	if max <= 0 {
		max = 300
	}
	return normalize.Preview(rec.Content, max), nil
}
