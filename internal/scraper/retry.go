package scraper

import (
	"context"
	"fmt"
	"time"

	"medical-news-scraper/internal/source"
)

// backoff пауза после неудачной попытки attempt (с нуля): min(2^attempt, MaxBackoffUnits) единиц
func (s *Scraper) backoff(attempt int) time.Duration {
	units := s.opts.MaxBackoffUnits
	if attempt < 30 && 1<<attempt < units {
		units = 1 << attempt
	}
	return time.Duration(units) * s.opts.BackoffUnit
}

// AttemptWithRetry обрабатывает источник с повторами. Ошибки наружу не выходят:
// результат всегда Outcome. Недоступный хост не тратит попыток.
func (s *Scraper) AttemptWithRetry(ctx context.Context, src source.Descriptor, maxAttempts int) Outcome {
	logger := s.logger.With("source", src.Name)

	if !s.checker.IsReachable(ctx, src.URL) {
		err := fmt.Errorf("%w: %s", ErrHostUnreachable, src.URL)
		logger.Warn("source skipped", "error", err)
		s.metrics.ObserveOutcome(src.Name, Reason(err))
		return Outcome{Source: src.Name, Err: err}
	}

	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt < maxAttempts; attempt++ {
		attempts++
		record, err := s.scrapeOnce(ctx, src)
		s.metrics.ObserveAttempt(src.Name, Reason(err))
		if err == nil {
			logger.Info("source scraped", "attempts", attempts, "title", record.Title)
			s.metrics.ObserveOutcome(src.Name, Reason(nil))
			return Outcome{Source: src.Name, Record: record, Attempts: attempts}
		}

		lastErr = err
		logger.Warn("attempt failed", "attempt", attempts, "max_attempts", maxAttempts, "error", err)

		if attempt == maxAttempts-1 {
			break
		}

		delay := s.backoff(attempt)
		if err := s.sleep(ctx, delay); err != nil {
			lastErr = fmt.Errorf("%w: backoff interrupted: %w", ErrTransport, err)
			break
		}
	}

	logger.Error("source failed", "attempts", attempts, "error", lastErr)
	s.metrics.ObserveOutcome(src.Name, Reason(lastErr))
	return Outcome{Source: src.Name, Err: lastErr, Attempts: attempts}
}
