package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"medical-news-scraper/internal/config"
	"medical-news-scraper/internal/observability"
)

const (
	ModeOneshot  = "oneshot"
	ModeInterval = "interval"
	ModeCron     = "cron"
)

// Scheduler запускает задачу один раз, с интервалом или по cron-выражению
type Scheduler struct {
	mode     string
	interval time.Duration
	schedule cron.Schedule
	logger   *observability.Logger
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func NewScheduler(cfg config.SchedulerConfig, logger *observability.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	s := &Scheduler{
		mode:     cfg.Mode,
		interval: cfg.GetInterval(),
		logger:   logger,
	}

	switch cfg.Mode {
	case ModeOneshot:
	case ModeInterval:
		if s.interval <= 0 {
			return nil, fmt.Errorf("interval must be > 0")
		}
	case ModeCron:
		schedule, err := cronParser.Parse(cfg.CronExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid cron expression %q: %w", cfg.CronExpr, err)
		}
		s.schedule = schedule
	default:
		return nil, fmt.Errorf("unknown scheduler mode: %s", cfg.Mode)
	}
	return s, nil
}

// Run блокирует до отмены ctx (для oneshot до завершения задачи)
func (s *Scheduler) Run(ctx context.Context, task func(ctx context.Context)) error {
	switch s.mode {
	case ModeOneshot:
		task(ctx)
		return nil
	case ModeInterval:
		return s.runInterval(ctx, task)
	default:
		return s.runCron(ctx, task)
	}
}

func (s *Scheduler) runInterval(ctx context.Context, task func(ctx context.Context)) error {
	s.logger.Info("Scheduler started", "mode", s.mode, "interval", s.interval)
	task(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return nil
		case <-ticker.C:
			task(ctx)
		}
	}
}

func (s *Scheduler) runCron(ctx context.Context, task func(ctx context.Context)) error {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	c.Schedule(s.schedule, cron.FuncJob(func() { task(ctx) }))

	s.logger.Info("Scheduler started", "mode", s.mode, "next_run", s.schedule.Next(time.Now()))
	c.Start()

	<-ctx.Done()
	// Дожидаемся завершения уже запущенной задачи
	<-c.Stop().Done()
	s.logger.Info("Scheduler stopped")
	return nil
}
