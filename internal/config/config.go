package config

import (
	"errors"
	"fmt"
	"time"
)

// Ошибки валидации конфигурации
var (
	ErrInvalidMaxAttempts  = errors.New("retry.max_attempts must be >= 1")
	ErrInvalidBackoffUnit  = errors.New("retry.backoff_unit_ms must be > 0")
	ErrInvalidMaxBackoff   = errors.New("retry.max_backoff_units must be > 0")
	ErrInvalidTimeout      = errors.New("http.total_timeout_ms must be > 0")
	ErrInvalidConcurrency  = errors.New("batch.concurrency must be >= 0")
	ErrInvalidStorage      = errors.New("storage.driver must be empty, 'mssql' or 'postgres'")
	ErrMissingDSN          = errors.New("storage.dsn is required when storage.driver is set")
	ErrInvalidScheduler    = errors.New("scheduler.mode must be 'interval', 'cron' or 'oneshot'")
	ErrInvalidLogLevel     = errors.New("observability.log_level must be one of: debug, info, warn, error")
	ErrMissingSourcesFile  = errors.New("sources_file is required")
	ErrInvalidRateLimit    = errors.New("rate_limit values must be >= 0")
	ErrInvalidAvailability = errors.New("availability.cache_ttl_s must be >= 0")
)

type Config struct {
	SourcesFile   string              `yaml:"sources_file"`
	HTTP          HttpConfig          `yaml:"http"`
	Retry         RetryConfig         `yaml:"retry"`
	Availability  AvailabilityConfig  `yaml:"availability"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Robots        RobotsConfig        `yaml:"robots"`
	Batch         BatchConfig         `yaml:"batch"`
	Storage       StorageConfig       `yaml:"storage"`
	Scheduler     SchedulerConfig     `yaml:"scheduler"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type HttpConfig struct {
	UserAgent      string `yaml:"user_agent"`
	Accept         string `yaml:"accept"`
	AcceptLanguage string `yaml:"accept_language"`
	TotalTimeoutMS int    `yaml:"total_timeout_ms"`
	MaxBodyBytes   int64  `yaml:"max_body_bytes"`
}

type RetryConfig struct {
	MaxAttempts     int `yaml:"max_attempts"`
	BackoffUnitMS   int `yaml:"backoff_unit_ms"`
	MaxBackoffUnits int `yaml:"max_backoff_units"`
}

type AvailabilityConfig struct {
	// 0: кэш живёт всё время работы процесса
	CacheTTLS int `yaml:"cache_ttl_s"`
}

type RateLimitConfig struct {
	// 0: ограничение отключено
	MaxConcurrentPerHost int `yaml:"max_concurrent_per_host"`
	RPM                  int `yaml:"rpm"`
}

type RobotsConfig struct {
	Enabled       bool `yaml:"enabled"`
	CacheTTLHours int  `yaml:"cache_ttl_hours"`
}

type BatchConfig struct {
	// 0: без ограничения параллелизма
	Concurrency     int    `yaml:"concurrency"`
	DefaultLanguage string `yaml:"default_language"`
	MaxKeywords     int    `yaml:"max_keywords"`
}

type StorageConfig struct {
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type SchedulerConfig struct {
	Mode      string `yaml:"mode"`
	IntervalS int    `yaml:"interval_s"`
	CronExpr  string `yaml:"cron_expr"`
}

type ObservabilityConfig struct {
	LogPath     string `yaml:"log_path"`
	LogLevel    string `yaml:"log_level"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default значения по умолчанию; YAML и переменные окружения накладываются поверх
func Default() Config {
	return Config{
		SourcesFile: "sources.yaml",
		HTTP: HttpConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			AcceptLanguage: "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7",
			TotalTimeoutMS: 30000,
			MaxBodyBytes:   10 << 20,
		},
		Retry: RetryConfig{
			MaxAttempts:     3,
			BackoffUnitMS:   1000,
			MaxBackoffUnits: 10,
		},
		Robots: RobotsConfig{
			CacheTTLHours: 12,
		},
		Batch: BatchConfig{
			Concurrency:     3,
			DefaultLanguage: "ru",
			MaxKeywords:     10,
		},
		Storage: StorageConfig{
			CommandTimeoutMS: 5000,
		},
		Scheduler: SchedulerConfig{
			Mode:      "oneshot",
			IntervalS: 3600,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

// Validation
func (c *Config) Validate() error {
	if c.SourcesFile == "" {
		return ErrMissingSourcesFile
	}
	if c.HTTP.TotalTimeoutMS <= 0 {
		return ErrInvalidTimeout
	}
	if c.HTTP.MaxBodyBytes < 0 {
		return fmt.Errorf("http.max_body_bytes must be >= 0")
	}
	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if c.Retry.BackoffUnitMS <= 0 {
		return ErrInvalidBackoffUnit
	}
	if c.Retry.MaxBackoffUnits <= 0 {
		return ErrInvalidMaxBackoff
	}
	if c.Availability.CacheTTLS < 0 {
		return ErrInvalidAvailability
	}
	if c.RateLimit.MaxConcurrentPerHost < 0 || c.RateLimit.RPM < 0 {
		return ErrInvalidRateLimit
	}
	if c.Robots.Enabled && c.Robots.CacheTTLHours <= 0 {
		return fmt.Errorf("robots.cache_ttl_hours must be > 0 when robots.enabled is true")
	}
	if c.Batch.Concurrency < 0 {
		return ErrInvalidConcurrency
	}
	if c.Batch.MaxKeywords <= 0 {
		return fmt.Errorf("batch.max_keywords must be > 0")
	}
	switch c.Storage.Driver {
	case "":
	case "mssql", "postgres":
		if c.Storage.DSN == "" {
			return ErrMissingDSN
		}
		if c.Storage.CommandTimeoutMS <= 0 {
			return fmt.Errorf("storage.command_timeout_ms must be > 0")
		}
	default:
		return ErrInvalidStorage
	}
	switch c.Scheduler.Mode {
	case "oneshot":
	case "interval":
		if c.Scheduler.IntervalS <= 0 {
			return fmt.Errorf("scheduler.interval_s must be > 0 when mode is 'interval'")
		}
	case "cron":
		if c.Scheduler.CronExpr == "" {
			return fmt.Errorf("scheduler.cron_expr must be set when mode is 'cron'")
		}
	default:
		return ErrInvalidScheduler
	}
	switch c.Observability.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	return nil
}

// Getters
func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetBackoffUnit() time.Duration {
	return time.Duration(c.Retry.BackoffUnitMS) * time.Millisecond
}

func (c *Config) GetAvailabilityTTL() time.Duration {
	return time.Duration(c.Availability.CacheTTLS) * time.Second
}

func (c *Config) GetRobotsCacheTTL() time.Duration {
	return time.Duration(c.Robots.CacheTTLHours) * time.Hour
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (s SchedulerConfig) GetInterval() time.Duration {
	return time.Duration(s.IntervalS) * time.Second
}

// DefaultHeaders базовый набор заголовков, поверх которого накладываются заголовки источника
func (c *Config) DefaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      c.HTTP.UserAgent,
		"Accept":          c.HTTP.Accept,
		"Accept-Language": c.HTTP.AcceptLanguage,
	}
}
