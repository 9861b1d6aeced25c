package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Переменные окружения, перекрывающие YAML
const (
	envMaxRetries         = "MAX_RETRIES"
	envRequestTimeout     = "REQUEST_TIMEOUT" // секунды
	envConcurrentRequests = "CONCURRENT_REQUESTS"
	envScrapingInterval   = "SCRAPING_INTERVAL" // секунды
	envDatabaseURL        = "DATABASE_URL"
	envLogLevel           = "LOG_LEVEL"
)

// LoadDotEnv подгружает .env файлы; отсутствие файла не считается ошибкой
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

func LoadConfig(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			// Логируем ошибку, но не возвращаем, иначе перезапишем основную ошибку
			log.Printf("Warning: failed to close config file: %v", closeErr)
		}
	}()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyEnvOverrides(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	// Относительный путь к источникам считаем от каталога конфига
	if cfg.SourcesFile != "" && !filepath.IsAbs(cfg.SourcesFile) {
		cfg.SourcesFile = filepath.Join(filepath.Dir(filePath), cfg.SourcesFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnvOverrides(lookup func(string) (string, bool)) error {
	intVar := func(name string, dst *int, scale int) error {
		v, ok := lookup(name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = n * scale
		return nil
	}

	if err := intVar(envMaxRetries, &c.Retry.MaxAttempts, 1); err != nil {
		return err
	}
	if err := intVar(envRequestTimeout, &c.HTTP.TotalTimeoutMS, 1000); err != nil {
		return err
	}
	if err := intVar(envConcurrentRequests, &c.Batch.Concurrency, 1); err != nil {
		return err
	}
	if v, ok := lookup(envScrapingInterval); ok && v != "" {
		if err := intVar(envScrapingInterval, &c.Scheduler.IntervalS, 1); err != nil {
			return err
		}
		c.Scheduler.Mode = "interval"
	}
	if v, ok := lookup(envDatabaseURL); ok && v != "" {
		c.Storage.DSN = v
	}
	if v, ok := lookup(envLogLevel); ok && v != "" {
		c.Observability.LogLevel = v
	}
	return nil
}
