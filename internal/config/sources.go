package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"medical-news-scraper/internal/source"
)

type sourcesFile struct {
	Sources []source.Descriptor `yaml:"sources"`
}

// LoadSources загружает описания источников из YAML файла
func LoadSources(filePath string) ([]source.Descriptor, error) {
	if filePath == "" {
		return nil, fmt.Errorf("sources file path is empty")
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sources file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close sources file: %v\n", closeErr)
		}
	}()

	var parsed sourcesFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse sources YAML: %w", err)
	}

	if err := validateSources(parsed.Sources); err != nil {
		return nil, err
	}

	return parsed.Sources, nil
}

// validateSources проверяет каждый источник и уникальность имён
func validateSources(sources []source.Descriptor) error {
	if len(sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}
	seen := make(map[string]struct{}, len(sources))
	for i := range sources {
		if err := sources[i].Validate(); err != nil {
			return fmt.Errorf("sources[%d]: %w", i, err)
		}
		if _, dup := seen[sources[i].Name]; dup {
			return fmt.Errorf("sources[%d]: duplicate source name %q", i, sources[i].Name)
		}
		seen[sources[i].Name] = struct{}{}
	}
	return nil
}
