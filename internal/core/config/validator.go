package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateParser(cfg *Config) error {
	switch cfg.Parser.Language {
	case "", "typescript", "tsx":
	default:
		return fmt.Errorf("parser.language must be one of: typescript, tsx")
	}
	if cfg.Parser.MaxFileSize < 0 {
		return fmt.Errorf("parser.max_file_size must be >= 0, got %d", cfg.Parser.MaxFileSize)
	}
	return nil
}

func validateOutput(cfg *Config) error {
	switch cfg.Output.Format {
	case FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("output.format must be one of: json, yaml")
	}
	if strings.Contains(cfg.Output.ToplevelKey, ".") {
		return fmt.Errorf("output.toplevel_key %q must not contain '.'", cfg.Output.ToplevelKey)
	}
	if strings.ContainsAny(cfg.Output.Suffix, `/\`) {
		return fmt.Errorf("output.suffix %q must not contain path separators", cfg.Output.Suffix)
	}
	return nil
}

func validateBatch(cfg *Config) error {
	for _, group := range []struct {
		name     string
		patterns []string
	}{
		{"batch.include", cfg.Batch.Include},
		{"batch.exclude", cfg.Batch.Exclude},
	} {
		for i, pattern := range group.patterns {
			if strings.TrimSpace(pattern) == "" {
				return fmt.Errorf("%s[%d] must not be empty", group.name, i)
			}
			if _, err := glob.Compile(pattern, '/'); err != nil {
				return fmt.Errorf("%s[%d] %q is not a valid glob: %w", group.name, i, pattern, err)
			}
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be >= 0")
	}
	if cfg.Watch.MaxRate < 0 {
		return fmt.Errorf("watch.max_rate must be >= 0")
	}
	return nil
}

func validateLogging(cfg *Config) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be one of: text, json")
	}
	return nil
}
