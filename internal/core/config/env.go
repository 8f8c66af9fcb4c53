package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: DECLSCHEMA_[SECTION]_[KEY] (e.g., DECLSCHEMA_OUTPUT_FORMAT).
func ApplyEnvOverrides(cfg *Config) {
	// Parser
	setEnvString(&cfg.Parser.Language, "DECLSCHEMA_PARSER_LANGUAGE")
	setEnvInt64(&cfg.Parser.MaxFileSize, "DECLSCHEMA_PARSER_MAX_FILE_SIZE")
	setEnvBool(&cfg.Parser.Strict, "DECLSCHEMA_PARSER_STRICT")

	// Resolver
	setEnvList(&cfg.Resolver.Globals, "DECLSCHEMA_RESOLVER_GLOBALS")
	setEnvBool(&cfg.Resolver.AllowUnresolved, "DECLSCHEMA_RESOLVER_ALLOW_UNRESOLVED")

	// Output
	setEnvString(&cfg.Output.Format, "DECLSCHEMA_OUTPUT_FORMAT")
	setEnvBool(&cfg.Output.Pretty, "DECLSCHEMA_OUTPUT_PRETTY")
	setEnvString(&cfg.Output.ToplevelKey, "DECLSCHEMA_OUTPUT_TOPLEVEL_KEY")
	setEnvString(&cfg.Output.Dir, "DECLSCHEMA_OUTPUT_DIR")
	setEnvString(&cfg.Output.Suffix, "DECLSCHEMA_OUTPUT_SUFFIX")

	// Batch
	setEnvList(&cfg.Batch.Include, "DECLSCHEMA_BATCH_INCLUDE")
	setEnvList(&cfg.Batch.Exclude, "DECLSCHEMA_BATCH_EXCLUDE")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "DECLSCHEMA_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.MaxRate, "DECLSCHEMA_WATCH_MAX_RATE")

	// Logging
	setEnvString(&cfg.Logging.Level, "DECLSCHEMA_LOGGING_LEVEL")
	setEnvString(&cfg.Logging.Format, "DECLSCHEMA_LOGGING_FORMAT")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "DECLSCHEMA_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.MetricsTextfile, "DECLSCHEMA_OBSERVABILITY_METRICS_TEXTFILE")
	setEnvString(&cfg.Observability.OTLPEndpoint, "DECLSCHEMA_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

// setEnvList reads a comma separated list.
func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		var items []string
		for _, item := range strings.Split(val, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		slog.Debug("applying env override", "key", key, "value", val)
		*target = items
	}
}

func setEnvInt64(target *int64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
