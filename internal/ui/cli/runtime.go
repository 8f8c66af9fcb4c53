package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	coreapp "declschema/internal/core/app"
	"declschema/internal/core/config"
	"declschema/internal/core/ports"
	"declschema/internal/shared/observability"
)

func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Fprintf(stdout, "declschema v%s\n", versionString)
		return 0
	}
	if err := validateArgs(opts); err != nil {
		fmt.Fprintf(stderr, "declschema: %v\n", err)
		return 2
	}

	cfg, err := config.LoadOrDefault(opts.configPath, opts.set["config"])
	if err != nil {
		fmt.Fprintf(stderr, "declschema: failed to load config: %v\n", err)
		return 1
	}
	applyFlagOverrides(opts, cfg)
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "declschema: %v\n", err)
		return 1
	}

	logger := configureLogging(stderr, cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint, versionString)
	if err != nil {
		logger.Warn("tracing disabled", "endpoint", cfg.Observability.OTLPEndpoint, "error", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	appOpts := []coreapp.Option{coreapp.WithOutput(stdout), coreapp.WithLogger(logger)}
	if _, err := os.Stat(opts.configPath); err == nil {
		appOpts = append(appOpts, coreapp.WithConfigReload(opts.configPath, func(next *config.Config) {
			applyFlagOverrides(opts, next)
		}))
	}
	a, err := coreapp.New(cfg, appOpts...)
	if err != nil {
		fmt.Fprintf(stderr, "declschema: failed to initialize: %v\n", err)
		return 1
	}

	svc := a.ExtractionService()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := svc.Close(closeCtx); err != nil {
			logger.Warn("shutdown failed", "error", err)
		}
	}()

	req := ports.ExtractRequest{Path: opts.args[0]}
	if opts.watch {
		err = svc.Watch(ctx, req)
	} else {
		var res ports.ExtractResult
		res, err = svc.Run(ctx, req)
		if err == nil {
			logger.Debug("extraction finished", "files", res.Files, "declarations", res.Declarations)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "declschema: %v\n", err)
		return 1
	}
	return 0
}

// configureLogging installs the default logger. Logs always go to stderr so
// stdout carries nothing but the schema document.
func configureLogging(w io.Writer, cfg config.Logging) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
