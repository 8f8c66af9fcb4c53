package app

import (
	"context"
	"os"
	"time"

	"declschema/internal/core/config"
	"declschema/internal/core/errors"
	"declschema/internal/core/ports"
	"declschema/internal/core/watcher"
	"declschema/internal/shared/observability"
	"declschema/internal/shared/util"
)

// Watch runs req once and then re-extracts changed inputs until ctx is done.
// Failed re-extractions are logged and the watch continues.
func (a *App) Watch(ctx context.Context, req ports.ExtractRequest) error {
	info, err := os.Stat(req.Path)
	if err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "input path not found"), errors.CtxPath, req.Path)
	}
	cfg := a.Config()

	if _, err := a.Run(ctx, req); err != nil {
		a.Logger.Error("initial extraction failed", "path", req.Path, "error", err)
	}

	matcher, err := util.NewPathMatcher(cfg.Batch.Include, cfg.Batch.Exclude)
	if err != nil {
		return errors.Wrap(err, errors.CodeValidationError, "compile batch globs")
	}
	limiter := util.NewLimiter(cfg.Watch.MaxRate, 1)
	batch := info.IsDir()

	w, err := watcher.NewWatcher(cfg.Watch.Debounce, matcher, func(paths []string) {
		a.handleChanges(ctx, req.Path, batch, limiter, paths)
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "create file watcher")
	}
	defer w.Close()
	if err := w.Watch([]string{req.Path}); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "watch input"), errors.CtxPath, req.Path)
	}

	if addr := cfg.Observability.MetricsAddr; addr != "" {
		srv := observability.NewMetricsServer(addr)
		if err := srv.Start(ctx); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "start metrics server")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				a.Logger.Warn("metrics server shutdown failed", "error", err)
			}
		}()
	}

	if a.configPath != "" {
		cw := config.NewWatcher(a.configPath, func(next *config.Config) {
			if a.adjust != nil {
				a.adjust(next)
			}
			if err := a.ApplyConfig(next); err != nil {
				a.Logger.Warn("failed to apply reloaded configuration", "error", err)
				return
			}
			w.SetDebounce(next.Watch.Debounce)
		})
		if err := cw.Start(ctx); err != nil {
			a.Logger.Warn("config hot reload disabled", "path", a.configPath, "error", err)
		} else {
			defer cw.Stop()
		}
	}

	a.Logger.Info("watching for changes",
		"path", req.Path,
		"debounce", cfg.Watch.Debounce,
		"rate_limited", !limiter.Unlimited(),
		"max_rate", cfg.Watch.MaxRate,
	)
	<-ctx.Done()
	a.Logger.Info("watch stopped", "path", req.Path)
	return nil
}

func (a *App) handleChanges(ctx context.Context, root string, batch bool, limiter *util.Limiter, paths []string) {
	for _, path := range paths {
		if ctx.Err() != nil {
			return
		}
		delayed, err := limiter.Acquire(ctx)
		if delayed {
			observability.WatcherThrottledTotal.Inc()
		}
		if err != nil {
			return
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.handleRemoved(root, batch, path)
			continue
		}

		start := time.Now()
		if batch {
			_, _, err = a.extractTo(ctx, a.Config(), root, path)
		} else {
			_, err = a.RunFile(ctx, path)
		}
		if err != nil {
			a.Logger.Error("re-extraction failed", "path", path, "error", err)
			continue
		}
		a.Logger.Info("re-extracted", "path", path, "duration", time.Since(start))
	}
}

// handleRemoved deletes the batch output of a removed input.
func (a *App) handleRemoved(root string, batch bool, path string) {
	if !batch {
		a.Logger.Warn("watched input removed", "path", path)
		return
	}
	out, err := config.OutputPath(a.Config(), root, path)
	if err != nil {
		a.Logger.Warn("cannot map removed input to its output", "path", path, "error", err)
		return
	}
	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		a.Logger.Warn("failed to remove stale output", "path", out, "error", err)
		return
	}
	a.Logger.Info("removed output of deleted input", "input", path, "output", out)
}
