package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"declschema/internal/core/config"
	"declschema/internal/core/errors"
	"declschema/internal/core/ports"
	"declschema/internal/engine/parser"
	"declschema/internal/engine/resolver"
	"declschema/internal/shared/observability"

	"github.com/google/uuid"
)

// App owns the configured parser and drives extraction runs. The config and
// parser are swapped together when watch mode reloads the config file.
type App struct {
	Logger *slog.Logger
	RunID  string

	mu     sync.RWMutex
	config *config.Config
	parser ports.SourceParser
	out    io.Writer

	// configPath is watched for changes in watch mode; adjust re-applies
	// command line overrides to each reloaded config.
	configPath string
	adjust     func(*config.Config)
}

var _ ports.SourceParser = (*parser.Parser)(nil)

type Option func(*App)

// WithOutput sets where single-file results are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// WithConfigReload makes watch mode reload path on change. adjust, when not
// nil, is applied to every reloaded config before it takes effect.
func WithConfigReload(path string, adjust func(*config.Config)) Option {
	return func(a *App) {
		a.configPath = path
		a.adjust = adjust
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.Logger = logger }
}

func New(cfg *config.Config, opts ...Option) (*App, error) {
	p, err := buildParser(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{
		RunID:  uuid.NewString(),
		config: cfg,
		parser: p,
		out:    os.Stdout,
		Logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.Logger = a.Logger.With("run_id", a.RunID)
	return a, nil
}

func buildParser(cfg *config.Config) (*parser.Parser, error) {
	loader, err := parser.NewGrammarLoader()
	if err != nil {
		return nil, err
	}
	return parser.NewParser(loader, parser.Options{
		Language:    cfg.Parser.Language,
		MaxFileSize: cfg.Parser.MaxFileSize,
		Strict:      cfg.Parser.Strict,
		Resolver: []resolver.Option{
			resolver.WithGlobals(cfg.Resolver.Globals...),
			resolver.WithAllowUnresolved(cfg.Resolver.AllowUnresolved),
		},
	}), nil
}

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

// ApplyConfig replaces the active configuration. Runs already in flight keep
// the snapshot they started with.
func (a *App) ApplyConfig(cfg *config.Config) error {
	p, err := buildParser(cfg)
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.config = cfg
	a.parser = p
	a.mu.Unlock()
	a.Logger.Info("configuration applied",
		"format", cfg.Output.Format,
		"strict", cfg.Parser.Strict,
		"globals", len(cfg.Resolver.Globals),
	)
	return nil
}

func (a *App) snapshot() (*config.Config, ports.SourceParser) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config, a.parser
}

// Close flushes the metrics textfile when one is configured.
func (a *App) Close(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := a.Config().Observability.MetricsTextfile
	if path == "" {
		return nil
	}
	if err := observability.WriteTextfile(path); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "write metrics textfile")
	}
	a.Logger.Debug("metrics textfile written", "path", path)
	return nil
}
