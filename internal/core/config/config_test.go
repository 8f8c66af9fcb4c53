package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"declschema/internal/core/errors"
	"declschema/internal/schema"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "declschema.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[parser]
language = "TSX"
max_file_size = 1024
strict = true

[resolver]
globals = ["NodeJS", "Express"]
allow_unresolved = true

[output]
format = "yaml"
pretty = true
toplevel_key = "<root>"
dir = "out"

[batch]
include = ["src/**.ts"]
exclude = ["**.test.ts"]

[watch]
debounce = "1s"
max_rate = 2.5

[logging]
level = "debug"
format = "json"

[observability]
metrics_addr = ":9102"
metrics_textfile = "metrics.prom"
otlp_endpoint = "localhost:4317"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Parser.Language != "tsx" {
		t.Errorf("expected language tsx, got %q", cfg.Parser.Language)
	}
	if cfg.Parser.MaxFileSize != 1024 || !cfg.Parser.Strict {
		t.Errorf("unexpected parser section: %+v", cfg.Parser)
	}
	if len(cfg.Resolver.Globals) != 2 || !cfg.Resolver.AllowUnresolved {
		t.Errorf("unexpected resolver section: %+v", cfg.Resolver)
	}
	if cfg.Output.Format != FormatYAML || !cfg.Output.Pretty || cfg.Output.ToplevelKey != "<root>" {
		t.Errorf("unexpected output section: %+v", cfg.Output)
	}
	if got := cfg.Output.FileSuffix(); got != ".schema.yaml" {
		t.Errorf("expected suffix .schema.yaml, got %q", got)
	}
	if len(cfg.Batch.Include) != 1 || cfg.Batch.Include[0] != "src/**.ts" {
		t.Errorf("unexpected include: %v", cfg.Batch.Include)
	}
	if cfg.Watch.Debounce != time.Second || cfg.Watch.MaxRate != 2.5 {
		t.Errorf("unexpected watch section: %+v", cfg.Watch)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging section: %+v", cfg.Logging)
	}
	if cfg.Observability.MetricsAddr != ":9102" || cfg.Observability.OTLPEndpoint != "localhost:4317" {
		t.Errorf("unexpected observability section: %+v", cfg.Observability)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Output.Format != FormatJSON {
		t.Errorf("expected json default, got %q", cfg.Output.Format)
	}
	if cfg.Output.ToplevelKey != schema.DefaultToplevelKey {
		t.Errorf("expected %q, got %q", schema.DefaultToplevelKey, cfg.Output.ToplevelKey)
	}
	if cfg.Output.FileSuffix() != ".schema.json" {
		t.Errorf("unexpected default suffix %q", cfg.Output.FileSuffix())
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("unexpected debounce %v", cfg.Watch.Debounce)
	}
	if cfg.Parser.MaxFileSize != 8<<20 {
		t.Errorf("unexpected max file size %d", cfg.Parser.MaxFileSize)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"version":      "version = 3",
		"language":     "[parser]\nlanguage = \"rust\"",
		"format":       "[output]\nformat = \"xml\"",
		"toplevel key": "[output]\ntoplevel_key = \"a.b\"",
		"suffix":       "[output]\nsuffix = \"x/y\"",
		"glob":         "[batch]\ninclude = [\"src/[a\"]",
		"rate":         "[watch]\nmax_rate = -1.0",
		"level":        "[logging]\nlevel = \"trace\"",
		"log format":   "[logging]\nformat = \"xml\"",
		"toml":         "[parser\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsCode(err, errors.CodeValidationError) {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "declschema.toml")

	cfg, err := LoadOrDefault(missing, false)
	if err != nil {
		t.Fatalf("implicit missing config must fall back to defaults: %v", err)
	}
	if cfg.Output.Format != FormatJSON {
		t.Errorf("unexpected format %q", cfg.Output.Format)
	}

	_, err = LoadOrDefault(missing, true)
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("explicit missing config must fail with NOT_FOUND, got %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DECLSCHEMA_OUTPUT_FORMAT", "yaml")
	t.Setenv("DECLSCHEMA_PARSER_STRICT", "true")
	t.Setenv("DECLSCHEMA_PARSER_MAX_FILE_SIZE", "42")
	t.Setenv("DECLSCHEMA_RESOLVER_GLOBALS", "NodeJS, Buffer ,")
	t.Setenv("DECLSCHEMA_WATCH_DEBOUNCE", "2s")
	t.Setenv("DECLSCHEMA_WATCH_MAX_RATE", "not-a-number")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "none.toml"), false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Format != FormatYAML || cfg.Output.FileSuffix() != ".schema.yaml" {
		t.Errorf("format override not applied: %+v", cfg.Output)
	}
	if !cfg.Parser.Strict || cfg.Parser.MaxFileSize != 42 {
		t.Errorf("parser overrides not applied: %+v", cfg.Parser)
	}
	if len(cfg.Resolver.Globals) != 2 || cfg.Resolver.Globals[1] != "Buffer" {
		t.Errorf("unexpected globals %v", cfg.Resolver.Globals)
	}
	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("unexpected debounce %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.MaxRate != 4 {
		t.Errorf("malformed override must be ignored, got %v", cfg.Watch.MaxRate)
	}
}

func TestOutputPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.Dir = "out"

	got, err := OutputPath(cfg, "src", filepath.Join("src", "lib", "a.d.ts"))
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("out", "lib", "a.d.ts.schema.json")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	cfg.Output.Dir = ""
	got, err = OutputPath(cfg, "src", filepath.Join("src", "a.d.ts"))
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("src", "a.d.ts.schema.json"); got != want {
		t.Errorf("expected %q next to the input, got %q", want, got)
	}

	if got := ResolveRelative("/base", "rel/x"); got != filepath.Clean("/base/rel/x") {
		t.Errorf("unexpected relative resolution %q", got)
	}
	if got := ResolveRelative("/base", ""); got != filepath.Clean("/base") {
		t.Errorf("unexpected empty resolution %q", got)
	}
}
