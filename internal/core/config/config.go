package config

import (
	"os"
	"strings"
	"time"

	"declschema/internal/core/errors"
	"declschema/internal/schema"

	"github.com/BurntSushi/toml"
)

// DefaultPath is read when no -config flag is given. A missing default file
// is not an error.
const DefaultPath = "declschema.toml"

type Config struct {
	Version       int           `toml:"version"`
	Parser        Parser        `toml:"parser"`
	Resolver      Resolver      `toml:"resolver"`
	Output        Output        `toml:"output"`
	Batch         Batch         `toml:"batch"`
	Watch         Watch         `toml:"watch"`
	Logging       Logging       `toml:"logging"`
	Observability Observability `toml:"observability"`
}

type Parser struct {
	// Language forces a grammar ("typescript" or "tsx"); empty detects by extension.
	Language    string `toml:"language"`
	MaxFileSize int64  `toml:"max_file_size"`
	Strict      bool   `toml:"strict"`
}

type Resolver struct {
	// Globals are ambient names accepted as supertypes in addition to the
	// built-in ES/DOM library names.
	Globals         []string `toml:"globals"`
	AllowUnresolved bool     `toml:"allow_unresolved"`
}

type Output struct {
	Format      string `toml:"format"`
	Pretty      bool   `toml:"pretty"`
	ToplevelKey string `toml:"toplevel_key"`
	Dir         string `toml:"dir"`
	Suffix      string `toml:"suffix"`
}

// FileSuffix is appended to the relative input path of each batch output.
func (o Output) FileSuffix() string {
	if suffix := strings.TrimSpace(o.Suffix); suffix != "" {
		return suffix
	}
	return ".schema." + o.Format
}

type Batch struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// MaxRate bounds re-extractions per second.
	MaxRate float64 `toml:"max_rate"`
}

type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type Observability struct {
	MetricsAddr     string `toml:"metrics_addr"`
	MetricsTextfile string `toml:"metrics_textfile"`
	OTLPEndpoint    string `toml:"otlp_endpoint"`
}

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.CodeNotFound, "config file not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "read config file")
	}
	return Parse(data)
}

// LoadOrDefault loads path, falling back to DefaultConfig when path is the
// implicit default and does not exist. Environment overrides are applied in
// both cases.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if explicit || !errors.IsCode(err, errors.CodeNotFound) {
			return nil, err
		}
		cfg = DefaultConfig()
	}
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML config content, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "decode config")
	}

	applyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Validate(cfg *Config) error {
	validators := []func(*Config) error{
		validateVersion,
		validateParser,
		validateOutput,
		validateBatch,
		validateWatch,
		validateLogging,
	}
	for _, validate := range validators {
		if err := validate(cfg); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, "invalid config")
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	cfg.Parser.Language = strings.ToLower(strings.TrimSpace(cfg.Parser.Language))
	if cfg.Parser.MaxFileSize == 0 {
		cfg.Parser.MaxFileSize = 8 << 20
	}

	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if cfg.Output.Format == "" {
		cfg.Output.Format = FormatJSON
	}
	if strings.TrimSpace(cfg.Output.ToplevelKey) == "" {
		cfg.Output.ToplevelKey = schema.DefaultToplevelKey
	}

	if len(cfg.Batch.Include) == 0 {
		cfg.Batch.Include = []string{"**.ts", "**.tsx", "**.mts", "**.cts"}
	}
	if len(cfg.Batch.Exclude) == 0 {
		cfg.Batch.Exclude = []string{"{node_modules,**/node_modules}/**", "{.git,**/.git}/**"}
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 250 * time.Millisecond
	}
	if cfg.Watch.MaxRate == 0 {
		cfg.Watch.MaxRate = 4
	}

	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}
