package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"declschema/internal/core/config"
)

const versionString = "1.0.0"

type cliOptions struct {
	configPath string
	verbose    bool
	version    bool
	format     string
	pretty     bool
	outDir     string
	watch      bool
	args       []string

	// set records the flags given on the command line, so defaults never
	// override config file values.
	set map[string]bool
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("declschema", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: declschema [flags] <path>")
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", config.DefaultPath, "Path to config file")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.StringVar(&opts.format, "format", "", "Output format: json or yaml")
	fs.BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")
	fs.StringVar(&opts.outDir, "out", "", "Output directory for batch mode")
	fs.BoolVar(&opts.watch, "watch", false, "Re-extract inputs when they change")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	opts.args = fs.Args()
	return opts, nil
}

func validateArgs(opts cliOptions) error {
	switch len(opts.args) {
	case 1:
		return nil
	case 0:
		return fmt.Errorf("missing input path")
	default:
		return fmt.Errorf("expected one input path, got %d", len(opts.args))
	}
}

// applyFlagOverrides copies explicitly given output flags into cfg.
func applyFlagOverrides(opts cliOptions, cfg *config.Config) {
	if opts.set["format"] {
		cfg.Output.Format = strings.ToLower(strings.TrimSpace(opts.format))
	}
	if opts.set["pretty"] {
		cfg.Output.Pretty = opts.pretty
	}
	if opts.set["out"] {
		cfg.Output.Dir = opts.outDir
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
}
