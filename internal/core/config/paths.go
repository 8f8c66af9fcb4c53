package config

import (
	"path/filepath"
	"strings"
)

// ResolveRelative joins value onto base unless value is absolute. An empty
// value resolves to base.
func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}

// OutputPath maps an input file below inputRoot to its batch output file.
// Without an output directory the output lands next to the input.
func OutputPath(cfg *Config, inputRoot, file string) (string, error) {
	rel, err := filepath.Rel(inputRoot, file)
	if err != nil {
		return "", err
	}
	dir := strings.TrimSpace(cfg.Output.Dir)
	if dir == "" {
		dir = inputRoot
	}
	return filepath.Join(filepath.Clean(dir), rel+cfg.Output.FileSuffix()), nil
}
