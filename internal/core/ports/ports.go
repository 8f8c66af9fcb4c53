package ports

import (
	"context"

	"declschema/internal/engine/parser"
	"declschema/internal/schema"
)

// SourceParser abstracts the front-end that turns source files into parsed
// units with a semantic resolver attached.
type SourceParser interface {
	ParseFile(path string) (*parser.Unit, error)
	Parse(path string, content []byte) (*parser.Unit, error)
	IsSupportedPath(path string) bool
}

// ExtractRequest names an input file or directory.
type ExtractRequest struct {
	Path string
}

// ExtractResult summarizes a completed extraction run.
type ExtractResult struct {
	Files        int
	Declarations int
	// Written lists the output files of a batch run. Single-file runs write
	// to the configured writer and leave it empty.
	Written []string
}

// ExtractionService is the driving port used by the CLI.
type ExtractionService interface {
	// Extract parses one file and returns its declaration schema.
	Extract(ctx context.Context, path string) (schema.Schema, error)
	// Run extracts a file (to the output writer) or a directory (to files).
	Run(ctx context.Context, req ExtractRequest) (ExtractResult, error)
	// Watch runs once and then re-extracts on change until ctx is done.
	Watch(ctx context.Context, req ExtractRequest) error
	Close(ctx context.Context) error
}
