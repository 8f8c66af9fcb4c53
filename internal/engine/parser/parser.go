package parser

import (
	"fmt"
	"os"
	"sync"
	"time"

	"declschema/internal/core/errors"
	"declschema/internal/engine/resolver"
)

type Options struct {
	// Language forces a grammar regardless of file extension. Empty means detect.
	Language    string
	MaxFileSize int64
	// Strict rejects sources that tree-sitter could only parse with error recovery.
	Strict   bool
	Resolver []resolver.Option
}

type Parser struct {
	loader *GrammarLoader
	opts   Options

	poolsMu sync.Mutex
	pools   map[string]*ParserPool
}

func NewParser(loader *GrammarLoader, opts Options) *Parser {
	return &Parser{
		loader: loader,
		opts:   opts,
		pools:  make(map[string]*ParserPool),
	}
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.languageFor(path) != ""
}

func (p *Parser) SupportedExtensions() []string {
	return p.loader.SupportedExtensions()
}

// ParseFile reads path from disk and parses it.
func (p *Parser) ParseFile(path string) (*Unit, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.CodeNotFound, "input file not found")
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "stat input file")
	}
	if info.IsDir() {
		return nil, errors.Newf(errors.CodeValidationError, "%s is a directory", path).WithContext(errors.CtxPath, path)
	}
	if p.opts.MaxFileSize > 0 && info.Size() > p.opts.MaxFileSize {
		return nil, errors.Newf(errors.CodeValidationError, "file is %d bytes, limit is %d", info.Size(), p.opts.MaxFileSize).
			WithContext(errors.CtxPath, path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "read input file")
	}
	return p.Parse(path, content)
}

// Parse builds a Unit from in-memory content. path is used for language
// detection and error context only.
func (p *Parser) Parse(path string, content []byte) (*Unit, error) {
	lang := p.languageFor(path)
	if lang == "" {
		return nil, errors.Newf(errors.CodeNotSupported, "unsupported file type").WithContext(errors.CtxPath, path)
	}
	if p.opts.MaxFileSize > 0 && int64(len(content)) > p.opts.MaxFileSize {
		return nil, errors.Newf(errors.CodeValidationError, "file is %d bytes, limit is %d", len(content), p.opts.MaxFileSize).
			WithContext(errors.CtxPath, path)
	}

	pool, err := p.pool(lang)
	if err != nil {
		return nil, err
	}
	sp, err := pool.Get()
	if err != nil {
		return nil, errors.AddContext(errors.AddContext(err, errors.CtxPath, path), errors.CtxLanguage, lang)
	}
	defer pool.Put(sp)

	tree := sp.Parse(content, nil)
	if tree == nil {
		return nil, errors.Newf(errors.CodeInternal, "parse failed").
			WithContext(errors.CtxPath, path).
			WithContext(errors.CtxLanguage, lang)
	}

	root := tree.RootNode()
	unit := &Unit{
		Path:         path,
		Language:     lang,
		Source:       content,
		Tree:         tree,
		Root:         root,
		SyntaxErrors: root.HasError(),
		ParsedAt:     time.Now(),
	}
	if unit.SyntaxErrors && p.opts.Strict {
		unit.Close()
		return nil, errors.Newf(errors.CodeValidationError, "source contains syntax errors").
			WithContext(errors.CtxPath, path).
			WithContext(errors.CtxLanguage, lang)
	}
	unit.Resolver = resolver.Build(root, content, p.opts.Resolver...)
	return unit, nil
}

func (p *Parser) languageFor(path string) string {
	if p.opts.Language != "" {
		return p.opts.Language
	}
	return p.loader.DetectLanguage(path)
}

func (p *Parser) pool(lang string) (*ParserPool, error) {
	p.poolsMu.Lock()
	defer p.poolsMu.Unlock()
	if pool, ok := p.pools[lang]; ok {
		return pool, nil
	}
	grammar := p.loader.Language(lang)
	if grammar == nil {
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("grammar not loaded: %s", lang))
	}
	pool, err := NewParserPool(grammar)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxLanguage, lang)
	}
	p.pools[lang] = pool
	return pool, nil
}
