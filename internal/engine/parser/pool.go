package parser

import (
	"sync"
	"time"

	"declschema/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool recycles tree-sitter parsers for one grammar. Watch and batch
// runs parse many files with the same language; reusing parsers avoids the
// per-file sitter.NewParser()/Close() cost.
//
// Concurrency: safe for use by multiple goroutines simultaneously.
type ParserPool struct {
	lang *sitter.Language
	pool sync.Pool

	leases   map[*sitter.Parser]time.Time
	leasesMu sync.Mutex
}

// NewParserPool checks that lang can be loaded by the linked tree-sitter
// runtime and seeds the pool with the parser used for the check.
func NewParserPool(lang *sitter.Language) (*ParserPool, error) {
	seed, err := newLanguageParser(lang)
	if err != nil {
		return nil, err
	}
	p := &ParserPool{
		lang:   lang,
		leases: make(map[*sitter.Parser]time.Time),
	}
	p.pool = sync.Pool{
		New: func() any {
			sp, err := newLanguageParser(lang)
			if err != nil {
				return err
			}
			return sp
		},
	}
	p.pool.Put(seed)
	return p, nil
}

func newLanguageParser(lang *sitter.Language) (*sitter.Parser, error) {
	if lang == nil {
		return nil, errors.New(errors.CodeNotSupported, "nil grammar")
	}
	sp := sitter.NewParser()
	if err := sp.SetLanguage(lang); err != nil {
		sp.Close()
		return nil, errors.Wrap(err, errors.CodeNotSupported, "grammar rejected by tree-sitter runtime")
	}
	return sp, nil
}

// Get leases a parser configured for the pool's grammar.
func (p *ParserPool) Get() (*sitter.Parser, error) {
	switch v := p.pool.Get().(type) {
	case *sitter.Parser:
		p.leasesMu.Lock()
		p.leases[v] = time.Now()
		p.leasesMu.Unlock()
		return v, nil
	case error:
		return nil, v
	default:
		return nil, errors.Newf(errors.CodeInternal, "parser pool returned %T", v)
	}
}

// Put resets sp and returns it to the pool. Trees produced by sp stay valid.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}

	p.leasesMu.Lock()
	delete(p.leases, sp)
	p.leasesMu.Unlock()

	sp.Reset()
	p.pool.Put(sp)
}

// Active returns the number of parsers currently leased out.
func (p *ParserPool) Active() int {
	p.leasesMu.Lock()
	defer p.leasesMu.Unlock()
	return len(p.leases)
}
