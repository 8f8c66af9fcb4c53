package resolver

import (
	"strings"

	"declschema/internal/core/errors"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// SupertypeResolver maps a supertype expression of a class or interface to
// the fully-qualified dotted name of the symbol it denotes.
type SupertypeResolver interface {
	ResolveSupertype(expr *sitter.Node) ([]string, error)
}

// maxAliasDepth bounds `import X = Y` chains.
const maxAliasDepth = 16

// SymbolTable is a per-file SupertypeResolver built from the declarations and
// imports of one syntax tree. It is read-only after Build.
type SymbolTable struct {
	source          []byte
	symbols         map[string]bool
	imports         map[string][]string
	aliases         map[string]importAlias
	globals         map[string]bool
	allowUnresolved bool
}

type Option func(*SymbolTable)

// WithGlobals adds ambient names on top of DefaultGlobals.
func WithGlobals(names ...string) Option {
	return func(t *SymbolTable) {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name != "" {
				t.globals[name] = true
			}
		}
	}
}

// WithAllowUnresolved makes unknown names resolve to themselves instead of
// failing.
func WithAllowUnresolved(allow bool) Option {
	return func(t *SymbolTable) {
		t.allowUnresolved = allow
	}
}

// Build indexes the declarations reachable from root without descending into
// function bodies.
func Build(root *sitter.Node, source []byte, opts ...Option) *SymbolTable {
	c := &collector{
		source:  source,
		symbols: make(map[string]bool),
		imports: make(map[string][]string),
		aliases: make(map[string]importAlias),
	}
	c.collect(root, nil)

	t := &SymbolTable{
		source:  source,
		symbols: c.symbols,
		imports: c.imports,
		aliases: c.aliases,
		globals: make(map[string]bool, len(DefaultGlobals)),
	}
	for _, name := range DefaultGlobals {
		t.globals[name] = true
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Has reports whether a fully-qualified name is declared in the file.
func (t *SymbolTable) Has(fqn string) bool {
	return t.symbols[fqn]
}

// Len returns the number of declared symbols.
func (t *SymbolTable) Len() int {
	return len(t.symbols)
}

func (t *SymbolTable) ResolveSupertype(expr *sitter.Node) ([]string, error) {
	if expr == nil {
		return nil, errors.New(errors.CodeResolutionFailure, "missing supertype expression")
	}
	ref, ok := t.referenceSegments(expr)
	if !ok {
		return nil, t.failure(expr, "supertype is not a named reference")
	}
	resolved, ok := t.resolve(EnclosingNamespace(expr, t.source), ref, 0)
	if !ok {
		return nil, t.failure(expr, "no declaration, import or ambient global matches")
	}
	return resolved, nil
}

func (t *SymbolTable) failure(expr *sitter.Node, reason string) error {
	text := string(t.source[expr.StartByte():expr.EndByte()])
	return errors.Newf(errors.CodeResolutionFailure, "cannot resolve supertype %q: %s", text, reason).
		WithContext(errors.CtxSymbol, text).
		WithContext(errors.CtxNodeKind, expr.Kind()).
		WithContext(errors.CtxLine, int(expr.StartPosition().Row)+1)
}

func (t *SymbolTable) referenceSegments(expr *sitter.Node) ([]string, bool) {
	switch expr.Kind() {
	case "generic_type":
		name := expr.ChildByFieldName("name")
		if name == nil {
			return nil, false
		}
		return t.referenceSegments(name)
	case "identifier", "type_identifier":
		return []string{string(t.source[expr.StartByte():expr.EndByte()])}, true
	case "nested_type_identifier", "nested_identifier", "member_expression":
		segments := splitDotted(string(t.source[expr.StartByte():expr.EndByte()]))
		if len(segments) == 0 {
			return nil, false
		}
		for _, seg := range segments {
			if !isIdentifier(seg) {
				return nil, false
			}
		}
		return segments, true
	}
	return nil, false
}

func (t *SymbolTable) resolve(scope, ref []string, depth int) ([]string, bool) {
	if len(ref) == 0 || depth > maxAliasDepth {
		return nil, false
	}
	for i := len(scope); i >= 0; i-- {
		outer := scope[:i]
		head := qualify(outer, ref[0])
		if t.symbols[head] {
			full := append(append([]string(nil), outer...), ref...)
			if t.symbols[strings.Join(full, ".")] {
				return full, true
			}
			return nil, false
		}
		if target, ok := t.imports[head]; ok {
			return append(append([]string(nil), target...), ref[1:]...), true
		}
		if alias, ok := t.aliases[head]; ok {
			base, ok := t.resolve(alias.scope, alias.target, depth+1)
			if !ok {
				return nil, false
			}
			return append(base, ref[1:]...), true
		}
	}
	if t.globals[ref[0]] || t.allowUnresolved {
		return append([]string(nil), ref...), true
	}
	return nil, false
}

// EnclosingNamespace returns the namespace segments of the modules that
// lexically contain node, outermost first. String-named modules keep quotes.
func EnclosingNamespace(node *sitter.Node, source []byte) []string {
	var chain [][]string
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Kind() {
		case "module", "internal_module":
			chain = append(chain, ModuleSegments(p.ChildByFieldName("name"), source, true))
		}
	}
	var scope []string
	for i := len(chain) - 1; i >= 0; i-- {
		scope = append(scope, chain[i]...)
	}
	return scope
}

func isIdentifier(value string) bool {
	if value == "" {
		return false
	}
	for i, r := range value {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r > 127:
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
