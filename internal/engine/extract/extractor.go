package extract

import (
	"declschema/internal/engine/parser"
	"declschema/internal/engine/resolver"
	"declschema/internal/schema"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Options struct {
	// ToplevelKey groups root-level declarations. Defaults to
	// schema.DefaultToplevelKey.
	ToplevelKey string
}

// declarationWalker accumulates the Declarations of each visited node and
// groups them by namespace when the walk ends.
type declarationWalker struct {
	describer   *describer
	toplevelKey string
}

func (w *declarationWalker) Visit(node *sitter.Node, ns []string) ([]schema.Declaration, error) {
	switch node.Kind() {
	case "module", "internal_module":
		return w.describer.modules(node, ns), nil
	}
	decl, err := w.describer.declaration(node, ns)
	if err != nil {
		return nil, err
	}
	return []schema.Declaration{decl}, nil
}

func (w *declarationWalker) Combine(decls []schema.Declaration, update schema.Declaration) []schema.Declaration {
	return append(decls, update)
}

func (w *declarationWalker) Finalize(decls []schema.Declaration) schema.Schema {
	return schema.Group(decls, w.toplevelKey)
}

// Extract builds the declaration schema of one syntax tree. It either
// describes every declaration or fails on the first unsupported construct.
func Extract(root *sitter.Node, source []byte, res resolver.SupertypeResolver, opts Options) (schema.Schema, error) {
	w := &declarationWalker{
		describer:   &describer{source: source, resolver: res},
		toplevelKey: opts.ToplevelKey,
	}
	return Walk[[]schema.Declaration, schema.Declaration, schema.Schema](root, w, nil)
}

// ExtractUnit runs Extract over a parsed unit using the unit's own symbol
// table as resolver.
func ExtractUnit(unit *parser.Unit, opts Options) (schema.Schema, error) {
	return Extract(unit.Root, unit.Source, unit.Resolver, opts)
}
