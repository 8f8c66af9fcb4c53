package extract

import (
	"declschema/internal/core/errors"
	"declschema/internal/engine/resolver"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// describer turns syntax nodes of one file into schema records. It holds no
// state besides the file source and the resolver used for heritage clauses.
type describer struct {
	source   []byte
	resolver resolver.SupertypeResolver
}

func (d *describer) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(d.source[node.StartByte():node.EndByte()])
}

func (d *describer) unsupported(what string, node *sitter.Node) error {
	return errors.Newf(errors.CodeUnsupportedMember, "unsupported %s %q", what, node.Kind()).
		WithContext(errors.CtxNodeKind, node.Kind()).
		WithContext(errors.CtxLine, line(node))
}

func line(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// namedChildren returns the named children of node, without comments and
// decorators.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	out := make([]*sitter.Node, 0, node.ChildCount())
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		switch child.Kind() {
		case "comment", "decorator":
			continue
		}
		out = append(out, child)
	}
	return out
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	if children := namedChildren(node); len(children) > 0 {
		return children[0]
	}
	return nil
}

func childOfKind(node *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

func extend(ns []string, segments ...string) []string {
	out := make([]string, 0, len(ns)+len(segments))
	out = append(out, ns...)
	return append(out, segments...)
}
