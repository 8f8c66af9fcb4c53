package extract

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// heritage resolves every supertype listed in the extends/implements clauses
// of a class or interface, in source order. It returns nil when the
// declaration has no clauses. Any unresolvable supertype fails the whole
// declaration.
func (d *describer) heritage(node *sitter.Node) ([][]string, error) {
	exprs := supertypeExprs(node)
	if exprs == nil {
		return nil, nil
	}
	out := make([][]string, 0, len(exprs))
	for _, expr := range exprs {
		fqn, err := d.resolver.ResolveSupertype(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, fqn)
	}
	return out, nil
}

func supertypeExprs(node *sitter.Node) []*sitter.Node {
	var clauses []*sitter.Node
	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case "class_heritage":
			clauses = append(clauses, namedChildren(child)...)
		case "extends_type_clause":
			clauses = append(clauses, child)
		}
	}
	if len(clauses) == 0 {
		return nil
	}
	exprs := []*sitter.Node{}
	for _, clause := range clauses {
		for _, expr := range namedChildren(clause) {
			if expr.Kind() == "type_arguments" {
				continue
			}
			exprs = append(exprs, expr)
		}
	}
	return exprs
}
