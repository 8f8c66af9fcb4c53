package extract

import (
	"declschema/internal/engine/resolver"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Namespaced is implemented by walker updates. The returned path is used as
// the namespace when the walker descends into the visited node.
type Namespaced interface {
	NamespacePath() []string
}

// NodeWalker folds the declaration nodes of a syntax tree into a single
// output. Visit may return several updates for one node; the walk descends
// with the path of the last one. No updates skips the node and its subtree.
type NodeWalker[S any, U Namespaced, O any] interface {
	Visit(node *sitter.Node, ns []string) (updates []U, err error)
	Combine(state S, update U) S
	Finalize(state S) O
}

type nodeClass int

const (
	classSkip nodeClass = iota
	classTransparent
	classDeclaration
)

// Walk traverses root depth-first in pre-order, starting with an empty
// namespace path. Updates are combined in visit order once traversal ends;
// the first Visit error aborts the walk.
func Walk[S any, U Namespaced, O any](root *sitter.Node, w NodeWalker[S, U, O], initial S) (O, error) {
	var updates []U

	var visit func(node *sitter.Node, ns []string) error
	visit = func(node *sitter.Node, ns []string) error {
		if node == nil {
			return nil
		}
		switch classify(node) {
		case classTransparent:
			return visitChildren(node, ns, visit)
		case classDeclaration:
			visited, err := w.Visit(node, ns)
			if err != nil {
				return err
			}
			if len(visited) == 0 {
				return nil
			}
			updates = append(updates, visited...)
			return visitChildren(node, visited[len(visited)-1].NamespacePath(), visit)
		}
		return nil
	}

	if err := visit(root, nil); err != nil {
		var zero O
		return zero, err
	}

	state := initial
	for _, u := range updates {
		state = w.Combine(state, u)
	}
	return w.Finalize(state), nil
}

func visitChildren(node *sitter.Node, ns []string, visit func(*sitter.Node, []string) error) error {
	for i := uint(0); i < node.ChildCount(); i++ {
		if err := visit(node.Child(i), ns); err != nil {
			return err
		}
	}
	return nil
}

// classify is the walker's closed dispatch over tree-sitter node kinds.
func classify(node *sitter.Node) nodeClass {
	switch node.Kind() {
	case "program", "lexical_declaration", "variable_declaration", "expression_statement":
		return classTransparent
	case "statement_block":
		if resolver.IsScopeBody(node) {
			return classTransparent
		}
	case "export_statement":
		if isNamespaceExport(node) {
			return classDeclaration
		}
		return classTransparent
	case "ambient_declaration":
		if isGlobalAugmentation(node) {
			return classDeclaration
		}
		return classTransparent
	case "module", "internal_module",
		"class_declaration", "abstract_class_declaration", "interface_declaration",
		"function_declaration", "generator_function_declaration", "function_signature",
		"enum_declaration", "variable_declarator", "type_alias_declaration":
		return classDeclaration
	case "function_expression", "generator_function":
		if isDefaultExportValue(node) {
			return classDeclaration
		}
	}
	return classSkip
}

// isDefaultExportValue matches the function of `export default function () {}`,
// which the grammar parses as an expression with an optional name.
func isDefaultExportValue(node *sitter.Node) bool {
	parent := node.Parent()
	return parent != nil && parent.Kind() == "export_statement" && hasToken(parent, "default")
}

// isNamespaceExport matches `export as namespace X`.
func isNamespaceExport(node *sitter.Node) bool {
	return hasToken(node, "as") && hasToken(node, "namespace")
}

// isGlobalAugmentation matches `declare global { ... }`.
func isGlobalAugmentation(node *sitter.Node) bool {
	return hasToken(node, "global")
}

func hasToken(node *sitter.Node, kind string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && !child.IsNamed() && child.Kind() == kind {
			return true
		}
	}
	return false
}
