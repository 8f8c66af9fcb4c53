package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

type kindUpdate struct {
	kind string
	ns   []string
}

func (u kindUpdate) NamespacePath() []string { return u.ns }

// kindWalker records "<namespace>:<node kind>" per visited node and refuses to
// descend into modules named Skip.
type kindWalker struct {
	source []byte
}

func (w kindWalker) Visit(node *sitter.Node, ns []string) ([]kindUpdate, error) {
	if name := node.ChildByFieldName("name"); name != nil && node.Kind() == "internal_module" {
		text := string(w.source[name.StartByte():name.EndByte()])
		if text == "Skip" {
			return nil, nil
		}
		// One update per dotted segment, like the declaration walker.
		var out []kindUpdate
		for _, seg := range strings.Split(text, ".") {
			ns = extend(ns, seg)
			out = append(out, kindUpdate{kind: node.Kind(), ns: ns})
		}
		return out, nil
	}
	return []kindUpdate{{kind: node.Kind(), ns: ns}}, nil
}

func (kindWalker) Combine(state []string, u kindUpdate) []string {
	return append(state, strings.Join(u.ns, ".")+":"+u.kind)
}

func (kindWalker) Finalize(state []string) string {
	return strings.Join(state, " ")
}

func TestWalk_PreOrderWithNamespaceThreading(t *testing.T) {
	unit := parseUnit(t, `
declare namespace Outer {
  class C {}
  namespace Skip { class Hidden {} }
  namespace Inner { type T = number; }
  namespace X.Y { let w: string; }
}
declare let v: number;
`)

	got, err := Walk[[]string, kindUpdate, string](unit.Root, kindWalker{source: unit.Source}, nil)
	require.NoError(t, err)
	assert.Equal(t,
		"Outer:internal_module Outer:class_declaration Outer.Inner:internal_module Outer.Inner:type_alias_declaration "+
			"Outer.X:internal_module Outer.X.Y:internal_module Outer.X.Y:variable_declarator :variable_declarator",
		got)
}

func TestClassify(t *testing.T) {
	unit := parseUnit(t, `
export as namespace Lib;
export declare function f(): void;
declare global { }
function g() { const local = 1; }
const fe = function () {};
export default function () {}
`)

	var kinds []string
	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		if classify(n) == classDeclaration {
			kinds = append(kinds, n.Kind())
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			collect(n.Child(i))
		}
	}
	collect(unit.Root)

	// classify is context free except for statement blocks, so the nested
	// declarator is classified but never reached by Walk.
	assert.Equal(t, []string{
		"export_statement", "function_signature", "ambient_declaration",
		"function_declaration", "variable_declarator", "variable_declarator",
		"function_expression",
	}, kinds)
}
