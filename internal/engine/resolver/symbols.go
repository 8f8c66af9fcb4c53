package resolver

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// DefaultGlobals are ambient library names that resolve to themselves when no
// declaration or import in the file shadows them.
var DefaultGlobals = []string{
	"Array", "ArrayBuffer", "ArrayLike", "AsyncIterable", "AsyncIterator", "BigInt", "Boolean",
	"DataView", "Date", "Element", "Error", "EvalError", "Event", "EventTarget", "Float32Array",
	"Float64Array", "Function", "HTMLElement", "Int16Array", "Int32Array", "Int8Array", "Iterable",
	"Iterator", "Map", "Node", "Number", "Object", "Partial", "Pick", "Omit", "Promise",
	"PromiseLike", "RangeError", "Readonly", "ReadonlyArray", "ReadonlyMap", "ReadonlySet",
	"Record", "ReferenceError", "RegExp", "Required", "Set", "String", "Symbol", "SyntaxError",
	"TypeError", "URIError", "Uint16Array", "Uint32Array", "Uint8Array", "Uint8ClampedArray",
	"WeakMap", "WeakSet",
}

type importAlias struct {
	scope  []string
	target []string
}

// collector records every declared name of one file under its dotted
// fully-qualified name, plus the import bindings that alias external names.
type collector struct {
	source  []byte
	symbols map[string]bool
	imports map[string][]string
	aliases map[string]importAlias
}

func (c *collector) text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.source[node.StartByte():node.EndByte()])
}

func (c *collector) declare(scope []string, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	c.symbols[qualify(scope, name)] = true
}

func (c *collector) collect(node *sitter.Node, scope []string) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "program", "export_statement", "ambient_declaration", "lexical_declaration",
		"variable_declaration", "expression_statement":
		c.collectChildren(node, scope)
	case "statement_block":
		if IsScopeBody(node) {
			c.collectChildren(node, scope)
		}
	case "module", "internal_module":
		segments := ModuleSegments(node.ChildByFieldName("name"), c.source, true)
		inner := scope
		for _, seg := range segments {
			c.declare(inner, seg)
			inner = append(append([]string(nil), inner...), seg)
		}
		if body := node.ChildByFieldName("body"); body != nil {
			c.collectChildren(body, inner)
		}
	case "class_declaration", "abstract_class_declaration", "interface_declaration",
		"enum_declaration", "type_alias_declaration", "function_declaration",
		"generator_function_declaration", "function_signature":
		c.declare(scope, c.text(node.ChildByFieldName("name")))
	case "variable_declarator":
		if name := node.ChildByFieldName("name"); name != nil && name.Kind() == "identifier" {
			c.declare(scope, c.text(name))
		}
	case "import_statement":
		c.collectImport(node, scope)
	case "import_alias":
		c.collectImportAlias(node, scope)
	}
}

func (c *collector) collectChildren(node *sitter.Node, scope []string) {
	for i := uint(0); i < node.ChildCount(); i++ {
		c.collect(node.Child(i), scope)
	}
}

func (c *collector) collectImport(node *sitter.Node, scope []string) {
	source := node.ChildByFieldName("source")
	var clause, require *sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "import_clause":
			clause = child
		case "import_require_clause":
			require = child
		case "string":
			if source == nil {
				source = child
			}
		}
	}

	if require != nil {
		var local, spec *sitter.Node
		for i := uint(0); i < require.ChildCount(); i++ {
			child := require.Child(i)
			switch child.Kind() {
			case "identifier":
				if local == nil {
					local = child
				}
			case "string":
				spec = child
			}
		}
		if local != nil && spec != nil {
			c.imports[qualify(scope, c.text(local))] = []string{moduleSpecifier(c.text(spec))}
		}
		return
	}
	if clause == nil || source == nil {
		return
	}

	module := moduleSpecifier(c.text(source))
	for i := uint(0); i < clause.ChildCount(); i++ {
		child := clause.Child(i)
		switch child.Kind() {
		case "identifier":
			c.imports[qualify(scope, c.text(child))] = []string{module, "default"}
		case "namespace_import":
			for j := uint(0); j < child.ChildCount(); j++ {
				if id := child.Child(j); id.Kind() == "identifier" {
					c.imports[qualify(scope, c.text(id))] = []string{module}
				}
			}
		case "named_imports":
			for j := uint(0); j < child.ChildCount(); j++ {
				spec := child.Child(j)
				if spec.Kind() != "import_specifier" {
					continue
				}
				name := trimQuoted(c.text(spec.ChildByFieldName("name")))
				local := name
				if alias := spec.ChildByFieldName("alias"); alias != nil {
					local = c.text(alias)
				}
				if name != "" {
					c.imports[qualify(scope, local)] = []string{module, name}
				}
			}
		}
	}
}

// collectImportAlias records `import X = A.B;`. The target is resolved lazily
// since it may refer to a namespace declared later in the file.
func (c *collector) collectImportAlias(node *sitter.Node, scope []string) {
	var ids []*sitter.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "identifier", "nested_identifier":
			ids = append(ids, child)
		}
	}
	if len(ids) != 2 {
		return
	}
	target := splitDotted(c.text(ids[1]))
	if len(target) == 0 {
		return
	}
	c.aliases[qualify(scope, c.text(ids[0]))] = importAlias{
		scope:  append([]string(nil), scope...),
		target: target,
	}
}

// ModuleSegments returns the namespace segments introduced by a module name
// node: `A.B` yields two segments, a string name yields one. With quoted set,
// string names keep double quotes the way fully-qualified names spell them.
func ModuleSegments(name *sitter.Node, source []byte, quoted bool) []string {
	if name == nil {
		return nil
	}
	raw := string(source[name.StartByte():name.EndByte()])
	if name.Kind() == "string" {
		if quoted {
			return []string{moduleSpecifier(raw)}
		}
		return []string{trimQuoted(raw)}
	}
	return splitDotted(raw)
}

// IsScopeBody reports whether a statement block is the body of a namespace
// (or `declare global`), as opposed to a function body.
func IsScopeBody(block *sitter.Node) bool {
	parent := block.Parent()
	if parent == nil {
		return false
	}
	switch parent.Kind() {
	case "module", "internal_module", "ambient_declaration":
		return true
	}
	return false
}

func qualify(scope []string, name string) string {
	if len(scope) == 0 {
		return name
	}
	return strings.Join(scope, ".") + "." + name
}

func splitDotted(value string) []string {
	parts := strings.Split(value, ".")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func trimQuoted(value string) string {
	value = strings.TrimSpace(value)
	return strings.Trim(value, "\"'`")
}

func moduleSpecifier(raw string) string {
	return `"` + trimQuoted(raw) + `"`
}
