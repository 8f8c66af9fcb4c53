package extract

import (
	"strings"

	"declschema/internal/engine/resolver"
	"declschema/internal/schema"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// modules describes a module declaration as one record per name segment, so
// `namespace A.B {}` yields module A under [A] and module B under [A B].
func (d *describer) modules(node *sitter.Node, ns []string) []schema.Declaration {
	segments := resolver.ModuleSegments(node.ChildByFieldName("name"), d.source, false)
	if len(segments) == 0 {
		return []schema.Declaration{&schema.Generic{Kind: schema.KindModule, Namespace: extend(ns)}}
	}
	out := make([]schema.Declaration, 0, len(segments))
	for i, seg := range segments {
		out = append(out, &schema.Generic{
			Kind:      schema.KindModule,
			Namespace: extend(ns, segments[:i+1]...),
			Name:      seg,
		})
	}
	return out
}

// declaration describes a non-module node the walker classified as a
// declaration. Every record gets its own copy of the namespace path.
func (d *describer) declaration(node *sitter.Node, ns []string) (schema.Declaration, error) {
	switch node.Kind() {
	case "export_statement":
		return &schema.Export{
			Kind:      schema.KindExport,
			Namespace: extend(ns),
			Exported:  true,
			Export:    strings.Split(d.text(childOfKind(node, "identifier")), "."),
		}, nil

	case "ambient_declaration":
		return &schema.Generic{
			Kind:      schema.KindModule,
			Namespace: extend(ns, "global"),
			Name:      "global",
		}, nil

	case "enum_declaration":
		members, err := d.enumMembers(node.ChildByFieldName("body"))
		if err != nil {
			return nil, err
		}
		return &schema.Enum{
			Kind:      schema.KindEnum,
			Namespace: extend(ns),
			Name:      d.text(node.ChildByFieldName("name")),
			Members:   members,
		}, nil

	case "variable_declarator":
		v := &schema.Variable{
			Kind:      schema.KindVariable,
			Namespace: extend(ns),
			Name:      d.text(node.ChildByFieldName("name")),
		}
		if annotation := node.ChildByFieldName("type"); annotation != nil {
			t, err := d.typeOf(annotation)
			if err != nil {
				return nil, err
			}
			v.Type = t
		}
		return v, nil

	case "class_declaration", "abstract_class_declaration", "interface_declaration":
		kind := schema.KindClass
		if node.Kind() == "interface_declaration" {
			kind = schema.KindInterface
		}
		heritage, err := d.heritage(node)
		if err != nil {
			return nil, err
		}
		members, err := d.members(node.ChildByFieldName("body"))
		if err != nil {
			return nil, err
		}
		return &schema.ClassLike{
			Kind:      kind,
			Namespace: extend(ns),
			Name:      d.text(node.ChildByFieldName("name")),
			Heritage:  heritage,
			Members:   members,
		}, nil

	case "function_declaration", "generator_function_declaration", "function_signature",
		"function_expression", "generator_function":
		params, err := d.params(node.ChildByFieldName("parameters"))
		if err != nil {
			return nil, err
		}
		fn := &schema.Function{
			Kind:      schema.KindFunction,
			Namespace: extend(ns),
			Name:      d.text(node.ChildByFieldName("name")),
			Params:    params,
		}
		if ret := node.ChildByFieldName("return_type"); ret != nil {
			if fn.Type, err = d.typeOf(ret); err != nil {
				return nil, err
			}
		}
		return fn, nil

	case "type_alias_declaration":
		return &schema.Generic{
			Kind:      schema.KindAlias,
			Namespace: extend(ns),
			Name:      d.text(node.ChildByFieldName("name")),
		}, nil
	}
	return nil, d.unsupported("declaration", node)
}

func (d *describer) enumMembers(body *sitter.Node) ([]schema.Member, error) {
	members := []schema.Member{}
	for _, child := range namedChildren(body) {
		name := child
		switch child.Kind() {
		case "property_identifier", "string", "number", "computed_property_name":
		case "enum_assignment":
			name = child.ChildByFieldName("name")
		default:
			return nil, d.unsupported("enum member", child)
		}
		members = append(members, schema.Member{
			Kind:      schema.MemberProperty,
			Name:      d.text(name),
			Modifiers: []schema.Modifier{},
		})
	}
	return members, nil
}
