package extract

import (
	"declschema/internal/schema"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// typeOf describes a type expression. Function, constructor, union,
// intersection, array and object types are modeled structurally; everything
// else is reproduced verbatim as Opaque.
func (d *describer) typeOf(node *sitter.Node) (schema.Type, error) {
	node = unwrapAnnotation(node)
	if node == nil {
		return schema.Opaque(""), nil
	}
	switch node.Kind() {
	case "function_type", "constructor_type":
		params, err := d.callableParams(node.ChildByFieldName("parameters"))
		if err != nil {
			return nil, err
		}
		retField := "return_type"
		if node.Kind() == "constructor_type" {
			retField = "type"
		}
		ret, err := d.typeOf(node.ChildByFieldName(retField))
		if err != nil {
			return nil, err
		}
		return schema.NewCallable("", params, ret), nil

	case "union_type", "intersection_type":
		members, err := d.compoundMembers(node, node.Kind(), nil)
		if err != nil {
			return nil, err
		}
		if node.Kind() == "union_type" {
			return schema.NewUnion(members...), nil
		}
		return schema.NewIntersection(members...), nil

	case "array_type":
		elem, err := d.typeOf(firstNamedChild(node))
		if err != nil {
			return nil, err
		}
		return schema.NewArray(elem), nil

	case "object_type":
		if isMappedType(node) {
			return schema.Opaque(d.text(node)), nil
		}
		members, err := d.members(node)
		if err != nil {
			return nil, err
		}
		return schema.NewLiteral(members), nil
	}
	return schema.Opaque(d.text(node)), nil
}

// isMappedType reports whether an object type is `{ [K in X]: V }`. The grammar
// parses the mapped clause as an index signature inside an object type.
func isMappedType(node *sitter.Node) bool {
	for _, child := range namedChildren(node) {
		if child.Kind() == "index_signature" && childOfKind(child, "mapped_type_clause") != nil {
			return true
		}
	}
	return false
}

// optionalType is typeOf for annotations that may be absent.
func (d *describer) optionalType(annotation *sitter.Node) (schema.Type, error) {
	if annotation == nil {
		return nil, nil
	}
	return d.typeOf(annotation)
}

// compoundMembers flattens the left-nested binary chain tree-sitter builds for
// `A | B | C`. Only direct children of the same kind are merged, so a
// parenthesized operand stays a single opaque member.
func (d *describer) compoundMembers(node *sitter.Node, kind string, out []schema.Type) ([]schema.Type, error) {
	for _, child := range namedChildren(node) {
		if child.Kind() == kind {
			var err error
			if out, err = d.compoundMembers(child, kind, out); err != nil {
				return nil, err
			}
			continue
		}
		t, err := d.typeOf(child)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func unwrapAnnotation(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Kind() {
		case "type_annotation", "omitting_type_annotation", "adding_type_annotation",
			"opting_type_annotation", "type_predicate_annotation", "asserts_annotation":
			node = firstNamedChild(node)
		default:
			return node
		}
	}
	return nil
}
