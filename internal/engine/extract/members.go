package extract

import (
	"declschema/internal/core/errors"
	"declschema/internal/schema"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// modifierTokens are the keyword tokens tree-sitter emits unnamed in front of
// members and parameters. accessibility_modifier and override_modifier are
// named nodes and handled separately.
var modifierTokens = map[string]bool{
	"static":    true,
	"readonly":  true,
	"async":     true,
	"declare":   true,
	"abstract":  true,
	"accessor":  true,
	"export":    true,
	"default":   true,
	"const":     true,
	"public":    true,
	"private":   true,
	"protected": true,
}

// members describes the entries of a class body, interface body or object
// type in source order.
func (d *describer) members(body *sitter.Node) ([]schema.Member, error) {
	members := []schema.Member{}
	for _, child := range namedChildren(body) {
		m, err := d.member(child)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func (d *describer) member(node *sitter.Node) (schema.Member, error) {
	switch node.Kind() {
	case "index_signature":
		mods, err := d.modifiers(node, childOfKind(node, "["))
		if err != nil {
			return schema.Member{}, err
		}
		t, err := d.optionalType(node.ChildByFieldName("type"))
		if err != nil {
			return schema.Member{}, err
		}
		return schema.Member{Kind: schema.MemberIndexSig, Type: t, Modifiers: mods}, nil

	case "property_signature", "public_field_definition":
		name := node.ChildByFieldName("name")
		mods, err := d.modifiers(node, name)
		if err != nil {
			return schema.Member{}, err
		}
		t, err := d.optionalType(node.ChildByFieldName("type"))
		if err != nil {
			return schema.Member{}, err
		}
		return schema.Member{
			Kind:      schema.MemberProperty,
			Name:      d.text(name),
			Type:      t,
			Question:  hasToken(node, "?"),
			Modifiers: mods,
		}, nil

	case "call_signature":
		return d.callableMember(node, schema.MemberCallSig, "", nil, "return_type")

	// Construct signatures share the constructor kind; see schema.MemberConstructorSig.
	case "construct_signature":
		return d.callableMember(node, schema.MemberConstructor, "", childOfKind(node, "new"), "type")

	case "method_definition", "method_signature", "abstract_method_signature":
		name := node.ChildByFieldName("name")
		kind := schema.MemberMethod
		label := d.text(name)
		switch {
		case hasToken(node, "get") || hasToken(node, "set"):
			kind = schema.MemberGeneric
		case label == "constructor":
			kind = schema.MemberConstructor
			label = ""
		}
		return d.callableMember(node, kind, label, name, "return_type")
	}
	return schema.Member{}, d.unsupported("member", node)
}

// callableMember builds a member with a parameter list. Modifiers are the
// keywords preceding stop; returnField names the field holding the return
// type annotation.
func (d *describer) callableMember(node *sitter.Node, kind schema.MemberKind, name string, stop *sitter.Node, returnField string) (schema.Member, error) {
	mods, err := d.modifiers(node, stop)
	if err != nil {
		return schema.Member{}, err
	}
	params, err := d.params(node.ChildByFieldName("parameters"))
	if err != nil {
		return schema.Member{}, err
	}
	t, err := d.optionalType(node.ChildByFieldName(returnField))
	if err != nil {
		return schema.Member{}, err
	}
	return schema.Member{
		Kind:      kind,
		Name:      name,
		Type:      t,
		Question:  hasToken(node, "?"),
		Modifiers: mods,
		Params:    params,
	}, nil
}

// params describes a declaration's formal parameters. Parameters bound
// through a destructuring pattern are dropped.
func (d *describer) params(formal *sitter.Node) ([]schema.Param, error) {
	params := []schema.Param{}
	for _, child := range namedChildren(formal) {
		pattern := child.ChildByFieldName("pattern")
		name, ok := d.bindingName(pattern)
		if !ok {
			continue
		}
		p, err := d.param(child, name, pattern)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

// callableParams describes the parameters of a function or constructor type.
// Unlike declaration parameters, destructured bindings are kept and named by
// their pattern text.
func (d *describer) callableParams(formal *sitter.Node) ([]schema.Param, error) {
	params := []schema.Param{}
	for _, child := range namedChildren(formal) {
		pattern := child.ChildByFieldName("pattern")
		name, ok := d.bindingName(pattern)
		if !ok {
			name = d.text(pattern)
		}
		p, err := d.param(child, name, pattern)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func (d *describer) param(node *sitter.Node, name string, pattern *sitter.Node) (schema.Param, error) {
	switch node.Kind() {
	case "required_parameter", "optional_parameter":
	default:
		return schema.Param{}, d.unsupported("parameter", node)
	}
	mods, err := d.modifiers(node, pattern)
	if err != nil {
		return schema.Param{}, err
	}
	var t schema.Type = schema.Opaque("any")
	if annotation := node.ChildByFieldName("type"); annotation != nil {
		if t, err = d.typeOf(annotation); err != nil {
			return schema.Param{}, err
		}
	}
	return schema.Param{
		Name:      name,
		Question:  node.Kind() == "optional_parameter",
		Modifiers: mods,
		Type:      t,
	}, nil
}

// bindingName returns the parameter name when pattern binds a single name.
func (d *describer) bindingName(pattern *sitter.Node) (string, bool) {
	if pattern == nil {
		return "", false
	}
	switch pattern.Kind() {
	case "identifier", "this":
		return d.text(pattern), true
	case "rest_pattern":
		if inner := firstNamedChild(pattern); inner != nil && inner.Kind() == "identifier" {
			return d.text(inner), true
		}
	}
	return "", false
}

// modifiers collects the modifier keywords among the children of node that
// start before stop (all children when stop is nil). A keyword outside the
// Modifier set fails with CodeUnsupportedModifier.
func (d *describer) modifiers(node, stop *sitter.Node) ([]schema.Modifier, error) {
	mods := []schema.Modifier{}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if stop != nil && child.StartByte() >= stop.StartByte() {
			break
		}
		var keyword string
		switch {
		case child.Kind() == "accessibility_modifier" || child.Kind() == "override_modifier":
			keyword = d.text(child)
		case !child.IsNamed() && modifierTokens[child.Kind()]:
			keyword = child.Kind()
		default:
			continue
		}
		m, err := schema.ParseModifier(keyword)
		if err != nil {
			return nil, errors.AddContext(
				errors.AddContext(err, errors.CtxNodeKind, node.Kind()),
				errors.CtxLine, line(child))
		}
		mods = append(mods, m)
	}
	return mods, nil
}
