package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode parses a document produced by the JSON encoder back into a Schema.
func Decode(data []byte) (Schema, error) {
	var raw map[string][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(Schema, len(raw))
	for key, entries := range raw {
		decls := make([]Declaration, 0, len(entries))
		for i, entry := range entries {
			d, err := DecodeDeclaration(entry)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
			}
			decls = append(decls, d)
		}
		out[key] = decls
	}
	return out, nil
}

// DecodeDeclaration decodes one declaration object using its kind tag.
func DecodeDeclaration(data []byte) (Declaration, error) {
	var head struct {
		Kind DeclKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	var d Declaration
	switch head.Kind {
	case KindExport:
		d = &Export{}
	case KindModule, KindAlias:
		d = &Generic{}
	case KindEnum:
		d = &Enum{}
	case KindVariable:
		d = &Variable{}
	case KindClass, KindInterface:
		d = &ClassLike{}
	case KindFunction:
		d = &Function{}
	default:
		return nil, fmt.Errorf("unknown declaration kind %q", head.Kind)
	}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, err
	}
	return d, nil
}

// DecodeType decodes a Type descriptor: a JSON string is Opaque, an object is
// dispatched on its kind.
func DecodeType(data []byte) (Type, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("missing type")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return Opaque(s), nil
	}
	var head struct {
		Kind TypeKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	var t Type
	switch head.Kind {
	case TypeCallable:
		t = &Callable{}
	case TypeUnion, TypeIntersection:
		t = &Compound{}
	case TypeArray:
		t = &Array{}
	case TypeLiteral:
		t = &Literal{}
	default:
		return nil, fmt.Errorf("unknown type kind %q", head.Kind)
	}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeOptionalType(data json.RawMessage) (Type, error) {
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	return DecodeType(data)
}

func (c *Callable) UnmarshalJSON(data []byte) error {
	var w struct {
		Kind       TypeKind        `json:"kind"`
		Name       string          `json:"name"`
		Parameters []Param         `json:"parameters"`
		Type       json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	ret, err := decodeOptionalType(w.Type)
	if err != nil {
		return err
	}
	*c = *NewCallable(w.Name, w.Parameters, ret)
	return nil
}

func (c *Compound) UnmarshalJSON(data []byte) error {
	var w struct {
		Kind    TypeKind          `json:"kind"`
		Members []json.RawMessage `json:"members"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	members := make([]Type, 0, len(w.Members))
	for _, raw := range w.Members {
		t, err := DecodeType(raw)
		if err != nil {
			return err
		}
		members = append(members, t)
	}
	*c = Compound{Kind: w.Kind, Members: members}
	return nil
}

func (a *Array) UnmarshalJSON(data []byte) error {
	var w struct {
		Members json.RawMessage `json:"members"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	elem, err := DecodeType(w.Members)
	if err != nil {
		return err
	}
	*a = *NewArray(elem)
	return nil
}

func (v *Variable) UnmarshalJSON(data []byte) error {
	var w struct {
		Kind      DeclKind        `json:"kind"`
		Namespace []string        `json:"namespace"`
		Name      string          `json:"name"`
		Type      json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t, err := decodeOptionalType(w.Type)
	if err != nil {
		return err
	}
	*v = Variable{Kind: w.Kind, Namespace: w.Namespace, Name: w.Name, Type: t}
	return nil
}

func (f *Function) UnmarshalJSON(data []byte) error {
	var w struct {
		Kind      DeclKind        `json:"kind"`
		Namespace []string        `json:"namespace"`
		Name      string          `json:"name"`
		Question  bool            `json:"question"`
		Params    []Param         `json:"params"`
		Type      json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t, err := decodeOptionalType(w.Type)
	if err != nil {
		return err
	}
	*f = Function{Kind: w.Kind, Namespace: w.Namespace, Name: w.Name, Question: w.Question, Params: w.Params, Type: t}
	return nil
}
