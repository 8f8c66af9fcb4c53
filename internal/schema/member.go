package schema

import "encoding/json"

// MemberKind tags a Member record.
type MemberKind string

// The extractor describes interface construct signatures as
// MemberConstructor, matching class constructors. MemberConstructorSig is
// reserved so documents from producers that tag them separately still decode.
const (
	MemberProperty       MemberKind = "property"
	MemberMethod         MemberKind = "method"
	MemberConstructor    MemberKind = "constructor"
	MemberConstructorSig MemberKind = "constructor-sig"
	MemberCallSig        MemberKind = "call-sig"
	MemberIndexSig       MemberKind = "index-sig"
	MemberGeneric        MemberKind = "generic"
)

// Callable reports whether members of this kind carry a parameter list.
func (k MemberKind) Callable() bool {
	switch k {
	case MemberProperty, MemberIndexSig:
		return false
	default:
		return true
	}
}

// Member is one entry of a class, interface, enum or object literal type.
type Member struct {
	Kind      MemberKind
	Name      string
	Type      Type
	Question  bool
	Modifiers []Modifier
	Params    []Param
}

type memberWire struct {
	Type      json.RawMessage `json:"type,omitempty"`
	Question  bool            `json:"question"`
	Modifiers []Modifier      `json:"modifiers"`
	Name      string          `json:"name,omitempty"`
	Params    *[]Param        `json:"params,omitempty"`
	Kind      MemberKind      `json:"member"`
}

func (m Member) MarshalJSON() ([]byte, error) {
	w := memberWire{
		Question:  m.Question,
		Modifiers: nonNilModifiers(m.Modifiers),
		Kind:      m.Kind,
	}
	if m.Kind != MemberIndexSig {
		w.Name = m.Name
	}
	if m.Type != nil {
		raw, err := json.Marshal(m.Type)
		if err != nil {
			return nil, err
		}
		w.Type = raw
	}
	if m.Kind.Callable() {
		params := m.Params
		if params == nil {
			params = []Param{}
		}
		w.Params = &params
	}
	return json.Marshal(w)
}

func (m *Member) UnmarshalJSON(data []byte) error {
	var w memberWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t, err := decodeOptionalType(w.Type)
	if err != nil {
		return err
	}
	*m = Member{
		Kind:      w.Kind,
		Name:      w.Name,
		Type:      t,
		Question:  w.Question,
		Modifiers: nonNilModifiers(w.Modifiers),
	}
	if w.Params != nil {
		m.Params = *w.Params
	}
	return nil
}

// Param is a formal parameter. Type is always set.
type Param struct {
	Name      string
	Question  bool
	Modifiers []Modifier
	Type      Type
}

type paramWire struct {
	Name      string          `json:"name"`
	Question  bool            `json:"question"`
	Modifiers []Modifier      `json:"modifiers"`
	Type      json.RawMessage `json:"type"`
}

func (p Param) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(p.Type)
	if err != nil {
		return nil, err
	}
	return json.Marshal(paramWire{
		Name:      p.Name,
		Question:  p.Question,
		Modifiers: nonNilModifiers(p.Modifiers),
		Type:      raw,
	})
}

func (p *Param) UnmarshalJSON(data []byte) error {
	var w paramWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t, err := DecodeType(w.Type)
	if err != nil {
		return err
	}
	*p = Param{Name: w.Name, Question: w.Question, Modifiers: nonNilModifiers(w.Modifiers), Type: t}
	return nil
}

func nonNilModifiers(mods []Modifier) []Modifier {
	if mods == nil {
		return []Modifier{}
	}
	return mods
}
