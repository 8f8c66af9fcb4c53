package schema

// TypeKind tags the structured Type descriptors. Opaque types serialize as a
// bare string and have no kind.
type TypeKind string

const (
	TypeCallable     TypeKind = "callable"
	TypeUnion        TypeKind = "union"
	TypeIntersection TypeKind = "intersection"
	TypeArray        TypeKind = "array"
	TypeLiteral      TypeKind = "literal"
)

// Type describes a type expression. The set of implementations is closed:
// Opaque, *Callable, *Compound, *Array and *Literal.
type Type interface {
	isType()
}

// Opaque is a type expression reproduced verbatim from source: names,
// generic instantiations, conditional/mapped/keyof forms, parenthesized types.
type Opaque string

// Callable is a function or constructor type.
type Callable struct {
	Kind       TypeKind `json:"kind"`
	Name       string   `json:"name,omitempty"`
	Parameters []Param  `json:"parameters"`
	Type       Type     `json:"type"`
}

// Compound is a union or intersection. Members keep source order.
type Compound struct {
	Kind    TypeKind `json:"kind"`
	Members []Type   `json:"members"`
}

// Array is an `T[]` type.
type Array struct {
	Kind    TypeKind `json:"kind"`
	Members Type     `json:"members"`
}

// Literal is an object literal type.
type Literal struct {
	Kind    TypeKind `json:"kind"`
	Members []Member `json:"members"`
}

func (Opaque) isType()    {}
func (*Callable) isType() {}
func (*Compound) isType() {}
func (*Array) isType()    {}
func (*Literal) isType()  {}

func NewCallable(name string, params []Param, ret Type) *Callable {
	if params == nil {
		params = []Param{}
	}
	return &Callable{Kind: TypeCallable, Name: name, Parameters: params, Type: ret}
}

func NewUnion(members ...Type) *Compound {
	return &Compound{Kind: TypeUnion, Members: members}
}

func NewIntersection(members ...Type) *Compound {
	return &Compound{Kind: TypeIntersection, Members: members}
}

func NewArray(element Type) *Array {
	return &Array{Kind: TypeArray, Members: element}
}

func NewLiteral(members []Member) *Literal {
	if members == nil {
		members = []Member{}
	}
	return &Literal{Kind: TypeLiteral, Members: members}
}
