package schema

// DeclKind is the `kind` discriminator of a Declaration.
type DeclKind string

const (
	KindExport    DeclKind = "export"
	KindModule    DeclKind = "module"
	KindEnum      DeclKind = "enum"
	KindClass     DeclKind = "class"
	KindInterface DeclKind = "interface"
	KindAlias     DeclKind = "alias"
	KindVariable  DeclKind = "variable"
	KindFunction  DeclKind = "function"
)

// Declaration is one normalized top-level construct. Implementations are
// *Export, *Generic, *Enum, *Variable, *ClassLike and *Function.
type Declaration interface {
	DeclKind() DeclKind
	// NamespacePath is the scope the declaration was found in. Module
	// declarations include their own name.
	NamespacePath() []string
}

// Export is an `export as namespace X` directive.
type Export struct {
	Kind      DeclKind `json:"kind"`
	Namespace []string `json:"namespace"`
	Exported  bool     `json:"exported"`
	Export    []string `json:"export"`
}

// Generic covers modules and type aliases. Module members are not embedded;
// they are found through namespace grouping.
type Generic struct {
	Kind      DeclKind `json:"kind"`
	Namespace []string `json:"namespace"`
	Name      string   `json:"name"`
}

type Enum struct {
	Kind      DeclKind `json:"kind"`
	Namespace []string `json:"namespace"`
	Name      string   `json:"name"`
	Members   []Member `json:"members"`
}

type Variable struct {
	Kind      DeclKind `json:"kind"`
	Namespace []string `json:"namespace"`
	Name      string   `json:"name"`
	Type      Type     `json:"type,omitempty"`
}

// ClassLike is a class or interface declaration. Heritage holds one resolved
// dotted name per supertype, in source order.
type ClassLike struct {
	Kind      DeclKind   `json:"kind"`
	Namespace []string   `json:"namespace"`
	Name      string     `json:"name"`
	Heritage  [][]string `json:"heritage,omitempty"`
	Members   []Member   `json:"members"`
}

type Function struct {
	Kind      DeclKind `json:"kind"`
	Namespace []string `json:"namespace"`
	Name      string   `json:"name,omitempty"`
	Question  bool     `json:"question"`
	Params    []Param  `json:"params"`
	Type      Type     `json:"type,omitempty"`
}

func (d *Export) DeclKind() DeclKind    { return d.Kind }
func (d *Generic) DeclKind() DeclKind   { return d.Kind }
func (d *Enum) DeclKind() DeclKind      { return d.Kind }
func (d *Variable) DeclKind() DeclKind  { return d.Kind }
func (d *ClassLike) DeclKind() DeclKind { return d.Kind }
func (d *Function) DeclKind() DeclKind  { return d.Kind }

func (d *Export) NamespacePath() []string    { return d.Namespace }
func (d *Generic) NamespacePath() []string   { return d.Namespace }
func (d *Enum) NamespacePath() []string      { return d.Namespace }
func (d *Variable) NamespacePath() []string  { return d.Namespace }
func (d *ClassLike) NamespacePath() []string { return d.Namespace }
func (d *Function) NamespacePath() []string  { return d.Namespace }
