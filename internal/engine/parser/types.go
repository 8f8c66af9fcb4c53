package parser

import (
	"time"

	"declschema/internal/engine/resolver"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

const (
	LangTypeScript = "typescript"
	LangTSX        = "tsx"
)

type LanguageSpec struct {
	Name       string
	Extensions []string
}

// Unit is one parsed source file together with its semantic resolver. The
// tree is owned by the unit; callers must Close it.
type Unit struct {
	Path     string
	Language string
	Source   []byte
	Tree     *sitter.Tree
	Root     *sitter.Node
	Resolver *resolver.SymbolTable
	// SyntaxErrors is true when tree-sitter had to recover from invalid input.
	SyntaxErrors bool
	ParsedAt     time.Time
}

func (u *Unit) Close() {
	if u == nil || u.Tree == nil {
		return
	}
	u.Tree.Close()
	u.Tree = nil
	u.Root = nil
}
