package parser

import (
	"fmt"
	"sort"
	"strings"

	"declschema/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// DefaultLanguageRegistry lists the grammars compiled into the binary.
func DefaultLanguageRegistry() map[string]LanguageSpec {
	return map[string]LanguageSpec{
		LangTypeScript: {Name: LangTypeScript, Extensions: []string{".ts", ".mts", ".cts"}},
		LangTSX:        {Name: LangTSX, Extensions: []string{".tsx"}},
	}
}

type GrammarLoader struct {
	languages map[string]*sitter.Language
	registry  map[string]LanguageSpec
}

func NewGrammarLoader() (*GrammarLoader, error) {
	return NewGrammarLoaderWithRegistry(DefaultLanguageRegistry())
}

func NewGrammarLoaderWithRegistry(registry map[string]LanguageSpec) (*GrammarLoader, error) {
	if len(registry) == 0 {
		registry = DefaultLanguageRegistry()
	}
	gl := &GrammarLoader{
		languages: make(map[string]*sitter.Language),
		registry:  make(map[string]LanguageSpec, len(registry)),
	}
	for _, langID := range util.SortedStringKeys(registry) {
		spec := registry[langID]
		spec.Extensions = append([]string(nil), spec.Extensions...)
		gl.registry[langID] = spec
		switch langID {
		case LangTypeScript:
			gl.languages[langID] = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
		case LangTSX:
			gl.languages[langID] = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
		default:
			return nil, fmt.Errorf("language %q is registered but no grammar is compiled in", langID)
		}
	}
	return gl, nil
}

func (gl *GrammarLoader) Language(langID string) *sitter.Language {
	return gl.languages[langID]
}

// DetectLanguage maps a file path onto a registered language by extension.
func (gl *GrammarLoader) DetectLanguage(path string) string {
	lower := strings.ToLower(path)
	for _, langID := range util.SortedStringKeys(gl.registry) {
		for _, ext := range gl.registry[langID].Extensions {
			if strings.HasSuffix(lower, strings.ToLower(ext)) {
				return langID
			}
		}
	}
	return ""
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	set := make(map[string]bool)
	for _, spec := range gl.registry {
		for _, ext := range spec.Extensions {
			set[ext] = true
		}
	}
	extensions := make([]string, 0, len(set))
	for ext := range set {
		extensions = append(extensions, ext)
	}
	sort.Strings(extensions)
	return extensions
}
