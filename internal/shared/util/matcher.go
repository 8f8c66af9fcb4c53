package util

import (
	"fmt"

	"github.com/gobwas/glob"
)

// PathMatcher selects slash-separated relative paths by include and exclude
// globs. A path is selected when it matches any include and no exclude.
type PathMatcher struct {
	include []glob.Glob
	exclude []glob.Glob
}

func NewPathMatcher(include, exclude []string) (*PathMatcher, error) {
	m := &PathMatcher{}
	for _, pattern := range include {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid include glob %q: %w", pattern, err)
		}
		m.include = append(m.include, g)
	}
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude glob %q: %w", pattern, err)
		}
		m.exclude = append(m.exclude, g)
	}
	return m, nil
}

func (m *PathMatcher) Match(rel string) bool {
	rel = NormalizePatternPath(rel)
	if rel == "" || m.Excluded(rel) {
		return false
	}
	for _, g := range m.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Excluded reports whether rel matches an exclude glob. Directory walks use it
// to prune whole subtrees.
func (m *PathMatcher) Excluded(rel string) bool {
	rel = NormalizePatternPath(rel)
	for _, g := range m.exclude {
		if g.Match(rel) || g.Match(rel+"/") {
			return true
		}
	}
	return false
}
