package schema

import "strings"

// DefaultToplevelKey groups declarations found outside any namespace.
const DefaultToplevelKey = "__toplevel__"

// Schema maps a dot-joined namespace path to the declarations found there, in
// visit order.
type Schema map[string][]Declaration

// Group buckets decls by namespace path. Order within a bucket is the order of
// decls; nothing is sorted, merged or dropped.
func Group(decls []Declaration, toplevelKey string) Schema {
	if toplevelKey == "" {
		toplevelKey = DefaultToplevelKey
	}
	out := make(Schema)
	for _, d := range decls {
		key := NamespaceKey(d.NamespacePath(), toplevelKey)
		out[key] = append(out[key], d)
	}
	return out
}

// NamespaceKey joins path with dots, mapping the root path to toplevelKey.
func NamespaceKey(path []string, toplevelKey string) string {
	if key := strings.Join(path, "."); key != "" {
		return key
	}
	return toplevelKey
}

// Count returns the number of declarations per kind.
func (s Schema) Count() map[DeclKind]int {
	counts := make(map[DeclKind]int)
	for _, decls := range s {
		for _, d := range decls {
			counts[d.DeclKind()]++
		}
	}
	return counts
}
