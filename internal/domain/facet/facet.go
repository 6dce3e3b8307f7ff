// Package facet rebuilds hierarchical facet counts from the flat
// value/count pairs returned by the index.
//
// A facet value such as "Politics;;Elections" is a child of "Politics".
// Missing ancestors are synthesized with a zero count. Every ancestor
// accumulates the counts of its descendants on top of its own count.
package facet

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Default separators.
const (
	DefaultPathSeparator = ";;"
	DefaultNameSeparator = "__"
)

// Separators controls how raw facet values are split.
type Separators struct {
	Path string // parent/child delimiter, ";;"
	Name string // namespace delimiter of model keys, "__"
}

// DefaultSeparators returns ";;" for paths and "__" for names.
func DefaultSeparators() Separators {
	return Separators{Path: DefaultPathSeparator, Name: DefaultNameSeparator}
}

// Value is one facet value count and its place in the tree.
type Value struct {
	Value    string
	Count    int
	Name     string
	Parent   *Value   `json:"-"`
	Children []*Value `json:"-"`
	Level    int
}

// NewValue creates a root value with its display name resolved.
func NewValue(raw string, count int, sep Separators) *Value {
	return &Value{Value: raw, Count: count, Name: DisplayName(raw, sep)}
}

// DisplayName returns the title-cased text after the last path or name separator.
func DisplayName(raw string, sep Separators) string {
	start := 0
	for _, s := range []string{sep.Path, sep.Name} {
		if s == "" {
			continue
		}
		if i := strings.LastIndex(raw, s); i >= 0 && i+len(s) > start {
			start = i + len(s)
		}
	}
	// Casers keep state and are not shared.
	return cases.Title(language.Und).String(raw[start:])
}

// Facet is a named, tree-ordered list of values.
type Facet struct {
	Name   string
	Values []*Value
}

// New merges flat values into a facet.
func New(name string, flat []*Value, sep Separators) Facet {
	return Facet{Name: name, Values: Merge(flat, sep)}
}

// Merge links values to their parents and returns the forest flattened
// depth-first, with Level set for display indentation.
func Merge(flat []*Value, sep Separators) []*Value {
	work := make([]*Value, len(flat))
	copy(work, flat)

	byValue := make(map[string]*Value, len(work))
	for _, v := range work {
		if _, ok := byValue[v.Value]; !ok {
			byValue[v.Value] = v
		}
	}

	var roots []*Value
	// work grows while iterating: synthesized parents are merged in turn.
	for i := 0; i < len(work); i++ {
		v := work[i]
		key, ok := parentKey(v.Value, sep.Path)
		if !ok {
			roots = append(roots, v)
			continue
		}
		parent, found := byValue[key]
		if !found {
			parent = NewValue(key, 0, sep)
			byValue[key] = parent
			work = append(work, parent)
		}
		attach(parent, v)
	}

	out := make([]*Value, 0, len(work))
	for _, r := range roots {
		out = flatten(out, r)
	}
	return out
}

func parentKey(raw, sep string) (string, bool) {
	if sep == "" {
		return "", false
	}
	i := strings.LastIndex(raw, sep)
	if i < 0 {
		return "", false
	}
	return raw[:i], true
}

// attach links child under parent and adds its count to every ancestor.
func attach(parent, child *Value) {
	child.Parent = parent
	parent.Children = append(parent.Children, child)
	for p := parent; p != nil; p = p.Parent {
		p.Count += child.Count
	}
}

func flatten(out []*Value, v *Value) []*Value {
	if v.Parent != nil {
		v.Level = v.Parent.Level + 1
	}
	out = append(out, v)
	for _, c := range v.Children {
		out = flatten(out, c)
	}
	return out
}
