package query

import (
	"slices"
	"sort"
	"strings"
)

// Param is a single key/value query parameter.
type Param struct {
	Key   string
	Value string
}

// Slot declares a known key of a parameter group.
type Slot struct {
	Name string
	List bool
}

// Params is a namespaced parameter group. Keys are emitted as "{name}.{key}";
// nested groups extend the prefix ("hl.simple.pre").
type Params struct {
	name       string
	slots      []Slot
	values     map[string][]string
	groups     map[string]*Params
	groupOrder []string
}

// NewParams creates a group with declared slots and nested groups.
func NewParams(name string, slots []Slot, groups ...*Params) *Params {
	p := &Params{
		name:   name,
		slots:  slots,
		values: make(map[string][]string),
		groups: make(map[string]*Params),
	}
	for _, g := range groups {
		p.groups[g.name] = g
		p.groupOrder = append(p.groupOrder, g.name)
	}
	return p
}

// Name returns the group namespace.
func (p *Params) Name() string { return p.name }

func (p *Params) isList(key string) bool {
	for _, s := range p.slots {
		if s.Name == key {
			return s.List
		}
	}
	return false
}

// Set assigns a value by dotted path relative to the group.
// List slots append (skipping exact duplicates); other keys are replaced.
// A path with more than one segment routes into a nested group, created on demand.
func (p *Params) Set(path, value string) {
	head, rest, nested := strings.Cut(path, ".")
	if nested {
		p.Group(head).Set(rest, value)
		return
	}
	if p.isList(head) {
		if !slices.Contains(p.values[head], value) {
			p.values[head] = append(p.values[head], value)
		}
		return
	}
	p.values[head] = []string{value}
}

// Group returns the nested group with the given name, creating it if needed.
func (p *Params) Group(name string) *Params {
	if g, ok := p.groups[name]; ok {
		return g
	}
	g := NewParams(name, nil)
	p.groups[name] = g
	p.groupOrder = append(p.groupOrder, name)
	return g
}

// Get returns all values of a key.
func (p *Params) Get(key string) []string {
	return slices.Clone(p.values[key])
}

// Value returns the last value of a key, or "".
func (p *Params) Value(key string) string {
	vs := p.values[key]
	if len(vs) == 0 {
		return ""
	}
	return vs[len(vs)-1]
}

// Delete removes a key.
func (p *Params) Delete(key string) {
	delete(p.values, key)
}

// IsEmpty reports whether neither the group nor any nested group holds a value.
func (p *Params) IsEmpty() bool {
	for _, vs := range p.values {
		if len(vs) > 0 {
			return false
		}
	}
	for _, g := range p.groups {
		if !g.IsEmpty() {
			return false
		}
	}
	return true
}

// Pairs returns the namespaced pairs: declared slots first, then other keys in
// sorted order, then nested groups. List values expand to repeated pairs.
func (p *Params) Pairs() []Param {
	return p.pairs(p.name)
}

func (p *Params) pairs(prefix string) []Param {
	var out []Param
	emit := func(key string) {
		for _, v := range p.values[key] {
			if v == "" {
				continue
			}
			out = append(out, Param{Key: prefix + "." + key, Value: v})
		}
	}

	declared := make(map[string]bool, len(p.slots))
	for _, s := range p.slots {
		declared[s.Name] = true
		emit(s.Name)
	}
	extra := make([]string, 0, len(p.values))
	for k := range p.values {
		if !declared[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		emit(k)
	}

	// On-demand groups follow declared ones in sorted order.
	declaredGroups, dynamicGroups := splitDeclared(p.groupOrder, p.groups)
	sort.Strings(dynamicGroups)
	for _, n := range append(declaredGroups, dynamicGroups...) {
		out = append(out, p.groups[n].pairs(prefix+"."+n)...)
	}
	return out
}

func splitDeclared(names []string, groups map[string]*Params) (declared, dynamic []string) {
	for _, n := range names {
		if groups[n].slots != nil {
			declared = append(declared, n)
		} else {
			dynamic = append(dynamic, n)
		}
	}
	return declared, dynamic
}
