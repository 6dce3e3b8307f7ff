package field

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultCopyDest is the full-text field copy=true fields are mirrored into.
const DefaultCopyDest = "text"

var tagRegex = regexp.MustCompile(`<[^>]*?>`)

// Spec is the declaration of a field, as written in code or configuration.
type Spec struct {
	Kind        Kind   `yaml:"kind"`
	Required    bool   `yaml:"required"`
	Copy        bool   `yaml:"copy"`
	Dest        string `yaml:"dest"`
	Dynamic     bool   `yaml:"dynamic"`
	Indexed     *bool  `yaml:"indexed"` // default true
	Stored      *bool  `yaml:"stored"`  // default true
	MultiValued bool   `yaml:"multi_valued"`
	OmitNorms   bool   `yaml:"omit_norms"`
	// Derived fields are populated by the index (copyField destinations) and never transformed.
	Derived bool `yaml:"derived"`
}

// Field is a named, typed slot of a document. Values are copied, never shared.
type Field struct {
	name        string
	kind        Kind
	value       any
	required    bool
	copy        bool
	dest        string
	dynamic     bool
	indexed     bool
	stored      bool
	multiValued bool
	omitNorms   bool
	derived     bool
	highlight   string
}

// New validates a spec and creates a field prototype with no value.
func New(name string, spec Spec) (Field, error) {
	if name == "" {
		return Field{}, fmt.Errorf("field name is required")
	}
	if !spec.Kind.IsValid() {
		return Field{}, fmt.Errorf("invalid field kind %q for %q", spec.Kind, name)
	}
	dest := spec.Dest
	if dest == "" {
		dest = DefaultCopyDest
	}
	return Field{
		name:        name,
		kind:        spec.Kind,
		required:    spec.Required || spec.Kind.AlwaysRequired(),
		copy:        spec.Copy,
		dest:        dest,
		dynamic:     spec.Dynamic,
		indexed:     boolOr(spec.Indexed, true),
		stored:      boolOr(spec.Stored, true),
		multiValued: spec.MultiValued,
		omitNorms:   spec.OmitNorms,
		derived:     spec.Derived,
	}, nil
}

// MustNew is New for static declarations; it panics on an invalid spec.
func MustNew(name string, spec Spec) Field {
	f, err := New(name, spec)
	if err != nil {
		panic(err)
	}
	return f
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Name returns the logical field name.
func (f Field) Name() string { return f.name }

// Kind returns the declared kind.
func (f Field) Kind() Kind { return f.kind }

// Value returns the typed value, nil when absent.
func (f Field) Value() any { return f.value }

// Required reports whether the index requires the field.
func (f Field) Required() bool { return f.required }

// Copy reports whether the value is mirrored into Dest.
func (f Field) Copy() bool { return f.copy }

// Dest returns the copy destination field.
func (f Field) Dest() string { return f.dest }

// Dynamic reports whether the wire name carries a kind suffix.
func (f Field) Dynamic() bool { return f.dynamic }

// Indexed reports whether the field is searchable.
func (f Field) Indexed() bool { return f.indexed }

// Stored reports whether the field is retrievable.
func (f Field) Stored() bool { return f.stored }

// MultiValued reports whether the field holds several values.
func (f Field) MultiValued() bool { return f.multiValued }

// OmitNorms reports whether norms are omitted at the index.
func (f Field) OmitNorms() bool { return f.omitNorms }

// Derived reports whether the index populates the field itself.
func (f Field) Derived() bool { return f.derived }

// Highlight returns the highlight overlay set from a response.
func (f Field) Highlight() string { return f.highlight }

// WireName returns the name used on the wire.
func (f Field) WireName() string {
	if f.dynamic {
		return f.name + "_" + f.kind.Suffix()
	}
	return f.name
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	if vs, ok := f.value.([]string); ok {
		f.value = append([]string(nil), vs...)
	}
	return f
}

// WithValue returns a copy holding v.
func (f Field) WithValue(v any) Field {
	c := f.Clone()
	c.value = v
	return c.Clone()
}

// WithHighlight returns a copy with the highlight overlay set.
func (f Field) WithHighlight(h string) Field {
	c := f.Clone()
	c.highlight = h
	return c
}

// Highlighting returns the highlight overlay if present, else the value text cut to limit runes.
func (f Field) Highlighting(limit int) string {
	if f.highlight != "" {
		return f.highlight
	}
	s := FormatValue(f.value)
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// Sanitize strips CDATA markers and tag-like content from a string.
// The input is not required to be well-formed XML.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "<![CDATA[", "")
	s = strings.ReplaceAll(s, "]]>", "")
	return tagRegex.ReplaceAllString(s, "")
}

func sanitizeValue(v any) any {
	switch t := v.(type) {
	case string:
		return Sanitize(t)
	case []string:
		out := make([]string, len(t))
		for i, s := range t {
			out[i] = Sanitize(s)
		}
		return out
	default:
		return v
	}
}
