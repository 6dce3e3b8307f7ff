package document

import (
	"fmt"

	"github.com/kailas-cloud/solrmap/internal/domain"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
)

// TransformFunc overrides how a field value is computed from a record.
type TransformFunc func(rec field.Record) (any, error)

// CleanFunc overrides how a raw response value is coerced. Its errors are ignored
// and the field's own coercion is used instead.
type CleanFunc func(raw any) (any, error)

// Decl declares one schema field: a name, its spec and optional overrides.
type Decl struct {
	Name      string
	Spec      field.Spec
	Transform TransformFunc
	Clean     CleanFunc
}

// DefaultBase returns the base declarations every document schema starts from.
func DefaultBase() []Decl {
	return []Decl{
		{Name: "id", Spec: field.Spec{Kind: field.PrimaryKey}},
		{Name: "model", Spec: field.Spec{Kind: field.ModelTag}},
		{Name: "site_id", Spec: field.Spec{Kind: field.Site}},
		{Name: "url", Spec: field.Spec{Kind: field.URL}},
		{Name: "text", Spec: field.Spec{Kind: field.Text, MultiValued: true, Derived: true}},
	}
}

// Extend concatenates base and decls. A declaration whose name already exists
// replaces the earlier one in place; new names are appended in order.
func Extend(base []Decl, decls ...Decl) []Decl {
	out := make([]Decl, 0, len(base)+len(decls))
	pos := make(map[string]int, len(base)+len(decls))
	for _, group := range [][]Decl{base, decls} {
		for _, d := range group {
			if i, ok := pos[d.Name]; ok {
				out[i] = d
				continue
			}
			pos[d.Name] = len(out)
			out = append(out, d)
		}
	}
	return out
}

// Schema is an immutable ordered set of field prototypes.
type Schema struct {
	fields     []field.Field
	index      map[string]int
	transforms map[string]TransformFunc
	cleans     map[string]CleanFunc
	pkIdx      int
}

// NewSchema builds a schema from ordered declarations.
// Exactly one PrimaryKey field is required.
func NewSchema(decls ...Decl) (*Schema, error) {
	decls = Extend(nil, decls...)
	s := &Schema{
		fields:     make([]field.Field, 0, len(decls)),
		index:      make(map[string]int, len(decls)),
		transforms: make(map[string]TransformFunc),
		cleans:     make(map[string]CleanFunc),
		pkIdx:      -1,
	}
	for _, d := range decls {
		f, err := field.New(d.Name, d.Spec)
		if err != nil {
			return nil, fmt.Errorf("schema field %q: %w", d.Name, err)
		}
		if f.Kind() == field.PrimaryKey {
			if s.pkIdx >= 0 {
				return nil, fmt.Errorf("%w: duplicate primary key field %q", domain.ErrConstruction, d.Name)
			}
			s.pkIdx = len(s.fields)
		}
		s.index[d.Name] = len(s.fields)
		s.fields = append(s.fields, f)
		if d.Transform != nil {
			s.transforms[d.Name] = d.Transform
		}
		if d.Clean != nil {
			s.cleans[d.Name] = d.Clean
		}
	}
	if s.pkIdx < 0 {
		return nil, fmt.Errorf("%w: schema needs a primary key field", domain.ErrConstruction)
	}
	return s, nil
}

// MustSchema is NewSchema for static declarations.
func MustSchema(decls ...Decl) *Schema {
	s, err := NewSchema(decls...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns copies of the field prototypes in declaration order.
func (s *Schema) Fields() []field.Field {
	out := make([]field.Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Clone()
	}
	return out
}

// Field looks up a prototype by logical name.
func (s *Schema) Field(name string) (field.Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return field.Field{}, false
	}
	return s.fields[i].Clone(), true
}

// PrimaryKey returns the primary key prototype.
func (s *Schema) PrimaryKey() field.Field { return s.fields[s.pkIdx] }

func (s *Schema) valid() error {
	if s == nil || s.pkIdx < 0 || s.pkIdx >= len(s.fields) {
		return fmt.Errorf("%w: schema needs a primary key field", domain.ErrConstruction)
	}
	return nil
}
