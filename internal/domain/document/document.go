package document

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/kailas-cloud/solrmap/internal/domain/field"
)

// Document is a schema with resolved values (immutable value object).
type Document struct {
	schema    *Schema
	fields    []field.Field
	highlight string
}

// FromRecord maps an application record through the schema.
// Override transforms take precedence over the field's own transform.
func FromRecord(s *Schema, rec field.Record, env field.Env) (Document, error) {
	if err := s.valid(); err != nil {
		return Document{}, err
	}
	fields := s.Fields()
	for i, f := range fields {
		if fn, ok := s.transforms[f.Name()]; ok {
			v, err := fn(rec)
			if err != nil {
				return Document{}, fmt.Errorf("transform %q: %w", f.Name(), err)
			}
			fields[i] = f.WithValue(f.Normalize(v))
			continue
		}
		fields[i] = f.WithValue(f.Transform(rec, env))
	}
	return Document{schema: s, fields: fields}, nil
}

// FromRow hydrates a document from a parsed response row keyed by wire name.
// Absent keys leave the value empty. A failing override clean falls back to the
// field's own coercion, whose errors propagate.
func FromRow(s *Schema, row map[string]any, env field.Env) (Document, error) {
	if err := s.valid(); err != nil {
		return Document{}, err
	}
	fields := s.Fields()
	for i, f := range fields {
		raw, ok := row[f.WireName()]
		if !ok {
			continue
		}
		if fn, ok := s.cleans[f.Name()]; ok {
			if v, err := fn(raw); err == nil {
				fields[i] = f.WithValue(v)
				continue
			}
		}
		v, err := f.Clean(raw, env)
		if err != nil {
			return Document{}, fmt.Errorf("clean %q: %w", f.Name(), err)
		}
		fields[i] = f.WithValue(v)
	}
	return Document{schema: s, fields: fields}, nil
}

// Schema returns the schema the document was built from.
func (d *Document) Schema() *Schema { return d.schema }

// Fields returns copies of the fields in schema order.
func (d *Document) Fields() []field.Field {
	out := make([]field.Field, len(d.fields))
	for i, f := range d.fields {
		out[i] = f.Clone()
	}
	return out
}

// Field looks up a field by logical name.
func (d *Document) Field(name string) (field.Field, bool) {
	i, ok := d.schema.index[name]
	if !ok {
		return field.Field{}, false
	}
	return d.fields[i].Clone(), true
}

// Value returns the value of a field by logical name, nil when absent.
func (d *Document) Value(name string) any {
	f, ok := d.Field(name)
	if !ok {
		return nil
	}
	return f.Value()
}

// PrimaryKey returns the primary key field.
func (d *Document) PrimaryKey() field.Field { return d.fields[d.schema.pkIdx] }

// ModelTag returns the value of the first ModelTag field, or "".
func (d *Document) ModelTag() string {
	for _, f := range d.fields {
		if f.Kind() == field.ModelTag {
			return field.FormatValue(f.Value())
		}
	}
	return ""
}

// Highlight returns the whole-record highlight text.
func (d *Document) Highlight() string { return d.highlight }

// WithHighlights returns a copy with highlight fragments attached.
// Keys of fragments may be logical or wire names; unknown keys are ignored.
func (d *Document) WithHighlights(fragments map[string][]string) Document {
	fields := d.Fields()
	var parts []string
	for i, f := range fields {
		frags, ok := fragments[f.Name()]
		if !ok {
			frags, ok = fragments[f.WireName()]
		}
		if !ok || len(frags) == 0 {
			continue
		}
		joined := strings.Join(frags, " ")
		fields[i] = f.WithHighlight(joined)
		parts = append(parts, joined)
	}
	hl := d.highlight
	if len(parts) > 0 {
		hl = strings.TrimSpace(hl + " " + strings.Join(parts, " "))
	}
	return Document{schema: d.schema, fields: fields, highlight: hl}
}

// AddXML renders the document for an add request.
func (d *Document) AddXML() string {
	var b strings.Builder
	b.WriteString("<doc>\n")
	for _, f := range d.fields {
		b.WriteString(f.Serialize())
	}
	b.WriteString("</doc>\n")
	return b.String()
}

// DeleteXML renders the primary key for a delete request. The key is
// entity-escaped; record ids may contain markup characters.
func (d *Document) DeleteXML() string {
	pk := d.PrimaryKey()
	var b strings.Builder
	b.WriteString("<" + pk.Name() + ">")
	// strings.Builder never fails a write.
	_ = xml.EscapeText(&b, []byte(field.FormatValue(pk.Value())))
	b.WriteString("</" + pk.Name() + ">")
	return b.String()
}

// Values returns field values keyed by logical name.
func (d *Document) Values() map[string]any {
	out := make(map[string]any, len(d.fields))
	for _, f := range d.fields {
		out[f.Name()] = f.Value()
	}
	return out
}
