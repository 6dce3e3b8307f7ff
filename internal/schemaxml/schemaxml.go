// Package schemaxml renders the index schema.xml for a set of document schemas.
package schemaxml

import (
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/kailas-cloud/solrmap/internal/domain/document"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
)

//go:embed schema.xml.tmpl
var schemaTemplate string

var tmpl = template.Must(template.New("schema.xml").Parse(schemaTemplate))

// Options configures the rendered document.
type Options struct {
	Name               string // schema name (default: "solrmap")
	Version            string
	UniqueKey          string // default: "id"
	DefaultSearchField string // default: field.DefaultCopyDest
}

type dynamicField struct {
	Suffix string
	Type   string
}

type data struct {
	Options
	Fields     string
	CopyFields string
	Dynamic    []dynamicField
}

// Render writes schema.xml for schemas to w.
func Render(w io.Writer, schemas []*document.Schema, opts Options) error {
	if opts.Name == "" {
		opts.Name = "solrmap"
	}
	if opts.UniqueKey == "" {
		opts.UniqueKey = "id"
	}
	if opts.DefaultSearchField == "" {
		opts.DefaultSearchField = field.DefaultCopyDest
	}
	fields, copies := document.SchemaConfig(schemas)
	d := data{
		Options:    opts,
		Fields:     indent(fields, "    "),
		CopyFields: indent(copies, "  "),
		Dynamic:    dynamicFields(),
	}
	if err := tmpl.Execute(w, d); err != nil {
		return fmt.Errorf("render schema.xml: %w", err)
	}
	return nil
}

// dynamicFields lists one dynamic field per suffix, sorted by suffix.
func dynamicFields() []dynamicField {
	kinds := []field.Kind{
		field.String, field.Text, field.Integer, field.Float, field.Double,
		field.Long, field.Boolean, field.Date,
	}
	out := make([]dynamicField, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, dynamicField{Suffix: k.Suffix(), Type: k.IndexType()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Suffix < out[j].Suffix })
	return out
}

func indent(lines, prefix string) string {
	lines = strings.TrimRight(lines, "\n")
	if lines == "" {
		return ""
	}
	return prefix + strings.ReplaceAll(lines, "\n", "\n"+prefix)
}
