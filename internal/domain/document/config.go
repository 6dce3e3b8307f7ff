package document

import "strings"

// SchemaConfig renders the index-side declarations for a set of schemas:
// one <field> line per non-dynamic field and one <copyField> line per copied field.
// Fields shared by several schemas are emitted once, at their first declaration.
func SchemaConfig(schemas []*Schema) (fields, copyFields string) {
	seen := make(map[string]bool)
	var fb, cb strings.Builder
	for _, s := range schemas {
		for _, f := range s.fields {
			if f.Dynamic() || seen[f.Name()] {
				continue
			}
			seen[f.Name()] = true
			fb.WriteString(f.Config())
			fb.WriteByte('\n')
			if f.Copy() {
				cb.WriteString(f.CopyConfig())
				cb.WriteByte('\n')
			}
		}
	}
	return fb.String(), cb.String()
}
