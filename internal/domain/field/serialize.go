package field

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatValue renders a typed value the way the index expects it on the wire.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.UTC().Format(serializeLayout)
	case []string:
		return strings.Join(t, " ")
	default:
		return fmt.Sprint(v)
	}
}

// escapeCDATA splits any "]]>" so the text cannot terminate its CDATA section.
func escapeCDATA(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}

// Serialize renders the field as one <field> element per value.
func (f Field) Serialize() string {
	if vs, ok := f.value.([]string); ok {
		var b strings.Builder
		for _, v := range vs {
			writeField(&b, f.WireName(), v)
		}
		return b.String()
	}
	var b strings.Builder
	writeField(&b, f.WireName(), FormatValue(f.value))
	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	b.WriteString(`<field name="`)
	b.WriteString(name)
	b.WriteString(`"><![CDATA[`)
	b.WriteString(escapeCDATA(value))
	b.WriteString("]]></field>\n")
}

// Config renders the schema.xml declaration of the field.
func (f Field) Config() string {
	return fmt.Sprintf(
		`<field name="%s" type="%s" indexed="%t" stored="%t" omitNorms="%t" required="%t" multiValued="%t"/>`,
		f.name, f.kind.IndexType(), f.indexed, f.stored, f.omitNorms, f.required, f.multiValued,
	)
}

// CopyConfig renders the schema.xml copyField declaration of the field.
func (f Field) CopyConfig() string {
	return fmt.Sprintf(`<copyField source="%s" dest="%s"/>`, f.name, f.dest)
}
