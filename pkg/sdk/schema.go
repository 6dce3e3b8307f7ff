package solrmap

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/solrmap/internal/domain"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
)

const tagKey = "solrmap"

// schemaMeta holds parsed struct tag metadata, cached per TypedIndex.
type schemaMeta struct {
	typ reflect.Type
	ptr bool // T is a pointer to typ

	idIdx  int
	urlIdx int // -1 if not present

	// Declared fields in struct order.
	fields []Field
	// Struct field index per attribute name, declared or not.
	attrs map[string]int
}

// parseSchema reflects on T and extracts solrmap struct tag metadata.
//
//	`solrmap:"name,kind[,copy][,dynamic][,required]"`
//
// kind is a field kind (text, string, integer, datetime...), "id" for the
// record identifier, "url" for the canonical URL, or empty for an attribute
// that transforms can read but that is not indexed.
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	ptr := t != nil && t.Kind() == reflect.Pointer
	if ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("solrmap: type %v is not a struct", t)
	}

	meta := &schemaMeta{typ: t, ptr: ptr, idIdx: -1, urlIdx: -1, attrs: make(map[string]int)}
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" || !f.IsExported() {
			continue
		}
		if err := applyTag(meta, i, f.Name, tag); err != nil {
			return nil, err
		}
	}
	if meta.idIdx == -1 {
		return nil, fmt.Errorf("solrmap: no field with `solrmap:\"...,id\"` tag in %s", t)
	}
	return meta, nil
}

// applyTag processes a single struct field's solrmap tag.
func applyTag(meta *schemaMeta, idx int, fieldName, tag string) error {
	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		name = strings.ToLower(fieldName)
	}
	if _, dup := meta.attrs[name]; dup {
		return fmt.Errorf("solrmap: duplicate name %q on field %s", name, fieldName)
	}
	meta.attrs[name] = idx

	modifier := ""
	if len(parts) > 1 {
		modifier = parts[1]
	}
	switch modifier {
	case "":
		return nil
	case "id":
		if meta.idIdx != -1 {
			return fmt.Errorf("solrmap: duplicate id tag on field %s", fieldName)
		}
		meta.idIdx = idx
		return nil
	case "url":
		if meta.urlIdx != -1 {
			return fmt.Errorf("solrmap: duplicate url tag on field %s", fieldName)
		}
		meta.urlIdx = idx
		return nil
	}

	spec := FieldSpec{Kind: Kind(modifier)}
	if !spec.Kind.IsValid() {
		return fmt.Errorf("solrmap: unknown kind %q on field %s", modifier, fieldName)
	}
	for _, flag := range parts[2:] {
		switch flag {
		case "copy":
			spec.Copy = true
		case "dynamic":
			spec.Dynamic = true
		case "required":
			spec.Required = true
		default:
			return fmt.Errorf("solrmap: unknown flag %q on field %s", flag, fieldName)
		}
	}
	meta.fields = append(meta.fields, Field{Name: name, Spec: spec})
	return nil
}

// structRecord adapts a tagged struct to the Record interface.
type structRecord struct {
	app, model string
	meta       *schemaMeta
	v          reflect.Value
}

func (m *schemaMeta) record(appLabel, model string, item any) structRecord {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	return structRecord{app: appLabel, model: model, meta: m, v: v}
}

func (r structRecord) AppLabel() string { return r.app }

func (r structRecord) ModelName() string { return r.model }

func (r structRecord) PK() string {
	return fmt.Sprint(r.v.Field(r.meta.idIdx).Interface())
}

func (r structRecord) Attr(name string) (any, bool) {
	idx, ok := r.meta.attrs[name]
	if !ok {
		return nil, false
	}
	return r.v.Field(idx).Interface(), true
}

func (r structRecord) AbsoluteURL() string {
	if r.meta.urlIdx == -1 {
		return ""
	}
	return fmt.Sprint(r.v.Field(r.meta.urlIdx).Interface())
}

// fromDocument builds a T from a result document. Missing values keep their zero value.
func (m *schemaMeta) fromDocument(doc *Document) (any, error) {
	v := reflect.New(m.typ).Elem()
	if err := setValue(v.Field(m.idIdx), doc.PrimaryKey().Value()); err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}
	if m.urlIdx != -1 {
		if err := setValue(v.Field(m.urlIdx), doc.Value("url")); err != nil {
			return nil, fmt.Errorf("url: %w", err)
		}
	}
	for _, f := range m.fields {
		if err := setValue(v.Field(m.attrs[f.Name]), doc.Value(f.Name)); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	if m.ptr {
		return v.Addr().Interface(), nil
	}
	return v.Interface(), nil
}

var timeType = reflect.TypeOf(time.Time{})

func setValue(dst reflect.Value, raw any) error {
	if raw == nil {
		return nil
	}
	src := reflect.ValueOf(raw)
	if src.Type().AssignableTo(dst.Type()) {
		dst.Set(src)
		return nil
	}

	var err error
	switch dst.Kind() {
	case reflect.String:
		dst.SetString(field.FormatValue(raw))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		n, err = strconv.ParseInt(field.FormatValue(raw), 10, 64)
		if err == nil && !dst.OverflowInt(n) {
			dst.SetInt(n)
			return nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64
		n, err = strconv.ParseUint(field.FormatValue(raw), 10, 64)
		if err == nil && !dst.OverflowUint(n) {
			dst.SetUint(n)
			return nil
		}
	case reflect.Float32, reflect.Float64:
		var f float64
		f, err = strconv.ParseFloat(field.FormatValue(raw), 64)
		if err == nil {
			dst.SetFloat(f)
			return nil
		}
	case reflect.Bool:
		var b bool
		b, err = strconv.ParseBool(field.FormatValue(raw))
		if err == nil {
			dst.SetBool(b)
			return nil
		}
	case reflect.Struct:
		if dst.Type() == timeType {
			var t time.Time
			t, err = field.ParseTimestamp(field.FormatValue(raw))
			if err == nil {
				dst.Set(reflect.ValueOf(t))
				return nil
			}
		}
	}
	return domain.NewConversion(dst.Type().String(), dst.Kind().String(), raw, err)
}
