package field

// Record is an application record that can be mapped to a document.
type Record interface {
	AppLabel() string
	ModelName() string
	PK() string
	// Attr returns the named attribute and whether it exists.
	Attr(name string) (any, bool)
}

// URLer is implemented by records that expose a canonical URL.
type URLer interface {
	AbsoluteURL() string
}

// Env carries the settings field transforms depend on.
type Env struct {
	Separator string // model key separator, e.g. "__"
	SiteID    int64
}

// DefaultSeparator joins app label and model name in model keys.
const DefaultSeparator = "__"

// ModelKey returns the logical type key of a record: appLabel + sep + modelName.
func ModelKey(rec Record, sep string) string {
	return rec.AppLabel() + sep + rec.ModelName()
}

// MapRecord is a Record backed by a plain attribute map.
type MapRecord struct {
	App   string
	Model string
	ID    string
	URL   string
	Attrs map[string]any
}

// AppLabel returns the application label.
func (r MapRecord) AppLabel() string { return r.App }

// ModelName returns the model name.
func (r MapRecord) ModelName() string { return r.Model }

// PK returns the record identifier.
func (r MapRecord) PK() string { return r.ID }

// Attr looks up an attribute.
func (r MapRecord) Attr(name string) (any, bool) {
	v, ok := r.Attrs[name]
	return v, ok
}

// AbsoluteURL returns the canonical URL.
func (r MapRecord) AbsoluteURL() string { return r.URL }
