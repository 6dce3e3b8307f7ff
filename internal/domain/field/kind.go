package field

// Kind is the declared type of a field.
type Kind string

// Field kind constants.
const (
	String     Kind = "string"
	Text       Kind = "text"
	Integer    Kind = "integer"
	Float      Kind = "float"
	Double     Kind = "double"
	Long       Kind = "long"
	Boolean    Kind = "boolean"
	Date       Kind = "date"
	DateTime   Kind = "datetime"
	PrimaryKey Kind = "primary_key"
	ModelTag   Kind = "model"
	Site       Kind = "site"
	URL        Kind = "url"
)

type kindInfo struct {
	suffix    string // dynamic field suffix
	indexType string // schema.xml type name
	required  bool
}

var kinds = map[Kind]kindInfo{
	String:     {suffix: "s", indexType: "string"},
	Text:       {suffix: "t", indexType: "text"},
	Integer:    {suffix: "i", indexType: "integer"},
	Float:      {suffix: "f", indexType: "float"},
	Double:     {suffix: "d", indexType: "double"},
	Long:       {suffix: "l", indexType: "long"},
	Boolean:    {suffix: "b", indexType: "boolean"},
	Date:       {suffix: "dt", indexType: "date"},
	DateTime:   {suffix: "dt", indexType: "date"},
	PrimaryKey: {suffix: "s", indexType: "string", required: true},
	ModelTag:   {suffix: "s", indexType: "string", required: true},
	Site:       {suffix: "i", indexType: "integer", required: true},
	URL:        {suffix: "s", indexType: "string"},
}

// IsValid reports whether the kind is known.
func (k Kind) IsValid() bool {
	_, ok := kinds[k]
	return ok
}

// Suffix returns the dynamic field suffix, e.g. "i" for Integer.
func (k Kind) Suffix() string { return kinds[k].suffix }

// IndexType returns the index-side type name used in schema configuration.
func (k Kind) IndexType() string { return kinds[k].indexType }

// AlwaysRequired reports whether fields of this kind are forced to required.
func (k Kind) AlwaysRequired() bool { return kinds[k].required }
