package query

import "strconv"

// Group namespaces.
const (
	FacetNamespace     = "facet"
	HighlightNamespace = "hl"
)

// Facet is the facet parameter group.
type Facet struct {
	*Params
}

// NewFacet creates an empty facet group.
func NewFacet() *Facet {
	return &Facet{Params: NewParams(FacetNamespace, []Slot{
		{Name: "field", List: true},
		{Name: "query", List: true},
		{Name: "prefix"},
		{Name: "sort"},
		{Name: "limit"},
		{Name: "offset"},
		{Name: "mincount"},
		{Name: "missing"},
	})}
}

// Fields returns the faceted field names.
func (f *Facet) Fields() []string { return f.Get("field") }

// AddField facets on a field.
func (f *Facet) AddField(name string) *Facet {
	f.Set("field", name)
	return f
}

// AddQuery adds a facet query.
func (f *Facet) AddQuery(q string) *Facet {
	f.Set("query", q)
	return f
}

// SetLimit caps the number of values per field.
func (f *Facet) SetLimit(n int) *Facet {
	f.Set("limit", strconv.Itoa(n))
	return f
}

// SetMinCount drops values below n.
func (f *Facet) SetMinCount(n int) *Facet {
	f.Set("mincount", strconv.Itoa(n))
	return f
}

// Highlight is the highlighting parameter group with the "simple" and
// "regex" nested groups.
type Highlight struct {
	*Params
}

// NewHighlight creates an empty highlight group.
func NewHighlight() *Highlight {
	return &Highlight{Params: NewParams(HighlightNamespace,
		[]Slot{
			{Name: "fl", List: true},
			{Name: "snippets"},
			{Name: "fragsize"},
			{Name: "requireFieldMatch"},
			{Name: "fragmenter"},
		},
		NewParams("simple", []Slot{{Name: "pre"}, {Name: "post"}}),
		NewParams("regex", []Slot{{Name: "slop"}, {Name: "pattern"}, {Name: "maxAnalyzedChars"}}),
	)}
}

// Fields returns the highlighted field names.
func (h *Highlight) Fields() []string { return h.Get("fl") }

// AddField highlights a field.
func (h *Highlight) AddField(name string) *Highlight {
	h.Set("fl", name)
	return h
}

// SetSnippets sets the number of snippets per field.
func (h *Highlight) SetSnippets(n int) *Highlight {
	h.Set("snippets", strconv.Itoa(n))
	return h
}

// SetTags sets the markup wrapped around matched terms.
func (h *Highlight) SetTags(pre, post string) *Highlight {
	h.Simple().Set("pre", pre)
	h.Simple().Set("post", post)
	return h
}

// Simple returns the "simple" formatter group.
func (h *Highlight) Simple() *Params { return h.Group("simple") }

// Regex returns the "regex" fragmenter group.
func (h *Highlight) Regex() *Params { return h.Group("regex") }
