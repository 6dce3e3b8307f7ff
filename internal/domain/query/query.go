// Package query assembles select parameters into a reproducible query string.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// DefaultRows is the page size used when none is set.
const DefaultRows = 10

// Query is a structured select request.
type Query struct {
	clauses []string
	sort    []string
	filters []string
	fields  []string
	start   int
	rows    int

	facet        *Facet
	highlight    *Highlight
	facetOff     bool
	highlightOff bool
}

// New creates an empty query with the default page size.
func New() *Query {
	return &Query{
		rows:      DefaultRows,
		facet:     NewFacet(),
		highlight: NewHighlight(),
	}
}

// AddClause appends a free-text clause. Clauses are AND-ed.
func (q *Query) AddClause(c string) *Query {
	if c != "" {
		q.clauses = append(q.clauses, c)
	}
	return q
}

// AddTerm appends a "key:value" clause.
func (q *Query) AddTerm(key, value string) *Query {
	return q.AddClause(key + ":" + value)
}

// AddSort appends a sort spec such as "published desc".
func (q *Query) AddSort(s string) *Query {
	if s != "" {
		q.sort = append(q.sort, s)
	}
	return q
}

// AddFilter appends a filter query.
func (q *Query) AddFilter(fq string) *Query {
	if fq != "" {
		q.filters = append(q.filters, fq)
	}
	return q
}

// AddField appends a returned field.
func (q *Query) AddField(fl string) *Query {
	if fl != "" {
		q.fields = append(q.fields, fl)
	}
	return q
}

// SetStart sets the result offset.
func (q *Query) SetStart(n int) *Query {
	q.start = n
	return q
}

// SetRows sets the page size.
func (q *Query) SetRows(n int) *Query {
	q.rows = n
	return q
}

// Facet returns the facet group.
func (q *Query) Facet() *Facet { return q.facet }

// Highlight returns the highlight group.
func (q *Query) Highlight() *Highlight { return q.highlight }

// DisableFacets suppresses facet parameters, including defaults.
func (q *Query) DisableFacets() *Query {
	q.facetOff = true
	return q
}

// DisableHighlight suppresses highlight parameters, including defaults.
func (q *Query) DisableHighlight() *Query {
	q.highlightOff = true
	return q
}

// Clauses returns the free-text clauses.
func (q *Query) Clauses() []string { return append([]string(nil), q.clauses...) }

// Start returns the result offset.
func (q *Query) Start() int { return q.start }

// Rows returns the page size.
func (q *Query) Rows() int { return q.rows }

// IsEmpty reports whether the query has no clause. Empty queries must not be issued.
func (q *Query) IsEmpty() bool { return len(q.clauses) == 0 }

// Pairs returns the parameters in emission order.
func (q *Query) Pairs() []Param {
	if q.IsEmpty() {
		return nil
	}
	out := []Param{{Key: "q", Value: strings.Join(q.clauses, " AND ")}}
	if len(q.sort) > 0 {
		out = append(out, Param{Key: "sort", Value: strings.Join(q.sort, " ")})
	}
	if len(q.filters) > 0 {
		out = append(out, Param{Key: "fq", Value: strings.Join(q.filters, ",")})
	}
	if len(q.fields) > 0 {
		out = append(out, Param{Key: "fl", Value: strings.Join(q.fields, ",")})
	}
	if q.start > 0 {
		out = append(out, Param{Key: "start", Value: strconv.Itoa(q.start)})
	}
	if q.rows > 0 {
		out = append(out, Param{Key: "rows", Value: strconv.Itoa(q.rows)})
	}

	facetOn := !q.facetOff && !q.facet.IsEmpty()
	hlOn := !q.highlightOff && !q.highlight.IsEmpty()
	if facetOn {
		out = append(out, q.facet.Pairs()...)
	}
	if hlOn {
		out = append(out, q.highlight.Pairs()...)
	}
	if facetOn {
		out = append(out, Param{Key: FacetNamespace, Value: "true"})
	}
	if hlOn {
		out = append(out, Param{Key: HighlightNamespace, Value: "true"})
	}
	return out
}

// QueryString returns the URL-encoded parameters, or "" when there is no clause.
func (q *Query) QueryString() string {
	pairs := q.Pairs()
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = url.QueryEscape(p.Key) + "=" + url.QueryEscape(p.Value)
	}
	return strings.Join(parts, "&")
}

// String implements fmt.Stringer.
func (q *Query) String() string { return q.QueryString() }
