package solrmap

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/solrmap/internal/domain/response"
)

// Hit is a typed search result.
type Hit[T any] struct {
	Item      T
	Highlight string
}

// Page is one page of typed search results.
type Page[T any] struct {
	Hits   []Hit[T]
	Count  int
	Start  int
	Rows   int
	Pages  int
	QTime  int
	Facets []Facet
}

// SearchBuilder is a fluent builder for typed search queries.
type SearchBuilder[T any] struct {
	idx    *TypedIndex[T]
	params []Param
}

// Query adds a query clause. Clauses are joined with AND.
func (b *SearchBuilder[T]) Query(q string) *SearchBuilder[T] {
	return b.Param("q", q)
}

// Filter adds a filter query.
func (b *SearchBuilder[T]) Filter(fq string) *SearchBuilder[T] {
	return b.Param("fq", fq)
}

// Sort adds a sort clause such as "published desc".
func (b *SearchBuilder[T]) Sort(s string) *SearchBuilder[T] {
	return b.Param("sort", s)
}

// Start sets the offset of the first result.
func (b *SearchBuilder[T]) Start(n int) *SearchBuilder[T] {
	return b.Param("start", strconv.Itoa(n))
}

// Rows sets the page size.
func (b *SearchBuilder[T]) Rows(n int) *SearchBuilder[T] {
	return b.Param("rows", strconv.Itoa(n))
}

// Facet requests facet counts for fields.
func (b *SearchBuilder[T]) Facet(fields ...string) *SearchBuilder[T] {
	for _, f := range fields {
		b.Param("facet.field", f)
	}
	return b
}

// NoFacets disables faceting, including configured defaults.
func (b *SearchBuilder[T]) NoFacets() *SearchBuilder[T] {
	return b.Param("facet", "false")
}

// Highlight requests highlighted fragments for fields.
func (b *SearchBuilder[T]) Highlight(fields ...string) *SearchBuilder[T] {
	for _, f := range fields {
		b.Param("hl.fl", f)
	}
	return b
}

// Param adds a raw parameter.
func (b *SearchBuilder[T]) Param(key, value string) *SearchBuilder[T] {
	b.params = append(b.params, Param{Key: key, Value: value})
	return b
}

// Params returns the parameters Do will send, including the model filter.
func (b *SearchBuilder[T]) Params() []Param {
	out := append([]Param(nil), b.params...)
	return append(out, Param{
		Key:   "fq",
		Value: response.DefaultModelField + ":" + b.idx.ModelKey(),
	})
}

// Do executes the search and returns typed results. Documents of other
// models are skipped.
func (b *SearchBuilder[T]) Do(ctx context.Context) (*Page[T], error) {
	res, err := b.idx.client.Search(ctx, b.Params()...)
	if err != nil {
		return nil, err
	}

	page := &Page[T]{
		Count:  res.Count,
		Start:  res.Start,
		Rows:   res.Rows,
		Pages:  res.Pages(),
		QTime:  res.QTime,
		Facets: res.Facets,
		Hits:   make([]Hit[T], 0, len(res.Documents)),
	}
	key := b.idx.ModelKey()
	for i := range res.Documents {
		doc := &res.Documents[i]
		if doc.ModelTag() != key {
			continue
		}
		item, err := b.idx.decode(doc)
		if err != nil {
			return nil, fmt.Errorf("search: %w", err)
		}
		page.Hits = append(page.Hits, Hit[T]{Item: item, Highlight: doc.Highlight()})
	}
	return page, nil
}
