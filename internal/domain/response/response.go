// Package response parses index XML responses into typed results.
package response

import (
	"net/url"
	"strconv"

	"github.com/kailas-cloud/solrmap/internal/domain/document"
	"github.com/kailas-cloud/solrmap/internal/domain/facet"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
)

// DefaultRows is assumed when the response does not echo rows.
const DefaultRows = 10

// Result is a parsed update or select response.
type Result struct {
	Status int
	QTime  int
	Params url.Values

	Start int
	Rows  int
	Count int

	Documents    []document.Document
	Facets       []facet.Facet
	Highlighting map[string]map[string][]string
}

// Success reports whether the service answered with status 0.
func (r *Result) Success() bool { return r.Status == 0 }

// URL re-encodes the echoed request parameters.
func (r *Result) URL() string { return r.Params.Encode() }

// Pages returns the number of result pages.
func (r *Result) Pages() int {
	if r.Rows <= 0 {
		return 0
	}
	return (r.Count + r.Rows - 1) / r.Rows
}

func echoed(params map[string]any) url.Values {
	out := url.Values{}
	for k, v := range params {
		switch vv := v.(type) {
		case []any:
			for _, item := range vv {
				out.Add(k, field.FormatValue(item))
			}
		default:
			out.Add(k, field.FormatValue(v))
		}
	}
	return out
}

func intParam(params url.Values, key string, def int) int {
	if v := params.Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
