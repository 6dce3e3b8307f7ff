package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/solrmap/internal/domain"
)

// Builder classifies flat key/value pairs into a Query.
type Builder struct {
	defaults []Param
}

// NewBuilder creates a builder that prepends defaults to every build.
func NewBuilder(defaults ...Param) *Builder {
	return &Builder{defaults: append([]Param(nil), defaults...)}
}

// Build classifies pairs into a query. Input order does not affect the result.
func (b *Builder) Build(pairs []Param) (*Query, error) {
	all := make([]Param, 0, len(b.defaults)+len(pairs))
	all = append(all, b.defaults...)
	all = append(all, pairs...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Key != all[j].Key {
			return all[i].Key < all[j].Key
		}
		return all[i].Value < all[j].Value
	})

	q := New()
	for _, p := range all {
		if err := q.apply(p); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func (q *Query) apply(p Param) error {
	if p.Key == "" || p.Value == "" {
		return nil
	}
	switch {
	case p.Key == FacetNamespace:
		if isOff(p.Value) {
			q.DisableFacets()
		}
	case p.Key == HighlightNamespace:
		if isOff(p.Value) {
			q.DisableHighlight()
		}
	case strings.HasPrefix(p.Key, FacetNamespace+"."):
		q.facet.Set(strings.TrimPrefix(p.Key, FacetNamespace+"."), p.Value)
	case strings.HasPrefix(p.Key, HighlightNamespace+"."):
		q.highlight.Set(strings.TrimPrefix(p.Key, HighlightNamespace+"."), p.Value)
	case p.Key == "q":
		q.AddClause(p.Value)
	case p.Key == "sort":
		q.AddSort(p.Value)
	case p.Key == "fq":
		q.AddFilter(p.Value)
	case p.Key == "fl":
		q.AddField(p.Value)
	case p.Key == "start" || p.Key == "rows":
		n, err := strconv.Atoi(p.Value)
		if err != nil || n < 0 {
			return domain.NewConversion(p.Key, "integer", p.Value, err)
		}
		if p.Key == "start" {
			q.SetStart(n)
		} else {
			q.SetRows(n)
		}
	default:
		q.AddTerm(p.Key, p.Value)
	}
	return nil
}

func isOff(v string) bool {
	switch strings.ToLower(v) {
	case "false", "off", "0", "no":
		return true
	}
	return false
}

// FromValues flattens url.Values into pairs.
func FromValues(v url.Values) []Param {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []Param
	for _, k := range keys {
		for _, val := range v[k] {
			out = append(out, Param{Key: k, Value: val})
		}
	}
	return out
}

// ParseParams splits "key=value" arguments into pairs.
func ParseParams(args []string) ([]Param, error) {
	out := make([]Param, 0, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			return nil, domain.NewConversion(a, "param", a, nil)
		}
		out = append(out, Param{Key: k, Value: v})
	}
	return out, nil
}
