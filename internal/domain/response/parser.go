package response

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/kailas-cloud/solrmap/internal/domain/document"
	"github.com/kailas-cloud/solrmap/internal/domain/facet"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
)

// DefaultModelField is the wire name of the model tag field.
const DefaultModelField = "model"

// SchemaLookup resolves a model tag to a schema.
type SchemaLookup interface {
	Lookup(modelTag string) (*document.Schema, error)
}

// Options configures a Parser.
type Options struct {
	Separator  string
	Facet      facet.Separators
	ModelField string
	SiteID     int64
}

// Parser turns response bodies into Results.
type Parser struct {
	schemas SchemaLookup
	opts    Options
}

// NewParser creates a parser. Zero options fall back to defaults.
func NewParser(schemas SchemaLookup, opts Options) *Parser {
	if opts.Separator == "" {
		opts.Separator = field.DefaultSeparator
	}
	if opts.Facet.Path == "" {
		opts.Facet.Path = facet.DefaultPathSeparator
	}
	if opts.Facet.Name == "" {
		opts.Facet.Name = opts.Separator
	}
	if opts.ModelField == "" {
		opts.ModelField = DefaultModelField
	}
	return &Parser{schemas: schemas, opts: opts}
}

// ParseUpdate parses the header of an update response.
func (p *Parser) ParseUpdate(body []byte) (*Result, error) {
	root, err := readRoot(body)
	if err != nil {
		return nil, err
	}
	return parseHeader(root)
}

// ParseSelect parses a select response: header, documents, facets and highlighting.
func (p *Parser) ParseSelect(body []byte) (*Result, error) {
	root, err := readRoot(body)
	if err != nil {
		return nil, err
	}
	res, err := parseHeader(root)
	if err != nil {
		return nil, err
	}
	res.Start = intParam(res.Params, "start", 0)
	res.Rows = intParam(res.Params, "rows", DefaultRows)

	if err := p.parseDocuments(root, res); err != nil {
		return nil, err
	}
	if err := p.parseFacets(root, res); err != nil {
		return nil, err
	}
	if err := p.parseHighlighting(root, res); err != nil {
		return nil, err
	}
	return res, nil
}

func readRoot(body []byte) (*etree.Element, error) {
	if len(body) == 0 {
		return nil, parseErr("empty body")
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, parseErr("malformed xml: %v", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, parseErr("no root element")
	}
	return root, nil
}

func parseHeader(root *etree.Element) (*Result, error) {
	el := child(root, "lst", "responseHeader")
	if el == nil {
		return nil, parseErr("response contained no header")
	}
	header, err := dict(el)
	if err != nil {
		return nil, err
	}
	status, ok := header["status"].(int64)
	if !ok {
		return nil, parseErr("header has no status")
	}
	qtime, ok := header["QTime"].(int64)
	if !ok {
		return nil, parseErr("header has no QTime")
	}
	res := &Result{Status: int(status), QTime: int(qtime), Params: echoed(nil), Rows: DefaultRows}
	if params, ok := header["params"].(map[string]any); ok {
		res.Params = echoed(params)
	}
	return res, nil
}

func (p *Parser) parseDocuments(root *etree.Element, res *Result) error {
	result := child(root, "result", "")
	if result == nil {
		return nil
	}
	if n := result.SelectAttrValue("numFound", ""); n != "" {
		count, err := strconv.Atoi(n)
		if err != nil {
			return parseErr("numFound %q: %v", n, err)
		}
		res.Count = count
	}

	env := field.Env{Separator: p.opts.Separator, SiteID: p.opts.SiteID}
	for _, el := range children(result, "doc") {
		row, err := dict(el)
		if err != nil {
			return err
		}
		tag := field.FormatValue(row[p.opts.ModelField])
		schema, err := p.schemas.Lookup(tag)
		if err != nil {
			return err
		}
		doc, err := document.FromRow(schema, row, env)
		if err != nil {
			return fmt.Errorf("document %q: %w", tag, err)
		}
		res.Documents = append(res.Documents, doc)
	}
	return nil
}

func (p *Parser) parseFacets(root *etree.Element, res *Result) error {
	fields := child(child(root, "lst", "facet_counts"), "lst", "facet_fields")
	if fields == nil {
		return nil
	}
	for _, el := range children(fields, "lst") {
		var flat []*facet.Value
		for _, c := range children(el, "int") {
			v, err := value(c)
			if err != nil {
				return err
			}
			flat = append(flat, facet.NewValue(c.SelectAttrValue("name", ""), int(v.(int64)), p.opts.Facet))
		}
		res.Facets = append(res.Facets, facet.New(el.SelectAttrValue("name", ""), flat, p.opts.Facet))
	}
	return nil
}

func (p *Parser) parseHighlighting(root *etree.Element, res *Result) error {
	el := child(root, "lst", "highlighting")
	if el == nil {
		return nil
	}
	res.Highlighting = make(map[string]map[string][]string)
	for _, entry := range children(el, "lst") {
		frags := make(map[string][]string)
		for _, arr := range children(entry, "arr") {
			var parts []string
			for _, s := range arr.ChildElements() {
				parts = append(parts, s.Text())
			}
			frags[arr.SelectAttrValue("name", "")] = parts
		}
		res.Highlighting[entry.SelectAttrValue("name", "")] = frags
	}

	for i := range res.Documents {
		d := &res.Documents[i]
		key := d.ModelTag() + p.opts.Separator + field.FormatValue(d.PrimaryKey().Value())
		if frags, ok := res.Highlighting[key]; ok {
			res.Documents[i] = d.WithHighlights(frags)
		}
	}
	return nil
}
