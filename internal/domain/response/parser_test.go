package response

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/solrmap/internal/domain"
	"github.com/kailas-cloud/solrmap/internal/domain/document"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
	"github.com/kailas-cloud/solrmap/internal/registry"
)

const header = `<lst name="responseHeader">
  <int name="status">0</int>
  <int name="QTime">12</int>
  <lst name="params">
    <str name="q">obama</str>
    <str name="rows">10</str>
    <str name="start">0</str>
    <arr name="fq"><str>site_id:1</str><str>model:blog__post</str></arr>
  </lst>
</lst>`

const selectBody = `<?xml version="1.0" encoding="UTF-8"?>
<response>
` + header + `
<result name="response" numFound="2" start="0">
  <doc>
    <str name="id">blog__post__7</str>
    <str name="model">blog__post</str>
    <int name="site_id">1</int>
    <str name="url">/blog/7/</str>
    <arr name="text"><str>Obama Wins</str><str>election</str></arr>
    <str name="title">Obama Wins</str>
    <int name="views_i">1024</int>
    <date name="published">2008-11-04T23:30:00Z</date>
  </doc>
  <doc>
    <str name="id">blog__post__8</str>
    <str name="model">blog__post</str>
    <int name="site_id">1</int>
    <str name="title">Senate Race</str>
  </doc>
</result>
<lst name="facet_counts">
  <lst name="facet_queries"/>
  <lst name="facet_fields">
    <lst name="category">
      <int name="Politics;;Elections">4</int>
      <int name="2008">11</int>
      <int name="Politics;;Senate">2</int>
    </lst>
    <lst name="model">
      <int name="blog__post">2</int>
    </lst>
  </lst>
</lst>
<lst name="highlighting">
  <lst name="blog__post__7">
    <arr name="title"><str>&lt;em&gt;Obama&lt;/em&gt; Wins</str></arr>
    <arr name="text"><str>&lt;em&gt;Obama&lt;/em&gt;</str><str>again</str></arr>
  </lst>
</lst>
</response>`

func newParser(t *testing.T) *Parser {
	t.Helper()
	reg := registry.New("")
	s, err := document.NewSchema(document.Extend(document.DefaultBase(),
		document.Decl{Name: "title", Spec: field.Spec{Kind: field.Text, Copy: true}},
		document.Decl{Name: "views", Spec: field.Spec{Kind: field.Integer, Dynamic: true}},
		document.Decl{Name: "published", Spec: field.Spec{Kind: field.DateTime}},
	)...)
	require.NoError(t, err)
	require.NoError(t, reg.Register("blog", "post", s))
	return NewParser(reg, Options{SiteID: 1})
}

func TestParseUpdate_HeaderOnly(t *testing.T) {
	res, err := newParser(t).ParseUpdate([]byte(`<response>` + header + `</response>`))
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, 12, res.QTime)
	assert.Equal(t, "obama", res.Params.Get("q"))
}

func TestParseSelect_HeaderWithoutResult(t *testing.T) {
	res, err := newParser(t).ParseSelect([]byte(`<response>` + header + `</response>`))
	require.NoError(t, err)
	assert.Empty(t, res.Documents)
	assert.Equal(t, 0, res.Count)
	assert.Equal(t, 10, res.Rows)
}

func TestParse_Errors(t *testing.T) {
	p := newParser(t)
	cases := map[string]string{
		"empty":        ``,
		"malformed":    `<response><lst name="responseHeader">`,
		"no header":    `<response><result name="response" numFound="0"/></response>`,
		"no status":    `<response><lst name="responseHeader"><int name="QTime">1</int></lst></response>`,
		"no qtime":     `<response><lst name="responseHeader"><int name="status">0</int></lst></response>`,
		"bad int":      `<response><lst name="responseHeader"><int name="status">x</int></lst></response>`,
		"not xml root": `plain text`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := p.ParseSelect([]byte(body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrParse), err.Error())
		})
	}
}

func TestParseSelect_Documents(t *testing.T) {
	res, err := newParser(t).ParseSelect([]byte(selectBody))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Count)
	require.Len(t, res.Documents, 2)
	doc := res.Documents[0]
	assert.Equal(t, "7", doc.PrimaryKey().Value())
	assert.Equal(t, "blog__post", doc.ModelTag())
	assert.Equal(t, int64(1024), doc.Value("views"))
	assert.Equal(t, "Obama Wins", doc.Value("title"))
	assert.Equal(t, time.Date(2008, 11, 4, 23, 30, 0, 0, time.UTC), doc.Value("published"))
	assert.Nil(t, res.Documents[1].Value("views"))
}

func TestParseSelect_Facets(t *testing.T) {
	res, err := newParser(t).ParseSelect([]byte(selectBody))
	require.NoError(t, err)

	require.Len(t, res.Facets, 2)
	cat := res.Facets[0]
	assert.Equal(t, "category", cat.Name)
	var got []string
	for _, v := range cat.Values {
		got = append(got, v.Value)
	}
	assert.Equal(t, []string{"2008", "Politics", "Politics;;Elections", "Politics;;Senate"}, got)
	assert.Equal(t, 6, cat.Values[1].Count)
	assert.Equal(t, "Elections", cat.Values[2].Name)
	assert.Equal(t, 1, cat.Values[2].Level)

	assert.Equal(t, "Post", res.Facets[1].Values[0].Name)
}

func TestParseSelect_Highlighting(t *testing.T) {
	res, err := newParser(t).ParseSelect([]byte(selectBody))
	require.NoError(t, err)

	doc := res.Documents[0]
	title, ok := doc.Field("title")
	require.True(t, ok)
	assert.Equal(t, "<em>Obama</em> Wins", title.Highlight())
	assert.Equal(t, "<em>Obama</em> again <em>Obama</em> Wins", doc.Highlight())
	assert.Empty(t, res.Documents[1].Highlight())
	assert.Contains(t, res.Highlighting, "blog__post__7")
}

func TestParseSelect_UnknownSchema(t *testing.T) {
	body := `<response>` + header + `<result name="response" numFound="1"><doc>
<str name="id">events__event__1</str><str name="model">events__event</str>
</doc></result></response>`
	_, err := newParser(t).ParseSelect([]byte(body))
	require.Error(t, err)
	var use *domain.UnknownSchemaError
	require.ErrorAs(t, err, &use)
	assert.Equal(t, "events__event", use.ModelTag)
}

func TestParseSelect_ConversionError(t *testing.T) {
	body := `<response>` + header + `<result name="response" numFound="1"><doc>
<str name="id">blog__post__1</str><str name="model">blog__post</str><str name="views_i">lots</str>
</doc></result></response>`
	_, err := newParser(t).ParseSelect([]byte(body))
	assert.True(t, errors.Is(err, domain.ErrConversion))
}

func TestResult_URL(t *testing.T) {
	res, err := newParser(t).ParseUpdate([]byte(`<response>` + header + `</response>`))
	require.NoError(t, err)
	assert.Equal(t, "fq=site_id%3A1&fq=model%3Ablog__post&q=obama&rows=10&start=0", res.URL())
}

func TestResult_Pages(t *testing.T) {
	assert.Equal(t, 3, (&Result{Count: 21, Rows: 10}).Pages())
	assert.Equal(t, 0, (&Result{Count: 5}).Pages())
}
