package solrmap

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

const selectXML = `<response>
<lst name="responseHeader"><int name="status">0</int><int name="QTime">4</int>
  <lst name="params"><str name="q">obama</str><str name="rows">5</str></lst></lst>
<result name="response" numFound="12" start="0">
  <doc>
    <str name="id">blog__post__7</str><str name="model">blog__post</str>
    <str name="url">/blog/7/</str><str name="title">Obama Wins</str>
    <int name="views_i">1024</int><bool name="featured">true</bool>
    <date name="published">2008-11-04T23:30:00Z</date>
  </doc>
  <doc><str name="id">blog__page__1</str><str name="model">blog__page</str><str name="title">About</str></doc>
</result>
<lst name="facet_counts"><lst name="facet_fields">
  <lst name="category"><int name="Politics;;Elections">4</int></lst>
</lst></lst>
<lst name="highlighting">
  <lst name="blog__post__7"><arr name="title"><str>&lt;em&gt;Obama&lt;/em&gt; Wins</str></arr></lst>
</lst>
</response>`

const updateXML = `<response><lst name="responseHeader"><int name="status">0</int><int name="QTime">1</int></lst></response>`

type page struct {
	ID    string `solrmap:"id,id"`
	Title string `solrmap:"title,string"`
}

type fakeIndex struct {
	mu      sync.Mutex
	selects []url.Values
	updates []string
}

func (f *fakeIndex) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case strings.HasSuffix(r.URL.Path, "/select"):
		f.selects = append(f.selects, r.URL.Query())
		_, _ = io.WriteString(w, selectXML)
	case strings.HasSuffix(r.URL.Path, "/update"):
		body, _ := io.ReadAll(r.Body)
		f.updates = append(f.updates, string(body))
		_, _ = io.WriteString(w, updateXML)
	default:
		_, _ = io.WriteString(w, updateXML)
	}
}

func newTestIndex(t *testing.T) (*fakeIndex, *TypedIndex[post]) {
	t.Helper()
	fake := &fakeIndex{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := New(context.Background(),
		WithSolr(srv.URL+"/solr/update", srv.URL+"/solr/select"),
		WithSiteID(1),
		WithDefaults("hl=true", "hl.fl=title"),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(client.Close)

	posts, err := NewIndex[post](client, "blog", "post")
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	if _, err := NewIndex[page](client, "blog", "page"); err != nil {
		t.Fatalf("new page index: %v", err)
	}
	return fake, posts
}

func TestTypedIndex_Save(t *testing.T) {
	fake, posts := newTestIndex(t)

	if err := posts.Save(context.Background(), testPost()); err != nil {
		t.Fatalf("save: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.updates) != 2 {
		t.Fatalf("expected add and commit, got %v", fake.updates)
	}
	add := fake.updates[0]
	for _, want := range []string{
		`<field name="id"><![CDATA[blog__post__7]]></field>`,
		`<field name="url"><![CDATA[/blog/7/]]></field>`,
		`<field name="views_i"><![CDATA[1024]]></field>`,
	} {
		if !strings.Contains(add, want) {
			t.Errorf("add body missing %s:\n%s", want, add)
		}
	}
	if strings.Contains(add, "Long") {
		t.Error("untyped attributes must not be indexed")
	}
}

func TestTypedIndex_Delete(t *testing.T) {
	fake, posts := newTestIndex(t)

	if err := posts.Delete(context.Background(), testPost()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.updates) != 2 || !strings.Contains(fake.updates[0], "<id>blog__post__7</id>") {
		t.Errorf("unexpected updates: %v", fake.updates)
	}
}

func TestTypedIndex_Search(t *testing.T) {
	fake, posts := newTestIndex(t)

	res, err := posts.Search().Query("obama").Rows(5).Facet("category").Do(context.Background())
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if res.Count != 12 || res.Pages != 3 || res.QTime != 4 {
		t.Errorf("page = %+v", res)
	}
	if len(res.Hits) != 1 {
		t.Fatalf("expected one post hit, got %d", len(res.Hits))
	}
	hit := res.Hits[0]
	if hit.Item.ID != 7 || hit.Item.Title != "Obama Wins" || hit.Item.Views != 1024 || !hit.Item.Featured {
		t.Errorf("item = %+v", hit.Item)
	}
	if hit.Item.Published.Year() != 2008 {
		t.Errorf("published = %v", hit.Item.Published)
	}
	if hit.Highlight != "<em>Obama</em> Wins" {
		t.Errorf("highlight = %q", hit.Highlight)
	}
	if len(res.Facets) != 1 || len(res.Facets[0].Values) != 2 || res.Facets[0].Values[0].Count != 4 {
		t.Errorf("facets = %+v", res.Facets)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.selects) != 1 {
		t.Fatalf("expected one select, got %d", len(fake.selects))
	}
	q := fake.selects[0]
	if q.Get("q") != "obama" || q.Get("rows") != "5" || q.Get("fq") != "model:blog__post" {
		t.Errorf("query = %v", q)
	}
	if q.Get("facet.field") != "category" || q.Get("hl.fl") != "title" {
		t.Errorf("facet/highlight params = %v", q)
	}
}

func TestTypedIndex_Params(t *testing.T) {
	_, posts := newTestIndex(t)

	params := posts.Search().Filter("featured:true").Sort("published desc").Start(10).NoFacets().Highlight("title").Params()
	want := []Param{
		{Key: "fq", Value: "featured:true"},
		{Key: "sort", Value: "published desc"},
		{Key: "start", Value: "10"},
		{Key: "facet", Value: "false"},
		{Key: "hl.fl", Value: "title"},
		{Key: "fq", Value: "model:blog__post"},
	}
	if len(params) != len(want) {
		t.Fatalf("params = %v", params)
	}
	for i := range want {
		if params[i] != want[i] {
			t.Errorf("param %d = %v, want %v", i, params[i], want[i])
		}
	}
}

func TestTypedIndex_Duplicate(t *testing.T) {
	_, posts := newTestIndex(t)
	_, err := NewIndex[post](posts.client, "blog", "post")
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestTypedIndex_Unavailable(t *testing.T) {
	client, err := New(context.Background(), WithSolr("http://127.0.0.1:1/solr/update", "http://127.0.0.1:1/solr/select"))
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	posts, err := NewIndex[post](client, "blog", "post")
	if err != nil {
		t.Fatal(err)
	}

	if err := posts.Save(context.Background(), testPost()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("save: expected ErrUnavailable, got %v", err)
	}
	if _, err := posts.Search().Query("x").Do(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("search: expected ErrUnavailable, got %v", err)
	}
	if err := client.Ping(context.Background()); err == nil {
		t.Error("expected ping error")
	}
	if h := client.Health(context.Background()); h.Status != "error" {
		t.Errorf("health = %+v", h)
	}
}
