package index

import (
	"context"
	"testing"

	"github.com/kailas-cloud/solrmap/internal/domain/document"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
	"github.com/kailas-cloud/solrmap/internal/domain/response"
	"github.com/kailas-cloud/solrmap/internal/registry"
)

const okResponse = `<response><lst name="responseHeader"><int name="status">0</int><int name="QTime">3</int></lst></response>`

type mockUpdater struct {
	unavailable bool
	err         error
	reply       string
	bodies      []string
}

func (m *mockUpdater) Update(_ context.Context, body string) ([]byte, error) {
	m.bodies = append(m.bodies, body)
	if m.err != nil {
		return nil, m.err
	}
	if m.reply != "" {
		return []byte(m.reply), nil
	}
	return []byte(okResponse), nil
}

func (m *mockUpdater) IsAvailable(context.Context) bool { return !m.unavailable }

type mockPurger struct {
	calls int
	err   error
}

func (m *mockPurger) Purge(context.Context) (int, error) {
	m.calls++
	return 3, m.err
}

var testEnv = field.Env{Separator: "__", SiteID: 1}

func newTestService(t *testing.T, up *mockUpdater) (*Service, *mockPurger) {
	t.Helper()
	reg := registry.New("__")
	s := document.MustSchema(document.Extend(document.DefaultBase(),
		document.Decl{Name: "title", Spec: field.Spec{Kind: field.Text, Copy: true}},
	)...)
	if err := reg.Register("blog", "post", s); err != nil {
		t.Fatalf("register: %v", err)
	}
	purger := &mockPurger{}
	svc := New(up, reg, response.NewParser(reg, response.Options{}), testEnv, nil).WithCache(purger)
	return svc, purger
}

func post(id, title string) field.MapRecord {
	return field.MapRecord{App: "blog", Model: "post", ID: id, URL: "/blog/" + id + "/", Attrs: map[string]any{"title": title}}
}
