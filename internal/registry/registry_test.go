package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/solrmap/internal/domain"
	"github.com/kailas-cloud/solrmap/internal/domain/document"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
)

func TestRegistry_RegisterLookup(t *testing.T) {
	r := New("")
	s := document.MustSchema(document.DefaultBase()...)

	require.NoError(t, r.Register("blog", "post", s))
	got, err := r.Lookup("blog__post")
	require.NoError(t, err)
	assert.Same(t, s, got)

	got, err = r.For(field.MapRecord{App: "blog", Model: "post"})
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestRegistry_Duplicate(t *testing.T) {
	r := New("__")
	s := document.MustSchema(document.DefaultBase()...)
	require.NoError(t, r.Register("blog", "post", s))
	err := r.RegisterKey("blog__post", s)
	assert.True(t, errors.Is(err, domain.ErrAlreadyRegistered))
}

func TestRegistry_Unknown(t *testing.T) {
	_, err := New("__").Lookup("events__event")
	require.Error(t, err)
	var use *domain.UnknownSchemaError
	require.ErrorAs(t, err, &use)
	assert.Equal(t, "events__event", use.ModelTag)
	assert.True(t, errors.Is(err, domain.ErrUnknownSchema))
}

func TestRegistry_NilSchema(t *testing.T) {
	err := New("").Register("a", "b", nil)
	assert.True(t, errors.Is(err, domain.ErrConstruction))
}

func TestRegistry_Order(t *testing.T) {
	r := New("::")
	a := document.MustSchema(document.DefaultBase()...)
	b := document.MustSchema(document.DefaultBase()...)
	require.NoError(t, r.Register("z", "last", a))
	require.NoError(t, r.Register("a", "first", b))

	assert.Equal(t, []string{"z::last", "a::first"}, r.Keys())
	assert.Equal(t, []*document.Schema{a, b}, r.Schemas())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_ConcurrentLookup(t *testing.T) {
	r := New("")
	s := document.MustSchema(document.DefaultBase()...)
	require.NoError(t, r.Register("blog", "post", s))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Lookup("blog__post")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
