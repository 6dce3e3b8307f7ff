// Package registry maps model keys to document schemas.
package registry

import (
	"fmt"
	"sync"

	"github.com/kailas-cloud/solrmap/internal/domain"
	"github.com/kailas-cloud/solrmap/internal/domain/document"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
)

// Registry is a concurrency-safe model key to schema map.
// Registration order is preserved.
type Registry struct {
	mu      sync.RWMutex
	sep     string
	schemas map[string]*document.Schema
	keys    []string
}

// New creates an empty registry. An empty separator means field.DefaultSeparator.
func New(sep string) *Registry {
	if sep == "" {
		sep = field.DefaultSeparator
	}
	return &Registry{sep: sep, schemas: make(map[string]*document.Schema)}
}

// Separator returns the model key separator.
func (r *Registry) Separator() string { return r.sep }

// Key joins app label and model name.
func (r *Registry) Key(app, model string) string { return app + r.sep + model }

// Register adds a schema for app/model.
func (r *Registry) Register(app, model string, s *document.Schema) error {
	return r.RegisterKey(r.Key(app, model), s)
}

// RegisterKey adds a schema under a full model key.
func (r *Registry) RegisterKey(key string, s *document.Schema) error {
	if s == nil {
		return fmt.Errorf("register %q: %w", key, domain.ErrConstruction)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schemas[key]; ok {
		return fmt.Errorf("register %q: %w", key, domain.ErrAlreadyRegistered)
	}
	r.schemas[key] = s
	r.keys = append(r.keys, key)
	return nil
}

// Lookup returns the schema of a model key.
func (r *Registry) Lookup(key string) (*document.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[key]
	if !ok {
		return nil, domain.NewUnknownSchema(key)
	}
	return s, nil
}

// For returns the schema registered for a record.
func (r *Registry) For(rec field.Record) (*document.Schema, error) {
	return r.Lookup(field.ModelKey(rec, r.sep))
}

// Keys returns model keys in registration order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.keys...)
}

// Schemas returns schemas in registration order.
func (r *Registry) Schemas() []*document.Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*document.Schema, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.schemas[k]
	}
	return out
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.keys)
}
