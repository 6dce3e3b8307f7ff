package solrmap

import (
	"context"
	"fmt"
)

// TypedIndex maps a tagged struct type to one registered model.
// The schema is inferred from T's struct tags at construction time.
type TypedIndex[T any] struct {
	app    string
	model  string
	client *Client
	meta   *schemaMeta
}

// NewIndex parses T's tags and registers its schema under app/model. Extra
// fields are appended to the tagged ones, typically to add transforms.
func NewIndex[T any](client *Client, appLabel, model string, extra ...Field) (*TypedIndex[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, fmt.Errorf("new index %s/%s: %w", appLabel, model, err)
	}
	fields := append(append([]Field(nil), meta.fields...), extra...)
	if err := client.Register(appLabel, model, fields...); err != nil {
		return nil, fmt.Errorf("new index %s/%s: %w", appLabel, model, err)
	}
	return &TypedIndex[T]{app: appLabel, model: model, client: client, meta: meta}, nil
}

// ModelKey returns the model tag stored in the index.
func (idx *TypedIndex[T]) ModelKey() string {
	return idx.client.registry.Key(idx.app, idx.model)
}

// Record adapts an item to the Record interface.
func (idx *TypedIndex[T]) Record(item T) Record {
	return idx.meta.record(idx.app, idx.model, item)
}

// Save indexes items and commits.
func (idx *TypedIndex[T]) Save(ctx context.Context, items ...T) error {
	return idx.client.Save(ctx, idx.records(items)...)
}

// Delete removes items and commits.
func (idx *TypedIndex[T]) Delete(ctx context.Context, items ...T) error {
	return idx.client.Delete(ctx, idx.records(items)...)
}

func (idx *TypedIndex[T]) records(items []T) []Record {
	recs := make([]Record, len(items))
	for i, item := range items {
		recs[i] = idx.Record(item)
	}
	return recs
}

// Search returns a fluent search builder restricted to this model.
func (idx *TypedIndex[T]) Search() *SearchBuilder[T] {
	return &SearchBuilder[T]{idx: idx}
}

// decode converts a result document of this model into T.
func (idx *TypedIndex[T]) decode(doc *Document) (T, error) {
	var zero T
	v, err := idx.meta.fromDocument(doc)
	if err != nil {
		return zero, fmt.Errorf("decode %s: %w", doc.ModelTag(), err)
	}
	item, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("decode %s: type assertion failed", doc.ModelTag())
	}
	return item, nil
}
