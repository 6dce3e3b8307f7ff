package index

import (
	"context"

	"github.com/kailas-cloud/solrmap/internal/domain/document"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
	"github.com/kailas-cloud/solrmap/internal/domain/response"
)

// Updater sends update requests to the search index.
type Updater interface {
	Update(ctx context.Context, body string) ([]byte, error)
	IsAvailable(ctx context.Context) bool
}

// SchemaResolver finds the schema of a record or model key.
type SchemaResolver interface {
	For(rec field.Record) (*document.Schema, error)
	Keys() []string
}

// UpdateParser parses update responses.
type UpdateParser interface {
	ParseUpdate(body []byte) (*response.Result, error)
}

// CachePurger drops cached select responses.
type CachePurger interface {
	Purge(ctx context.Context) (int, error)
}

// RecordSource yields every record of a model key.
type RecordSource interface {
	Records(ctx context.Context, modelKey string, fn func(field.Record) error) error
}

// Hooks receives record lifecycle events from the application.
type Hooks interface {
	OnRecordSaved(ctx context.Context, rec field.Record) error
	OnRecordDeleted(ctx context.Context, rec field.Record) error
}
