package solrmap

import (
	"github.com/kailas-cloud/solrmap/internal/domain/document"
	"github.com/kailas-cloud/solrmap/internal/domain/facet"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
	"github.com/kailas-cloud/solrmap/internal/domain/query"
	"github.com/kailas-cloud/solrmap/internal/domain/response"
	indexuc "github.com/kailas-cloud/solrmap/internal/usecase/index"
)

// Field declares one schema field. Declarations extend the base fields
// (id, model, site_id, url, text); a declaration with a base name replaces it.
type Field = document.Decl

// FieldSpec describes the kind and index flags of a field.
type FieldSpec = field.Spec

// Kind is a field kind.
type Kind = field.Kind

// Field kinds.
const (
	KindString   = field.String
	KindText     = field.Text
	KindInteger  = field.Integer
	KindLong     = field.Long
	KindFloat    = field.Float
	KindDouble   = field.Double
	KindBoolean  = field.Boolean
	KindDate     = field.Date
	KindDateTime = field.DateTime
	KindURL      = field.URL
)

// Record is an application record that can be indexed.
type Record = field.Record

// MapRecord is a Record backed by an attribute map.
type MapRecord = field.MapRecord

// Param is a search parameter such as q, fq, sort, rows or facet.field.
type Param = query.Param

// Result is a parsed search or update response.
type Result = response.Result

// Document is one search result document.
type Document = document.Document

// Facet is a facet with its values ordered as a tree.
type Facet = facet.Facet

// RecordSource yields every record of a model key for Reindex.
type RecordSource = indexuc.RecordSource

// ReindexReport summarizes a Reindex run.
type ReindexReport = indexuc.ReindexReport
