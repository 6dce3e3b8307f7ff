package search

import (
	"context"

	"github.com/kailas-cloud/solrmap/internal/domain/response"
)

// Selecter sends an encoded query string to the index and returns the raw answer.
type Selecter interface {
	Select(ctx context.Context, qs string) ([]byte, error)
}

// SelectParser parses a select answer into a result.
type SelectParser interface {
	ParseSelect(body []byte) (*response.Result, error)
}
