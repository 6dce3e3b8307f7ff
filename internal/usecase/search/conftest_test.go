package search

import (
	"context"

	"github.com/kailas-cloud/solrmap/internal/domain/response"
)

type mockSelecter struct {
	body  []byte
	err   error
	calls []string
}

func (m *mockSelecter) Select(_ context.Context, qs string) ([]byte, error) {
	m.calls = append(m.calls, qs)
	return m.body, m.err
}

type mockParser struct {
	result *response.Result
	err    error
	bodies [][]byte
}

func (m *mockParser) ParseSelect(body []byte) (*response.Result, error) {
	m.bodies = append(m.bodies, body)
	return m.result, m.err
}
