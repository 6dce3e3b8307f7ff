package solrmap

import (
	"context"

	"github.com/kailas-cloud/solrmap/internal/domain/field"
	"github.com/kailas-cloud/solrmap/internal/domain/query"
	"github.com/kailas-cloud/solrmap/internal/domain/response"
	"github.com/kailas-cloud/solrmap/internal/registry"
	healthuc "github.com/kailas-cloud/solrmap/internal/usecase/health"
	indexuc "github.com/kailas-cloud/solrmap/internal/usecase/index"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, pairs []query.Param) (*response.Result, error)
}

func (m *mockSearchUC) Search(ctx context.Context, pairs []query.Param) (*response.Result, error) {
	return m.searchFn(ctx, pairs)
}

// --- indexUseCase mock ---

type mockIndexUC struct {
	addFn      func(ctx context.Context, recs ...field.Record) ([]*response.Result, error)
	deleteFn   func(ctx context.Context, recs ...field.Record) ([]*response.Result, error)
	commitFn   func(ctx context.Context) (*response.Result, error)
	optimizeFn func(ctx context.Context) (*response.Result, error)
	reindexFn  func(ctx context.Context, src indexuc.RecordSource) (indexuc.ReindexReport, error)
	saved      []field.Record
}

func (m *mockIndexUC) OnRecordSaved(_ context.Context, rec field.Record) error {
	m.saved = append(m.saved, rec)
	return nil
}

func (m *mockIndexUC) OnRecordDeleted(_ context.Context, _ field.Record) error { return nil }

func (m *mockIndexUC) Add(ctx context.Context, recs ...field.Record) ([]*response.Result, error) {
	return m.addFn(ctx, recs...)
}

func (m *mockIndexUC) Delete(ctx context.Context, recs ...field.Record) ([]*response.Result, error) {
	return m.deleteFn(ctx, recs...)
}

func (m *mockIndexUC) Commit(ctx context.Context) (*response.Result, error) {
	return m.commitFn(ctx)
}

func (m *mockIndexUC) Optimize(ctx context.Context) (*response.Result, error) {
	return m.optimizeFn(ctx)
}

func (m *mockIndexUC) Reindex(ctx context.Context, src indexuc.RecordSource) (indexuc.ReindexReport, error) {
	return m.reindexFn(ctx, src)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- pinger mock ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- helpers ---

func ok() *response.Result { return &response.Result{Status: 0, QTime: 1} }

func testClient(searchSvc searchUseCase, indexSvc indexUseCase) *Client {
	return &Client{
		registry:  registry.New(""),
		searchSvc: searchSvc,
		indexSvc:  indexSvc,
		healthSvc: &mockHealthUC{},
		transport: &mockPinger{},
	}
}
