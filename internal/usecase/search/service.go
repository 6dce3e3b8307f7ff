package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/solrmap/internal/domain"
	"github.com/kailas-cloud/solrmap/internal/domain/query"
	"github.com/kailas-cloud/solrmap/internal/domain/response"
	"github.com/kailas-cloud/solrmap/internal/logger"
	"github.com/kailas-cloud/solrmap/internal/metrics"
)

// Service builds queries from request parameters and runs them against the index.
type Service struct {
	builder  *query.Builder
	selecter Selecter
	parser   SelectParser
	logger   *zap.Logger
}

// New creates a search service. logger may be nil.
func New(builder *query.Builder, selecter Selecter, parser SelectParser, logger *zap.Logger) *Service {
	if builder == nil {
		builder = query.NewBuilder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{builder: builder, selecter: selecter, parser: parser, logger: logger}
}

// Search builds a query from pairs (merged with the configured defaults) and runs it.
func (s *Service) Search(ctx context.Context, pairs []query.Param) (*response.Result, error) {
	q, err := s.builder.Build(pairs)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.Select(ctx, q)
}

// Select runs a query. A transport failure yields a nil result and no error.
func (s *Service) Select(ctx context.Context, q *query.Query) (*response.Result, error) {
	if q == nil || q.IsEmpty() {
		return nil, fmt.Errorf("select: %w", domain.ErrEmptyInput)
	}
	log := logger.FromContextOr(ctx, s.logger)
	qs := q.QueryString()
	raw, err := s.selecter.Select(ctx, qs)
	if err != nil {
		log.Warn("Select request failed", zap.String("query", qs), zap.Error(err))
		return nil, nil
	}
	res, err := s.parser.ParseSelect(raw)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	metrics.SearchResults.Observe(float64(res.Count))
	log.Debug("Select finished",
		zap.String("query", qs),
		zap.Int("count", res.Count),
		zap.Int("qtime", res.QTime),
	)
	return res, nil
}
