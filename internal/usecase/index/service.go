package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/solrmap/internal/domain"
	"github.com/kailas-cloud/solrmap/internal/domain/document"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
	"github.com/kailas-cloud/solrmap/internal/domain/response"
	"github.com/kailas-cloud/solrmap/internal/logger"
	"github.com/kailas-cloud/solrmap/internal/metrics"
)

// DefaultBatchSize bounds the documents of one reindex add request.
const DefaultBatchSize = 100

var _ Hooks = (*Service)(nil)

// Service maps records to documents and keeps the search index in sync.
type Service struct {
	updater   Updater
	schemas   SchemaResolver
	parser    UpdateParser
	env       field.Env
	cache     CachePurger
	batchSize int
	logger    *zap.Logger
}

// New creates an indexing service. logger may be nil.
func New(updater Updater, schemas SchemaResolver, parser UpdateParser, env field.Env, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		updater:   updater,
		schemas:   schemas,
		parser:    parser,
		env:       env,
		batchSize: DefaultBatchSize,
		logger:    logger,
	}
}

// WithCache purges the response cache after every commit.
func (s *Service) WithCache(c CachePurger) *Service {
	s.cache = c
	return s
}

// WithBatchSize configures the reindex batch size.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// OnRecordSaved indexes a saved record. Records without a schema are ignored.
func (s *Service) OnRecordSaved(ctx context.Context, rec field.Record) error {
	_, err := s.Add(ctx, rec)
	if errors.Is(err, domain.ErrUnknownSchema) {
		return nil
	}
	return err
}

// OnRecordDeleted removes a deleted record. Records without a schema are ignored.
func (s *Service) OnRecordDeleted(ctx context.Context, rec field.Record) error {
	_, err := s.Delete(ctx, rec)
	if errors.Is(err, domain.ErrUnknownSchema) {
		return nil
	}
	return err
}

// Add indexes records and commits. It returns the add and commit results, or
// nil when the index is unavailable.
func (s *Service) Add(ctx context.Context, recs ...field.Record) ([]*response.Result, error) {
	docs, err := s.documents(recs)
	if err != nil {
		return nil, err
	}
	body, err := document.AddRequest(docs)
	if err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}
	return s.updateAndCommit(ctx, "add", body, len(docs))
}

// Delete removes records and commits. It returns the delete and commit results,
// or nil when the index is unavailable.
func (s *Service) Delete(ctx context.Context, recs ...field.Record) ([]*response.Result, error) {
	docs, err := s.documents(recs)
	if err != nil {
		return nil, err
	}
	body, err := document.DeleteRequest(docs)
	if err != nil {
		return nil, fmt.Errorf("delete: %w", err)
	}
	return s.updateAndCommit(ctx, "delete", body, len(docs))
}

// Commit makes pending changes visible and purges the response cache.
func (s *Service) Commit(ctx context.Context) (*response.Result, error) {
	res, err := s.update(ctx, "commit", document.CommitRequest)
	if err != nil || res == nil {
		return res, err
	}
	s.purge(ctx)
	return res, nil
}

// Optimize merges index segments.
func (s *Service) Optimize(ctx context.Context) (*response.Result, error) {
	return s.update(ctx, "optimize", document.OptimizeRequest)
}

func (s *Service) updateAndCommit(ctx context.Context, op, body string, n int) ([]*response.Result, error) {
	if !s.updater.IsAvailable(ctx) {
		s.logger.Info("Search index is unavailable", zap.String("op", op))
		return nil, nil
	}
	res, err := s.update(ctx, op, body)
	if err != nil || res == nil {
		return nil, err
	}
	metrics.DocumentsTotal.WithLabelValues(op).Add(float64(n))

	commit, err := s.Commit(ctx)
	if err != nil {
		return nil, err
	}
	return []*response.Result{res, commit}, nil
}

// update sends a body and parses the answer. Transport failures yield a nil result.
func (s *Service) update(ctx context.Context, op, body string) (*response.Result, error) {
	log := logger.FromContextOr(ctx, s.logger)
	raw, err := s.updater.Update(ctx, body)
	if err != nil {
		log.Warn("Update request failed", zap.String("op", op), zap.Error(err))
		return nil, nil
	}
	res, err := s.parser.ParseUpdate(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !res.Success() {
		log.Warn("Update request rejected", zap.String("op", op), zap.Int("status", res.Status))
	}
	return res, nil
}

func (s *Service) documents(recs []field.Record) ([]document.Document, error) {
	docs := make([]document.Document, 0, len(recs))
	for _, rec := range recs {
		schema, err := s.schemas.For(rec)
		if err != nil {
			return nil, err
		}
		doc, err := document.FromRecord(schema, rec, s.env)
		if err != nil {
			return nil, fmt.Errorf("map %s: %w", field.ModelKey(rec, s.env.Separator), err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Service) purge(ctx context.Context) {
	if s.cache == nil {
		return
	}
	n, err := s.cache.Purge(ctx)
	if err != nil {
		s.logger.Warn("Failed to purge response cache", zap.Error(err))
		return
	}
	s.logger.Debug("Purged response cache", zap.Int("keys", n))
}

// ReindexReport summarizes a reindex run.
type ReindexReport struct {
	BatchID   string
	Documents int
	Batches   int
	Models    map[string]int
}

// Reindex sends every record of every registered model in batches, then
// commits once.
func (s *Service) Reindex(ctx context.Context, src RecordSource) (ReindexReport, error) {
	report := ReindexReport{BatchID: uuid.NewString(), Models: make(map[string]int)}
	log := s.logger.With(zap.String("batch_id", report.BatchID))

	if !s.updater.IsAvailable(ctx) {
		return report, fmt.Errorf("reindex: %w", domain.ErrUnavailable)
	}

	var pending []document.Document
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		body, err := document.AddRequest(pending)
		if err != nil {
			return err
		}
		raw, err := s.updater.Update(ctx, body)
		if err != nil {
			return fmt.Errorf("reindex batch %d: %w", report.Batches+1, err)
		}
		if _, err := s.parser.ParseUpdate(raw); err != nil {
			return fmt.Errorf("reindex batch %d: %w", report.Batches+1, err)
		}
		metrics.DocumentsTotal.WithLabelValues("add").Add(float64(len(pending)))
		report.Batches++
		report.Documents += len(pending)
		log.Debug("Reindex batch sent", zap.Int("batch", report.Batches), zap.Int("documents", len(pending)))
		pending = pending[:0]
		return nil
	}

	for _, key := range s.schemas.Keys() {
		err := src.Records(ctx, key, func(rec field.Record) error {
			docs, err := s.documents([]field.Record{rec})
			if err != nil {
				return err
			}
			pending = append(pending, docs...)
			report.Models[key]++
			if len(pending) >= s.batchSize {
				return flush()
			}
			return nil
		})
		if err != nil {
			return report, fmt.Errorf("reindex %s: %w", key, err)
		}
	}
	if err := flush(); err != nil {
		return report, err
	}

	if report.Documents > 0 {
		if _, err := s.Commit(ctx); err != nil {
			return report, err
		}
	}
	log.Info("Reindex finished", zap.Int("documents", report.Documents), zap.Int("batches", report.Batches))
	return report, nil
}
