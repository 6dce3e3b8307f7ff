package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/solrmap/internal/domain"
	"github.com/kailas-cloud/solrmap/internal/domain/document"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
	"github.com/kailas-cloud/solrmap/internal/domain/query"
	"github.com/kailas-cloud/solrmap/internal/domain/response"
	healthuc "github.com/kailas-cloud/solrmap/internal/usecase/health"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned by the API.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeForbidden        ErrorCode = "forbidden"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeBadGateway       ErrorCode = "bad_gateway"
	ErrorCodeUnavailable      ErrorCode = "index_unavailable"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Searcher runs searches from request parameters.
type Searcher interface {
	Search(ctx context.Context, pairs []query.Param) (*response.Result, error)
}

// Indexer runs index maintenance requests.
type Indexer interface {
	Commit(ctx context.Context) (*response.Result, error)
	Optimize(ctx context.Context) (*response.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// CachePurger drops cached responses.
type CachePurger interface {
	Purge(ctx context.Context) (int, error)
}

// SortOption is a selectable sort order advertised with search results.
type SortOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search API.
type Server struct {
	search        Searcher
	index         Indexer
	health        HealthChecker
	cache         CachePurger
	sortOptions   []SortOption
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. cache may be nil.
func NewServer(
	search Searcher,
	index Indexer,
	health HealthChecker,
	cache CachePurger,
	sortOptions []SortOption,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search:      search,
		index:       index,
		health:      health,
		cache:       cache,
		sortOptions: sortOptions,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrEmptyInput, http.StatusBadRequest, ErrorCodeBadRequest),
		sentinelHandler(domain.ErrConversion, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrParse, http.StatusBadGateway, ErrorCodeBadGateway),
		sentinelHandler(domain.ErrUnknownSchema, http.StatusBadGateway, ErrorCodeBadGateway),
		sentinelHandler(domain.ErrUnavailable, http.StatusServiceUnavailable, ErrorCodeUnavailable),
	}
	return s
}

// Routes registers the API routes on r.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/admin", func(r gochi.Router) {
		r.Post("/commit", s.Commit)
		r.Post("/optimize", s.Optimize)
		if s.cache != nil {
			r.Delete("/cache", s.PurgeCache)
		}
	})
}

// Handler returns a router with the given middlewares and all routes.
func (s *Server) Handler(middlewares ...func(http.Handler) http.Handler) http.Handler {
	r := gochi.NewRouter()
	r.Use(middlewares...)
	s.Routes(r)
	return r
}

// SearchResponse is the JSON view of a select result.
type SearchResponse struct {
	Status       int                            `json:"status"`
	QTime        int                            `json:"qtime"`
	Count        int                            `json:"count"`
	Start        int                            `json:"start"`
	Rows         int                            `json:"rows"`
	Pages        int                            `json:"pages"`
	URL          string                         `json:"url"`
	Documents    []DocumentView                 `json:"documents"`
	Facets       []FacetView                    `json:"facets,omitempty"`
	Highlighting map[string]map[string][]string `json:"highlighting,omitempty"`
	SortOptions  []SortOption                   `json:"sort_options,omitempty"`
}

// DocumentView is one result document.
type DocumentView struct {
	ID        string         `json:"id"`
	Model     string         `json:"model"`
	Fields    map[string]any `json:"fields"`
	Highlight string         `json:"highlight,omitempty"`
}

// FacetView is one facet with its tree-ordered values.
type FacetView struct {
	Name   string           `json:"name"`
	Values []FacetValueView `json:"values"`
}

// FacetValueView is one facet value.
type FacetValueView struct {
	Value string `json:"value"`
	Name  string `json:"name"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// UpdateResponse is the JSON view of an update request result.
type UpdateResponse struct {
	Status int `json:"status"`
	QTime  int `json:"qtime"`
}

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	res, err := s.search.Search(r.Context(), query.FromValues(r.URL.Query()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if res == nil {
		writeError(w, http.StatusServiceUnavailable, ErrorCodeUnavailable, "search index unavailable")
		return
	}
	writeJSON(w, http.StatusOK, s.searchResponse(res))
}

// Commit handles POST /admin/commit.
func (s *Server) Commit(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, s.index.Commit)
}

// Optimize handles POST /admin/optimize.
func (s *Server) Optimize(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, s.index.Optimize)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, op func(context.Context) (*response.Result, error)) {
	res, err := op(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if res == nil {
		writeError(w, http.StatusServiceUnavailable, ErrorCodeUnavailable, "search index unavailable")
		return
	}
	status := http.StatusOK
	if !res.Success() {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, UpdateResponse{Status: res.Status, QTime: res.QTime})
}

// PurgeCache handles DELETE /admin/cache.
func (s *Server) PurgeCache(w http.ResponseWriter, r *http.Request) {
	n, err := s.cache.Purge(r.Context())
	if err != nil {
		s.logger.Error("cache purge failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, ErrorCodeBadGateway, "cache purge failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"purged": n})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) searchResponse(res *response.Result) SearchResponse {
	out := SearchResponse{
		Status:       res.Status,
		QTime:        res.QTime,
		Count:        res.Count,
		Start:        res.Start,
		Rows:         res.Rows,
		Pages:        res.Pages(),
		URL:          res.URL(),
		Documents:    make([]DocumentView, len(res.Documents)),
		Highlighting: res.Highlighting,
		SortOptions:  s.sortOptions,
	}
	for i := range res.Documents {
		out.Documents[i] = documentView(&res.Documents[i])
	}
	for _, f := range res.Facets {
		fv := FacetView{Name: f.Name, Values: make([]FacetValueView, len(f.Values))}
		for j, v := range f.Values {
			fv.Values[j] = FacetValueView{Value: v.Value, Name: v.Name, Count: v.Count, Level: v.Level}
		}
		out.Facets = append(out.Facets, fv)
	}
	return out
}

func documentView(d *document.Document) DocumentView {
	return DocumentView{
		ID:        field.FormatValue(d.PrimaryKey().Value()),
		Model:     d.ModelTag(),
		Fields:    d.Values(),
		Highlight: d.Highlight(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrEmptyInput,
		domain.ErrConversion,
		domain.ErrParse,
		domain.ErrUnknownSchema,
		domain.ErrUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
