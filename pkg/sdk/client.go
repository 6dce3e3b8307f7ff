package solrmap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/solrmap/internal/app"
	"github.com/kailas-cloud/solrmap/internal/config"
	"github.com/kailas-cloud/solrmap/internal/domain/document"
	"github.com/kailas-cloud/solrmap/internal/domain/field"
	"github.com/kailas-cloud/solrmap/internal/domain/query"
	"github.com/kailas-cloud/solrmap/internal/domain/response"
	indexuc "github.com/kailas-cloud/solrmap/internal/usecase/index"
)

// Internal interfaces for substitution in tests.
type searchUseCase interface {
	Search(ctx context.Context, pairs []query.Param) (*response.Result, error)
}

type indexUseCase interface {
	indexuc.Hooks
	Add(ctx context.Context, recs ...field.Record) ([]*response.Result, error)
	Delete(ctx context.Context, recs ...field.Record) ([]*response.Result, error)
	Commit(ctx context.Context) (*response.Result, error)
	Optimize(ctx context.Context) (*response.Result, error)
	Reindex(ctx context.Context, src indexuc.RecordSource) (indexuc.ReindexReport, error)
}

type schemaRegistry interface {
	Register(app, model string, s *document.Schema) error
	Key(app, model string) string
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Client is the solrmap SDK entry point.
type Client struct {
	app       *app.App
	registry  schemaRegistry
	searchSvc searchUseCase
	indexSvc  indexUseCase
	healthSvc healthUseCase
	transport pinger
	obs       *observer
}

// New creates a Client. The context bounds the cache readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.updateURL == "" || cfg.selectURL == "" {
		return nil, errors.New("solrmap: update and select urls required (use WithSolr)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg.appConfig(), cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("solrmap: %w", err)
	}
	return &Client{
		app:       a,
		registry:  a.Registry,
		searchSvc: a.Search,
		indexSvc:  a.Index,
		healthSvc: a.Health,
		transport: a.Transport,
		obs:       obs,
	}, nil
}

func (c *clientConfig) appConfig() config.Config {
	pingURLs := c.pingURLs
	if len(pingURLs) == 0 {
		pingURLs = []string{defaultPingURL(c.selectURL)}
	}
	cfg := config.Config{
		Solr: config.SolrConfig{
			UpdateURL:    c.updateURL,
			SelectURL:    c.selectURL,
			PingURLs:     pingURLs,
			TimeoutSec:   seconds(c.timeout),
			HeartbeatSec: seconds(c.heartbeat),
		},
		Search: config.SearchConfig{
			Separator:     c.separator,
			SiteID:        c.siteID,
			DefaultParams: c.defaults,
			BatchSize:     c.batchSize,
		},
		Cache: config.CacheConfig{
			Driver:     c.cacheDriver,
			Addrs:      c.cacheAddrs,
			Password:   c.cachePassword,
			Standalone: !c.cacheCluster,
			TTLSec:     seconds(c.cacheTTL),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// defaultPingURL maps ".../select" to ".../admin/ping".
func defaultPingURL(selectURL string) string {
	base, _, _ := strings.Cut(selectURL, "?")
	return strings.TrimSuffix(strings.TrimSuffix(base, "/"), "/select") + "/admin/ping"
}

func seconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return max(int(d/time.Second), 1)
}

// Close releases the cache connection.
func (c *Client) Close() {
	if c.app != nil {
		c.app.Close()
	}
}

// Register declares the schema of app/model. Fields extend the base fields.
func (c *Client) Register(appLabel, model string, fields ...Field) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("register", start, 0, err) }()

	s, err := document.NewSchema(document.Extend(document.DefaultBase(), fields...)...)
	if err != nil {
		return fmt.Errorf("register %s: %w", c.registry.Key(appLabel, model), err)
	}
	return c.registry.Register(appLabel, model, s)
}

// Ping checks that every ping endpoint answers.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, 0, err) }()

	if err = c.transport.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Search runs a search with the configured defaults merged in.
// It returns ErrUnavailable when the index cannot be reached.
func (c *Client) Search(ctx context.Context, params ...Param) (res *Result, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if res != nil {
			n = len(res.Documents)
		}
		c.obs.observe("search", start, n, err)
	}()

	res, err = c.searchSvc.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("search: %w", ErrUnavailable)
	}
	return res, nil
}

// Save indexes records and commits.
func (c *Client) Save(ctx context.Context, recs ...Record) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("save", start, len(recs), err) }()

	results, err := c.indexSvc.Add(ctx, recs...)
	return checkUpdate("save", results, err)
}

// Delete removes records and commits.
func (c *Client) Delete(ctx context.Context, recs ...Record) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete", start, len(recs), err) }()

	results, err := c.indexSvc.Delete(ctx, recs...)
	return checkUpdate("delete", results, err)
}

// Commit makes pending changes visible.
func (c *Client) Commit(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("commit", start, 0, err) }()

	res, err := c.indexSvc.Commit(ctx)
	return checkUpdate("commit", []*response.Result{res}, err)
}

// Optimize merges index segments.
func (c *Client) Optimize(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("optimize", start, 0, err) }()

	res, err := c.indexSvc.Optimize(ctx)
	return checkUpdate("optimize", []*response.Result{res}, err)
}

// Reindex sends every record of every registered model, then commits once.
func (c *Client) Reindex(ctx context.Context, src RecordSource) (report ReindexReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("reindex", start, report.Documents, err) }()

	return c.indexSvc.Reindex(ctx, src)
}

// Hooks returns the record lifecycle hooks. They skip records without a
// schema and treat an unreachable index as a no-op.
func (c *Client) Hooks() indexuc.Hooks {
	return c.indexSvc
}

func checkUpdate(op string, results []*response.Result, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(results) == 0 || results[0] == nil {
		return fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	for _, r := range results {
		if r != nil && !r.Success() {
			return fmt.Errorf("%s: status %d: %w", op, r.Status, ErrRejected)
		}
	}
	return nil
}
