// Package app wires configuration into the transport, cache and services
// shared by the API server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/solrmap/internal/config"
	"github.com/kailas-cloud/solrmap/internal/db"
	dbRedis "github.com/kailas-cloud/solrmap/internal/db/redis"
	"github.com/kailas-cloud/solrmap/internal/domain/facet"
	"github.com/kailas-cloud/solrmap/internal/domain/query"
	"github.com/kailas-cloud/solrmap/internal/domain/response"
	"github.com/kailas-cloud/solrmap/internal/metrics"
	"github.com/kailas-cloud/solrmap/internal/registry"
	"github.com/kailas-cloud/solrmap/internal/repository/respcache"
	"github.com/kailas-cloud/solrmap/internal/transport/solrhttp"
	healthuc "github.com/kailas-cloud/solrmap/internal/usecase/health"
	indexuc "github.com/kailas-cloud/solrmap/internal/usecase/index"
	searchuc "github.com/kailas-cloud/solrmap/internal/usecase/search"
)

// App holds the wired components.
type App struct {
	Config    config.Config
	Registry  *registry.Registry
	Transport *solrhttp.Client
	Parser    *response.Parser
	Store     db.Store         // nil when the cache is disabled
	Cache     *respcache.Cache // nil when the cache is disabled
	Search    *searchuc.Service
	Index     *indexuc.Service
	Health    *healthuc.Service
}

// New builds the application. An unreachable cache is logged and skipped.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg, err := cfg.Registry()
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}
	defaults, err := cfg.QueryDefaults()
	if err != nil {
		return nil, err
	}

	transport, err := solrhttp.New(solrhttp.Config{
		UpdateURL:    cfg.Solr.UpdateURL,
		SelectURL:    cfg.Solr.SelectURL,
		PingURLs:     cfg.Solr.PingURLs,
		Timeout:      cfg.SolrTimeout(),
		HeartbeatTTL: cfg.HeartbeatTTL(),
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create transport: %w", err)
	}

	parser := response.NewParser(reg, response.Options{
		Separator:  cfg.Search.Separator,
		Facet:      facet.Separators{Path: cfg.Search.FacetSeparator, Name: cfg.Search.Separator},
		ModelField: cfg.Search.ModelField,
		SiteID:     cfg.Search.SiteID,
	})

	a := &App{
		Config:    cfg,
		Registry:  reg,
		Transport: transport,
		Parser:    parser,
	}

	var selecter searchuc.Selecter = transport
	if cfg.Cache.Enabled() {
		store, err := openStore(ctx, cfg)
		if err != nil {
			logger.Warn("Response cache disabled", zap.String("driver", cfg.Cache.Driver), zap.Error(err))
		} else {
			a.Store = store
			a.Cache = respcache.New(transport, store, cfg.Cache.KeyPrefix, cfg.CacheTTL(),
				metrics.ResponseCacheTotal, logger)
			selecter = a.Cache
		}
	}

	a.Search = searchuc.New(query.NewBuilder(defaults...), selecter, parser, logger)
	a.Index = indexuc.New(transport, reg, parser, cfg.FieldEnv(), logger).
		WithBatchSize(cfg.Search.BatchSize)

	// Pass nil interfaces, not typed nil pointers, when the cache is off.
	var cachePinger healthuc.Pinger
	if a.Cache != nil {
		a.Index.WithCache(a.Cache)
		cachePinger = a.Store
	}
	a.Health = healthuc.New(transport, cachePinger, cfg.SolrTimeout(), logger)

	return a, nil
}

// Close releases the cache connection.
func (a *App) Close() {
	if a.Store != nil {
		a.Store.Close()
	}
}

func openStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	switch cfg.Cache.Driver {
	case "valkey", "redis":
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:       cfg.Cache.Addrs,
		Username:    cfg.Cache.Username,
		Password:    cfg.Cache.Password,
		DB:          cfg.Cache.DB,
		Standalone:  cfg.Cache.Standalone,
		DialTimeout: cfg.CacheReadiness(),
	})
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Cache.Driver, err)
	}
	if err := store.WaitForReady(ctx, cfg.CacheReadiness()); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s not ready: %w", cfg.Cache.Driver, err)
	}
	return store, nil
}
