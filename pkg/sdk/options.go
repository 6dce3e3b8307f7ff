package solrmap

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	updateURL string
	selectURL string
	pingURLs  []string
	timeout   time.Duration
	heartbeat time.Duration

	separator string
	siteID    int64
	defaults  []string
	batchSize int

	cacheDriver   string // "valkey" or "redis"
	cacheAddrs    []string
	cachePassword string
	cacheCluster  bool
	cacheTTL      time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithSolr sets the update and select endpoints. Required.
func WithSolr(updateURL, selectURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.updateURL = updateURL
		c.selectURL = selectURL
	})
}

// WithPingURLs sets the endpoints probed by availability checks.
// Defaults to the admin ping handler next to the select endpoint.
func WithPingURLs(urls ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.pingURLs = urls
	})
}

// WithTimeout sets the per-request timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithHeartbeat sets how long an availability check is trusted. Default: 5m.
func WithHeartbeat(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.heartbeat = d
	})
}

// WithSeparator sets the model key separator. Default: "__".
func WithSeparator(sep string) Option {
	return optionFunc(func(c *clientConfig) {
		c.separator = sep
	})
}

// WithSiteID sets the site identifier stored in every document.
func WithSiteID(id int64) Option {
	return optionFunc(func(c *clientConfig) {
		c.siteID = id
	})
}

// WithDefaults sets "key=value" parameters merged into every search.
func WithDefaults(params ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaults = append(c.defaults, params...)
	})
}

// WithBatchSize sets the number of documents per reindex request. Default: 100.
func WithBatchSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = n
	})
}

// WithValkey caches select responses in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "valkey"
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheCluster = false
	})
}

// WithRedis caches select responses in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "redis"
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
		c.cacheCluster = false
	})
}

// WithValkeyCluster caches select responses in a Valkey or Redis cluster
// discovered from the seed addresses.
func WithValkeyCluster(password string, seeds ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "valkey"
		c.cacheAddrs = seeds
		c.cachePassword = password
		c.cacheCluster = true
	})
}

// WithCacheTTL sets how long cached responses live. Default: 5m.
func WithCacheTTL(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = d
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
