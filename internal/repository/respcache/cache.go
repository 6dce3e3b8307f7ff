// Package respcache caches raw select responses in a key-value store.
package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/solrmap/internal/db"
)

// DefaultKeyPrefix namespaces cache keys.
const DefaultKeyPrefix = "solrmap:resp:"

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Del(ctx context.Context, keys ...string) (int, error)
}

// selecter issues select requests.
type selecter interface {
	Select(ctx context.Context, queryString string) ([]byte, error)
}

// Cache is a read-through decorator over a selecter.
type Cache struct {
	inner      selecter
	store      store
	prefix     string
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner selecter,
	s store,
	prefix string,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *Cache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		inner:      inner,
		store:      s,
		prefix:     prefix,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Select returns a cached response body or calls the inner selecter.
// Store failures degrade to a miss.
func (c *Cache) Select(ctx context.Context, queryString string) ([]byte, error) {
	key := c.Key(queryString)

	if body, ok := c.get(ctx, key); ok {
		c.incCache("hit")
		return body, nil
	}

	c.incCache("miss")

	body, err := c.inner.Select(ctx, queryString)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	c.put(ctx, key, body)
	return body, nil
}

// Purge drops every cached response and returns how many were removed.
// Called after the index changes.
func (c *Cache) Purge(ctx context.Context) (int, error) {
	keys, err := c.store.Scan(ctx, c.prefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := c.store.Del(ctx, keys...)
	if err != nil {
		return n, fmt.Errorf("delete cache keys: %w", err)
	}
	return n, nil
}

// Key returns the cache key of a query string.
func (c *Cache) Key(queryString string) string {
	h := sha256.Sum256([]byte(queryString))
	return c.prefix + hex.EncodeToString(h[:])
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *Cache) get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached response", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (c *Cache) put(ctx context.Context, key string, body []byte) {
	if len(body) == 0 {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, body, c.ttl); err != nil {
		c.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
	}
}
