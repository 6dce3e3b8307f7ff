// Package solrhttp is the HTTP transport to the search index update, select
// and ping endpoints.
package solrhttp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/solrmap/internal/domain"
	"github.com/kailas-cloud/solrmap/internal/metrics"
	"github.com/kailas-cloud/solrmap/internal/version"
)

// Defaults.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultHeartbeatTTL = 300 * time.Second
	contentType         = "text/xml; charset=utf-8"
	maxErrorBody        = 512
)

// Request operations, used as metric labels.
const (
	OpUpdate = "update"
	OpSelect = "select"
	OpPing   = "ping"
)

// Config holds the transport settings.
type Config struct {
	UpdateURL    string
	SelectURL    string
	PingURLs     []string
	Timeout      time.Duration
	HeartbeatTTL time.Duration
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.Status, e.Body)
}

// Client issues update/select requests and tracks availability.
type Client struct {
	updateURL string
	selectURL string
	pingURLs  []string
	http      *http.Client
	ttl       time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	available bool
	heartbeat time.Time
}

// New creates a transport client.
func New(cfg Config) (*Client, error) {
	for name, raw := range map[string]string{"update url": cfg.UpdateURL, "select url": cfg.SelectURL} {
		if _, err := url.ParseRequestURI(raw); err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", name, raw, err)
		}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HeartbeatTTL <= 0 {
		cfg.HeartbeatTTL = DefaultHeartbeatTTL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if len(cfg.PingURLs) == 0 {
		cfg.PingURLs = []string{fallbackPingURL(cfg.SelectURL)}
	}
	return &Client{
		updateURL: cfg.UpdateURL,
		selectURL: cfg.SelectURL,
		pingURLs:  cfg.PingURLs,
		http:      cfg.HTTPClient,
		ttl:       cfg.HeartbeatTTL,
		logger:    cfg.Logger,
		now:       time.Now,
	}, nil
}

// fallbackPingURL is an empty match-all select, used when no ping handler is configured.
func fallbackPingURL(selectURL string) string {
	sep := "?"
	if strings.Contains(selectURL, "?") {
		sep = "&"
	}
	return selectURL + sep + "q=*:*&rows=0"
}

// Update posts an XML body to the update endpoint.
func (c *Client) Update(ctx context.Context, body string) ([]byte, error) {
	if body == "" {
		return nil, fmt.Errorf("update: %w", domain.ErrEmptyInput)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.updateURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build update request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(OpUpdate, req)
}

// Select issues a GET on the select endpoint with the query string.
func (c *Client) Select(ctx context.Context, queryString string) ([]byte, error) {
	if queryString == "" {
		return nil, fmt.Errorf("select: %w", domain.ErrEmptyInput)
	}
	u := c.selectURL + "?" + queryString
	if strings.Contains(c.selectURL, "?") {
		u = c.selectURL + "&" + queryString
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build select request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(OpSelect, req)
}

// Ping requests every ping URL and returns the first failure.
func (c *Client) Ping(ctx context.Context) error {
	for _, u := range c.pingURLs {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
		if err != nil {
			return fmt.Errorf("build ping request: %w", err)
		}
		if _, err := c.do(OpPing, req); err != nil {
			return err
		}
	}
	return nil
}

// IsAvailable reports the cached heartbeat, pinging again once it is older than the TTL.
func (c *Client) IsAvailable(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !c.heartbeat.IsZero() && now.Sub(c.heartbeat) <= c.ttl {
		return c.available
	}
	err := c.Ping(ctx)
	if err != nil && ctx.Err() != nil {
		// The caller gave up; that says nothing about the index.
		c.logger.Debug("Search index heartbeat abandoned", zap.Error(err))
		return false
	}
	c.available = err == nil
	c.heartbeat = now
	if err != nil {
		c.logger.Warn("Search index heartbeat failed", zap.Error(err))
	}
	return c.available
}

func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", version.UserAgent())
	start := time.Now()
	body, err := c.roundTrip(op, req)
	metrics.SolrRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
		c.logger.Error("Search index request failed",
			zap.String("op", op),
			zap.String("url", req.URL.Redacted()),
			zap.Error(err),
		)
	}
	metrics.SolrRequestsTotal.WithLabelValues(op, status).Inc()
	return body, err
}

func (c *Client) roundTrip(op string, req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &StatusError{Op: op, Status: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	return body, nil
}

// String describes the endpoints.
func (c *Client) String() string {
	return "update=" + c.updateURL + " select=" + c.selectURL + " pings=" + strconv.Itoa(len(c.pingURLs))
}
