// Package redis backs the response cache with Redis or Valkey through rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/solrmap/internal/db"
)

var _ db.Store = (*Store)(nil)

// ClientName is reported to the server with CLIENT SETNAME.
const ClientName = "solrmap"

const (
	readyPollMin = 50 * time.Millisecond
	readyPollMax = time.Second
)

// Config holds connection parameters for a Redis or Valkey deployment.
type Config struct {
	Addrs       []string
	Username    string
	Password    string
	DB          int
	Standalone  bool // skip cluster discovery
	DialTimeout time.Duration
}

// Store implements db.Store. One Store serves both Redis and Valkey,
// standalone or clustered.
type Store struct {
	client rueidis.Client
}

// NewStore connects to the configured addresses.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("cache addrs are required")
	}
	if cfg.DB != 0 && !cfg.Standalone && len(cfg.Addrs) > 1 {
		return nil, fmt.Errorf("db %d cannot be selected on a cluster", cfg.DB)
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:       cfg.Addrs,
		Username:          cfg.Username,
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		ClientName:        ClientName,
		ForceSingleClient: cfg.Standalone,
		Dialer:            net.Dialer{Timeout: cfg.DialTimeout},
		// Cached select bodies are read once per TTL; client tracking buys nothing.
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// NewStoreForTest wraps an existing client, typically a rueidis mock.
func NewStoreForTest(c rueidis.Client) *Store {
	return &Store{client: c}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings with a growing interval until the store answers or
// timeout expires. The last ping error is wrapped into the timeout error.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wait := readyPollMin
	var last error
	for {
		if last = s.Ping(ctx); last == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w after %s: %w", db.ErrNotReady, timeout, last)
		case <-time.After(wait):
		}
		wait = min(wait*2, readyPollMax)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
