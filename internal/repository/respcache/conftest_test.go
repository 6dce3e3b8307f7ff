package respcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/solrmap/internal/db"
)

type mockSelecter struct {
	body  []byte
	err   error
	calls int
}

func (m *mockSelecter) Select(_ context.Context, _ string) ([]byte, error) {
	m.calls++
	return m.body, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn  func(ctx context.Context, key string) ([]byte, error)
	setFn  func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	scanFn func(ctx context.Context, pattern string) ([]string, error)
	delFn  func(ctx context.Context, keys ...string) (int, error)
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func (m *mockKVStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockKVStore) Del(ctx context.Context, keys ...string) (int, error) {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return len(keys), nil
}

func newTestCache(t *testing.T, inner *mockSelecter) (*Cache, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	c := New(inner, ms, "", time.Minute, nil, zap.NewNop())
	return c, ms
}
