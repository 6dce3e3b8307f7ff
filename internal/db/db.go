// Package db defines the key-value store the response cache runs on.
package db

import (
	"context"
	"time"
)

// Store is a connected key-value store.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore holds opaque values under string keys.
//
// Scan walks every node of a clustered deployment. Del removes keys one
// command per key so they may live in different slots, and returns how many
// existed.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) (int, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}
