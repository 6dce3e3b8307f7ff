package redis

import (
	"context"
	"maps"
	"slices"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/solrmap/internal/db"
)

// scanBatch is the SCAN COUNT hint and the DEL pipeline size.
const scanBatch = 500

// Get returns the value at key or db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.do(ctx, s.b().Get().Key(key).Build()).AsBytes()
	if rueidis.IsRedisNil(err) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Key: key, Err: err}
	}
	return data, nil
}

// Set stores value at key without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Key: key, Err: err}
	}
	return nil
}

// SetWithTTL stores value at key with an expiry. A non-positive ttl stores
// without expiry.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Set(ctx, key, value)
	}
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Px(ttl).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Key: key, Err: err}
	}
	return nil
}

// Del removes keys and returns how many existed. Each key is its own DEL so
// a cluster never sees a cross-slot request.
func (s *Store) Del(ctx context.Context, keys ...string) (int, error) {
	removed := 0
	for chunk := range slices.Chunk(keys, scanBatch) {
		cmds := make(rueidis.Commands, len(chunk))
		for i, k := range chunk {
			cmds[i] = s.b().Del().Key(k).Build()
		}
		for i, res := range s.client.DoMulti(ctx, cmds...) {
			n, err := res.AsInt64()
			if err != nil {
				return removed, &db.Error{Op: db.OpDel, Key: chunk[i], Err: err}
			}
			removed += int(n)
		}
	}
	return removed, nil
}

// Scan returns the keys matching pattern across every node.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	nodes := s.client.Nodes()
	var keys []string
	for _, addr := range slices.Sorted(maps.Keys(nodes)) {
		found, err := scanNode(ctx, nodes[addr], pattern)
		if err != nil {
			return nil, err
		}
		keys = append(keys, found...)
	}
	return keys, nil
}

func scanNode(ctx context.Context, c rueidis.Client, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		cmd := c.B().Scan().Cursor(cursor).Match(pattern).Count(scanBatch).Build()
		entry, err := c.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Key: pattern, Err: err}
		}
		keys = append(keys, entry.Elements...)
		if cursor = entry.Cursor; cursor == 0 {
			return keys, nil
		}
	}
}
