package redis

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/solrmap/internal/db"
)

func newMockStore(t *testing.T) (*Store, *mock.Client) {
	t.Helper()
	c := mock.NewClient(gomock.NewController(t))
	return NewStoreForTest(c), c
}

func scanReply(cursor int64, keys ...string) rueidis.RedisResult {
	elems := make([]rueidis.RedisMessage, len(keys))
	for i, k := range keys {
		elems[i] = mock.RedisBlobString(k)
	}
	return mock.Result(mock.RedisArray(mock.RedisBlobString(strconv.FormatInt(cursor, 10)), mock.RedisArray(elems...)))
}

func TestNewStore_Validation(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Error("expected error without addrs")
	}
	if _, err := NewStore(Config{Addrs: []string{"a:6379", "b:6379"}, DB: 2}); err == nil {
		t.Error("expected error selecting a db on a cluster")
	}
}

func TestPing(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.Result(mock.RedisString("PONG")))
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.ErrorResult(context.DeadlineExceeded))
	err := s.Ping(context.Background())
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
		t.Fatalf("expected PING db.Error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("cause lost: %v", err)
	}
}

func TestWaitForReady_RetriesUntilPong(t *testing.T) {
	s, c := newMockStore(t)
	gomock.InOrder(
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.ErrorResult(errors.New("LOADING"))),
		c.EXPECT().Do(gomock.Any(), mock.Match("PING")).Return(mock.Result(mock.RedisString("PONG"))),
	)
	if err := s.WaitForReady(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		MinTimes(1)

	err := s.WaitForReady(context.Background(), 120*time.Millisecond)
	if !errors.Is(err, db.ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Errorf("last ping error not wrapped: %v", err)
	}
}

func TestGet(t *testing.T) {
	s, c := newMockStore(t)

	c.EXPECT().Do(gomock.Any(), mock.Match("GET", "solrmap:resp:a")).
		Return(mock.Result(mock.RedisBlobString("<response/>")))
	data, err := s.Get(context.Background(), "solrmap:resp:a")
	if err != nil || string(data) != "<response/>" {
		t.Fatalf("got %q, %v", data, err)
	}

	c.EXPECT().Do(gomock.Any(), mock.Match("GET", "solrmap:resp:b")).Return(mock.Result(mock.RedisNil()))
	if _, err := s.Get(context.Background(), "solrmap:resp:b"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}

	c.EXPECT().Do(gomock.Any(), mock.Match("GET", "solrmap:resp:c")).
		Return(mock.ErrorResult(context.DeadlineExceeded))
	_, err = s.Get(context.Background(), "solrmap:resp:c")
	var dbErr *db.Error
	if errors.Is(err, db.ErrKeyNotFound) || !errors.As(err, &dbErr) {
		t.Fatalf("expected db.Error, got %v", err)
	}
	if dbErr.Op != db.OpGet || dbErr.Key != "solrmap:resp:c" {
		t.Errorf("unexpected error context %+v", dbErr)
	}
	if dbErr.Error() != "GET solrmap:resp:c: "+context.DeadlineExceeded.Error() {
		t.Errorf("unexpected message %q", dbErr.Error())
	}
}

func TestSetWithTTL(t *testing.T) {
	s, c := newMockStore(t)

	c.EXPECT().Do(gomock.Any(), mock.Match("SET", "k", "v", "PX", "1500")).
		Return(mock.Result(mock.RedisString("OK")))
	if err := s.SetWithTTL(context.Background(), "k", []byte("v"), 1500*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// No expiry falls back to a plain SET.
	c.EXPECT().Do(gomock.Any(), mock.Match("SET", "k", "v")).
		Return(mock.Result(mock.RedisString("OK")))
	if err := s.SetWithTTL(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.EXPECT().Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "SET" })).
		Return(mock.ErrorResult(errors.New("READONLY")))
	err := s.SetWithTTL(context.Background(), "k", []byte("v"), time.Minute)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSet {
		t.Errorf("expected SET db.Error, got %v", err)
	}
}

func TestDel_OneCommandPerKey(t *testing.T) {
	s, c := newMockStore(t)

	c.EXPECT().
		DoMulti(gomock.Any(), mock.Match("DEL", "a"), mock.Match("DEL", "b"), mock.Match("DEL", "c")).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.Result(mock.RedisInt64(0)),
			mock.Result(mock.RedisInt64(1)),
		})

	n, err := s.Del(context.Background(), "a", "b", "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
}

func TestDel_Error(t *testing.T) {
	s, c := newMockStore(t)

	c.EXPECT().
		DoMulti(gomock.Any(), mock.Match("DEL", "a"), mock.Match("DEL", "b")).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.ErrorResult(errors.New("MOVED")),
		})

	n, err := s.Del(context.Background(), "a", "b")
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Key != "b" {
		t.Fatalf("expected DEL error on b, got %v", err)
	}
	if n != 1 {
		t.Errorf("expected partial count 1, got %d", n)
	}
}

func TestDel_NoKeys(t *testing.T) {
	s, _ := newMockStore(t)
	n, err := s.Del(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("expected 0, nil; got %d, %v", n, err)
	}
}

func TestScan_Pages(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().Nodes().Return(map[string]rueidis.Client{"localhost:6379": c})

	gomock.InOrder(
		c.EXPECT().Do(gomock.Any(), mock.Match("SCAN", "0", "MATCH", "solrmap:resp:*", "COUNT", "500")).
			Return(scanReply(42, "solrmap:resp:a")),
		c.EXPECT().Do(gomock.Any(), mock.Match("SCAN", "42", "MATCH", "solrmap:resp:*", "COUNT", "500")).
			Return(scanReply(0, "solrmap:resp:b")),
	)

	keys, err := s.Scan(context.Background(), "solrmap:resp:*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 || keys[0] != "solrmap:resp:a" || keys[1] != "solrmap:resp:b" {
		t.Errorf("unexpected keys %v", keys)
	}
}

func TestScan_EveryClusterNode(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := mock.NewClient(ctrl)
	n1, n2 := mock.NewClient(ctrl), mock.NewClient(ctrl)
	root.EXPECT().Nodes().Return(map[string]rueidis.Client{"n2:6379": n2, "n1:6379": n1})

	n1.EXPECT().Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "SCAN" })).
		Return(scanReply(0, "k1"))
	n2.EXPECT().Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "SCAN" })).
		Return(scanReply(0, "k2", "k3"))

	keys, err := NewStoreForTest(root).Scan(context.Background(), "*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 3 || keys[0] != "k1" {
		t.Errorf("expected node-ordered keys, got %v", keys)
	}
}

func TestScan_Error(t *testing.T) {
	s, c := newMockStore(t)
	c.EXPECT().Nodes().Return(map[string]rueidis.Client{"localhost:6379": c})
	c.EXPECT().Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "SCAN" })).
		Return(mock.ErrorResult(errors.New("NOPERM")))

	_, err := s.Scan(context.Background(), "solrmap:*")
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpScan {
		t.Fatalf("expected SCAN db.Error, got %v", err)
	}
}
