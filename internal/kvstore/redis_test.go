package kvstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"localmarket/internal/config"
)

func TestRedisGetMissingKey(t *testing.T) {
	store := &Redis{store: newMockCmdable()}

	val, ok, err := store.Get(context.Background(), "cart_guest")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || val != "" {
		t.Fatalf("expected missing key, got ok=%v val=%q", ok, val)
	}
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	store := &Redis{store: mock}

	if err := store.Set(ctx, "cart_u1", `[{"id":"l1"}]`, time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	if mock.ttls["localmarket:cart_u1"] != time.Hour {
		t.Fatalf("ttl not forwarded: %v", mock.ttls)
	}
	val, ok, err := store.Get(ctx, "cart_u1")
	if err != nil || !ok || val != `[{"id":"l1"}]` {
		t.Fatalf("get: val=%q ok=%v err=%v", val, ok, err)
	}
	if err := store.Remove(ctx, "cart_u1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "cart_u1"); ok {
		t.Fatalf("expected key removed")
	}
}

func TestRedisPropagatesErrors(t *testing.T) {
	mock := newMockCmdable()
	mock.err = errors.New("connection refused")
	store := &Redis{store: mock}

	if _, _, err := store.Get(context.Background(), "k"); err == nil {
		t.Fatalf("expected get error")
	}
	if err := store.Set(context.Background(), "k", "v", 0); err == nil {
		t.Fatalf("expected set error")
	}
	if err := store.Remove(context.Background(), "k"); err == nil {
		t.Fatalf("expected remove error")
	}
}

func TestRedisClosed(t *testing.T) {
	store := &Redis{store: newMockCmdable()}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	ctx := context.Background()
	if _, _, err := store.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := store.Set(ctx, "k", "v", 0); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed on set, got %v", err)
	}
	if err := store.Ping(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed on ping, got %v", err)
	}
}

func TestRedisCloseWhileReading(t *testing.T) {
	mock := newMockCmdable()
	mock.data[buildKey("k")] = "v"
	store := &Redis{store: mock}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _, err := store.Get(context.Background(), "k")
				if err != nil && !errors.Is(err, ErrClosed) {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}()
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	wg.Wait()
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		URL:         "redis://:secret@cache:6380/2",
		PoolSize:    7,
		DialTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.DB != 2 || opts.Password != "secret" {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.PoolSize != 7 || opts.DialTimeout != 2*time.Second {
		t.Fatalf("pool settings not applied: %+v", opts)
	}

	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

type mockCmdable struct {
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", m.err)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}
	m.data[key] = value.(string)
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if m.err != nil {
		return redis.NewIntResult(0, m.err)
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
