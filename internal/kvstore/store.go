package kvstore

import (
	"context"
	"errors"
	"time"
)

// Store is a durable string key/value store. Get reports whether the key exists.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
}

// ErrClosed is returned by a store used after Close.
var ErrClosed = errors.New("kvstore: closed")
