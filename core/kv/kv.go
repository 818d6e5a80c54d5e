package kv

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned when a key does not exist or has expired.
var ErrKeyNotFound = errors.New("kv: key not found")

// Client is the minimal document store the session store needs.
// Values are JSON-encoded by every implementation. A zero ttl means the
// key never expires. Delete of a missing key is not an error.
type Client interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Touch(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Sweeper is implemented by clients that expire keys lazily and need a
// periodic pass to reclaim them. Couchbase and Redis expire keys natively.
type Sweeper interface {
	// Sweep drops expired keys and returns them.
	Sweep() []string
}
