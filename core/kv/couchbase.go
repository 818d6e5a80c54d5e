package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/couchbase/gocb/v2"
)

// ErrCouchbaseUnavailable wraps failures from the Couchbase SDK other than missing documents.
var ErrCouchbaseUnavailable = errors.New("kv: couchbase unavailable")

// Couchbase stores values as JSON documents in a single collection.
// Document expiry carries the TTL.
type Couchbase struct {
	collection *gocb.Collection
}

// NewCouchbase wraps a collection. The caller owns the cluster connection.
func NewCouchbase(collection *gocb.Collection) *Couchbase {
	return &Couchbase{collection: collection}
}

func (c *Couchbase) Get(ctx context.Context, key string, dst any) error {
	res, err := c.collection.Get(key, &gocb.GetOptions{Context: ctx})
	if err != nil {
		return couchbaseErr(err)
	}
	return res.Content(dst)
}

func (c *Couchbase) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	_, err := c.collection.Upsert(key, value, &gocb.UpsertOptions{
		Expiry:  ttl,
		Context: ctx,
	})
	if err != nil {
		return couchbaseErr(err)
	}
	return nil
}

func (c *Couchbase) Touch(ctx context.Context, key string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if _, err := c.collection.Touch(key, ttl, &gocb.TouchOptions{Context: ctx}); err != nil {
		return couchbaseErr(err)
	}
	return nil
}

func (c *Couchbase) Delete(ctx context.Context, key string) error {
	_, err := c.collection.Remove(key, &gocb.RemoveOptions{Context: ctx})
	if err != nil && !errors.Is(err, gocb.ErrDocumentNotFound) {
		return couchbaseErr(err)
	}
	return nil
}

func couchbaseErr(err error) error {
	if errors.Is(err, gocb.ErrDocumentNotFound) {
		return ErrKeyNotFound
	}
	return fmt.Errorf("%w: %v", ErrCouchbaseUnavailable, err)
}
