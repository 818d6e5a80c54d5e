package couchbase

import "errors"

// Domain-specific Couchbase errors. Use errors.Is() to check error types.
var (
	ErrEmptyConnectionString  = errors.New("empty couchbase connection string")
	ErrEmptyBucket            = errors.New("couchbase bucket name is required")
	ErrCollectionWithoutScope = errors.New("couchbase collection requires a scope")
	ErrConnectFailed          = errors.New("failed to connect to couchbase cluster")
	ErrBucketNotReady         = errors.New("couchbase bucket did not become ready within the given time period")
	ErrHealthcheckFailed      = errors.New("couchbase healthcheck failed")
)
