package couchbase

import "time"

// Config holds Couchbase cluster connection settings.
type Config struct {
	ConnectionString string        `env:"COUCHBASE_CONNECTION_STRING" envDefault:"couchbase://localhost"`
	Username         string        `env:"COUCHBASE_USERNAME" envDefault:"Administrator"`
	Password         string        `env:"COUCHBASE_PASSWORD" envDefault:""`
	Bucket           string        `env:"COUCHBASE_BUCKET" envDefault:"sessions"`
	Scope            string        `env:"COUCHBASE_SCOPE" envDefault:""`      // empty = default scope
	Collection       string        `env:"COUCHBASE_COLLECTION" envDefault:""` // empty = default collection
	ConnectTimeout   time.Duration `env:"COUCHBASE_CONNECT_TIMEOUT" envDefault:"10s"`
	KVTimeout        time.Duration `env:"COUCHBASE_KV_TIMEOUT" envDefault:"2500ms"`
	RetryAttempts    int           `env:"COUCHBASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval    time.Duration `env:"COUCHBASE_RETRY_INTERVAL" envDefault:"2s"`
}

// Validate checks the fields Connect cannot default.
func (c Config) Validate() error {
	switch {
	case c.ConnectionString == "":
		return ErrEmptyConnectionString
	case c.Bucket == "":
		return ErrEmptyBucket
	case c.Collection != "" && c.Scope == "":
		return ErrCollectionWithoutScope
	}
	return nil
}
