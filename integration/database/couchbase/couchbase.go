package couchbase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchbase/gocb/v2"

	"github.com/dmitrymomot/couchsession/core/logger"
)

// Client owns a cluster connection and the collection sessions are stored in.
type Client struct {
	cluster    *gocb.Cluster
	bucket     *gocb.Bucket
	collection *gocb.Collection
}

// Connect opens the cluster and waits until the bucket is ready, retrying
// with linear backoff.
func Connect(ctx context.Context, cfg Config, log *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}

	cluster, err := gocb.Connect(cfg.ConnectionString, gocb.ClusterOptions{
		Authenticator: gocb.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		},
		TimeoutsConfig: gocb.TimeoutsConfig{
			ConnectTimeout: cfg.ConnectTimeout,
			KVTimeout:      cfg.KVTimeout,
		},
	})
	if err != nil {
		return nil, errors.Join(ErrConnectFailed, err)
	}

	bucket := cluster.Bucket(cfg.Bucket)
	attempts := max(cfg.RetryAttempts, 1)

	for attempt := 1; ; attempt++ {
		err = bucket.WaitUntilReady(cfg.ConnectTimeout, &gocb.WaitUntilReadyOptions{
			Context:      ctx,
			ServiceTypes: []gocb.ServiceType{gocb.ServiceTypeKeyValue},
		})
		if err == nil {
			break
		}
		if attempt >= attempts {
			_ = cluster.Close(nil)
			return nil, errors.Join(ErrBucketNotReady, err)
		}

		log.WarnContext(ctx, "couchbase bucket not ready, retrying",
			logger.Backend("couchbase"),
			logger.RetryCount(attempt),
			logger.Error(err),
		)

		select {
		case <-ctx.Done():
			_ = cluster.Close(nil)
			return nil, errors.Join(ErrBucketNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval * time.Duration(attempt)):
		}
	}

	collection := bucket.DefaultCollection()
	if cfg.Scope != "" {
		name := cfg.Collection
		if name == "" {
			name = "_default"
		}
		collection = bucket.Scope(cfg.Scope).Collection(name)
	}

	log.InfoContext(ctx, "couchbase connected",
		logger.Backend("couchbase"),
		slog.String("bucket", cfg.Bucket),
		slog.String("collection", collectionPath(cfg)),
	)

	return &Client{cluster: cluster, bucket: bucket, collection: collection}, nil
}

// Collection returns the collection session documents are stored in.
func (c *Client) Collection() *gocb.Collection {
	return c.collection
}

// Close shuts down the cluster connection.
func (c *Client) Close() error {
	return c.cluster.Close(nil)
}

// Healthcheck returns a function that pings the key-value service of the bucket.
func Healthcheck(client *Client) func(context.Context) error {
	return func(ctx context.Context) error {
		res, err := client.bucket.Ping(&gocb.PingOptions{
			ServiceTypes: []gocb.ServiceType{gocb.ServiceTypeKeyValue},
			Context:      ctx,
		})
		if err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		for _, reports := range res.Services {
			for _, report := range reports {
				if report.State != gocb.PingStateOk {
					return fmt.Errorf("%w: endpoint %s is %v", ErrHealthcheckFailed, report.Remote, report.State)
				}
			}
		}
		return nil
	}
}

func collectionPath(cfg Config) string {
	if cfg.Scope == "" {
		return "_default._default"
	}
	if cfg.Collection == "" {
		return cfg.Scope + "._default"
	}
	return cfg.Scope + "." + cfg.Collection
}
