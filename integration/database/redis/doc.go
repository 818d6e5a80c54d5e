// Package redis provides Redis client initialization and health checking
// for the Redis session backend.
//
// Connect validates the URL (redis:// or rediss://), then pings with linear
// backoff until the server answers, the retry budget is spent or
// ConnectTimeout elapses:
//
//	client, err := redis.Connect(ctx, redis.Config{
//		ConnectionURL: "redis://localhost:6379/0",
//		RetryAttempts: 3,
//		RetryInterval: 5 * time.Second,
//	}, log)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := session.NewKVStore[Data](kv.NewRedis(client), cfg)
//
// Configuration is read from REDIS_URL, REDIS_RETRY_ATTEMPTS,
// REDIS_RETRY_INTERVAL and REDIS_CONNECT_TIMEOUT.
//
// Errors: ErrFailedToParseRedisConnString, ErrRedisNotReady,
// ErrEmptyConnectionURL, ErrHealthcheckFailed. Use errors.Is.
package redis
