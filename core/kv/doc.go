// Package kv defines the key-value client the session store persists through,
// with implementations for Couchbase, Redis and process memory.
//
// All implementations JSON-encode values and treat a zero TTL as "never
// expires", which is how a session timeout of zero is expressed:
//
//	client := kv.NewCouchbase(cluster.Collection())
//	err := client.Set(ctx, "session::abc", doc, 30*time.Minute)
//
// Instrumented wraps any Client with Prometheus metrics:
//
//	client = kv.Instrumented(client, "couchbase", kv.NewMetrics(prometheus.DefaultRegisterer))
package kv
