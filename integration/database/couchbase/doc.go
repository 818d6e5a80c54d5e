// Package couchbase connects to a Couchbase cluster and exposes the
// collection that session documents live in.
//
//	client, err := couchbase.Connect(ctx, cfg, log)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := session.NewKVStore[Data](kv.NewCouchbase(client.Collection()), sessionCfg)
//
// Configuration comes from COUCHBASE_CONNECTION_STRING, COUCHBASE_USERNAME,
// COUCHBASE_PASSWORD, COUCHBASE_BUCKET, COUCHBASE_SCOPE, COUCHBASE_COLLECTION
// and the timeout and retry variables on Config. Leaving scope and
// collection empty selects the bucket's default collection.
//
// Healthcheck pings the bucket's key-value service and fails if any
// endpoint reports a state other than ok.
package couchbase
