// Package healthcheck provides liveness and readiness probe handlers.
//
// Dependency checks have the signature func(context.Context) error, which
// matches redis.Healthcheck, couchbase.Healthcheck and sessions.App.Healthcheck.
package healthcheck
