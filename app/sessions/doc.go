// Package sessions wires the session stack from configuration.
//
// Configuration is read from the environment (see core/config). SESSION_BACKEND
// selects where sessions live: "couchbase" (default), "redis" or "memory".
//
//	app, err := sessions.New[Cart](ctx)
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//
//	mgr := app.Manager()
//	cookie := app.Transport() // nil unless SESSION_COOKIE_HASH_KEY is set
//
// Explicit overrides are applied on top of the environment:
//
//	timeout := 600
//	app, err := sessions.New[Cart](ctx,
//		sessions.WithSessionAttributes[Cart](session.Attributes{TimeoutInSeconds: &timeout}),
//	)
//
// The memory backend has no native expiry; run RunCleanup in a goroutine
// when using it outside tests.
package sessions
