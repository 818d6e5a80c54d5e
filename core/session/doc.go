// Package session provides server-side HTTP session management backed by a
// key-value document store such as Couchbase.
//
// Sessions are generic over the application data they carry and are
// persisted as JSON documents whose expiry equals the configured idle
// timeout. When principal sessions are enabled, every authenticated session
// is also listed in a per-principal index document so all sessions of one
// user can be found or revoked together.
//
// # Configuration
//
// Config holds two tunables with defaults plus storage details:
//
//	TimeoutInSeconds          1800   SESSION_TIMEOUT_IN_SECONDS (0 = never expire)
//	PrincipalSessionsEnabled  false  SESSION_PRINCIPAL_SESSIONS_ENABLED
//	TouchInterval             1m     SESSION_TOUCH_INTERVAL
//	KeyPrefix                 session SESSION_KEY_PREFIX
//
// A Config can be built from the environment (core/config), from functional
// options, or from declarative Attributes where unset fields keep defaults:
//
//	timeout := 15
//	cfg := session.FromAttributes(session.Attributes{TimeoutInSeconds: &timeout})
//
//	cfg = session.NewConfig(session.WithPrincipalSessionsEnabled(true))
//	cfg.SetTimeoutInSeconds(600)
//
// NewManager validates the Config and keeps its own copy, so configuration
// is fixed once wiring is done.
//
// # Usage
//
//	store := session.NewKVStore[Cart](kv.NewCouchbase(collection), cfg)
//	manager, err := session.NewManager[Cart](store, cfg, session.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	sess := manager.Create(ctx)
//	sess.SetData(Cart{Items: 2})
//	sess, err = manager.Save(ctx, sess)
//
//	sess, err = manager.Authenticate(ctx, sess, "alice") // rotates sess.ID
//
//	all, err := manager.FindByPrincipal(ctx, "alice")
//	n, err := manager.DeleteByPrincipal(ctx, "alice")
//
// # Errors
//
//   - ErrInvalidConfigurationValue: Config.Validate failed
//   - ErrNotFound: session doesn't exist in store
//   - ErrExpired: session idle longer than its timeout
//   - ErrPrincipalSessionsDisabled: principal lookup with the index turned off
//   - ErrMissingPrincipal: empty principal name
//   - ErrSaveSession, ErrDeleteSession: store failures, joined with the cause
package session
