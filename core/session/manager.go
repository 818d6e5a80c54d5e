package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/couchsession/core/logger"
)

// Manager handles session lifecycle including creation, retrieval, and expiration.
// The touch interval determines how often last-access updates are written back,
// reducing write operations to the store.
type Manager[Data any] struct {
	store  Store[Data]
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerOptions)

type managerOptions struct {
	logger *slog.Logger
	now    func() time.Time
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(o *managerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ManagerOption {
	return func(o *managerOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewManager creates a session manager. cfg is validated and copied;
// later changes to the caller's Config have no effect.
func NewManager[Data any](store Store[Data], cfg Config, opts ...ManagerOption) (*Manager[Data], error) {
	if store == nil {
		return nil, ErrNoStore
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := managerOptions{
		logger: logger.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Manager[Data]{
		store:  store,
		cfg:    cfg,
		logger: o.logger.With(logger.Component("session")),
		now:    o.now,
	}, nil
}

// Config returns a copy of the manager configuration.
func (m *Manager[Data]) Config() Config {
	return m.cfg
}

// Timeout returns the idle timeout applied to new sessions.
func (m *Manager[Data]) Timeout() time.Duration {
	return m.cfg.Timeout()
}

// Create returns a new anonymous session. It is not persisted until Save.
func (m *Manager[Data]) Create(context.Context) Session[Data] {
	return New[Data](m.cfg.Timeout(), m.now())
}

// Get retrieves a session by ID and validates expiration.
// The last-access time is written back when the touch interval has elapsed.
func (m *Manager[Data]) Get(ctx context.Context, id string) (Session[Data], error) {
	sess, _, err := m.Access(ctx, id)
	return sess, err
}

// Access is Get that also reports whether the last-access time was written
// back. Transports use it to re-issue client tokens whose lifetime follows
// the session's.
func (m *Manager[Data]) Access(ctx context.Context, id string) (Session[Data], bool, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return Session[Data]{}, false, err
	}

	now := m.now()
	if sess.IsExpired(now) {
		if err := m.store.Delete(ctx, id); err != nil {
			m.logger.WarnContext(ctx, "failed to delete expired session", logger.SessionID(id), logger.Error(err))
		}
		return Session[Data]{}, false, ErrExpired
	}

	if !sess.Touch(now, m.cfg.TouchInterval) {
		return *sess, false, nil
	}
	if err := m.store.Save(ctx, sess); err != nil {
		return Session[Data]{}, false, err
	}
	sess.markPersisted()

	return *sess, true, nil
}

// Peek loads a session without touching it or removing it when expired.
// Expired sessions are returned together with ErrExpired.
func (m *Manager[Data]) Peek(ctx context.Context, id string) (Session[Data], error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return Session[Data]{}, err
	}
	if sess.IsExpired(m.now()) {
		return *sess, ErrExpired
	}
	return *sess, nil
}

// Save persists the session if it was modified and returns the stored copy.
func (m *Manager[Data]) Save(ctx context.Context, sess Session[Data]) (Session[Data], error) {
	if !sess.IsModified() {
		return sess, nil
	}
	if err := m.store.Save(ctx, &sess); err != nil {
		return Session[Data]{}, err
	}
	sess.markPersisted()
	return sess, nil
}

// Authenticate binds sess to principal, rotates its ID and saves it.
// The document stored under the previous ID is removed.
func (m *Manager[Data]) Authenticate(ctx context.Context, sess Session[Data], principal string) (Session[Data], error) {
	if principal == "" {
		return Session[Data]{}, ErrMissingPrincipal
	}

	sess.Authenticate(principal, m.now())
	if err := m.store.Save(ctx, &sess); err != nil {
		return Session[Data]{}, err
	}
	sess.markPersisted()

	m.logger.InfoContext(ctx, "session authenticated", logger.SessionID(sess.ID), logger.Principal(principal))
	return sess, nil
}

// Logout deletes sess and returns a fresh anonymous session that is not yet persisted.
func (m *Manager[Data]) Logout(ctx context.Context, sess Session[Data]) (Session[Data], error) {
	if err := m.Delete(ctx, sess.ID); err != nil {
		return Session[Data]{}, err
	}
	return m.Create(ctx), nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (m *Manager[Data]) Delete(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// FindByPrincipal returns all live sessions of principal keyed by session ID.
func (m *Manager[Data]) FindByPrincipal(ctx context.Context, principal string) (map[string]Session[Data], error) {
	if !m.cfg.PrincipalSessionsEnabled {
		return nil, ErrPrincipalSessionsDisabled
	}
	if principal == "" {
		return nil, ErrMissingPrincipal
	}
	return m.store.FindByPrincipal(ctx, principal)
}

// DeleteByPrincipal deletes every session of principal and returns how many were removed.
func (m *Manager[Data]) DeleteByPrincipal(ctx context.Context, principal string) (int, error) {
	sessions, err := m.FindByPrincipal(ctx, principal)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for id := range sessions {
		if err := m.Delete(ctx, id); err != nil {
			return deleted, err
		}
		deleted++
	}

	m.logger.InfoContext(ctx, "principal sessions deleted", logger.Principal(principal), logger.Count("deleted", deleted))
	return deleted, nil
}

// CleanupExpired removes expired sessions from stores that do not expire them natively.
// Should be called periodically when such a store is in use.
func (m *Manager[Data]) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.logger.DebugContext(ctx, "expired sessions removed", logger.Count("deleted", int(n)))
	}
	return n, nil
}
