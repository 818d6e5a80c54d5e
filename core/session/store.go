package session

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/couchsession/core/kv"
)

// Store defines the persistence interface for session management.
// Implementations must handle concurrent access safely.
type Store[Data any] interface {
	Get(ctx context.Context, id string) (*Session[Data], error)
	Save(ctx context.Context, session *Session[Data]) error
	Delete(ctx context.Context, id string) error
	// FindByPrincipal returns the live sessions of principal keyed by ID.
	FindByPrincipal(ctx context.Context, principal string) (map[string]Session[Data], error)
	// DeleteExpired removes all expired sessions and returns the count of deleted sessions.
	DeleteExpired(ctx context.Context) (int64, error)
}

// principalDocument lists the session IDs owned by one principal.
type principalDocument struct {
	Principal  string   `json:"principal"`
	SessionIDs []string `json:"session_ids"`
}

// KVStore persists sessions as documents in a kv.Client.
//
// Keys:
//
//	<prefix>::session::<id>          session document, expiry = idle timeout
//	<prefix>::principal::<name>      principal index, only when enabled
type KVStore[Data any] struct {
	client          kv.Client
	prefix          string
	indexPrincipals bool
	indexTTL        time.Duration
	now             func() time.Time

	// mu serializes read-modify-write of principal documents within the process.
	mu sync.Mutex
}

// StoreOption configures a KVStore.
type StoreOption func(*storeOptions)

type storeOptions struct {
	now func() time.Time
}

// WithStoreClock overrides the time source used to detect expired sessions.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewKVStore creates a store on client using the prefix and principal
// indexing settings from cfg.
func NewKVStore[Data any](client kv.Client, cfg Config, opts ...StoreOption) *KVStore[Data] {
	o := storeOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &KVStore[Data]{
		client:          client,
		prefix:          cfg.KeyPrefix,
		indexPrincipals: cfg.PrincipalSessionsEnabled,
		indexTTL:        cfg.Timeout(),
		now:             o.now,
	}
}

func (s *KVStore[Data]) sessionKey(id string) string {
	return s.prefix + "::session::" + id
}

func (s *KVStore[Data]) principalKey(principal string) string {
	return s.prefix + "::principal::" + principal
}

// Get loads a session by ID. Returns ErrNotFound when the document is missing.
func (s *KVStore[Data]) Get(ctx context.Context, id string) (*Session[Data], error) {
	var sess Session[Data]
	if err := s.client.Get(ctx, s.sessionKey(id), &sess); err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sess.markPersisted()
	return &sess, nil
}

// Save writes the session document and keeps the principal index in step.
// After an ID rotation the document under the previous ID is removed.
func (s *KVStore[Data]) Save(ctx context.Context, sess *Session[Data]) error {
	prevID, prevPrincipal := sess.persistedID, sess.persistedPrincipal

	if err := s.client.Set(ctx, s.sessionKey(sess.ID), sess, sess.MaxInactiveInterval); err != nil {
		return errors.Join(ErrSaveSession, err)
	}

	if prevID != "" && prevID != sess.ID {
		if err := s.client.Delete(ctx, s.sessionKey(prevID)); err != nil {
			return errors.Join(ErrSaveSession, err)
		}
	}

	if s.indexPrincipals {
		if prevPrincipal != "" && (prevPrincipal != sess.Principal || prevID != sess.ID) {
			if err := s.removeFromIndex(ctx, prevPrincipal, prevID); err != nil {
				return errors.Join(ErrSaveSession, err)
			}
		}
		// Rewritten on every save so the index outlives its newest session.
		if sess.Principal != "" {
			if err := s.addToIndex(ctx, sess.Principal, sess.ID); err != nil {
				return errors.Join(ErrSaveSession, err)
			}
		}
	}

	sess.markPersisted()
	return nil
}

// Delete removes a session and its principal index entry. Missing sessions are not an error.
func (s *KVStore[Data]) Delete(ctx context.Context, id string) error {
	var principal string
	if s.indexPrincipals {
		sess, err := s.Get(ctx, id)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return errors.Join(ErrDeleteSession, err)
		default:
			principal = sess.Principal
		}
	}

	if err := s.client.Delete(ctx, s.sessionKey(id)); err != nil {
		return errors.Join(ErrDeleteSession, err)
	}

	if principal != "" {
		if err := s.removeFromIndex(ctx, principal, id); err != nil {
			return errors.Join(ErrDeleteSession, err)
		}
	}
	return nil
}

// FindByPrincipal resolves the principal index. IDs whose documents are gone
// or expired are pruned from the index.
func (s *KVStore[Data]) FindByPrincipal(ctx context.Context, principal string) (map[string]Session[Data], error) {
	if !s.indexPrincipals {
		return nil, ErrPrincipalSessionsDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadIndex(ctx, principal)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := make(map[string]Session[Data], len(doc.SessionIDs))
	live := doc.SessionIDs[:0]
	for _, id := range doc.SessionIDs {
		sess, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if sess.IsExpired(now) || sess.Principal != principal {
			continue
		}
		result[id] = *sess
		live = append(live, id)
	}

	if len(live) != len(doc.SessionIDs) {
		doc.SessionIDs = live
		if err := s.storeIndex(ctx, doc); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// DeleteExpired sweeps clients that expire lazily and returns the number of
// session documents removed; expired principal indexes go too but are not
// counted. Couchbase and Redis expire documents on their own, so for them
// this is a no-op.
func (s *KVStore[Data]) DeleteExpired(context.Context) (int64, error) {
	sw, ok := s.client.(kv.Sweeper)
	if !ok {
		return 0, nil
	}

	prefix := s.sessionKey("")
	var n int64
	for _, key := range sw.Sweep() {
		if strings.HasPrefix(key, prefix) {
			n++
		}
	}
	return n, nil
}

func (s *KVStore[Data]) addToIndex(ctx context.Context, principal, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadIndex(ctx, principal)
	if err != nil {
		return err
	}
	if !slices.Contains(doc.SessionIDs, id) {
		doc.SessionIDs = append(doc.SessionIDs, id)
	}
	return s.storeIndex(ctx, doc)
}

func (s *KVStore[Data]) removeFromIndex(ctx context.Context, principal, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadIndex(ctx, principal)
	if err != nil {
		return err
	}
	idx := slices.Index(doc.SessionIDs, id)
	if idx < 0 {
		return nil
	}
	doc.SessionIDs = slices.Delete(doc.SessionIDs, idx, idx+1)
	return s.storeIndex(ctx, doc)
}

func (s *KVStore[Data]) loadIndex(ctx context.Context, principal string) (principalDocument, error) {
	doc := principalDocument{Principal: principal}
	err := s.client.Get(ctx, s.principalKey(principal), &doc)
	if err != nil && !errors.Is(err, kv.ErrKeyNotFound) {
		return principalDocument{}, err
	}
	return doc, nil
}

// storeIndex writes doc, or deletes it once it lists no sessions.
func (s *KVStore[Data]) storeIndex(ctx context.Context, doc principalDocument) error {
	if len(doc.SessionIDs) == 0 {
		return s.client.Delete(ctx, s.principalKey(doc.Principal))
	}
	return s.client.Set(ctx, s.principalKey(doc.Principal), doc, s.indexTTL)
}
