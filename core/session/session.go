package session

import (
	"time"

	"github.com/google/uuid"
)

// Session represents a server-side user session with generic data storage.
// The Data type parameter allows custom session data structures specific to your application.
type Session[Data any] struct {
	// ID identifies the session and is the value carried by the client.
	// It changes on authentication to prevent fixation.
	ID string `json:"id"`

	// Principal is the authenticated identity (empty for anonymous sessions).
	Principal string `json:"principal,omitempty"`

	// Data holds custom application-specific session information.
	Data Data `json:"data"`

	CreationTime     time.Time `json:"creation_time"`
	LastAccessedTime time.Time `json:"last_accessed_time"`

	// MaxInactiveInterval is the idle timeout. Zero means the session never expires.
	MaxInactiveInterval time.Duration `json:"max_inactive_interval"`

	// persistedID and persistedPrincipal record what the store holds,
	// so Save can clean up after ID rotation or a principal change.
	persistedID        string
	persistedPrincipal string

	isModified bool
}

// New creates an anonymous session. The session is marked as modified and
// ready to be saved.
func New[Data any](maxInactive time.Duration, now time.Time) Session[Data] {
	return Session[Data]{
		ID:                  uuid.NewString(),
		Data:                *new(Data),
		CreationTime:        now,
		LastAccessedTime:    now,
		MaxInactiveInterval: maxInactive,
		isModified:          true,
	}
}

// Authenticate binds the session to principal and rotates its ID.
func (s *Session[Data]) Authenticate(principal string, now time.Time) {
	s.ID = uuid.NewString()
	s.Principal = principal
	s.LastAccessedTime = now
	s.isModified = true
}

// SetData updates the session's custom data.
func (s *Session[Data]) SetData(data Data) {
	s.Data = data
	s.isModified = true
}

// Touch records an access if at least interval has passed since the last one.
// Returns true when LastAccessedTime moved.
func (s *Session[Data]) Touch(now time.Time, interval time.Duration) bool {
	if now.Sub(s.LastAccessedTime) < interval {
		return false
	}
	s.LastAccessedTime = now
	s.isModified = true
	return true
}

// ExpiresAt returns when the session expires, or the zero time if it never does.
func (s Session[Data]) ExpiresAt() time.Time {
	if s.MaxInactiveInterval <= 0 {
		return time.Time{}
	}
	return s.LastAccessedTime.Add(s.MaxInactiveInterval)
}

// IsExpired reports whether the session was idle longer than its timeout at now.
func (s Session[Data]) IsExpired(now time.Time) bool {
	exp := s.ExpiresAt()
	return !exp.IsZero() && !now.Before(exp)
}

// IsAuthenticated returns true if the session has a principal.
func (s Session[Data]) IsAuthenticated() bool {
	return s.Principal != ""
}

// IsModified returns true if the session has been modified and needs saving.
func (s Session[Data]) IsModified() bool {
	return s.isModified
}

// IsNew returns true if the session has never been persisted.
func (s Session[Data]) IsNew() bool {
	return s.persistedID == ""
}

func (s *Session[Data]) markPersisted() {
	s.persistedID = s.ID
	s.persistedPrincipal = s.Principal
	s.isModified = false
}
