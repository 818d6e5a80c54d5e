package session

import "errors"

var (
	// ErrInvalidConfigurationValue is returned by Config.Validate and NewManager.
	ErrInvalidConfigurationValue = errors.New("invalid session configuration value")
	// ErrExpired is returned when a session has expired and is no longer valid.
	ErrExpired = errors.New("session has expired")
	// ErrNotFound is returned when a session cannot be found in the store.
	ErrNotFound = errors.New("session not found")
	// ErrNoStore is returned when a manager is created without a store.
	ErrNoStore = errors.New("session store is required")
	// ErrMissingPrincipal is returned when authenticating with an empty principal name.
	ErrMissingPrincipal = errors.New("principal name is required")
	// ErrPrincipalSessionsDisabled is returned by principal lookups when the index is off.
	ErrPrincipalSessionsDisabled = errors.New("principal sessions are not enabled")
	// ErrSaveSession is returned when saving a session to the store fails.
	ErrSaveSession = errors.New("failed to save session")
	// ErrDeleteSession is returned when deleting a session from the store fails.
	ErrDeleteSession = errors.New("failed to delete session")
)
