package sessions

import "errors"

var (
	// ErrUnknownBackend is returned by New when SESSION_BACKEND names no supported backend.
	ErrUnknownBackend = errors.New("unknown session backend")

	// ErrNilOption is returned when an option receives a nil dependency.
	ErrNilOption = errors.New("option value cannot be nil")
)
