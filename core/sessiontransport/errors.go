package sessiontransport

import "errors"

var (
	// ErrNoToken is returned when the request carries no session cookie
	ErrNoToken = errors.New("sessiontransport: no token")

	// ErrInvalidToken is returned when the cookie fails authentication or decoding
	ErrInvalidToken = errors.New("sessiontransport: invalid token")

	// ErrMissingHashKey is returned when the cookie hash key is not configured
	ErrMissingHashKey = errors.New("sessiontransport: cookie hash key is required")
)
