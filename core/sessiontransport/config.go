package sessiontransport

import (
	"net/http"

	"github.com/gorilla/securecookie"

	"github.com/dmitrymomot/couchsession/core/session"
)

// CookieConfig provides environment-based configuration for cookie-based session transport.
type CookieConfig struct {
	// CookieName is the name of the session cookie
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"SESSION"`

	// HashKey authenticates the cookie value (required, 32 or 64 bytes recommended)
	HashKey string `env:"SESSION_COOKIE_HASH_KEY" envDefault:""`

	// BlockKey encrypts the cookie value when set (16, 24 or 32 bytes)
	BlockKey string `env:"SESSION_COOKIE_BLOCK_KEY" envDefault:""`

	Path     string `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	Domain   string `env:"SESSION_COOKIE_DOMAIN" envDefault:""`
	Secure   bool   `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
	SameSite string `env:"SESSION_COOKIE_SAME_SITE" envDefault:"lax"`
}

// DefaultCookieConfig returns a CookieConfig with sensible defaults.
// Note: HashKey must be set explicitly - it has no default.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		CookieName: "SESSION",
		Path:       "/",
		Secure:     true,
		SameSite:   "lax",
	}
}

// NewCookieFromConfig creates a cookie-based session transport from configuration.
// Returns ErrMissingHashKey if HashKey is empty.
func NewCookieFromConfig[Data any](cfg CookieConfig, mgr *session.Manager[Data]) (*Cookie[Data], error) {
	if cfg.HashKey == "" {
		return nil, ErrMissingHashKey
	}

	var blockKey []byte
	if cfg.BlockKey != "" {
		blockKey = []byte(cfg.BlockKey)
	}
	codec := securecookie.New([]byte(cfg.HashKey), blockKey)

	return NewCookie(mgr, codec,
		WithCookieName(cfg.CookieName),
		WithPath(cfg.Path),
		WithDomain(cfg.Domain),
		WithSecure(cfg.Secure),
		WithSameSite(parseSameSite(cfg.SameSite)),
	), nil
}

func parseSameSite(s string) http.SameSite {
	switch s {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
