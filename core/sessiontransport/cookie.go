package sessiontransport

import (
	"errors"
	"net/http"

	"github.com/gorilla/securecookie"

	"github.com/dmitrymomot/couchsession/core/session"
)

// Cookie provides HTTP cookie-based session transport.
// It stores Session.ID as the cookie value, authenticated by securecookie.
type Cookie[Data any] struct {
	manager  *session.Manager[Data]
	codec    *securecookie.SecureCookie
	name     string
	path     string
	domain   string
	secure   bool
	sameSite http.SameSite
}

// CookieOption configures a Cookie transport.
type CookieOption func(*cookieOptions)

type cookieOptions struct {
	name     string
	path     string
	domain   string
	secure   bool
	sameSite http.SameSite
}

// WithCookieName sets the cookie name.
func WithCookieName(name string) CookieOption {
	return func(o *cookieOptions) {
		if name != "" {
			o.name = name
		}
	}
}

// WithPath sets the cookie path.
func WithPath(path string) CookieOption {
	return func(o *cookieOptions) {
		if path != "" {
			o.path = path
		}
	}
}

// WithDomain sets the cookie domain.
func WithDomain(domain string) CookieOption {
	return func(o *cookieOptions) {
		o.domain = domain
	}
}

// WithSecure sets the Secure attribute.
func WithSecure(secure bool) CookieOption {
	return func(o *cookieOptions) {
		o.secure = secure
	}
}

// WithSameSite sets the SameSite attribute.
func WithSameSite(mode http.SameSite) CookieOption {
	return func(o *cookieOptions) {
		o.sameSite = mode
	}
}

// NewCookie creates a new cookie-based session transport.
func NewCookie[Data any](mgr *session.Manager[Data], codec *securecookie.SecureCookie, opts ...CookieOption) *Cookie[Data] {
	o := cookieOptions{
		name:     "SESSION",
		path:     "/",
		secure:   true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(&o)
	}

	// Signed timestamps must not outlive the session; 0 disables the check.
	codec.MaxAge(int(mgr.Timeout().Seconds()))

	return &Cookie[Data]{
		manager:  mgr,
		codec:    codec,
		name:     o.name,
		path:     o.path,
		domain:   o.domain,
		secure:   o.secure,
		sameSite: o.sameSite,
	}
}

// Extract returns the session ID carried by the request cookie.
func (c *Cookie[Data]) Extract(r *http.Request) (string, error) {
	ck, err := r.Cookie(c.name)
	if err != nil {
		return "", ErrNoToken
	}

	var id string
	if err := c.codec.Decode(c.name, ck.Value, &id); err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	return id, nil
}

// Load session from cookie. Creates new anonymous session if no cookie, an invalid
// cookie, or an unknown or expired session. Store failures are returned.
//
// When the lookup moves the session's last-access time, the cookie is
// re-issued so its Max-Age and signature timestamp follow the idle timeout
// rather than the last Save.
func (c *Cookie[Data]) Load(w http.ResponseWriter, r *http.Request) (session.Session[Data], error) {
	sess, touched, err := c.load(r)
	if err != nil {
		return session.Session[Data]{}, err
	}
	if touched {
		if err := c.write(w, sess); err != nil {
			return session.Session[Data]{}, err
		}
	}
	return sess, nil
}

func (c *Cookie[Data]) load(r *http.Request) (session.Session[Data], bool, error) {
	id, err := c.Extract(r)
	if err != nil {
		return c.manager.Create(r.Context()), false, nil
	}

	sess, touched, err := c.manager.Access(r.Context(), id)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		return c.manager.Create(r.Context()), false, nil
	case err != nil:
		return session.Session[Data]{}, false, err
	}

	return sess, touched, nil
}

// Save persists the session and writes its cookie.
func (c *Cookie[Data]) Save(w http.ResponseWriter, r *http.Request, sess session.Session[Data]) (session.Session[Data], error) {
	saved, err := c.manager.Save(r.Context(), sess)
	if err != nil {
		return session.Session[Data]{}, err
	}

	if err := c.write(w, saved); err != nil {
		return session.Session[Data]{}, err
	}
	return saved, nil
}

func (c *Cookie[Data]) write(w http.ResponseWriter, sess session.Session[Data]) error {
	value, err := c.codec.Encode(c.name, sess.ID)
	if err != nil {
		return errors.Join(ErrInvalidToken, err)
	}

	// MaxAge 0 omits the attribute: a browser-session cookie for sessions that never expire.
	http.SetCookie(w, c.cookie(value, int(sess.MaxInactiveInterval.Seconds())))
	return nil
}

// Authenticate user. Calls manager.Authenticate and sets the rotated ID in the cookie.
func (c *Cookie[Data]) Authenticate(w http.ResponseWriter, r *http.Request, principal string) (session.Session[Data], error) {
	current, _, err := c.load(r)
	if err != nil {
		return session.Session[Data]{}, err
	}

	authSess, err := c.manager.Authenticate(r.Context(), current, principal)
	if err != nil {
		return session.Session[Data]{}, err
	}

	return c.Save(w, r, authSess)
}

// Logout user. Deletes the current session and issues a fresh anonymous one.
func (c *Cookie[Data]) Logout(w http.ResponseWriter, r *http.Request) (session.Session[Data], error) {
	current, _, err := c.load(r)
	if err != nil {
		return session.Session[Data]{}, err
	}

	anon, err := c.manager.Logout(r.Context(), current)
	if err != nil {
		return session.Session[Data]{}, err
	}

	return c.Save(w, r, anon)
}

// Delete session. Deletes the session from the store and expires the cookie.
func (c *Cookie[Data]) Delete(w http.ResponseWriter, r *http.Request) error {
	if id, err := c.Extract(r); err == nil {
		if err := c.manager.Delete(r.Context(), id); err != nil {
			return err
		}
	}

	http.SetCookie(w, c.cookie("", -1))
	return nil
}

func (c *Cookie[Data]) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     c.path,
		Domain:   c.domain,
		MaxAge:   maxAge,
		Secure:   c.secure,
		HttpOnly: true,
		SameSite: c.sameSite,
	}
}
