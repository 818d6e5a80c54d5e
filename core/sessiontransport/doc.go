// Package sessiontransport carries session IDs between the server and the
// browser.
//
// Cookie stores the session ID in an HttpOnly cookie authenticated (and
// optionally encrypted) with gorilla/securecookie. The cookie Max-Age follows
// the session idle timeout; a timeout of zero yields a browser-session cookie.
// Load re-issues the cookie whenever it extends the session, so an active
// client keeps its session for as long as the server does.
//
//	tr, err := sessiontransport.NewCookieFromConfig(cookieCfg, manager)
//	if err != nil {
//		return err
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		sess, err := tr.Load(w, r) // new anonymous session when no valid cookie
//		if err != nil {
//			http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
//			return
//		}
//		sess.SetData(updated)
//		if _, err := tr.Save(w, r, sess); err != nil {
//			http.Error(w, "session error", http.StatusInternalServerError)
//		}
//	}
//
// Authenticate rotates the session ID and rewrites the cookie, Logout
// replaces the session with a new anonymous one, Delete removes the session
// and expires the cookie.
//
// Configuration: SESSION_COOKIE_NAME (default SESSION), SESSION_COOKIE_HASH_KEY
// (required), SESSION_COOKIE_BLOCK_KEY, SESSION_COOKIE_PATH,
// SESSION_COOKIE_DOMAIN, SESSION_COOKIE_SECURE, SESSION_COOKIE_SAME_SITE.
package sessiontransport
