package healthcheck

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/couchsession/core/logger"
)

// Handler serves liveness and readiness probes over net/http.
//
// With no checks it is a liveness probe and always answers "ALIVE".
// With checks it runs each in order within timeout and answers "READY",
// or 503 on the first failure.
//
// Example:
//
//	mux.Handle("/health/live", healthcheck.Handler(log, 0))
//	mux.Handle("/health/ready", healthcheck.Handler(log, 2*time.Second, app.Healthcheck))
func Handler(log *slog.Logger, timeout time.Duration, checks ...func(context.Context) error) http.HandlerFunc {
	if log == nil {
		log = logger.Discard()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if len(checks) == 0 {
			write(w, http.StatusOK, "ALIVE")
			return
		}

		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		for _, check := range checks {
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Error(err))
				write(w, http.StatusServiceUnavailable, "UNAVAILABLE")
				return
			}
		}

		write(w, http.StatusOK, "READY")
	}
}

func write(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
