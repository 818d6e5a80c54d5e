package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/couchsession/core/config"
	"github.com/dmitrymomot/couchsession/core/healthcheck"
	"github.com/dmitrymomot/couchsession/core/kv"
	"github.com/dmitrymomot/couchsession/core/logger"
	"github.com/dmitrymomot/couchsession/core/session"
	"github.com/dmitrymomot/couchsession/core/sessiontransport"
	"github.com/dmitrymomot/couchsession/integration/database/couchbase"
	"github.com/dmitrymomot/couchsession/integration/database/redis"
)

// App is the composition root: it owns the backend connection and the
// session components built on it.
type App[Data any] struct {
	config      Config
	configSet   bool
	sessionOpts []session.Option
	logger      *slog.Logger
	registerer  prometheus.Registerer

	client      kv.Client
	backend     string
	manager     *session.Manager[Data]
	transport   *sessiontransport.Cookie[Data]
	healthcheck func(context.Context) error
	closers     []func() error
}

// Option configures an App. Options run before configuration is loaded, so
// they may replace it.
type Option[Data any] func(*App[Data]) error

// New wires the session stack. Configuration comes from the environment
// unless WithConfig is given; session options are applied on top of it.
//
// With metrics enabled the kv collectors go to WithRegisterer's registry, or
// the Prometheus default one. Apps created in the same process share the
// collectors of a registry instead of failing on duplicate registration.
func New[Data any](ctx context.Context, opts ...Option[Data]) (*App[Data], error) {
	app := &App[Data]{}
	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if !app.configSet {
		if err := config.Load(&app.config); err != nil {
			return nil, err
		}
	}
	for _, opt := range app.sessionOpts {
		opt(&app.config.Session)
	}
	if err := app.config.Session.Validate(); err != nil {
		return nil, err
	}

	if app.logger == nil {
		app.logger = logger.NewFromConfig(app.config.Log)
	}

	if app.client == nil {
		if err := app.connect(ctx); err != nil {
			return nil, err
		}
	}
	if app.healthcheck == nil {
		app.healthcheck = func(context.Context) error { return nil }
	}

	if app.config.MetricsEnabled {
		reg := app.registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		app.client = kv.Instrumented(app.client, app.backend, kv.NewMetrics(reg))
	}

	store := session.NewKVStore[Data](app.client, app.config.Session)
	mgr, err := session.NewManager[Data](store, app.config.Session, session.WithLogger(app.logger))
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.manager = mgr

	if app.config.Cookie.HashKey != "" {
		tr, err := sessiontransport.NewCookieFromConfig(app.config.Cookie, mgr)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.transport = tr
	}

	app.logger.InfoContext(ctx, "session store ready",
		logger.Backend(app.backend),
		logger.Timeout(app.config.Session.Timeout()),
		slog.Bool("principal_sessions", app.config.Session.PrincipalSessionsEnabled),
	)

	return app, nil
}

func (app *App[Data]) connect(ctx context.Context) error {
	app.backend = app.config.Backend

	switch app.config.Backend {
	case BackendCouchbase:
		client, err := couchbase.Connect(ctx, app.config.Couchbase, app.logger)
		if err != nil {
			return err
		}
		app.client = kv.NewCouchbase(client.Collection())
		app.healthcheck = couchbase.Healthcheck(client)
		app.closers = append(app.closers, client.Close)

	case BackendRedis:
		client, err := redis.Connect(ctx, app.config.Redis, app.logger)
		if err != nil {
			return err
		}
		app.client = kv.NewRedis(client)
		app.healthcheck = redis.Healthcheck(client)
		app.closers = append(app.closers, client.Close)

	case BackendMemory:
		app.client = kv.NewMemory()

	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, app.config.Backend)
	}
	return nil
}

// WithConfig uses cfg instead of loading configuration from the environment.
func WithConfig[Data any](cfg Config) Option[Data] {
	return func(app *App[Data]) error {
		app.config = cfg
		app.configSet = true
		return nil
	}
}

// WithSessionOptions applies session options over the loaded configuration.
func WithSessionOptions[Data any](opts ...session.Option) Option[Data] {
	return func(app *App[Data]) error {
		app.sessionOpts = append(app.sessionOpts, opts...)
		return nil
	}
}

// WithSessionAttributes applies declarative overrides; unset attributes keep
// the loaded values.
func WithSessionAttributes[Data any](attrs session.Attributes) Option[Data] {
	return func(app *App[Data]) error {
		if attrs.TimeoutInSeconds != nil {
			app.sessionOpts = append(app.sessionOpts, session.WithTimeoutInSeconds(*attrs.TimeoutInSeconds))
		}
		if attrs.PrincipalSessionsEnabled != nil {
			app.sessionOpts = append(app.sessionOpts, session.WithPrincipalSessionsEnabled(*attrs.PrincipalSessionsEnabled))
		}
		return nil
	}
}

// WithLogger sets the logger passed to the backend connection and the manager.
// Without it the logger is built from Config.Log.
func WithLogger[Data any](l *slog.Logger) Option[Data] {
	return func(app *App[Data]) error {
		if l == nil {
			return fmt.Errorf("%w: logger", ErrNilOption)
		}
		app.logger = l
		return nil
	}
}

// WithKVClient injects the key-value client instead of connecting a backend.
// name labels logs and metrics.
func WithKVClient[Data any](client kv.Client, name string) Option[Data] {
	return func(app *App[Data]) error {
		if client == nil {
			return fmt.Errorf("%w: kv client", ErrNilOption)
		}
		app.client = client
		app.backend = name
		return nil
	}
}

// WithRegisterer sets where kv metrics are registered when metrics are enabled.
func WithRegisterer[Data any](reg prometheus.Registerer) Option[Data] {
	return func(app *App[Data]) error {
		if reg == nil {
			return fmt.Errorf("%w: registerer", ErrNilOption)
		}
		app.registerer = reg
		return nil
	}
}

// Config returns the effective configuration, session overrides included.
func (app *App[Data]) Config() Config {
	return app.config
}

// Backend returns the name of the key-value backend in use.
func (app *App[Data]) Backend() string {
	return app.backend
}

// Manager returns the session manager.
func (app *App[Data]) Manager() *session.Manager[Data] {
	return app.manager
}

// Transport returns the cookie transport, or nil when no cookie hash key is configured.
func (app *App[Data]) Transport() *sessiontransport.Cookie[Data] {
	return app.transport
}

// Logger returns the application logger.
func (app *App[Data]) Logger() *slog.Logger {
	return app.logger
}

// Healthcheck pings the backend.
func (app *App[Data]) Healthcheck(ctx context.Context) error {
	return app.healthcheck(ctx)
}

// HealthHandler serves liveness and readiness backed by Healthcheck.
func (app *App[Data]) HealthHandler(timeout time.Duration) http.Handler {
	return healthcheck.Handler(app.logger, timeout, app.Healthcheck)
}

// RunCleanup calls CleanupExpired every interval until ctx is done.
// Only needed for backends without native expiry.
func (app *App[Data]) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.manager.CleanupExpired(ctx); err != nil {
				app.logger.WarnContext(ctx, "session cleanup failed", logger.Error(err))
			}
		}
	}
}

// Close releases backend connections in reverse order of creation.
func (app *App[Data]) Close() error {
	var errs []error
	for _, closeFn := range slices.Backward(app.closers) {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}
