package session

import (
	"fmt"
	"time"
)

// DefaultTimeoutInSeconds is the idle timeout applied when none is declared (30 minutes).
const DefaultTimeoutInSeconds = 1800

// Config holds session configuration.
// Fields are read directly; setters exist for wiring code that builds the
// value step by step before handing it to NewManager.
type Config struct {
	// TimeoutInSeconds is the idle timeout. Zero means sessions never expire.
	TimeoutInSeconds int `env:"SESSION_TIMEOUT_IN_SECONDS" envDefault:"1800"`

	// PrincipalSessionsEnabled maintains a per-principal index of session IDs
	// so all sessions of one user can be listed or revoked together.
	PrincipalSessionsEnabled bool `env:"SESSION_PRINCIPAL_SESSIONS_ENABLED" envDefault:"false"`

	TouchInterval time.Duration `env:"SESSION_TOUCH_INTERVAL" envDefault:"1m"` // Min time between last-access writes (0 = every access)
	KeyPrefix     string        `env:"SESSION_KEY_PREFIX" envDefault:"session"`
}

// DefaultConfig returns the configuration used when nothing is declared.
func DefaultConfig() Config {
	return Config{
		TimeoutInSeconds:         DefaultTimeoutInSeconds,
		PrincipalSessionsEnabled: false,
		TouchInterval:            time.Minute,
		KeyPrefix:                "session",
	}
}

// NewConfig returns DefaultConfig with opts applied in order.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// SetTimeoutInSeconds overwrites the idle timeout. Any value is accepted;
// Validate rejects negative ones.
func (c *Config) SetTimeoutInSeconds(seconds int) {
	c.TimeoutInSeconds = seconds
}

// SetPrincipalSessionsEnabled toggles the per-principal session index.
func (c *Config) SetPrincipalSessionsEnabled(enabled bool) {
	c.PrincipalSessionsEnabled = enabled
}

// Timeout returns TimeoutInSeconds as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutInSeconds) * time.Second
}

// Validate reports the first invalid value wrapped in ErrInvalidConfigurationValue.
func (c Config) Validate() error {
	if c.TimeoutInSeconds < 0 {
		return fmt.Errorf("%w: timeout in seconds must not be negative, got %d", ErrInvalidConfigurationValue, c.TimeoutInSeconds)
	}
	if c.TouchInterval < 0 {
		return fmt.Errorf("%w: touch interval must not be negative, got %s", ErrInvalidConfigurationValue, c.TouchInterval)
	}
	if c.KeyPrefix == "" {
		return fmt.Errorf("%w: key prefix is required", ErrInvalidConfigurationValue)
	}
	return nil
}

// Attributes is a declarative set of overrides. Nil fields keep the default.
type Attributes struct {
	TimeoutInSeconds         *int
	PrincipalSessionsEnabled *bool
}

// FromAttributes applies the declared attributes over DefaultConfig.
func FromAttributes(attrs Attributes) Config {
	cfg := DefaultConfig()
	if attrs.TimeoutInSeconds != nil {
		cfg.SetTimeoutInSeconds(*attrs.TimeoutInSeconds)
	}
	if attrs.PrincipalSessionsEnabled != nil {
		cfg.SetPrincipalSessionsEnabled(*attrs.PrincipalSessionsEnabled)
	}
	return cfg
}

// Option is a functional option for configuring sessions.
type Option func(*Config)

// WithTimeoutInSeconds sets the idle timeout.
func WithTimeoutInSeconds(seconds int) Option {
	return func(c *Config) {
		c.SetTimeoutInSeconds(seconds)
	}
}

// WithPrincipalSessionsEnabled toggles the per-principal session index.
func WithPrincipalSessionsEnabled(enabled bool) Option {
	return func(c *Config) {
		c.SetPrincipalSessionsEnabled(enabled)
	}
}

// WithTouchInterval sets the minimum time between last-access updates.
// This prevents excessive storage writes. Set to 0 to record every access.
func WithTouchInterval(interval time.Duration) Option {
	return func(c *Config) {
		c.TouchInterval = interval
	}
}

// WithKeyPrefix sets the namespace used for document keys.
func WithKeyPrefix(prefix string) Option {
	return func(c *Config) {
		c.KeyPrefix = prefix
	}
}
