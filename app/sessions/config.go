package sessions

import (
	"github.com/dmitrymomot/couchsession/core/logger"
	"github.com/dmitrymomot/couchsession/core/session"
	"github.com/dmitrymomot/couchsession/core/sessiontransport"
	"github.com/dmitrymomot/couchsession/integration/database/couchbase"
	"github.com/dmitrymomot/couchsession/integration/database/redis"
)

// Backend names accepted by Config.Backend.
const (
	BackendCouchbase = "couchbase"
	BackendRedis     = "redis"
	BackendMemory    = "memory"
)

// Config aggregates the configuration of every component New builds.
// Nested structs carry their own env tags.
type Config struct {
	Session   session.Config
	Cookie    sessiontransport.CookieConfig
	Couchbase couchbase.Config
	Redis     redis.Config
	Log       logger.Config

	Backend        string `env:"SESSION_BACKEND" envDefault:"couchbase"`
	MetricsEnabled bool   `env:"SESSION_METRICS_ENABLED" envDefault:"false"`
}
