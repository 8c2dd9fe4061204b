package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Upstream UpstreamConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Session  SessionConfig
	Form     FormConfig
}

// UpstreamConfig locates the remote customer/admin API.
type UpstreamConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:9000"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=admin_dashboard"`
}

type SessionConfig struct {
	TTL time.Duration `env:"SESSION_TTL, default=24h"`
}

// FormConfig tunes the form lifecycle: how long idle forms live, and the
// delays before post-submit and not-found navigations fire.
type FormConfig struct {
	TTL           time.Duration `env:"FORM_TTL,        default=15m"`
	NavigateDelay time.Duration `env:"NAV_DELAY,       default=1500ms"`
	NotFoundDelay time.Duration `env:"NOT_FOUND_DELAY, default=2s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
