package config

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
)

// DevSessionSecret signs session cookies when SESSION_SECRET is unset. It is
// only acceptable outside production; Validate rejects it there.
const DevSessionSecret = "bolt-default-secret-key-change-me"

type Config struct {
	Port          string `env:"PORT,           default=8080"`
	Env           string `env:"ENV,            default=development"`
	SessionSecret string `env:"SESSION_SECRET"`
	BcryptCost    int    `env:"BCRYPT_COST,    default=10"`
	LogLevel      string `env:"LOG_LEVEL,      default=info"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=bolt_auth"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Username string `env:"REDIS_USERNAME"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	TLS      bool   `env:"REDIS_TLS,      default=false"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs in production mode, which
// tightens cookie and secret handling.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate enforces the session-secret policy: production refuses to start
// on a missing or development secret; other environments fall back to the
// development value with a warning.
func (c *Config) Validate(log zerolog.Logger) error {
	if c.SessionSecret == "" || c.SessionSecret == DevSessionSecret {
		if c.IsProduction() {
			return fmt.Errorf("SESSION_SECRET must be set to a non-default value in production")
		}
		log.Warn().Msg("SESSION_SECRET not set, using insecure development default")
		c.SessionSecret = DevSessionSecret
	}
	return nil
}
