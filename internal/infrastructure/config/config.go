package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

const EnvProduction = "production"

type Config struct {
	Port     string `env:"PORT,      default=8000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth     AuthConfig
	HTTP     HTTPConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Throttle ThrottleConfig
}

type AuthConfig struct {
	AccessSecret     string        `env:"JWT_SECRET,         required"`
	RefreshSecret    string        `env:"JWT_REFRESH_SECRET, required"`
	AccessTTL        time.Duration `env:"ACCESS_TOKEN_TTL,   default=1h"`
	RefreshTTL       time.Duration `env:"REFRESH_TOKEN_TTL,  default=168h"`
	BcryptCost       int           `env:"BCRYPT_COST,        default=10"`
	OpenRegistration bool          `env:"OPEN_REGISTRATION,  default=false"`
}

type HTTPConfig struct {
	CORSOrigins  []string `env:"CORS_ORIGIN,   default=https://hc-opage.vercel.app"`
	CookieDomain string   `env:"COOKIE_DOMAIN"`
	BodyLimit    string   `env:"BODY_LIMIT,    default=1M"`
}

type MongoConfig struct {
	URI      string `env:"MONGODB_URL, default=mongodb://localhost:27017"`
	Database string `env:"MONGODB_DB,  default=hco"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type ThrottleConfig struct {
	MaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS,   default=10"`
	Window      time.Duration `env:"LOGIN_LOCKOUT_WINDOW, default=15m"`
}

// IsProduction reports whether the service runs with production cookie and
// error-detail policies.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// Validate rejects configurations that must not reach a running server.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.AccessSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Auth.RefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET is required"))
	}
	if c.Auth.AccessSecret != "" && c.Auth.AccessSecret == c.Auth.RefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.Throttle.MaxAttempts <= 0 || c.Throttle.Window <= 0 {
		errs = append(errs, errors.New("login throttle limits must be positive"))
	}
	return errors.Join(errs...)
}

// Load reads an optional .env file, then the process environment, and
// validates the result.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from lookuper using go-envconfig.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
