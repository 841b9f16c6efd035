package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"go-message-board/internal/model"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	AppPort                 string        `env:"APP_PORT, default=8080"`
	ServerReadHeaderTimeout time.Duration `env:"SERVER_READ_HEADER_TIMEOUT, default=10s"`
	ServerWriteTimeout      time.Duration `env:"SERVER_WRITE_TIMEOUT, default=30s"`
	ServerIdleTimeout       time.Duration `env:"SERVER_IDLE_TIMEOUT, default=120s"`
	RequestTimeout          time.Duration `env:"REQUEST_TIMEOUT, default=30s"`

	StoreDriver string `env:"STORE_DRIVER, default=postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS, default=10"`
	DBMinConns  int32  `env:"DB_MIN_CONNS, default=2"`
	AutoMigrate bool   `env:"AUTO_MIGRATE, default=true"`

	BcryptCost       int      `env:"BCRYPT_COST, default=10"`
	CORSOrigins      []string `env:"CORS_ORIGINS, default=*"`
	RateLimitRPM     int      `env:"RATE_LIMIT_RPM, default=100"`
	AuthRateLimitRPM int      `env:"AUTH_RATE_LIMIT_RPM, default=10"`
	CookieSecure     bool     `env:"COOKIE_SECURE, default=false"`

	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogFormat string `env:"LOG_FORMAT, default=pretty"`

	JWT JWTConfig
}

// JWTConfig has no defaults: a deployment that forgets a secret or a
// lifetime must not start.
type JWTConfig struct {
	AccessSecret  string   `env:"JWT_ACCESS_TOKEN_SECRET"`
	AccessTTL     Lifetime `env:"JWT_ACCESS_TOKEN_EXPIRATION"`
	RefreshSecret string   `env:"JWT_REFRESH_TOKEN_SECRET"`
	RefreshTTL    Lifetime `env:"JWT_REFRESH_TOKEN_EXPIRATION"`
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(context.Background(), envconfig.OsLookuper())
}

// LoadStore is Load for operator commands that only touch the credential
// store: the JWT settings are neither required nor checked.
func LoadStore() (*Config, error) {
	_ = godotenv.Load()
	return LoadStoreFrom(context.Background(), envconfig.OsLookuper())
}

func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg, err := process(ctx, lookuper)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func LoadStoreFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	cfg, err := process(ctx, lookuper)
	if err != nil {
		return nil, err
	}

	if err := cfg.validateStore(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func process(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	cfg.CORSOrigins = splitCSV(cfg.CORSOrigins)
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	return &cfg, nil
}

// validateStore checks only what opening the credential store needs.
func (c *Config) validateStore() error {
	if c.StoreDriver == StoreDriverPostgres && strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("%w: DATABASE_URL", model.ErrConfigMissing)
	}

	if c.StoreDriver != StoreDriverPostgres && c.StoreDriver != StoreDriverMemory {
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.StoreDriver)
	}

	if c.LogFormat != "pretty" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be pretty or json, got %q", c.LogFormat)
	}

	return nil
}

func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.JWT.AccessSecret) == "" {
		missing = append(missing, "JWT_ACCESS_TOKEN_SECRET")
	}
	if c.JWT.AccessTTL <= 0 {
		missing = append(missing, "JWT_ACCESS_TOKEN_EXPIRATION")
	}
	if strings.TrimSpace(c.JWT.RefreshSecret) == "" {
		missing = append(missing, "JWT_REFRESH_TOKEN_SECRET")
	}
	if c.JWT.RefreshTTL <= 0 {
		missing = append(missing, "JWT_REFRESH_TOKEN_EXPIRATION")
	}
	if c.StoreDriver == StoreDriverPostgres && strings.TrimSpace(c.DatabaseURL) == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", model.ErrConfigMissing, strings.Join(missing, ", "))
	}

	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("JWT_ACCESS_TOKEN_SECRET and JWT_REFRESH_TOKEN_SECRET must differ")
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if c.AppPort == "" {
		return fmt.Errorf("APP_PORT cannot be empty")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	return nil
}

// Lifetime is a token lifetime. Besides Go durations ("15m", "1h30m") it
// accepts a day suffix ("7d") and bare seconds ("900").
type Lifetime time.Duration

func (l *Lifetime) EnvDecode(val string) error {
	d, err := ParseLifetime(val)
	if err != nil {
		return err
	}
	*l = Lifetime(d)
	return nil
}

func (l Lifetime) Duration() time.Duration {
	return time.Duration(l)
}

func ParseLifetime(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid lifetime %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("invalid lifetime %q", raw)
		}
		return time.Duration(n) * time.Second, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid lifetime %q", raw)
	}
	return d, nil
}

func splitCSV(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
