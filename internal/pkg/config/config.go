package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	StrategyServer = "server"
	StrategyCookie = "cookie"

	StoreRedis = "redis"
	StoreMongo = "mongo"
)

type Config struct {
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	FrontendURL string `env:"FRONTEND_URL, default=https://new-media-3a32.vercel.app"`

	Auth    AuthConfig
	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Audit   AuditConfig
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET, required"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,  default=1h"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
}

type SessionConfig struct {
	Secret   string        `env:"SESSION_SECRET,   required"`
	TTL      time.Duration `env:"SESSION_TTL,      default=168h"`
	Strategy string        `env:"SESSION_STRATEGY, default=server"`
	Store    string        `env:"SESSION_STORE,    default=redis"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI,      required"`
	Database string `env:"MONGO_DATABASE, default=membership"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
	Buffer  int `env:"AUDIT_BUFFER,  default=256"`
}

// Load reads an optional .env file and then the process environment. A
// missing secret or store URI is an error; callers are expected to exit.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith resolves the configuration from an arbitrary lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool  { return c.Env == EnvProduction }
func (c *Config) IsDevelopment() bool { return c.Env == EnvDevelopment }

func (c *Config) validate() error {
	var errs []error
	switch c.Env {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of development, production, test (got %q)", c.Env))
	}
	switch c.Session.Strategy {
	case StrategyServer, StrategyCookie:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STRATEGY must be server or cookie (got %q)", c.Session.Strategy))
	}
	switch c.Session.Store {
	case StoreRedis, StoreMongo:
	default:
		errs = append(errs, fmt.Errorf("SESSION_STORE must be redis or mongo (got %q)", c.Session.Store))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	return errors.Join(errs...)
}
