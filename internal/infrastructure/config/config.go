package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	SeedData bool   `env:"SEED_DATA, default=true"`

	JWT      JWTConfig
	Store    StoreConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Login    LoginConfig
	Kafka    KafkaConfig
	Password PasswordConfig
}

type JWTConfig struct {
	Key           string `env:"JWT_KEY, required"`
	Issuer        string `env:"JWT_ISSUER,         default=BazarBlot"`
	Audience      string `env:"JWT_AUDIENCE,       default=BazarBlotUsers"`
	ExpiryMinutes int    `env:"JWT_EXPIRY_MINUTES, default=60"`
}

func (c JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpiryMinutes) * time.Minute
}

type StoreConfig struct {
	Driver string `env:"STORE_DRIVER, default=sqlite"`
	DSN    string `env:"DATABASE_URL, default=file:marketplace.db?_pragma=foreign_keys(1)"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=marketplace"`
}

// RedisConfig: an empty Addr disables login lockout and create idempotency.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type LoginConfig struct {
	MaxFailures    int `env:"LOGIN_MAX_FAILURES,    default=5"`
	LockoutMinutes int `env:"LOGIN_LOCKOUT_MINUTES, default=5"`
}

func (c LoginConfig) Lockout() time.Duration {
	return time.Duration(c.LockoutMinutes) * time.Minute
}

// KafkaConfig: no brokers disables product events.
type KafkaConfig struct {
	Brokers      []string `env:"KAFKA_BROKERS"`
	ProductTopic string   `env:"KAFKA_PRODUCT_TOPIC, default=product_events"`
	Workers      int      `env:"EVENT_WORKERS,       default=4"`
}

type PasswordConfig struct {
	RequireComplex bool `env:"PASSWORD_REQUIRE_COMPLEX, default=true"`
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith is Load with an explicit source, used by tests.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWT.Key) == "" {
		return fmt.Errorf("JWT_KEY must not be empty")
	}
	if c.JWT.ExpiryMinutes <= 0 {
		return fmt.Errorf("JWT_EXPIRY_MINUTES must be positive, got %d", c.JWT.ExpiryMinutes)
	}
	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres, DriverMongo:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Kafka.Workers <= 0 {
		c.Kafka.Workers = 1
	}
	return nil
}
