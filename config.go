package main

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Slot backends selectable with CART_STORE.
const (
	backendMemory = "memory"
	backendRedis  = "redis"
	backendSQLite = "sqlite"
)

// Config is read from the environment.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	CartStore       string        `env:"CART_STORE" envDefault:"memory"`
	RedisAddr       string        `env:"REDIS_ADDR"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"cart.db"`
	SlotKey         string        `env:"CART_SLOT_KEY" envDefault:"cartItems"`
	NotificationTTL time.Duration `env:"NOTIFICATION_TTL" envDefault:"3s"`
	WelcomeDelay    time.Duration `env:"WELCOME_DELAY" envDefault:"2s"`
	SessionIdleTTL  time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
}

func loadConfig() (Config, error) {
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.CartStore {
	case backendMemory, backendSQLite:
	case backendRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when CART_STORE=redis")
		}
	default:
		return errors.Errorf("unknown CART_STORE %q", c.CartStore)
	}
	if c.SessionIdleTTL <= 0 {
		return errors.New("SESSION_IDLE_TTL must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "LOG_LEVEL")
	}
	return nil
}
