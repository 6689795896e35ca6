// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/pkordes/babysteps/backend/internal/kv"
	"github.com/pkordes/babysteps/backend/internal/store"
)

// Config holds all configuration values for the API server and the admin CLI.
// Values are populated by Load from environment variables; a variable that
// is unset or empty takes its default.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to the Vite dev server. Set CORS_ORIGINS to a comma-separated
	// list to override.
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`

	// StorageDriver selects the blob backend: file, postgres, redis or memory.
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"file"`

	// StorageDir is where the file driver keeps its blobs.
	StorageDir string `env:"STORAGE_DIR" envDefault:"./data"`

	// DatabaseURL is the Postgres connection string. Required for the postgres driver.
	DatabaseURL string `env:"DATABASE_URL"`

	// Redis connection settings. RedisAddr is required for the redis driver.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// SimulatedLatency turns on the artificial add/update/like delays.
	SimulatedLatency bool `env:"SIMULATED_LATENCY" envDefault:"false"`

	// MaxBodyBytes caps request body size.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// Write rate limit for tip creation and likes, per client address.
	RateLimitInterval time.Duration `env:"RATE_LIMIT_INTERVAL" envDefault:"1s"`
	RateLimitBurst    int           `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// SyncInterval is how often the server re-reads the backend to pick up
	// changes made by babystepsctl. Zero disables polling; mutations still
	// re-read before they apply.
	SyncInterval time.Duration `env:"SYNC_INTERVAL" envDefault:"5s"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any variables the selected storage driver requires
// but that are not set.
func Load() (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: nonEmptyEnviron()})
	if err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg.CORSOrigins = trimAll(cfg.CORSOrigins)

	var missing []string
	switch cfg.StorageDriver {
	case kv.DriverFile, kv.DriverMemory:
	case kv.DriverPostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case kv.DriverRedis:
		if cfg.RedisAddr == "" {
			missing = append(missing, "REDIS_ADDR")
		}
	default:
		return Config{}, fmt.Errorf("config.Load: unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	if cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("config.Load: MAX_BODY_BYTES must be positive")
	}
	if cfg.RateLimitInterval <= 0 || cfg.RateLimitBurst <= 0 {
		return Config{}, fmt.Errorf("config.Load: RATE_LIMIT_INTERVAL and RATE_LIMIT_BURST must be positive")
	}
	if cfg.SyncInterval < 0 {
		return Config{}, fmt.Errorf("config.Load: SYNC_INTERVAL must not be negative")
	}

	return cfg, nil
}

// KV returns the backend options for kv.Open.
func (c Config) KV() kv.Options {
	return kv.Options{
		Driver:        c.StorageDriver,
		Dir:           c.StorageDir,
		DatabaseURL:   c.DatabaseURL,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
	}
}

// Latency returns the store delays: the interactive defaults when
// SimulatedLatency is set, none otherwise.
func (c Config) Latency() store.Latency {
	if c.SimulatedLatency {
		return store.DefaultLatency
	}
	return store.Latency{}
}

// nonEmptyEnviron returns the process environment without empty values,
// so an empty variable falls back to its default like an unset one.
func nonEmptyEnviron() map[string]string {
	out := make(map[string]string)
	for _, pair := range os.Environ() {
		k, v, ok := strings.Cut(pair, "=")
		if ok && v != "" {
			out[k] = v
		}
	}
	return out
}

// trimAll trims each entry and drops empty ones.
func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
