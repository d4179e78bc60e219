// Package config loads the knobs of spec §6 from VSS_-prefixed
// environment variables, with cobra-flag overrides applied by the
// serve command in cmd/vss-server. It follows the teacher's
// rootCmd.PersistentFlags() + cobra.OnInitialize pattern: no viper,
// just os.Getenv and a struct of defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cuemby/vss/pkg/recordstore/postgres"
)

// Config holds every knob spec §6 recognizes, plus the serving and
// engine knobs the reference describes only informally (listen
// address, store driver selection, page size cap).
type Config struct {
	// Postgres connection.
	Endpoint string
	Username string
	Password string

	// Pool tuning. All but PreparedStatementCacheSize are mirrored onto
	// postgres.PoolConfig; PreparedStatementCacheSize is loaded but not
	// passed to the driver.
	MaxPoolSize                int
	MinimumIdle                int
	ConnectionTimeoutMs        int
	IdleTimeoutMs              int
	MaxLifetimeMs              int
	PreparedStatementCacheSize int

	// Serving.
	ListenAddr  string
	HealthAddr  string
	StoreDriver string // "postgres" or "memory"
	PageSizeCap int
}

// Default returns the baseline configuration before environment or
// flag overrides are applied.
func Default() Config {
	return Config{
		Endpoint:                   "localhost:5432",
		Username:                   "vss",
		Password:                   "",
		MaxPoolSize:                postgres.DefaultPoolConfig.MaxPoolSize,
		MinimumIdle:                postgres.DefaultPoolConfig.MinimumIdle,
		ConnectionTimeoutMs:        postgres.DefaultPoolConfig.ConnectionTimeoutMs,
		IdleTimeoutMs:              postgres.DefaultPoolConfig.IdleTimeoutMs,
		MaxLifetimeMs:              postgres.DefaultPoolConfig.MaxLifetimeMs,
		PreparedStatementCacheSize: 250,
		ListenAddr:                 ":8443",
		HealthAddr:                 ":8080",
		StoreDriver:                "memory",
		PageSizeCap:                100,
	}
}

// FromEnv applies every VSS_-prefixed environment variable recognized
// by spec §6 on top of cfg, returning the merged result. Malformed
// integer values are reported as an error rather than silently ignored.
func FromEnv(cfg Config) (Config, error) {
	var err error
	cfg.Endpoint = envString("VSS_ENDPOINT", cfg.Endpoint)
	cfg.Username = envString("VSS_USERNAME", cfg.Username)
	cfg.Password = envString("VSS_PASSWORD", cfg.Password)
	cfg.ListenAddr = envString("VSS_LISTEN_ADDR", cfg.ListenAddr)
	cfg.HealthAddr = envString("VSS_HEALTH_ADDR", cfg.HealthAddr)
	cfg.StoreDriver = envString("VSS_STORE_DRIVER", cfg.StoreDriver)

	if cfg.MaxPoolSize, err = envInt("VSS_MAXPOOLSIZE", cfg.MaxPoolSize); err != nil {
		return cfg, err
	}
	if cfg.MinimumIdle, err = envInt("VSS_MINIMUMIDLE", cfg.MinimumIdle); err != nil {
		return cfg, err
	}
	if cfg.ConnectionTimeoutMs, err = envInt("VSS_CONNECTIONTIMEOUTMS", cfg.ConnectionTimeoutMs); err != nil {
		return cfg, err
	}
	if cfg.IdleTimeoutMs, err = envInt("VSS_IDLETIMEOUTMS", cfg.IdleTimeoutMs); err != nil {
		return cfg, err
	}
	if cfg.MaxLifetimeMs, err = envInt("VSS_MAXLIFETIMEMS", cfg.MaxLifetimeMs); err != nil {
		return cfg, err
	}
	if cfg.PreparedStatementCacheSize, err = envInt("VSS_PREPAREDSTATEMENTCACHESIZE", cfg.PreparedStatementCacheSize); err != nil {
		return cfg, err
	}
	if cfg.PageSizeCap, err = envInt("VSS_PAGESIZECAP", cfg.PageSizeCap); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// PoolConfig projects the connection-pool knobs onto postgres.PoolConfig.
func (c Config) PoolConfig() postgres.PoolConfig {
	return postgres.PoolConfig{
		MaxPoolSize:         c.MaxPoolSize,
		MinimumIdle:         c.MinimumIdle,
		ConnectionTimeoutMs: c.ConnectionTimeoutMs,
		IdleTimeoutMs:       c.IdleTimeoutMs,
		MaxLifetimeMs:       c.MaxLifetimeMs,
	}
}

// DSN builds a standard Postgres connection string from the username,
// password, and endpoint knobs.
func (c Config) DSN(database string) string {
	if c.Password == "" {
		return fmt.Sprintf("postgres://%s@%s/%s?sslmode=disable", c.Username, c.Endpoint, database)
	}
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", c.Username, c.Password, c.Endpoint, database)
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
