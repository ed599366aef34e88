// Package config loads cmd/cli and cmd/server's runtime settings from the
// environment, with a `.env` file assist for local development — grounded
// on termfx-morfx's godotenv.Load() convention (call once at startup,
// ignore a missing file) and cuemby-warren's flat env-var-per-setting
// shape.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting cmd/cli and cmd/server read at startup.
type Config struct {
	// DefaultTimeout bounds a single query's execution (spec §5).
	DefaultTimeout time.Duration
	// BackendPath is the bbolt file path a durable Backend opens; empty
	// means in-memory only (internal/graph.NewMemoryStore, no Backend).
	BackendPath string
	// RefreshStats is loaded from CYPHERDB_REFRESH_STATS but nothing reads
	// it: internal/engine collects a fresh internal/stats.Snapshot before
	// optimizing every query, whatever its value.
	RefreshStats bool
	// LogLevel is passed to cylog.SetLevel.
	LogLevel string
	// MetricsAddr is loaded from CYPHERDB_METRICS_ADDR but nothing reads
	// it: cmd/server always serves /metrics on its main listener, and there
	// is no separate metrics listener.
	MetricsAddr string
}

const (
	envTimeout     = "CYPHERDB_TIMEOUT"
	envBackendPath = "CYPHERDB_BACKEND_PATH"
	envRefreshStat = "CYPHERDB_REFRESH_STATS"
	envLogLevel    = "CYPHERDB_LOG_LEVEL"
	envMetricsAddr = "CYPHERDB_METRICS_ADDR"
)

// Default returns the configuration used when no environment variables or
// .env file are present.
func Default() Config {
	return Config{
		DefaultTimeout: 30 * time.Second,
		RefreshStats:   true,
		LogLevel:       "info",
	}
}

// Load reads a .env file (if present, ignoring a missing-file error) then
// overlays Default() with whatever environment variables are set.
func Load() Config {
	_ = godotenv.Load()
	c := Default()
	if v := os.Getenv(envTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.DefaultTimeout = d
		}
	}
	if v := os.Getenv(envBackendPath); v != "" {
		c.BackendPath = v
	}
	if v := os.Getenv(envRefreshStat); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.RefreshStats = b
		}
	}
	if v := os.Getenv(envLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(envMetricsAddr); v != "" {
		c.MetricsAddr = v
	}
	return c
}
