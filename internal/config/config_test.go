package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	c := Default()
	assert.Equal(t, 30*time.Second, c.DefaultTimeout)
	assert.True(t, c.RefreshStats)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.BackendPath)
}

func TestLoadOverlaysEnvironment(t *testing.T) {
	t.Setenv(envTimeout, "5s")
	t.Setenv(envBackendPath, "/tmp/graph.db")
	t.Setenv(envRefreshStat, "false")
	t.Setenv(envLogLevel, "debug")
	t.Setenv(envMetricsAddr, ":9090")

	c := Load()
	assert.Equal(t, 5*time.Second, c.DefaultTimeout)
	assert.Equal(t, "/tmp/graph.db", c.BackendPath)
	assert.False(t, c.RefreshStats)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, ":9090", c.MetricsAddr)
}

func TestLoadIgnoresMalformedDuration(t *testing.T) {
	t.Setenv(envTimeout, "not-a-duration")
	c := Load()
	assert.Equal(t, 30*time.Second, c.DefaultTimeout)
}
