package observability

import (
	"testing"
	"time"

	"github.com/smallbiznis/movieshop/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("DEPLOYMENT_ENV", "")

	cfg := LoadConfig(config.Config{AppName: "movieshop", Environment: "development", AppVersion: "1.2.3"})

	assert.Equal(t, "movieshop", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.OtelEnabled)
	assert.True(t, cfg.Debug())
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
}

func TestLoadConfigProductionEnablesExport(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("DEPLOYMENT_ENV", "")
	t.Setenv("LOG_LEVEL", "WARN")

	cfg := LoadConfig(config.Config{Environment: "production"})

	assert.Equal(t, "movieshop", cfg.ServiceName)
	assert.True(t, cfg.OtelEnabled)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.Debug())
}
