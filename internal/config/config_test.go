package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "DB_DRIVER", "DB_TX_MAX_RETRIES", "OTEL_ENABLED", "PLAN_CACHE_TTL_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "", cfg.App.Port, "an explicitly empty variable wins over the fallback")
	assert.Equal(t, 3, cfg.Database.TxMaxRetries)
	assert.Equal(t, 300, cfg.Cache.PlanTTLSeconds)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("GO_ENV", "production")
	t.Setenv("DB_DRIVER", "Memory")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("DB_TX_MAX_RETRIES", "7")
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("FEATURE_EVENTS_TOPIC", "changes")

	cfg := Load()
	assert.Equal(t, "8080", cfg.App.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 7, cfg.Database.TxMaxRetries)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, "changes", cfg.Events.FeatureTopic)
}
