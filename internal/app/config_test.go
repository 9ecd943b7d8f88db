package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "ANALYZE_CACHE_TTL_MINUTES", "EXPLAIN_TIMEOUT_MS", "PROFILE_REFRESH_CONCURRENCY", "JWT_SECRET_KEY"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.AnalyzeCacheTTL)
	assert.Equal(t, 4*time.Second, cfg.ExplainTimeout)
	assert.Equal(t, 4, cfg.ProfileRefreshConcurrency)
	assert.Empty(t, cfg.JWTSecretKey)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ANALYZE_CACHE_TTL_MINUTES", "30")
	t.Setenv("EXPLAIN_TIMEOUT_MS", "1500")
	t.Setenv("PROFILE_REFRESH_CONCURRENCY", "0")

	cfg := LoadConfig()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 30*time.Minute, cfg.AnalyzeCacheTTL)
	assert.Equal(t, 1500*time.Millisecond, cfg.ExplainTimeout)
	assert.Equal(t, 1, cfg.ProfileRefreshConcurrency)
}
