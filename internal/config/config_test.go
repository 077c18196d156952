// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/smartlink")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoadDefaults(t *testing.T) {
	requiredEnv(t)

	c, err := load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 24*time.Hour, c.JWT.AccessTokenExpire)
	assert.Equal(t, 5*time.Minute, c.Entitlement.CacheTTL)
	assert.False(t, c.Entitlement.LaunchMode)
	assert.Equal(t, "@every 1h", c.Jobs.QuotaReconcileSchedule)
	assert.Equal(t, 4096, c.Geo.CacheSize)
	assert.False(t, c.IsProduction())
	assert.Equal(t, "0.0.0.0:8080", c.Server.Address())
}

func TestEnvOverrides(t *testing.T) {
	requiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LAUNCH_MODE", "true")
	t.Setenv("PLAN_CACHE_TTL", "1m")
	t.Setenv("OWNER_EMAIL", "  Founder@Example.COM ")
	t.Setenv("GEO_ENDPOINT", "http://ip-api.com/json")

	c, err := load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, c.Server.Port)
	assert.True(t, c.Entitlement.LaunchMode)
	assert.Equal(t, time.Minute, c.Entitlement.CacheTTL)
	assert.Equal(t, "founder@example.com", c.Owner.Email)
	assert.Equal(t, "http://ip-api.com/json", c.Geo.Endpoint)
}

func TestFileThenEnv(t *testing.T) {
	requiredEnv(t)
	t.Setenv("LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: warn
  format: text
rate_limit:
  requests: 500
`), 0o600))

	c, err := load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", c.Log.Level, "env wins over file")
	assert.Equal(t, "text", c.Log.Format)
	assert.Equal(t, 500, c.RateLimit.Requests)
}

func TestValidation(t *testing.T) {
	t.Run("database url required", func(t *testing.T) {
		requiredEnv(t)
		t.Setenv("DATABASE_URL", "")

		_, err := load("")
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("production needs an owner", func(t *testing.T) {
		requiredEnv(t)
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("OWNER_EMAIL", "")

		_, err := load("")
		assert.ErrorContains(t, err, "OWNER_EMAIL")
	})

	t.Run("wildcard origin with credentials", func(t *testing.T) {
		requiredEnv(t)

		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
cors:
  allowed_origins: ["*"]
  allow_credentials: true
`), 0o600))

		_, err := load(path)
		assert.ErrorContains(t, err, "wildcard")
	})

	t.Run("missing file", func(t *testing.T) {
		requiredEnv(t)

		_, err := load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
