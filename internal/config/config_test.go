package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "ADDR", "DB_DRIVER", "DB_PATH", "QUERY_TIMEOUT", "SESSION_TTL", "REQUIRE_AUTH", "JWT_SECRET", "REDIS_DB"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, ":5001", cfg.Addr)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, "./db/mathmate.db", cfg.DSN())
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.RequireAuth)

	require.NoError(t, cfg.Validate())
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadReadsEnvFileWithoutOverridingEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ADDR=:9999\nQUERY_TIMEOUT=750ms\n"), 0o600))

	t.Setenv("QUERY_TIMEOUT", "2s")
	t.Setenv("ADDR", "")
	require.NoError(t, os.Unsetenv("ADDR"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.QueryTimeout)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("QUERY_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{DBDriver: "postgres", QueryTimeout: time.Second, SessionTTL: time.Hour}
	assert.Error(t, cfg.Validate(), "postgres without DATABASE_URL")

	cfg = Config{DBDriver: "mysql", DBPath: "x", QueryTimeout: time.Second, SessionTTL: time.Hour}
	assert.Error(t, cfg.Validate())

	cfg = Config{Env: EnvProduction, DBDriver: "sqlite3", DBPath: "x", QueryTimeout: time.Second, SessionTTL: time.Hour}
	assert.Error(t, cfg.Validate(), "production requires JWT_SECRET")

	cfg.JWTSecret = "s3cret"
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.Production())
}
