package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp keeps a developer's .env out of the test.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

// unsetenv clears keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	unsetenv(t, "STORE_DRIVER", "JWT_TTL", "REQUEST_TIMEOUT_SECONDS", "MONITOR_INTERVAL",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_SSLMODE", "SERVER_HOST", "SERVER_PORT")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 5*time.Second, cfg.Context.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, "postgres://bms:pw@localhost:5432/bms?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestLoadOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "7")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("RATE_LIMIT_BURST", "3")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 15*time.Minute, cfg.JWT.TTL)
	assert.Equal(t, 7*time.Second, cfg.Context.RequestTimeout)
	assert.Equal(t, 0.5, cfg.RateLimit.RPS)
	assert.Equal(t, 3, cfg.RateLimit.Burst)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.Database.DSN())
}

func TestLoadReadsDotEnv(t *testing.T) {
	chdirTemp(t)
	unsetenv(t, "JWT_SECRET", "STORE_DRIVER")
	require.NoError(t, os.WriteFile(filepath.Join(".", ".env"), []byte("JWT_SECRET=from-file\nSTORE_DRIVER=memory\n"), 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadReportsMalformedValues(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("RATE_LIMIT_BURST", "ten")
	t.Setenv("JWT_TTL", "soon")
	t.Setenv("LOG_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `RATE_LIMIT_BURST="ten" is not a valid integer`)
	assert.Contains(t, err.Error(), `JWT_TTL="soon" is not a valid duration`)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestDSNEscapesCredentials(t *testing.T) {
	dsn := DatabaseConfig{User: "bms", Password: "p@ss/word", Host: "db", Port: "5432", Name: "bms", SSLMode: "require"}.DSN()
	assert.Equal(t, "postgres://bms:p%40ss%2Fword@db:5432/bms?sslmode=require", dsn)
}
