package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "calendar_sync", cfg.Database.Name)
	assert.Equal(t, "graph", cfg.Provider.Kind)
	assert.Equal(t, 999, cfg.Provider.Graph.UsersPageSize)
	assert.Equal(t, 24*time.Hour, cfg.Sync.StalenessWindow)
	assert.Equal(t, 100, cfg.Sync.BatchThreshold)
	assert.Equal(t, 100*time.Millisecond, cfg.Sync.Throttle)
	assert.Equal(t, 6*time.Hour, cfg.Sync.FullSyncInterval)
	assert.True(t, cfg.Sync.SchedulerEnabled)
	assert.False(t, cfg.Notify.Enabled)
	assert.Equal(t, "sync.run", cfg.Notify.RoutingKeyPrefix)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("SYNC_BATCH_THRESHOLD", "250")
	t.Setenv("SYNC_STALENESS_WINDOW", "12h")
	t.Setenv("PROVIDER_KIND", "google")
	t.Setenv("PROVIDER_GOOGLE_ADMIN_EMAIL", "admin@school.org")
	t.Setenv("DATABASE_DRIVER", "postgres")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Sync.BatchThreshold)
	assert.Equal(t, 12*time.Hour, cfg.Sync.StalenessWindow)
	assert.Equal(t, "google", cfg.Provider.Kind)
	assert.Equal(t, "admin@school.org", cfg.Provider.Google.AdminEmail)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\nSERVER_PORT=9090\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("SERVER_PORT")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	cfg.Database.Driver = "oracle"
	assert.ErrorContains(t, cfg.Validate(), "Driver")

	cfg.Database.Driver = "sqlite"
	cfg.Sync.MaxParallelism = 0
	assert.ErrorContains(t, cfg.Validate(), "MaxParallelism")

	cfg.Sync.MaxParallelism = 1
	cfg.Notify.Enabled = true
	cfg.Notify.URL = ""
	assert.ErrorContains(t, cfg.Validate(), "URL")
}
