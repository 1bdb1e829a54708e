package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 15*time.Second, cfg.Playback.SyncInterval)
	assert.Equal(t, 1.0, cfg.Playback.PositionDebounce)
	assert.Equal(t, 10*time.Second, cfg.Cast.DiscoveryTimeout)
	assert.Equal(t, "8080", cfg.Status.Port)
}

func TestLoadFromFile(t *testing.T) {
	content := `
server:
  url: https://media.example.com
  token: secret-token
logging:
  level: debug
playback:
  sync_interval: 30s
  position_debounce: 2.5
status:
  port: "9090"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://media.example.com", cfg.Server.URL)
	assert.Equal(t, "secret-token", cfg.Server.Token)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 30*time.Second, cfg.Playback.SyncInterval)
	assert.Equal(t, 2.5, cfg.Playback.PositionDebounce)
	assert.Equal(t, "9090", cfg.Status.Port)
	// Unset values keep their defaults
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestEnvOverridesFile(t *testing.T) {
	content := `
server:
  url: https://from-file.example.com
logging:
  level: warn
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("LIBRARIAN_SERVER_URL", "https://from-env.example.com")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SYNC_INTERVAL", "45s")
	t.Setenv("POSITION_DEBOUNCE", "3.0")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://from-env.example.com", cfg.Server.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 45*time.Second, cfg.Playback.SyncInterval)
	assert.Equal(t, 3.0, cfg.Playback.PositionDebounce)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Playback.SyncInterval)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{not yaml"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestInvalidEnvValuesFallBack(t *testing.T) {
	t.Setenv("SYNC_INTERVAL", "not-a-duration")
	t.Setenv("POSITION_DEBOUNCE", "not-a-float")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.Playback.SyncInterval)
	assert.Equal(t, 1.0, cfg.Playback.PositionDebounce)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Playback.SyncInterval = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Playback.PositionDebounce = -1
	assert.Error(t, cfg.Validate())

	assert.NoError(t, Default().Validate())
}
