package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
app:
  name: "shareit-test"
  environment: "test"
server:
  port: 9191
gateway:
  port: 8181
  server_url: "http://localhost:9191"
database:
  path: "test.db"
logging:
  level: "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "shareit-test", cfg.App.Name)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 8181, cfg.Gateway.Port)
	assert.Equal(t, "test.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "test.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "shareit", cfg.App.Name)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8080, cfg.Gateway.Port)
	assert.Equal(t, "http://localhost:9090", cfg.Gateway.ServerURL)
	assert.Equal(t, 30, cfg.Gateway.RateLimit.Requests)
	assert.Equal(t, 60, cfg.Gateway.RateLimit.WindowS)
	assert.Equal(t, 5, cfg.Gateway.RateLimit.Burst)
	assert.Equal(t, "exports", cfg.Exports.Path)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_DB_PATH", "/tmp/expanded.db")

	path := writeConfig(t, `
database:
  path: "${TEST_DB_PATH}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/expanded.db", cfg.Database.Path)
}

func TestLoad_MissingDatabasePath(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "::: not yaml :::")
	_, err := Load(path)
	assert.Error(t, err)
}
