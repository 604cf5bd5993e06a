package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "novadoc", cfg.AppName)
	assert.Equal(t, "file://./data/novadoc.json", cfg.Storage.URI)
	assert.Equal(t, "json", cfg.Storage.Format)
	assert.True(t, cfg.Storage.AutoSave)
	assert.Equal(t, "127.0.0.1:8866", cfg.Server.Addr)
	assert.Equal(t, 256, cfg.Server.StatementCache)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "novadoc.yaml")
	yaml := `
app_name: shop
storage:
  uri: mem://shop
  format: bson
  auto_save: false
server:
  addr: ":9000"
  statement_cache: 8
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("NOVADOC_SERVER_ADDR", ":9100")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "shop", cfg.AppName)
	assert.Equal(t, "mem://shop", cfg.Storage.URI)
	assert.Equal(t, "bson", cfg.Storage.Format)
	assert.False(t, cfg.Storage.AutoSave)
	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, 8, cfg.Server.StatementCache)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
}

func TestLoadConfig_AuthNeedsSecret(t *testing.T) {
	t.Setenv("NOVADOC_AUTH_ENABLED", "true")
	_, err := LoadConfig("")
	require.Error(t, err)

	t.Setenv("NOVADOC_AUTH_JWT_SECRET", "s3cret")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.True(t, cfg.Auth.Enabled)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	log.Info("hidden")
	log.Warn("shown", "k", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"k":1`)
}
