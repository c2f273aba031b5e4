package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadExampleConfig(t *testing.T) {
	cfg, err := Load("../../configs/example.yaml")
	require.NoError(t, err, "配置文件加载失败")

	assert.Equal(t, "ColdPlay2025", cfg.Auth.APIKey)
	assert.Equal(t, "Authorization", cfg.Surfaces.Frame.APIKeyHeader)
	assert.True(t, cfg.Surfaces.Frame.RequireContentType)
	assert.Equal(t, "frame", cfg.Surfaces.Frame.Field)
	assert.Equal(t, "api-key", cfg.Surfaces.Payload.APIKeyHeader)
	assert.False(t, cfg.Surfaces.Payload.RequireContentType)
	assert.Equal(t, "payload", cfg.Surfaces.Payload.Field)
	assert.Equal(t, BackendCSV, cfg.Storage.Backend)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.False(t, cfg.Ingest.StrictFrameLength)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("INGEST_AUTH_APIKEY", "override-key")
	t.Setenv("INGEST_STORAGE_BACKEND", "redis")

	cfg, err := Load("../../configs/example.yaml")
	require.NoError(t, err)
	assert.Equal(t, "override-key", cfg.Auth.APIKey)
	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: sqlite\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestValidate(t *testing.T) {
	cfg, err := Load("../../configs/example.yaml")
	require.NoError(t, err)

	t.Run("空密钥", func(t *testing.T) {
		c := *cfg
		c.Auth.APIKey = "  "
		assert.Error(t, c.Validate())
	})

	t.Run("接入面缺少字段名", func(t *testing.T) {
		c := *cfg
		c.Surfaces.Payload.Field = ""
		assert.Error(t, c.Validate())
	})

	t.Run("禁用的接入面不校验", func(t *testing.T) {
		c := *cfg
		c.Surfaces.Payload.Enabled = false
		c.Surfaces.Payload.Field = ""
		assert.NoError(t, c.Validate())
	})
}
