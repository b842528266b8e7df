package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.sults.com.br/api/v1/expansao", cfg.Sults.BaseURL)
	assert.Equal(t, 100, cfg.Sults.PageSize)
	assert.Equal(t, 10, cfg.Sults.MaxConcurrent)
	assert.Equal(t, 3, cfg.Sults.MaxRetries)
	assert.Equal(t, time.Second, cfg.Sults.RetryDelay())
	assert.Equal(t, "leads_sults_consolidado.csv", cfg.Export.Path)
	assert.Equal(t, "leads", cfg.Supabase.Table)
	assert.Equal(t, 100, cfg.Supabase.BatchSize)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, 10*time.Minute, cfg.Server.RunTimeout())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LEADS_SULTS_TOKEN", "env-token")
	t.Setenv("LEADS_SERVER_PORT", "8080")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Sults.Token)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := []byte("sults:\n  token: file-token\n  page_size: 50\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Sults.Token)
	assert.Equal(t, 50, cfg.Sults.PageSize)
	assert.Equal(t, "debug", cfg.Log.Level)
}
