package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "default", cfg.Tenant.ID)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "openai", cfg.Embedder.Provider)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
	assert.Equal(t, "localhost", cfg.Qdrant.Host)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
	assert.Equal(t, "pulse_evidence", cfg.Qdrant.Collection)
	assert.Equal(t, []string{"salesforce"}, cfg.CRM.Systems)
	assert.Equal(t, 6, cfg.Monitor.IntervalHours)
	assert.Equal(t, 24, cfg.Review.TimeoutHours)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_FileValuesOverrideDefaults(t *testing.T) {
	base := t.TempDir()
	writeTestConfig(t, base, `
tenant:
  id: acme-tenant
qdrant:
  host: qdrant.internal
  port: 7000
monitor:
  interval_hours: 2
`)

	cfg, err := Load(base)
	require.NoError(t, err)

	assert.Equal(t, "acme-tenant", cfg.Tenant.ID)
	assert.Equal(t, "qdrant.internal", cfg.Qdrant.Host)
	assert.Equal(t, 7000, cfg.Qdrant.Port)
	assert.Equal(t, 2, cfg.Monitor.IntervalHours)
	// Untouched sections keep their defaults.
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
}

func TestLoad_EnvFallbackForAPIKeys(t *testing.T) {
	base := t.TempDir()
	writeTestConfig(t, base, "tenant:\n  id: t1\n")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("QDRANT_API_KEY", "qd-test")

	cfg, err := Load(base)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "sk-test", cfg.Embedder.APIKey)
	assert.Equal(t, "qd-test", cfg.Qdrant.APIKey)
}

func TestLoad_FileKeyWinsOverEnvFallback(t *testing.T) {
	base := t.TempDir()
	writeTestConfig(t, base, "llm:\n  api_key: sk-from-file\n")
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := Load(base)
	require.NoError(t, err)

	assert.Equal(t, "sk-from-file", cfg.LLM.APIKey)
	// The embedder key was not set in the file, so the fallback applies.
	assert.Equal(t, "sk-from-env", cfg.Embedder.APIKey)
}

func TestWriteDefaultAndReload(t *testing.T) {
	base := t.TempDir()

	require.NoError(t, WriteDefault(base))
	assert.True(t, Exists(base))

	// A second init must not clobber an existing config.
	err := WriteDefault(base)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	cfg, err := Load(base)
	require.NoError(t, err)
	assert.Equal(t, "pulse_evidence", cfg.Qdrant.Collection)
	assert.Equal(t, []string{"salesforce"}, cfg.CRM.Systems)
}

func TestSQLitePath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "/base/.pulse/pulse.db", cfg.SQLitePath("/base"))

	cfg.SQLite.Path = "/data/custom.db"
	assert.Equal(t, "/data/custom.db", cfg.SQLitePath("/base"))
}

func TestConfigDir(t *testing.T) {
	assert.Equal(t, "/home/user/project/.pulse", ConfigDir("/home/user/project"))
}

func TestConfigFilePath(t *testing.T) {
	assert.Equal(t, "/home/user/project/.pulse/config.yaml", ConfigFilePath("/home/user/project"))
}

func writeTestConfig(t *testing.T, base, content string) {
	t.Helper()
	dir := filepath.Join(base, DefaultConfigDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(content), 0644))
}
