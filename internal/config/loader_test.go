package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8081
  mode: debug
database:
  host: db.internal
  port: 5432
  user: policyinsight
  password: secret
  db_name: policyinsight
redis:
  enabled: true
  addr: cache:6379
ai:
  enabled: true
  provider: http
  endpoint: http://ai:8000
  timeout: 30s
comparison:
  relevance_floor: 25
log:
  level: debug
  format: console
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ValidFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "http://ai:8000", cfg.AI.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 25, cfg.Comparison.RelevanceFloor)
	assert.Equal(t, 40, cfg.Comparison.AIRelevantThreshold, "unset thresholds take defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("POLICYINSIGHT_SERVER_PORT", "9999")
	t.Setenv("POLICYINSIGHT_AI_ENDPOINT", "http://override:8000")

	cfg, err := Load(writeConfig(t, validConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "http://override:8000", cfg.AI.Endpoint)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, "log:\n  level: loud\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("POLICYINSIGHT_DATABASE_HOST", "env-db")
	t.Setenv("POLICYINSIGHT_COMPARISON_AI_RELEVANT_THRESHOLD", "55")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "env-db", cfg.Database.Host)
	assert.Equal(t, 55, cfg.Comparison.AIRelevantThreshold)
}

func TestLoadOrEnv_EmptyPathUsesEnv(t *testing.T) {
	t.Setenv("POLICYINSIGHT_LOG_LEVEL", "warn")

	cfg, err := LoadOrEnv("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestMustLoad_Panics(t *testing.T) {
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yaml")) })
}

//Personal.AI order the ending
