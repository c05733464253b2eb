package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
llm:
  base_url: "https://example.com/v1"
  api_key: "from-yaml"
  model: "qwen-plus"
dataset:
  path: "data/test.parquet"
log:
  level: "debug"
concurrency:
  qps: 2
  rpm: 60
db:
  host: "localhost"
  port: 5432
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "from-yaml", cfg.LLM.APIKey)
	assert.Equal(t, "data/test.parquet", cfg.Dataset.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 60, cfg.Concurrency.RPM)
	assert.Equal(t, "localhost", cfg.DB.Host)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("LLM_API_KEY", "from-env")
	t.Setenv("LLM_MODEL", "qwen-max")

	cfg, err := LoadConfig(writeConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.LLM.APIKey)
	assert.Equal(t, "qwen-max", cfg.LLM.Model)
	// 未设置的环境变量不覆盖
	assert.Equal(t, "https://example.com/v1", cfg.LLM.BaseURL)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
