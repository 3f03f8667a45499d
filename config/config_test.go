package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: "9090"
azure:
  openai:
    endpoint: https://example.openai.azure.com
    api_key: file-key
    chat_deployment: gpt-4o
    embedding_deployment: text-embedding-ada-002
  docintel:
    endpoint: https://example.cognitiveservices.azure.com
    api_key: di-key
database:
  url: postgres://localhost:5432/medintake
storage:
  type: local
  local_path: /var/lib/medintake/files
kb:
  data_dir: /srv/kbdata
  vectors_path: /srv/kbdata/vectors.json
  top_k: 5
admin:
  api_key_hash: $2a$10$abcdefghijklmnopqrstuv
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://example.openai.azure.com", cfg.Azure.OpenAI.Endpoint)
	assert.Equal(t, "gpt-4o", cfg.Azure.OpenAI.ChatDeployment)
	assert.Equal(t, "di-key", cfg.Azure.DocIntel.APIKey)
	assert.Equal(t, "postgres://localhost:5432/medintake", cfg.Database.URL)
	assert.Equal(t, "/var/lib/medintake/files", cfg.Storage.LocalPath)
	assert.Equal(t, 5, cfg.KB.TopK)
	assert.True(t, cfg.OpenAIConfigured())
	assert.True(t, cfg.EmbeddingsConfigured())
	assert.True(t, cfg.DocIntelConfigured())
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	// Blank out ambient settings so only the defaults speak.
	for _, key := range []string{"PORT", "STORAGE_TYPE", "KB_DATA_DIR", "KB_TOP_K", "AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_API_KEY"} {
		t.Setenv(key, "")
	}

	// Run from a directory with no config.yaml.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(wd)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "./kbdata", cfg.KB.DataDir)
	assert.Equal(t, 3, cfg.KB.TopK)
	assert.False(t, cfg.OpenAIConfigured())
	assert.False(t, cfg.DocIntelConfigured())
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("AZURE_OPENAI_API_KEY", "env-key")
	t.Setenv("KB_TOP_K", "7")
	t.Setenv("STORAGE_TYPE", "s3")
	t.Setenv("AWS_S3_BUCKET", "intake-docs")
	t.Setenv("AWS_REGION", "eu-west-1")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "env-key", cfg.Azure.OpenAI.APIKey)
	assert.Equal(t, 7, cfg.KB.TopK)
	assert.Equal(t, "s3", cfg.Storage.Type)
	assert.Equal(t, "intake-docs", cfg.Storage.S3Bucket)
	assert.Equal(t, "eu-west-1", cfg.Storage.S3Region)
	assert.Equal(t, "https://example.openai.azure.com", cfg.Azure.OpenAI.Endpoint, "file values survive where no env is set")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown storage type", func(c *Config) { c.Storage.Type = "ftp" }},
		{"s3 without bucket", func(c *Config) { c.Storage.Type = "s3"; c.Storage.S3Bucket = "" }},
		{"local without path", func(c *Config) { c.Storage.LocalPath = "" }},
		{"non-positive top_k", func(c *Config) { c.KB.TopK = 0 }},
		{"empty port", func(c *Config) { c.Server.Port = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, defaults().Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [not a map"))
	assert.Error(t, err)
}
