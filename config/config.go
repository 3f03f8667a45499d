// Package config loads service configuration from an optional YAML file
// with environment variables layered on top, so container deployments can
// run file-free the way the rest of the stack expects.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Azure    AzureConfig    `yaml:"azure"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	KB       KBConfig       `yaml:"kb"`
	Admin    AdminConfig    `yaml:"admin"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string `yaml:"port"`
}

// AzureConfig groups the two Azure integrations
type AzureConfig struct {
	OpenAI   OpenAIConfig   `yaml:"openai"`
	DocIntel DocIntelConfig `yaml:"docintel"`
}

// OpenAIConfig holds Azure OpenAI settings
type OpenAIConfig struct {
	Endpoint            string `yaml:"endpoint"`
	APIKey              string `yaml:"api_key"`
	APIVersion          string `yaml:"api_version"`
	ChatDeployment      string `yaml:"chat_deployment"`
	EmbeddingDeployment string `yaml:"embedding_deployment"`
}

// DocIntelConfig holds Azure Document Intelligence settings
type DocIntelConfig struct {
	Endpoint   string `yaml:"endpoint"`
	APIKey     string `yaml:"api_key"`
	APIVersion string `yaml:"api_version"`
}

// DatabaseConfig holds Postgres settings. An empty URL disables persistence.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// StorageConfig holds document archive settings
type StorageConfig struct {
	Type      string `yaml:"type"`
	LocalPath string `yaml:"local_path"`
	S3Bucket  string `yaml:"s3_bucket"`
	S3Region  string `yaml:"s3_region"`
}

// KBConfig holds knowledge base settings
type KBConfig struct {
	DataDir     string `yaml:"data_dir"`
	VectorsPath string `yaml:"vectors_path"`
	TopK        int    `yaml:"top_k"`
}

// AdminConfig holds admin endpoint settings
type AdminConfig struct {
	APIKeyHash string `yaml:"api_key_hash"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Storage: StorageConfig{
			Type:      "local",
			LocalPath: "./storage/files",
			S3Region:  "us-east-1",
		},
		KB: KBConfig{
			DataDir: "./kbdata",
			TopK:    3,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file, then
// environment variables. With an empty path it tries config.yaml and keeps
// going when the file does not exist; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := defaults()

	explicit := path != ""
	if path == "" {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No file is fine, environment carries everything.
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	env("PORT", &c.Server.Port)

	env("AZURE_OPENAI_ENDPOINT", &c.Azure.OpenAI.Endpoint)
	env("AZURE_OPENAI_API_KEY", &c.Azure.OpenAI.APIKey)
	env("AZURE_OPENAI_API_VERSION", &c.Azure.OpenAI.APIVersion)
	env("AZURE_OPENAI_DEPLOYMENT_NAME", &c.Azure.OpenAI.ChatDeployment)
	env("AZURE_OPENAI_EMBEDDING_DEPLOYMENT", &c.Azure.OpenAI.EmbeddingDeployment)

	env("DOCUMENTINTELLIGENCE_ENDPOINT", &c.Azure.DocIntel.Endpoint)
	env("DOCUMENTINTELLIGENCE_API_KEY", &c.Azure.DocIntel.APIKey)
	env("DOCUMENTINTELLIGENCE_API_VERSION", &c.Azure.DocIntel.APIVersion)

	env("DATABASE_URL", &c.Database.URL)

	env("STORAGE_TYPE", &c.Storage.Type)
	env("STORAGE_LOCAL_PATH", &c.Storage.LocalPath)
	env("AWS_S3_BUCKET", &c.Storage.S3Bucket)
	env("AWS_REGION", &c.Storage.S3Region)

	env("KB_DATA_DIR", &c.KB.DataDir)
	env("KB_VECTORS_PATH", &c.KB.VectorsPath)
	envInt("KB_TOP_K", &c.KB.TopK)

	env("ADMIN_API_KEY_HASH", &c.Admin.APIKeyHash)
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "local", "s3":
	default:
		return fmt.Errorf("unknown storage type: %s", c.Storage.Type)
	}
	if c.Storage.Type == "s3" && c.Storage.S3Bucket == "" {
		return fmt.Errorf("s3 storage requires a bucket")
	}
	if c.Storage.Type == "local" && c.Storage.LocalPath == "" {
		return fmt.Errorf("local storage requires a path")
	}
	if c.KB.TopK <= 0 {
		return fmt.Errorf("kb top_k must be positive, got %d", c.KB.TopK)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port must not be empty")
	}
	return nil
}

// OpenAIConfigured reports whether chat and extraction can call Azure OpenAI
func (c *Config) OpenAIConfigured() bool {
	return c.Azure.OpenAI.Endpoint != "" && c.Azure.OpenAI.APIKey != "" && c.Azure.OpenAI.ChatDeployment != ""
}

// EmbeddingsConfigured reports whether query embeddings can be requested
func (c *Config) EmbeddingsConfigured() bool {
	return c.Azure.OpenAI.Endpoint != "" && c.Azure.OpenAI.APIKey != "" && c.Azure.OpenAI.EmbeddingDeployment != ""
}

// DocIntelConfigured reports whether OCR can call Document Intelligence
func (c *Config) DocIntelConfigured() bool {
	return c.Azure.DocIntel.Endpoint != "" && c.Azure.DocIntel.APIKey != ""
}

func env(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
