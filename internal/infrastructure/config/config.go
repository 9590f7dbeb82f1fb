// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for pulse configuration.
	DefaultConfigDir = ".pulse"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "pulse"
)

// Config holds static infrastructure configuration (read-only after init).
// Values come from the config file, then environment variables with the
// PULSE_ prefix override what the file set.
type Config struct {
	Tenant   TenantConfig   `yaml:"tenant,omitempty"`
	LLM      LLMConfig      `yaml:"llm,omitempty"`
	Embedder EmbedderConfig `yaml:"embedder,omitempty"`
	Qdrant   QdrantConfig   `yaml:"qdrant,omitempty"`
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Slack    SlackConfig    `yaml:"slack,omitempty"`
	CRM      CRMConfig      `yaml:"crm,omitempty"`
	Monitor  MonitorConfig  `yaml:"monitor,omitempty"`
	Review   ReviewConfig   `yaml:"review,omitempty"`
}

// TenantConfig identifies the tenant this installation serves.
type TenantConfig struct {
	ID string `yaml:"id,omitempty"`
}

// LLMConfig holds configuration for the LLM provider.
type LLMConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty" envconfig:"LLM_API_KEY"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty" envconfig:"EMBEDDER_API_KEY"`
}

// QdrantConfig holds configuration for the Qdrant vector database.
type QdrantConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty" envconfig:"QDRANT_API_KEY"`
}

// SQLiteConfig holds configuration for the SQLite document store.
type SQLiteConfig struct {
	Path string `yaml:"path,omitempty"`
}

// SlackConfig holds configuration for Slack notifications. Notifications
// are disabled when the token is empty.
type SlackConfig struct {
	Token   string `yaml:"token,omitempty" envconfig:"SLACK_TOKEN"`
	Channel string `yaml:"channel,omitempty"`
}

// CRMSystemConfig holds credentials for one CRM system.
type CRMSystemConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	Token   string `yaml:"token,omitempty"`
}

// CRMConfig holds configuration for CRM activation targets.
type CRMConfig struct {
	Salesforce CRMSystemConfig `yaml:"salesforce,omitempty"`
	Hubspot    CRMSystemConfig `yaml:"hubspot,omitempty"`
	// Systems names the default activation targets.
	Systems []string `yaml:"systems,omitempty"`
}

// MonitorConfig holds configuration for scheduled account monitoring.
type MonitorConfig struct {
	IntervalHours int    `yaml:"interval_hours,omitempty"`
	SearchTerm    string `yaml:"search_term,omitempty"`
}

// ReviewConfig holds configuration for the review-await.
type ReviewConfig struct {
	TimeoutHours int `yaml:"timeout_hours,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Tenant: TenantConfig{ID: "default"},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "pulse_evidence",
		},
		CRM: CRMConfig{
			Systems: []string{"salesforce"},
		},
		Monitor: MonitorConfig{
			IntervalHours: 6,
		},
		Review: ReviewConfig{
			TimeoutHours: 24,
		},
	}
}

// Load loads configuration from the .pulse directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'pulse init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}
	cfg.applyEnvFallbacks()

	return cfg, nil
}

// applyEnvFallbacks fills API keys from the conventional provider variables
// when neither the file nor a PULSE_ variable set them.
func (c *Config) applyEnvFallbacks() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.LLM.APIKey == "" {
			c.LLM.APIKey = key
		}
		if c.Embedder.APIKey == "" {
			c.Embedder.APIKey = key
		}
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" && c.Qdrant.APIKey == "" {
		c.Qdrant.APIKey = key
	}
}

// ConfigDir returns the path to the .pulse config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// SQLitePath returns the SQLite database path, honoring an explicit
// configuration when present.
func (c *Config) SQLitePath(basePath string) string {
	if c.SQLite.Path != "" {
		return c.SQLite.Path
	}
	return filepath.Join(basePath, DefaultConfigDir, "pulse.db")
}
