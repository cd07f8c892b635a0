package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config represents the application configuration
type Config struct {
	Confluence ConfluenceConfig `yaml:"confluence"`
	Jira       JiraConfig       `yaml:"jira"`
	Cache      CacheConfig      `yaml:"cache"`
	Processing ProcessingConfig `yaml:"processing"`
}

// ConfluenceConfig represents the document source configuration
type ConfluenceConfig struct {
	BaseURL        string `yaml:"base_url"`
	Email          string `yaml:"email"`
	APIToken       string `yaml:"api_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// JiraConfig represents the issue tracker configuration
type JiraConfig struct {
	BaseURL        string `yaml:"base_url"`
	Username       string `yaml:"username"`
	APIToken       string `yaml:"api_token"`
	ProjectKey     string `yaml:"project_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CacheConfig represents the analysis cache configuration
type CacheConfig struct {
	Backend    string `yaml:"backend"` // "memory" or "file"
	TTLSeconds int    `yaml:"ttl_seconds"`
	Dir        string `yaml:"dir"`
}

// ProcessingConfig represents analysis output configuration
type ProcessingConfig struct {
	OutputDir    string `yaml:"output_dir"`
	SaveAnalysis bool   `yaml:"save_analysis"`
}

// LoadConfig loads configuration from a YAML file and applies defaults
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Confluence.TimeoutSeconds == 0 {
		c.Confluence.TimeoutSeconds = 30
	}
	if c.Jira.TimeoutSeconds == 0 {
		c.Jira.TimeoutSeconds = 30
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 3600
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = ".backlog-cache"
	}
	if c.Processing.OutputDir == "" {
		c.Processing.OutputDir = "./output"
	}
}

// ValidateJira checks the fields required for tracker item creation
func (c *Config) ValidateJira() error {
	if c.Jira.BaseURL == "" {
		return fmt.Errorf("jira base URL is required")
	}
	if c.Jira.Username == "" {
		return fmt.Errorf("jira username is required")
	}
	if c.Jira.APIToken == "" {
		return fmt.Errorf("jira API token is required")
	}
	if c.Jira.ProjectKey == "" {
		return fmt.Errorf("jira project key is required")
	}
	return nil
}

// ValidateConfluence checks the fields required for fetching documents
func (c *Config) ValidateConfluence() error {
	if c.Confluence.BaseURL == "" {
		return fmt.Errorf("confluence base URL is required")
	}
	if c.Confluence.Email == "" {
		return fmt.Errorf("confluence email is required")
	}
	if c.Confluence.APIToken == "" {
		return fmt.Errorf("confluence API token is required")
	}
	return nil
}

// Sample returns a starter configuration for the init command
func Sample() *Config {
	c := &Config{}
	c.Confluence.BaseURL = "https://your-domain.atlassian.net"
	c.Confluence.Email = "your-email@example.com"
	c.Confluence.APIToken = "your-confluence-api-token"
	c.Jira.BaseURL = "https://your-domain.atlassian.net"
	c.Jira.Username = "your-email@example.com"
	c.Jira.APIToken = "your-jira-api-token"
	c.Jira.ProjectKey = "PROJ"
	c.Cache.Backend = "file"
	c.Processing.SaveAnalysis = true
	c.applyDefaults()
	return c
}
