// Package config loads tripflow configuration from ~/.tripflow and the
// environment. Environment variables take precedence over file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	AnthropicAPIKey  string
	OpenAIAPIKey     string
	GoogleAPIKey     string
	AmadeusAPIKey    string
	AmadeusAPISecret string
	AmadeusBaseURL   string
	Planner          PlannerConfig
	ConfigDir        string
}

// PlannerConfig tunes the pipeline.
type PlannerConfig struct {
	Adapter       string
	Model         string
	SolverRetries int
	RetryBackoff  time.Duration
	DomainTimeout time.Duration
}

// FileConfig represents the structure of ~/.tripflow/config.yaml.
type FileConfig struct {
	APIKeys APIKeysConfig     `yaml:"api_keys"`
	Amadeus AmadeusFileConfig `yaml:"amadeus"`
	Planner PlannerFileConfig `yaml:"planner"`
}

// APIKeysConfig holds text-understanding API keys from file.
type APIKeysConfig struct {
	Anthropic string `yaml:"anthropic"`
	OpenAI    string `yaml:"openai"`
	Google    string `yaml:"google"`
}

// AmadeusFileConfig holds provider credentials and environment from file.
type AmadeusFileConfig struct {
	APIKey      string `yaml:"api_key"`
	APISecret   string `yaml:"api_secret"`
	Environment string `yaml:"environment"` // "test" (default) or "production"
}

// PlannerFileConfig holds pipeline tuning from file. Durations use Go
// duration syntax ("15s", "500ms").
type PlannerFileConfig struct {
	Adapter       string `yaml:"adapter"`
	Model         string `yaml:"model"`
	SolverRetries *int   `yaml:"solver_retries"`
	RetryBackoff  string `yaml:"retry_backoff"`
	DomainTimeout string `yaml:"domain_timeout"`
}

const (
	defaultAdapter       = "google"
	defaultSolverRetries = 2
	defaultRetryBackoff  = 500 * time.Millisecond
	defaultDomainTimeout = 15 * time.Second
)

// Load reads configuration from ~/.tripflow/config.yaml and the
// environment.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config directory: %w", err)
	}

	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	cfg := &Config{
		AnthropicAPIKey:  getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		OpenAIAPIKey:     getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		GoogleAPIKey:     getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		AmadeusAPIKey:    getEnvOrDefault("AMADEUS_API_KEY", fileConfig.Amadeus.APIKey),
		AmadeusAPISecret: getEnvOrDefault("AMADEUS_API_SECRET", fileConfig.Amadeus.APISecret),
		ConfigDir:        configDir,
	}

	cfg.AmadeusBaseURL, err = amadeusBaseURL(getEnvOrDefault("AMADEUS_ENVIRONMENT", fileConfig.Amadeus.Environment))
	if err != nil {
		return nil, err
	}

	cfg.Planner, err = plannerConfig(fileConfig.Planner)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// HasAdapter reports whether the API key for the given adapter is set.
// The mock adapter needs no key.
func (c *Config) HasAdapter(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	case "mock":
		return true
	default:
		return false
	}
}

func plannerConfig(file PlannerFileConfig) (PlannerConfig, error) {
	p := PlannerConfig{
		Adapter:       file.Adapter,
		Model:         file.Model,
		SolverRetries: defaultSolverRetries,
		RetryBackoff:  defaultRetryBackoff,
		DomainTimeout: defaultDomainTimeout,
	}
	if p.Adapter == "" {
		p.Adapter = defaultAdapter
	}
	if file.SolverRetries != nil {
		if *file.SolverRetries < 0 {
			return PlannerConfig{}, fmt.Errorf("planner solver_retries must not be negative")
		}
		p.SolverRetries = *file.SolverRetries
	}
	if file.RetryBackoff != "" {
		d, err := time.ParseDuration(file.RetryBackoff)
		if err != nil {
			return PlannerConfig{}, fmt.Errorf("parse planner retry_backoff: %w", err)
		}
		p.RetryBackoff = d
	}
	if file.DomainTimeout != "" {
		d, err := time.ParseDuration(file.DomainTimeout)
		if err != nil {
			return PlannerConfig{}, fmt.Errorf("parse planner domain_timeout: %w", err)
		}
		p.DomainTimeout = d
	}
	return p, nil
}

func amadeusBaseURL(environment string) (string, error) {
	switch environment {
	case "", "test":
		return "https://test.api.amadeus.com", nil
	case "production":
		return "https://api.amadeus.com", nil
	default:
		return "", fmt.Errorf("unknown amadeus environment %q", environment)
	}
}

// loadFileConfig reads the config file, returning an empty config if
// the file does not exist or does not parse.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, cfg)
	return cfg
}

func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".tripflow")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
