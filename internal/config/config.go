package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"verisure/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Issuance IssuanceConfig `yaml:"issuance"`
	Approval ApprovalConfig `yaml:"approval"`
	Logging  LoggingConfig  `yaml:"logging"`
	// Profile keys the locally stored session so several accounts can coexist.
	Profile string `yaml:"profile"`
}

// APIConfig holds the remote VeriSure endpoint settings
type APIConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DatabaseConfig holds the local store connection settings
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// ServerConfig holds issuer console settings
type ServerConfig struct {
	Port           string `yaml:"port"`
	GinMode        string `yaml:"gin_mode"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// IssuanceConfig holds batch preview and reporting limits
type IssuanceConfig struct {
	PreviewLimit int `yaml:"preview_limit"`
	ErrorSample  int `yaml:"error_sample"`
}

// ApprovalConfig holds issuer approval polling settings
type ApprovalConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:     "http://localhost:8787/exec",
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{URL: "verisure.db"},
		Server: ServerConfig{
			Port:           "8080",
			GinMode:        "release",
			MaxUploadBytes: 10 << 20,
		},
		Issuance: IssuanceConfig{
			PreviewLimit: 50,
			ErrorSample:  5,
		},
		Approval: ApprovalConfig{PollInterval: 4 * time.Second},
		Logging:  LoggingConfig{Level: "info"},
		Profile:  "default",
	}
}

// Load reads configuration from an optional YAML file (VERISURE_CONFIG) and
// environment variables, then validates it. Environment values win.
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv("VERISURE_CONFIG"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, errors.Wrap(err, "failed to load configuration file")
		}
	}

	loadAPIConfig(&config.API)
	loadDatabaseConfig(&config.Database)
	loadServerConfig(&config.Server)
	loadIssuanceConfig(&config.Issuance)
	loadApprovalConfig(&config.Approval)
	loadLoggingConfig(&config.Logging)
	config.Profile = getEnvOrDefault("VERISURE_PROFILE", config.Profile)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

func loadAPIConfig(c *APIConfig) {
	c.URL = getEnvOrDefault("VERISURE_API_URL", c.URL)
	c.Timeout = getEnvDurationOrDefault("VERISURE_API_TIMEOUT", c.Timeout)
}

func loadDatabaseConfig(c *DatabaseConfig) {
	c.URL = getEnvOrDefault("DATABASE_URL", c.URL)
}

func loadServerConfig(c *ServerConfig) {
	c.Port = getEnvOrDefault("PORT", c.Port)
	c.GinMode = getEnvOrDefault("GIN_MODE", c.GinMode)
	c.MaxUploadBytes = int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)))
}

func loadIssuanceConfig(c *IssuanceConfig) {
	c.PreviewLimit = getEnvIntOrDefault("PREVIEW_LIMIT", c.PreviewLimit)
	c.ErrorSample = getEnvIntOrDefault("ERROR_SAMPLE_SIZE", c.ErrorSample)
}

func loadApprovalConfig(c *ApprovalConfig) {
	c.PollInterval = getEnvDurationOrDefault("APPROVAL_POLL_INTERVAL", c.PollInterval)
}

func loadLoggingConfig(c *LoggingConfig) {
	c.Level = strings.ToLower(getEnvOrDefault("LOG_LEVEL", c.Level))
	c.Development = getEnvBoolOrDefault("LOG_DEVELOPMENT", c.Development)
}

func validateConfig(config *Config) error {
	if config.API.URL == "" {
		return errors.ConfigInvalid("API URL is required")
	}
	if config.API.Timeout <= 0 {
		return errors.ConfigInvalid("API timeout must be positive")
	}
	if config.Database.URL == "" {
		return errors.ConfigInvalid("database URL is required")
	}
	if config.Issuance.PreviewLimit <= 0 {
		return errors.ConfigInvalid("preview limit must be positive")
	}
	if config.Issuance.ErrorSample < 0 {
		return errors.ConfigInvalid("error sample size cannot be negative")
	}
	if config.Approval.PollInterval <= 0 {
		return errors.ConfigInvalid("approval poll interval must be positive")
	}
	if config.Server.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("max upload size must be positive")
	}
	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.ConfigInvalid("unknown log level: " + config.Logging.Level)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
