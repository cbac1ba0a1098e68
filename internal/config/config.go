// Package config loads ridcache configuration from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for ridcache. All settings
// have working defaults; a config file and environment variables refine
// them.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Registry RegistryConfig `yaml:"registry"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RegistryConfig contains upstream registry client and sync settings.
// Durations are whole seconds in YAML.
type RegistryConfig struct {
	BaseURL         string `yaml:"base_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	ThrottleSeconds int    `yaml:"throttle_seconds"`
	PageSize        int    `yaml:"page_size"`
	UpdateCount     int    `yaml:"update_count"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Defaults mirrored from the registry client and syncer packages.
const (
	DefaultDatabasePath    = "ridcache.db"
	DefaultBaseURL         = "https://uasdoc.faa.gov/api/v1"
	DefaultTimeoutSeconds  = 30
	DefaultThrottleSeconds = 5
	DefaultPageSize        = 100
	DefaultUpdateCount     = 50
)

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: DefaultDatabasePath},
		Registry: RegistryConfig{
			BaseURL:         DefaultBaseURL,
			TimeoutSeconds:  DefaultTimeoutSeconds,
			ThrottleSeconds: DefaultThrottleSeconds,
			PageSize:        DefaultPageSize,
			UpdateCount:     DefaultUpdateCount,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load builds a Config from defaults, an optional YAML file, and
// environment overrides, in that order. An empty path skips the file
// stage entirely; a non-empty path must exist.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides lets deployment environments override file settings
// without editing the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RIDCACHE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("RIDCACHE_BASE_URL"); v != "" {
		cfg.Registry.BaseURL = v
	}
	if v := os.Getenv("RIDCACHE_THROTTLE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Registry.ThrottleSeconds = n
		}
	}
	if v := os.Getenv("RIDCACHE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Registry.BaseURL == "" {
		return fmt.Errorf("registry.base_url must not be empty")
	}
	if c.Registry.TimeoutSeconds <= 0 {
		return fmt.Errorf("registry.timeout_seconds must be positive, got %d", c.Registry.TimeoutSeconds)
	}
	if c.Registry.ThrottleSeconds < 0 {
		return fmt.Errorf("registry.throttle_seconds must not be negative, got %d", c.Registry.ThrottleSeconds)
	}
	if c.Registry.PageSize <= 0 || c.Registry.PageSize > 500 {
		return fmt.Errorf("registry.page_size must be between 1 and 500, got %d", c.Registry.PageSize)
	}
	if c.Registry.UpdateCount <= 0 {
		return fmt.Errorf("registry.update_count must be positive, got %d", c.Registry.UpdateCount)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}

// Timeout returns the registry HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Registry.TimeoutSeconds) * time.Second
}

// Throttle returns the inter-call sync delay as a duration.
func (c *Config) Throttle() time.Duration {
	return time.Duration(c.Registry.ThrottleSeconds) * time.Second
}

// SlogLevel maps the configured level name to a slog level. Validate
// guarantees the name is one of the known four.
func (c *Config) SlogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
