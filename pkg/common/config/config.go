// Package config provides configuration management for the file
// processing worker pool: the settings that seed a Run and a Pool's
// Config, loaded with environment-variable overrides and
// JSON-file persistence.
//
// Configuration Sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. Configuration file (JSON format)
//  3. Default values (lowest priority)
//
// Usage Example:
//
//	// Load configuration with file and environment overrides
//	cfg, err := LoadConfig("/path/to/filepool.json")
//	if err != nil {
//		return fmt.Errorf("config error: %w", err)
//	}
//
//	// Save configuration for future use
//	err = cfg.SaveToFile("/path/to/filepool.json")
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/entropic-build/filepool/pkg/common/logging"
)

// Config is the complete configuration for a filepool run: the Pool's
// construction options plus the ambient logging setup.
type Config struct {
	// Concurrency is the number of Worker Handles the Pool spawns.
	Concurrency int `json:"concurrency"`

	// Cwd is the working directory module ids are resolved against.
	Cwd string `json:"cwd"`

	// Dev is copied into the Run's Dev flag that Processors see. It does
	// not start a plugin-reload watcher: pkg/resolve.Watcher is not wired
	// to the pool.
	Dev bool `json:"dev"`

	// Debug enables "debug"-level log replies from plugins.
	Debug bool `json:"debug"`

	// PluginSearchPaths seeds FILEPOOL_PLUGIN_PATH for module resolution's
	// global-search-path fallback.
	PluginSearchPaths []string `json:"pluginSearchPaths"`

	// Logging configures the process-wide logger every component logs
	// through.
	Logging LoggingConfig `json:"logging"`
}

// LoggingConfig configures the pkg/common/logging logger.
type LoggingConfig struct {
	Level            string `json:"level"`
	Format           string `json:"format"`
	EnableSanitizing bool   `json:"enableSanitizing"`
}

// DefaultConfig returns secure, conservative defaults: one worker per
// available CPU's worth of concurrency is left to the caller to decide,
// so Concurrency defaults to a single worker.
func DefaultConfig() *Config {
	return &Config{
		Concurrency: 1,
		Cwd:         ".",
		Dev:         false,
		Debug:       false,
		Logging: LoggingConfig{
			Level:            "info",
			Format:           "text",
			EnableSanitizing: true,
		},
	}
}

// LoadConfig builds a Config from defaults, optionally overlaid with
// configPath's JSON contents, then environment variable overrides.
// configPath may be empty, in which case only defaults and the
// environment apply.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, c)
}

// applyEnvironmentOverrides applies FILEPOOL_* environment variables on
// top of whatever defaults/file contents are already in c.
func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv("FILEPOOL_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
	if v := os.Getenv("FILEPOOL_CWD"); v != "" {
		c.Cwd = v
	}
	if v := os.Getenv("FILEPOOL_DEV"); v != "" {
		c.Dev = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("FILEPOOL_DEBUG"); v != "" {
		c.Debug = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("FILEPOOL_PLUGIN_PATH"); v != "" {
		c.PluginSearchPaths = filepath.SplitList(v)
	}
	if v := os.Getenv("FILEPOOL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FILEPOOL_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// Validate checks Config for a usable combination of values.
func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be a positive integer, got %d", c.Concurrency)
	}
	if strings.TrimSpace(c.Cwd) == "" {
		return fmt.Errorf("cwd must not be empty")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown logging format %q, expected \"text\" or \"json\"", c.Logging.Format)
	}
	if _, err := logging.ParseLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// SaveToFile writes c as indented JSON to path.
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// GetDefaultConfigPath returns the conventional per-user config file
// location, $XDG_CONFIG_HOME/filepool/config.json (or
// $HOME/.config/filepool/config.json).
func GetDefaultConfigPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "filepool", "config.json"), nil
}
