// ABOUTME: Configuration loading with XDG defaults and environment overrides
// ABOUTME: The YAML file is optional; every field has a usable default

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config stores the aggregator's host-level configuration. Runtime
// settings such as proxy and timeouts live in the database instead and
// are edited through the API.
type Config struct {
	// DataDir is the directory holding the database. Supports ~ expansion.
	// Defaults to the standard XDG data directory.
	DataDir string `yaml:"data_dir,omitempty"`

	// Addr is the listen address of the HTTP API.
	Addr string `yaml:"addr,omitempty"`

	// Debug shortens the polling cadence and raises log verbosity.
	Debug bool `yaml:"debug,omitempty"`
}

// DefaultAddr is used when neither the file nor the environment sets one.
const DefaultAddr = "127.0.0.1:7190"

// Environment overrides. Each one beats the corresponding file field.
const (
	EnvConfig  = "RSSRS_CONFIG"
	EnvDataDir = "RSSRS_DATA_DIR"
	EnvAddr    = "RSSRS_ADDR"
	EnvDebug   = "RSSRS_DEBUG"
)

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetAddr returns the configured listen address.
func (c *Config) GetAddr() string {
	if c.Addr == "" {
		return DefaultAddr
	}
	return c.Addr
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path, honoring RSSRS_CONFIG.
func GetConfigPath() string {
	if path := os.Getenv(EnvConfig); path != "" {
		return ExpandPath(path)
	}
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "rssrs", "config.yaml")
}

// Load reads the config file and applies environment overrides. A
// missing file is not an error; every field falls back to its default.
func Load() (*Config, error) {
	var cfg Config

	path := GetConfigPath()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Addr = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		c.Debug = v != "0" && !strings.EqualFold(v, "false")
	}
}

// defaultDataDir returns the standard XDG data directory for rssrs.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "rssrs")
}
