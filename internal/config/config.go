package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultDrainTimeout bounds how long quitting waits for queued tag edits.
const DefaultDrainTimeout = 10 * time.Second

// Config holds CLI configuration stored at ~/.spilltag/config.
type Config struct {
	ServerURL    string `yaml:"server_url"`
	APIKey       string `yaml:"api_key"`
	Username     string `yaml:"username,omitempty"`
	LogLevel     string `yaml:"log_level,omitempty"`
	DrainSeconds int    `yaml:"drain_timeout,omitempty"`
}

// Dir returns the spilltag state directory.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".spilltag")
}

// Path returns the config file path.
func Path() string {
	return filepath.Join(Dir(), "config")
}

// LogPath returns the log file path used by interactive sessions.
func LogPath() string {
	return filepath.Join(Dir(), "spilltag.log")
}

// Load reads and parses the config file. Returns error if missing or insecure.
func Load() (*Config, error) {
	path := Path()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("config missing api_key")
	}
	if strings.TrimSpace(cfg.ServerURL) == "" {
		return nil, fmt.Errorf("config missing server_url")
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")

	return &cfg, nil
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// DrainTimeout returns the configured drain timeout or the default.
func (c *Config) DrainTimeout() time.Duration {
	if c == nil || c.DrainSeconds <= 0 {
		return DefaultDrainTimeout
	}
	return time.Duration(c.DrainSeconds) * time.Second
}
