// Package config loads the catalogd configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults applied when the config file is absent or omits a field.
const (
	DefaultFetchTimeoutSeconds  = 30
	DefaultSyncIntervalSeconds  = 300
	DefaultHistoryRetentionDays = 90
	DefaultDriftRetentionDays   = 30
)

// Config is the flat catalogd configuration, stored as JSON at
// ~/.catalogd/config.json.
type Config struct {
	DatabasePath         string `json:"database_path,omitempty"`
	FetchTimeoutSeconds  int    `json:"fetch_timeout_seconds,omitempty"`
	SyncIntervalSeconds  int    `json:"sync_interval_seconds,omitempty"`
	HistoryRetentionDays int    `json:"history_retention_days,omitempty"`
	DriftRetentionDays   int    `json:"drift_retention_days,omitempty"`
}

// Dir returns the catalogd home directory (~/.catalogd).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".catalogd"), nil
}

// Load reads the config file from dir, applying defaults for missing
// fields. A missing file yields pure defaults, not an error.
func Load(dir string) (*Config, error) {
	cfg := &Config{}

	path := filepath.Join(dir, "config.json")
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyDefaults(dir)
	return cfg, nil
}

// Save writes the config file to dir, creating it if needed.
func Save(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults(dir string) {
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(dir, "catalogd.db")
	}
	if c.FetchTimeoutSeconds <= 0 {
		c.FetchTimeoutSeconds = DefaultFetchTimeoutSeconds
	}
	if c.SyncIntervalSeconds <= 0 {
		c.SyncIntervalSeconds = DefaultSyncIntervalSeconds
	}
	if c.HistoryRetentionDays <= 0 {
		c.HistoryRetentionDays = DefaultHistoryRetentionDays
	}
	if c.DriftRetentionDays <= 0 {
		c.DriftRetentionDays = DefaultDriftRetentionDays
	}
}

// FetchTimeout returns the manifest fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// SyncInterval returns the scheduler interval as a duration.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalSeconds) * time.Second
}

// HistoryRetention returns the sync history retention window.
func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.HistoryRetentionDays) * 24 * time.Hour
}

// DriftRetention returns the resolved-drift retention window.
func (c *Config) DriftRetention() time.Duration {
	return time.Duration(c.DriftRetentionDays) * 24 * time.Hour
}
