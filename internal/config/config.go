// Package config loads host/server/mount configuration, following
// BrettBedarf-webfs/config's Config/ConfigOverride/Merge pattern: a
// concrete Config with defaults, and a pointer-field ConfigOverride that
// distinguishes "unset" from "zero" when loading a partial file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultListenAddr      = "localhost:7070"
	DefaultDataDir         = "./data"
	DefaultSnapshotFile    = "fs.snapshot"
	DefaultSnapshotSeconds = 30
	DefaultLogLevel        = "INFO"
	DefaultAttrTimeout     = 1.0
	DefaultEntryTimeout    = 1.0
)

// Config contains runtime configuration for fsserver, fscli, and fsmount.
type Config struct {
	ListenAddr      string  `yaml:"listen_addr"`      // host:port the wire server listens on
	DataDir         string  `yaml:"data_dir"`         // directory snapshots are written to/read from
	SnapshotFile    string  `yaml:"snapshot_file"`    // filename within DataDir for the full-host snapshot
	SnapshotSeconds int     `yaml:"snapshot_seconds"` // periodic snapshot interval in seconds (0 disables)
	LogLevel        string  `yaml:"log_level"`        // DEBUG/INFO/WARN/ERROR
	AttrTimeout     float64 `yaml:"attr_timeout"`     // FUSE attribute cache TTL in seconds
	EntryTimeout    float64 `yaml:"entry_timeout"`    // FUSE directory entry cache TTL in seconds
	ReadOnly        bool    `yaml:"read_only"`        // mount read-only
	AllowOther      bool    `yaml:"allow_other"`      // allow other users to access the mount
}

// ConfigOverride uses pointer fields to distinguish unset from zero when
// loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	ListenAddr      *string  `yaml:"listen_addr,omitempty" json:"listen_addr,omitempty"`
	DataDir         *string  `yaml:"data_dir,omitempty" json:"data_dir,omitempty"`
	SnapshotFile    *string  `yaml:"snapshot_file,omitempty" json:"snapshot_file,omitempty"`
	SnapshotSeconds *int     `yaml:"snapshot_seconds,omitempty" json:"snapshot_seconds,omitempty"`
	LogLevel        *string  `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	AttrTimeout     *float64 `yaml:"attr_timeout,omitempty" json:"attr_timeout,omitempty"`
	EntryTimeout    *float64 `yaml:"entry_timeout,omitempty" json:"entry_timeout,omitempty"`
	ReadOnly        *bool    `yaml:"read_only,omitempty" json:"read_only,omitempty"`
	AllowOther      *bool    `yaml:"allow_other,omitempty" json:"allow_other,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		ListenAddr:      DefaultListenAddr,
		DataDir:         DefaultDataDir,
		SnapshotFile:    DefaultSnapshotFile,
		SnapshotSeconds: DefaultSnapshotSeconds,
		LogLevel:        DefaultLogLevel,
		AttrTimeout:     DefaultAttrTimeout,
		EntryTimeout:    DefaultEntryTimeout,
	}
}

// SnapshotPath returns the full path to the snapshot file within DataDir.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.DataDir, c.SnapshotFile)
}

// Merge applies non-nil values from override onto this Config.
func (c *Config) Merge(override *ConfigOverride) {
	if override.ListenAddr != nil {
		c.ListenAddr = *override.ListenAddr
	}
	if override.DataDir != nil {
		c.DataDir = *override.DataDir
	}
	if override.SnapshotFile != nil {
		c.SnapshotFile = *override.SnapshotFile
	}
	if override.SnapshotSeconds != nil {
		c.SnapshotSeconds = *override.SnapshotSeconds
	}
	if override.LogLevel != nil {
		c.LogLevel = *override.LogLevel
	}
	if override.AttrTimeout != nil {
		c.AttrTimeout = *override.AttrTimeout
	}
	if override.EntryTimeout != nil {
		c.EntryTimeout = *override.EntryTimeout
	}
	if override.ReadOnly != nil {
		c.ReadOnly = *override.ReadOnly
	}
	if override.AllowOther != nil {
		c.AllowOther = *override.AllowOther
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file
// without merging. Supports YAML (.yaml, .yml) and JSON (.json).
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a Config by merging file overrides with
// defaults. If path does not exist, a default config is written there
// (so a first run leaves behind an editable config file) and returned.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefaultConfig(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}

func writeDefaultConfig(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}
