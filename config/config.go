package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brettbedarf/questsh/internal/util"
	"gopkg.in/yaml.v3"
)

// Verbosity values accepted by [ConfigOverride.LogLvl].
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)

// Default configuration constants. See [Config] for field descriptions.
const (
	DefaultLogLvl      = util.WarnLevel
	DefaultUser        = "user"
	DefaultHostname    = "quest"
	DefaultHistorySize = 100
)

// Config contains runtime configuration values for a shell session.
type Config struct {
	LogLvl      util.LogLevel // Internal log level (Default warn)
	User        string        // Simulated login name; HOME becomes /home/<User> (Default "user")
	Hostname    string        // Reported by hostname/uname and shown in the prompt (Default "quest")
	HistorySize int           // Maximum history entries kept per session (Default 100)
	SeedFile    string        // Optional node definitions replacing the built-in skeleton
	SessionFile string        // Optional snapshot restored on start and saved on exit
}

// Home returns the home directory derived from User.
func (c *Config) Home() string {
	return "/home/" + c.User
}

// Env returns the initial environment of a session.
func (c *Config) Env() map[string]string {
	return map[string]string{
		"HOME":     c.Home(),
		"USER":     c.User,
		"LOGNAME":  c.User,
		"HOSTNAME": c.Hostname,
		"SHELL":    "/bin/bash",
		"PATH":     "/usr/local/bin:/usr/bin:/bin",
	}
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	// LogLvl is a verbosity between 1 (error) and 5 (trace), not a [util.LogLevel]
	LogLvl      *int    `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	User        *string `yaml:"user,omitempty" json:"user,omitempty"`
	Hostname    *string `yaml:"hostname,omitempty" json:"hostname,omitempty"`
	HistorySize *int    `yaml:"history_size,omitempty" json:"history_size,omitempty"`
	SeedFile    *string `yaml:"seed_file,omitempty" json:"seed_file,omitempty"`
	SessionFile *string `yaml:"session_file,omitempty" json:"session_file,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		LogLvl:      DefaultLogLvl,
		User:        DefaultUser,
		Hostname:    DefaultHostname,
		HistorySize: DefaultHistorySize,
	}
}

// NewConfig returns the defaults with override applied; override may be nil.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.LogLvl != nil {
		c.LogLvl = util.VerboseToLevel(*override.LogLvl)
	}
	if override.User != nil && *override.User != "" {
		c.User = *override.User
	}
	if override.Hostname != nil && *override.Hostname != "" {
		c.Hostname = *override.Hostname
	}
	if override.HistorySize != nil {
		c.HistorySize = max(*override.HistorySize, 0)
	}
	if override.SeedFile != nil {
		c.SeedFile = *override.SeedFile
	}
	if override.SessionFile != nil {
		c.SessionFile = *override.SessionFile
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
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

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}
