package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the dbginfo tool configuration.
type Config struct {
	// Format settings control how Load reacts to a file whose version
	// doesn't exactly match the format this package implements.
	Format struct {
		AcceptNewerMinor bool `toml:"accept_newer_minor"`
		AcceptNewerMajor bool `toml:"accept_newer_major"`
	} `toml:"format"`

	// Capacity settings are per-kind record-count hints, not limits. They
	// are stored and round-tripped only: dbginfo.Load does not read them,
	// and only a file's own "info" record pre-sizes the by-id collections.
	Capacity struct {
		Files    int `toml:"files"`
		Libs     int `toml:"libs"`
		Lines    int `toml:"lines"`
		Modules  int `toml:"modules"`
		Scopes   int `toml:"scopes"`
		Segments int `toml:"segments"`
		Spans    int `toml:"spans"`
		Symbols  int `toml:"symbols"`
	} `toml:"capacity"`

	// CLI settings are loaded by cmd/dbginfo; its output does not depend on
	// them (numbers print in hex, without color), and cmd/dbgview does not
	// load a Config.
	CLI struct {
		ColorOutput  bool   `toml:"color_output"`
		NumberFormat string `toml:"number_format"` // hex, dec, both
	} `toml:"cli"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Format.AcceptNewerMinor = true
	cfg.Format.AcceptNewerMajor = true

	cfg.Capacity.Files = 0
	cfg.Capacity.Libs = 0
	cfg.Capacity.Lines = 0
	cfg.Capacity.Modules = 0
	cfg.Capacity.Scopes = 0
	cfg.Capacity.Segments = 0
	cfg.Capacity.Spans = 0
	cfg.Capacity.Symbols = 0

	cfg.CLI.ColorOutput = true
	cfg.CLI.NumberFormat = "hex"

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "dbginfo")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "dbginfo")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file. A missing file is
// not an error: Load returns the default configuration.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
