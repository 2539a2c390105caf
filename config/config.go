// Package config loads and saves the toolchain's TOML configuration
// file: assembler defaults, VM execution limits, debugger display
// preferences, and the analyzer's token output format.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every user-tunable setting across the toolchain.
type Config struct {
	Assembler struct {
		DefaultOrigin string `toml:"default_origin"` // e.g. "0x3000"
	} `toml:"assembler"`

	VM struct {
		MaxSteps   uint64 `toml:"max_steps"`
		OSImage    string `toml:"os_image"`
		TraceSteps bool   `toml:"trace_steps"`
	} `toml:"vm"`

	Debugger struct {
		HistorySize   int  `toml:"history_size"`
		ShowSource    bool `toml:"show_source"`
		ShowRegisters bool `toml:"show_registers"`
		BytesPerLine  int  `toml:"bytes_per_line"`
	} `toml:"debugger"`

	Analyzer struct {
		TokenFormat string `toml:"token_format"` // "json" or "yaml"
	} `toml:"analyzer"`
}

// DefaultConfig returns a Config populated with the toolchain's defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assembler.DefaultOrigin = "0x3000"

	cfg.VM.MaxSteps = 1000000
	cfg.VM.OSImage = ""
	cfg.VM.TraceSteps = false

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowSource = true
	cfg.Debugger.ShowRegisters = true
	cfg.Debugger.BytesPerLine = 16

	cfg.Analyzer.TokenFormat = "json"

	return cfg
}

// GetConfigPath returns the platform-specific config file path,
// creating its parent directory if necessary.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "lc3")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "lc3")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}
	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific directory for trace and log
// output, creating it if necessary.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "lc3", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "."
		}
		logDir = filepath.Join(homeDir, ".config", "lc3", "logs")

	default:
		return "."
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "."
	}
	return logDir
}

// Load reads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom reads configuration from path, falling back to defaults for
// any field left unset and returning the defaults outright when path
// doesn't exist.
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

// Save writes the configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes the configuration to path as TOML.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
