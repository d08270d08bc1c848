// Package config provides configuration loading for tabctl.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the optional tabctl configuration. All fields have working
// defaults; the config file only overrides them.
type Config struct {
	// RequestTimeoutMS bounds a full request/response exchange.
	RequestTimeoutMS int `toml:"request-timeout-ms"`

	// ReadyAttempts and ReadyIntervalMS bound the daemon readiness poll.
	ReadyAttempts   int `toml:"ready-attempts"`
	ReadyIntervalMS int `toml:"ready-interval-ms"`

	// LogLevel controls daemon log verbosity ("debug", "info", "warn", "error").
	LogLevel string `toml:"log-level"`

	// Browser contains browser engine options.
	Browser BrowserConfig `toml:"browser"`
}

// BrowserConfig contains options for the daemon's browser engine.
type BrowserConfig struct {
	// Headless runs the browser without a visible window.
	Headless *bool `toml:"headless"`

	// ExecPath overrides the browser binary location.
	ExecPath string `toml:"exec-path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	headless := true
	return &Config{
		RequestTimeoutMS: 30000,
		ReadyAttempts:    50,
		ReadyIntervalMS:  100,
		LogLevel:         "info",
		Browser:          BrowserConfig{Headless: &headless},
	}
}

// Path returns the path to the tabctl config file.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tabctl", "config.toml"), nil
}

// Load reads the config file, applying defaults for anything unset.
// A missing file is not an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the config from a specific path, applying defaults.
// A missing file is not an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	if cfg.RequestTimeoutMS <= 0 {
		cfg.RequestTimeoutMS = 30000
	}
	if cfg.ReadyAttempts <= 0 {
		cfg.ReadyAttempts = 50
	}
	if cfg.ReadyIntervalMS <= 0 {
		cfg.ReadyIntervalMS = 100
	}
	if cfg.Browser.Headless == nil {
		headless := true
		cfg.Browser.Headless = &headless
	}
	return cfg, nil
}

// RequestTimeout returns the exchange timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// ReadyInterval returns the readiness poll interval as a duration.
func (c *Config) ReadyInterval() time.Duration {
	return time.Duration(c.ReadyIntervalMS) * time.Millisecond
}

// Headless reports whether the browser should run headless.
func (c *Config) Headless() bool {
	return c.Browser.Headless == nil || *c.Browser.Headless
}
