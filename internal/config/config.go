// Package config holds the runtime configuration for gofup.
//
// The configuration is an explicit value constructed once at process start
// and passed into component constructors; there is no ambient global state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the config file name inside the config directory.
const DefaultFileName = "gofup.json"

// Config is the runtime configuration.
type Config struct {
	// DatabasePath is the location of the SQLite metadata cache.
	DatabasePath string `json:"database_path"`

	// LogPath is the location of the append-only log file.
	LogPath string `json:"log_path"`

	// MaxWildcardMatches caps how many categories a wildcard pattern may
	// match before the resolver refuses to prompt and asks the user to be
	// more specific. Zero means no cap.
	MaxWildcardMatches int `json:"max_wildcard_matches"`

	// ExpiryDays is how long the remote service keeps inactive files;
	// used only for listing presentation.
	ExpiryDays int `json:"expiry_days"`
}

// Default returns the configuration rooted at dir.
func Default(dir string) Config {
	return Config{
		DatabasePath:       filepath.Join(dir, "gofup.db"),
		LogPath:            filepath.Join(dir, "gofup.log"),
		MaxWildcardMatches: 10,
		ExpiryDays:         10,
	}
}

// DefaultDir returns the per-user config directory, honoring an explicit
// override first and falling back to ~/.gofup.
func DefaultDir(override string) string {
	if override != "" {
		return override
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gofup"
	}
	return filepath.Join(home, ".gofup")
}

// Load reads the config file in dir, creating it with defaults when absent.
// Fields missing from an existing file keep their default values. The
// directories for the database and log file are created as a side effect.
func Load(dir string) (Config, error) {
	cfg := Default(dir)
	path := filepath.Join(dir, DefaultFileName)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		if err := Save(dir, cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	for _, p := range []string{cfg.DatabasePath, cfg.LogPath} {
		if d := filepath.Dir(p); d != "" {
			if err := os.MkdirAll(d, 0o700); err != nil {
				return cfg, fmt.Errorf("create directory %s: %w", d, err)
			}
		}
	}
	return cfg, nil
}

// Save writes cfg to the config file in dir.
func Save(dir string, cfg Config) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
