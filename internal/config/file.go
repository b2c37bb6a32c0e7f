package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// Dir is the directory name under XDG_CONFIG_HOME and XDG_CACHE_HOME.
	Dir = "oara"
	// File is the config file name.
	File = "config.yml"
)

// cache holds the loaded file configuration.
var cache *Config

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/oara/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, Dir, File)
}

// Load returns the effective configuration: defaults, then the config
// file, then environment overrides. The file is read once and cached.
func Load() (*Config, error) {
	if cache == nil {
		cfg, err := LoadFile(Path())
		if err != nil {
			return nil, err
		}
		cache = cfg
	}
	cfg := *cache
	cfg.ApplyEnv()
	return &cfg, nil
}

// LoadFile reads the config file at path over the defaults. A missing file
// yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.VaultPath = ExpandPath(cfg.VaultPath)
	cfg.CachePath = ExpandPath(cfg.CachePath)
	return cfg, nil
}

// ResetCache clears the cached config.
// Useful for testing.
func ResetCache() {
	cache = nil
}

// Save writes c to path, creating the directory if needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	ResetCache()
	return nil
}
