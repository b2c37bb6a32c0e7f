// Package config handles the oara configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the configuration stored in ~/.config/oara/config.yml.
type Config struct {
	VaultPath     string        `yaml:"vault_path,omitempty"`
	PaperFolder   string        `yaml:"paper_folder,omitempty"`
	HubFolder     string        `yaml:"hub_folder"`
	MaxReferences int           `yaml:"max_references"`
	MaxCitedBy    int           `yaml:"max_cited_by"`
	PhantomLinks  bool          `yaml:"phantom_links"`
	RequestDelay  time.Duration `yaml:"request_delay"`
	Debounce      time.Duration `yaml:"debounce"`
	AutoMode      bool          `yaml:"auto_mode"`
	Email         string        `yaml:"email,omitempty"`
	APIKey        string        `yaml:"api_key,omitempty"`
	BaseURL       string        `yaml:"base_url,omitempty"`
	CachePath     string        `yaml:"cache_path"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
}

// Environment variables that override the file.
const (
	EnvVault  = "OARA_VAULT"
	EnvEmail  = "OPENALEX_EMAIL"
	EnvAPIKey = "OPENALEX_API_KEY"
)

var (
	// ErrVaultNotConfigured is returned when no vault path is set.
	ErrVaultNotConfigured = errors.New("vault_path not configured")

	// ErrVaultNotExist is returned when the configured vault doesn't exist.
	ErrVaultNotExist = errors.New("vault_path does not exist")
)

// Default returns the configuration used for keys the file does not set.
func Default() *Config {
	return &Config{
		HubFolder:     "Paper Hubs",
		MaxReferences: 50,
		MaxCitedBy:    50,
		PhantomLinks:  true,
		RequestDelay:  200 * time.Millisecond,
		Debounce:      2 * time.Second,
		CachePath:     DefaultCachePath(),
		CacheTTL:      7 * 24 * time.Hour,
	}
}

// DefaultCachePath returns $XDG_CACHE_HOME/oara/works.db, or "" when no
// cache directory is available.
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, Dir, "works.db")
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvVault); v != "" {
		c.VaultPath = ExpandPath(v)
	}
	if v := os.Getenv(EnvEmail); v != "" {
		c.Email = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
}

// Validate checks limits and durations. It does not require a vault; see
// ValidateVault.
func (c *Config) Validate() error {
	if c.MaxReferences < 0 {
		return fmt.Errorf("max_references must not be negative (got %d)", c.MaxReferences)
	}
	if c.MaxCitedBy < 0 {
		return fmt.Errorf("max_cited_by must not be negative (got %d)", c.MaxCitedBy)
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("request_delay must not be negative (got %s)", c.RequestDelay)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative (got %s)", c.Debounce)
	}
	if c.HubFolder == "" {
		return errors.New("hub_folder must not be empty")
	}
	if filepath.IsAbs(c.HubFolder) || filepath.IsAbs(c.PaperFolder) {
		return errors.New("hub_folder and paper_folder must be relative to the vault")
	}
	return nil
}

// ValidateVault returns the vault path after checking it is a directory.
func (c *Config) ValidateVault() (string, error) {
	if c.VaultPath == "" {
		return "", ErrVaultNotConfigured
	}
	info, err := os.Stat(c.VaultPath)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrVaultNotExist, c.VaultPath)
	}
	return c.VaultPath, nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}

// HelpfulConfigMessage explains how to point oara at a vault.
func HelpfulConfigMessage() string {
	configPath := Path()
	return fmt.Sprintf(`No vault configured.

Tip: set %s, pass --vault, or create %s:
  mkdir -p %s
  echo 'vault_path: /path/to/your/vault' > %s`,
		EnvVault,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
