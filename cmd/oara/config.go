package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

Usage:
  oara config                           # Show the effective config
  oara config hub-folder                # Get specific value
  oara config hub-folder "Paper Hubs"   # Set value
  oara config request-delay 500ms       # Durations use Go syntax

Keys:
  vault-path      Vault directory
  paper-folder    Folder scanned by "process --all" (empty for the whole vault)
  hub-folder      Folder holding hub documents
  max-references  Referenced works linked per paper
  max-cited-by    Citing works linked per paper
  phantom-links   Create hubs for linked works outside the vault
  request-delay   Pause between OpenAlex requests
  debounce        Quiet period before a changed note is processed
  auto-mode       Process notes from "oara watch"
  email           Contact address for the OpenAlex polite pool
  api-key         OpenAlex API key
  base-url        OpenAlex API base URL
  cache-path      Work cache database (empty disables the cache)
  cache-ttl       How long cached works stay fresh (0 keeps them forever)`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

// configKeys lists the settable keys in file order.
var configKeys = []string{
	"vault_path", "paper_folder", "hub_folder", "max_references", "max_cited_by",
	"phantom_links", "request_delay", "debounce", "auto_mode", "email",
	"api_key", "base_url", "cache_path", "cache_ttl",
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	// No args: show the effective config
	if len(args) == 0 {
		cfg := mustLoadConfig()
		values, err := configValues(cfg)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if !humanOutput {
			return outputJSON(values)
		}
		for _, k := range configKeys {
			outputHuman("%-15s %s\n", strings.ReplaceAll(k, "_", "-")+":", values[k])
		}
		return nil
	}

	key := normalizeKey(args[0])
	if !isConfigKey(key) {
		exitWithError(ExitError, "unknown config key: %s\nValid keys: %s", args[0], strings.Join(configKeys, ", "))
	}

	if len(args) == 1 {
		values, err := configValues(mustLoadConfig())
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			outputHuman("%s\n", values[key])
			return nil
		}
		return outputJSON(map[string]string{key: values[key]})
	}

	// Set writes the file only, so environment overrides stay out of it.
	path := config.Path()
	cfg, err := config.LoadFile(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := setConfigValue(cfg, key, args[1]); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(path); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	if humanOutput {
		outputHuman("Set %s = %s\n", key, args[1])
		return nil
	}
	return outputJSON(UpdateResponse{Status: "updated", Key: key, Value: args[1]})
}

// normalizeKey converts "hub-folder" to "hub_folder".
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}

func isConfigKey(key string) bool {
	for _, k := range configKeys {
		if k == key {
			return true
		}
	}
	return false
}

// configValues renders every key of cfg as text, with the API key masked.
func configValues(cfg *config.Config) (map[string]string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	values := make(map[string]string, len(configKeys))
	for _, k := range configKeys {
		if v, ok := raw[k]; ok && v != nil {
			values[k] = fmt.Sprint(v)
		} else {
			values[k] = ""
		}
	}
	values["api_key"] = maskSecret(values["api_key"])
	return values, nil
}

// setConfigValue decodes value into the field tagged key, with the same
// rules as the config file, and validates the result.
func setConfigValue(cfg *config.Config, key, value string) error {
	val := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	if value == "" {
		// A bare empty scalar is null, which would leave the field unchanged.
		val.Style = yaml.DoubleQuotedStyle
	}
	node := yaml.Node{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{{Kind: yaml.ScalarNode, Value: key}, val},
	}
	if err := node.Decode(cfg); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	cfg.VaultPath = config.ExpandPath(cfg.VaultPath)
	cfg.CachePath = config.ExpandPath(cfg.CachePath)
	return cfg.Validate()
}
