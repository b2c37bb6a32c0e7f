package main

import (
	"github.com/spf13/cobra"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/config"
)

func init() {
	rootCmd.AddCommand(autoCmd)
}

var autoCmd = &cobra.Command{
	Use:   "auto [on|off]",
	Short: "Show or toggle auto mode",
	Long: `Show or toggle auto mode.

In auto mode "oara watch" processes paper notes as they are created or
edited. The setting is stored in the config file.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runAuto,
}

// AutoResponse is the response for the auto command.
type AutoResponse struct {
	AutoMode bool   `json:"auto_mode"`
	Path     string `json:"path,omitempty"`
}

func runAuto(cmd *cobra.Command, args []string) error {
	path := config.Path()
	cfg, err := config.LoadFile(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}

	if len(args) == 1 {
		switch args[0] {
		case "on":
			cfg.AutoMode = true
		case "off":
			cfg.AutoMode = false
		default:
			exitWithError(ExitError, "expected on or off, got %q", args[0])
		}
		if err := cfg.Save(path); err != nil {
			exitWithError(ExitConfigError, "%v", err)
		}
	}

	if humanOutput {
		state := "off"
		if cfg.AutoMode {
			state = "on"
		}
		outputHuman("auto mode: %s\n", state)
		return nil
	}
	return outputJSON(AutoResponse{AutoMode: cfg.AutoMode, Path: path})
}
