package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/hub"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/vault"
)

func init() {
	rootCmd.AddCommand(hubsCmd)
}

var hubsCmd = &cobra.Command{
	Use:   "hubs",
	Short: "List the citation hubs in the vault",
	Long: `Rebuild the hub index from the hub folder and list every hub with its
OpenAlex id and parent paper. Hubs that cannot be parsed are reported and
left untouched.`,
	Args: cobra.NoArgs,
	RunE: runHubs,
}

// HubsResponse is the response for the hubs command.
type HubsResponse struct {
	Hubs    []hub.Entry    `json:"hubs"`
	Skipped []SkippedEntry `json:"skipped,omitempty"`
}

// SkippedEntry is a hub document that could not be indexed.
type SkippedEntry struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func runHubs(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	store, err := vault.NewOSStore(mustVault(cfg))
	if err != nil {
		exitWithError(ExitConfigError, "opening vault: %v", err)
	}

	reg := hub.NewRegistry(store, cfg.HubFolder)
	parseErrs, err := reg.Rebuild(cmd.Context())
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	resp := HubsResponse{Hubs: reg.Entries()}
	for _, pe := range parseErrs {
		resp.Skipped = append(resp.Skipped, SkippedEntry{Path: pe.Path, Reason: pe.Reason})
	}

	if !humanOutput {
		return outputJSON(resp)
	}
	for _, e := range resp.Hubs {
		parent := e.ParentPaper
		if parent == "" {
			parent = "-"
		}
		fmt.Printf("%-40s %-14s %s\n", e.Path, openalex.ShortID(e.ID), parent)
	}
	for _, s := range resp.Skipped {
		fmt.Printf("skipped %s: %s\n", s.Path, s.Reason)
	}
	outputHuman("%d hub(s), %d skipped\n", len(resp.Hubs), len(resp.Skipped))
	return nil
}
