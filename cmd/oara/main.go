// Package main provides the oara CLI entry point.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/logctx"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
	vaultFlag   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitWithError(ExitError, "%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "oara",
	Short: "Citation hubs for a vault of paper notes",
	Long: `oara links the paper notes in a markdown vault through OpenAlex.

For every paper note it resolves the OpenAlex work (by DOI, then title),
writes the metadata back into the note, and keeps one hub document per work
listing the papers it cites and the papers citing it. All commands output
JSON by default; pass --human for text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(logctx.With(ctx, logctx.New(os.Stderr, verbose)))
	},
}

func init() {
	// Load .env file if present (silently ignore if missing)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages to stderr")
	rootCmd.PersistentFlags().StringVar(&vaultFlag, "vault", "", "Vault directory (overrides vault_path and OARA_VAULT)")
	rootCmd.Version = Version
}
