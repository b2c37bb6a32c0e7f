package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/engine"
)

var processAll bool

func init() {
	processCmd.Flags().BoolVar(&processAll, "all", false, "Process every unprocessed paper note in the vault")
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process [note...]",
	Short: "Resolve paper notes and update their citation hubs",
	Long: `Resolve paper notes against OpenAlex and update their citation hubs.

Notes are given as paths relative to the vault (or absolute paths inside it).
With --all, every note under paper_folder that is not yet processed is
handled in turn; a failed note does not stop the batch.

Examples:
  oara process "Papers/Smith 2021.md"
  oara process --all --human`,
	RunE: runProcess,
}

// ProcessResponse is the response for the process command.
type ProcessResponse struct {
	Reports []engine.Report `json:"reports"`
	Failed  int             `json:"failed"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	if processAll == (len(args) > 0) {
		exitWithError(ExitError, "give note paths or --all, not both")
	}

	cfg := mustLoadConfig()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	eng, closeEngine := mustEngine(ctx, cfg)
	defer closeEngine()

	var reports []engine.Report
	code := ExitSuccess
	if processAll {
		var err error
		reports, err = eng.ProcessAll(ctx)
		if err != nil && ctx.Err() == nil {
			closeEngine()
			exitWithError(ExitDataError, "listing notes: %v", err)
		}
	} else {
		for _, arg := range args {
			if ctx.Err() != nil {
				break
			}
			p, err := vaultRelative(cfg.VaultPath, arg)
			if err != nil {
				closeEngine()
				exitWithError(ExitError, "%v", err)
			}
			rep, err := eng.Process(ctx, p)
			if err != nil {
				code = exitCodeFor(err)
			}
			reports = append(reports, rep)
		}
	}

	resp := ProcessResponse{Reports: reports}
	for _, r := range reports {
		if r.Status == engine.StatusFailed {
			resp.Failed++
			if code == ExitSuccess {
				code = ExitDataError
			}
		}
	}

	if humanOutput {
		printReportsHuman(reports)
		outputHuman("%d note(s), %d failed\n", len(reports), resp.Failed)
	} else {
		outputJSON(resp)
	}
	if code != ExitSuccess {
		closeEngine()
		os.Exit(code)
	}
	return nil
}

// vaultRelative converts a note argument to a vault-relative slash path.
// Relative arguments that do not exist from the working directory are taken
// as already vault-relative.
func vaultRelative(root, arg string) (string, error) {
	abs := arg
	if !filepath.IsAbs(arg) {
		if _, err := os.Stat(arg); err != nil {
			return filepath.ToSlash(filepath.Clean(arg)), nil
		}
		var err error
		if abs, err = filepath.Abs(arg); err != nil {
			return "", fmt.Errorf("resolving %s: %w", arg, err)
		}
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving vault path: %w", err)
	}
	rel, err := filepath.Rel(rootAbs, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the vault %s", arg, root)
	}
	return filepath.ToSlash(rel), nil
}

func printReportsHuman(reports []engine.Report) {
	for _, r := range reports {
		switch r.Status {
		case engine.StatusProcessed:
			fmt.Printf("processed  %s -> %s (%d cited, %d cited by)\n", r.Path, r.Hub, r.Cited, r.CitedBy)
		case engine.StatusFailed:
			fmt.Printf("failed     %s: %s\n", r.Path, r.Error)
		default:
			fmt.Printf("%-10s %s (%s)\n", r.Status, r.Path, r.Reason)
		}
	}
}
