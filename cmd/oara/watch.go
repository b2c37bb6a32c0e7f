package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/engine"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/logctx"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/watch"
)

var watchForce bool

func init() {
	watchCmd.Flags().BoolVar(&watchForce, "force", false, "Watch even when auto mode is off")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process paper notes as they change",
	Long: `Watch the vault and process paper notes when they are created or edited.

Events for one note are coalesced until it has been quiet for the debounce
delay. Notes are processed one at a time. Requires auto mode (oara auto on)
unless --force is given. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if !cfg.AutoMode && !watchForce {
		exitWithError(ExitConfigError, "auto mode is off (enable with: oara auto on)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logctx.From(ctx)

	eng, closeEngine := mustEngine(ctx, cfg)
	defer closeEngine()

	queue := engine.NewQueue(cfg.Debounce)
	w, err := watch.New(cfg.VaultPath, queue, cfg.HubFolder)
	if err != nil {
		closeEngine()
		exitWithError(ExitError, "%v", err)
	}
	defer w.Close()

	sched := engine.NewScheduler(queue, eng, func(r engine.Report) {
		if !humanOutput {
			outputJSON(r)
		} else if r.Status != engine.StatusFailed {
			printReportsHuman([]engine.Report{r})
		}
	})

	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	log.Info("watching vault", "path", cfg.VaultPath, "debounce", cfg.Debounce)
	if err := w.Run(ctx); err != nil {
		queue.Close()
		<-done
		return fmt.Errorf("watching vault: %w", err)
	}
	queue.Close()
	if err := <-done; err != nil && !errors.Is(err, ctx.Err()) {
		return err
	}
	log.Info("stopped watching")
	return nil
}
