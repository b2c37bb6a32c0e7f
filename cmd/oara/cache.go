package main

import (
	"github.com/spf13/cobra"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/cache"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/config"
)

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the OpenAlex work cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number and age of cached works",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached work",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

// ClearResponse is the response for the cache clear command.
type ClearResponse struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Removed int64  `json:"removed"`
}

func mustOpenCache(cfg *config.Config) *cache.DB {
	if cfg.CachePath == "" {
		exitWithError(ExitConfigError, "work cache is disabled (cache_path is empty)")
	}
	db, err := cache.Open(cfg.CachePath)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	return db
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenCache(cfg)
	defer db.Close()

	stats, err := db.Stats(cmd.Context())
	if err != nil {
		db.Close()
		exitWithError(ExitDataError, "%v", err)
	}
	stats.Path = cfg.CachePath

	if !humanOutput {
		return outputJSON(stats)
	}
	outputHuman("path:   %s\n", stats.Path)
	outputHuman("works:  %d (%s)\n", stats.Works, formatBytes(stats.Bytes))
	if stats.Works > 0 {
		outputHuman("oldest: %s\n", stats.Oldest.Local().Format("2006-01-02 15:04"))
		outputHuman("newest: %s\n", stats.Newest.Local().Format("2006-01-02 15:04"))
	}
	outputHuman("ttl:    %s\n", cfg.CacheTTL)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	db := mustOpenCache(cfg)
	defer db.Close()

	n, err := db.Clear(cmd.Context())
	if err != nil {
		db.Close()
		exitWithError(ExitDataError, "%v", err)
	}

	if humanOutput {
		outputHuman("Removed %d cached work(s) from %s\n", n, cfg.CachePath)
		return nil
	}
	return outputJSON(ClearResponse{Status: "cleared", Path: cfg.CachePath, Removed: n})
}
