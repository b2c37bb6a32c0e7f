package main

import (
	"context"
	"errors"
	"os"

	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/cache"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/config"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/engine"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/graph"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/logctx"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/openalex"
	"github.com/piedpipr/obsidian-openalex-research-assistant/internal/vault"
)

// mustLoadConfig returns the effective configuration with the --vault
// override applied, or exits with ExitConfigError.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if vaultFlag != "" {
		cfg.VaultPath = config.ExpandPath(vaultFlag)
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}
	return cfg
}

// mustVault checks the configured vault and returns its path.
func mustVault(cfg *config.Config) string {
	root, err := cfg.ValidateVault()
	if err != nil {
		if errors.Is(err, config.ErrVaultNotConfigured) {
			exitWithError(ExitConfigError, "%s", config.HelpfulConfigMessage())
		}
		exitWithError(ExitConfigError, "%v", err)
	}
	return root
}

// newSource returns the OpenAlex client, wrapped in the work cache when one
// is configured. The returned func closes the cache.
func newSource(ctx context.Context, cfg *config.Config) (openalex.Source, func()) {
	var opts []openalex.ClientOption
	if cfg.Email != "" {
		opts = append(opts, openalex.WithEmail(cfg.Email))
	}
	if cfg.APIKey != "" {
		opts = append(opts, openalex.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openalex.WithBaseURL(cfg.BaseURL))
	}
	client := openalex.NewClient(opts...)
	if cfg.CachePath == "" {
		return client, func() {}
	}

	db, err := cache.Open(cfg.CachePath)
	if err != nil {
		logctx.From(ctx).Warn("work cache disabled", "path", cfg.CachePath, "error", err)
		return client, func() {}
	}
	return cache.NewSource(client, db, cfg.CacheTTL), func() { db.Close() }
}

// mustEngine builds an engine over the configured vault and indexes the
// existing hubs. The returned func releases the engine's resources.
func mustEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, func()) {
	root := mustVault(cfg)
	store, err := vault.NewOSStore(root)
	if err != nil {
		exitWithError(ExitConfigError, "opening vault: %v", err)
	}

	source, closeSource := newSource(ctx, cfg)
	eng := engine.New(store, source, engine.Options{
		PaperFolder: cfg.PaperFolder,
		HubFolder:   cfg.HubFolder,
		Limits: graph.Limits{
			MaxReferences: cfg.MaxReferences,
			MaxCitedBy:    cfg.MaxCitedBy,
		},
		PhantomLinks: cfg.PhantomLinks,
		RequestDelay: cfg.RequestDelay,
		Notifier:     engine.WriterNotifier{W: os.Stderr},
	})

	if _, err := eng.Registry().Rebuild(ctx); err != nil {
		closeSource()
		exitWithError(ExitDataError, "indexing hubs: %v", err)
	}
	return eng, closeSource
}
