// Package commands implements the CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reportlens/reportlens/internal/cli/config"
	"github.com/reportlens/reportlens/internal/cli/output"
	"github.com/reportlens/reportlens/internal/extract"
	"github.com/reportlens/reportlens/internal/state"
	"github.com/reportlens/reportlens/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Store    core.Store // nil when history is disabled
}

// NewCommandContext creates a CommandContext with the run-history
// store opened when history is enabled. Returns the context and a
// cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	ctx := NewCommandContextWithoutStore(cmd)

	cleanup := func() {}
	if ctx.Cfg.History {
		store, err := openStore(ctx.Cfg)
		if err != nil {
			return nil, nil, err
		}
		ctx.Store = store
		cleanup = func() { _ = store.Close() }
	}
	return ctx, cleanup, nil
}

// NewCommandContextWithoutStore creates a CommandContext without
// opening the run-history store. Useful for read-only commands.
func NewCommandContextWithoutStore(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Extractor builds an extractor from the command context.
func (c *CommandContext) Extractor() *extract.Extractor {
	return extract.New(extract.Options{
		OutDir: c.Cfg.OutDir,
		Store:  c.Store,
		Logger: c.Logger,
	})
}

// getConfig returns the current configuration. It uses
// config.GetCurrentConfig() if available, otherwise falls back to
// environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		OutDir:       getEnvOrDefault("REPORTLENS_OUT_DIR", config.DefaultOutDir),
		StatePath:    getEnvOrDefault("REPORTLENS_STATE_PATH", config.DefaultStateFile),
		History:      os.Getenv("REPORTLENS_HISTORY") != "false",
		Verbose:      os.Getenv("REPORTLENS_VERBOSE") == "true",
		OutputFormat: os.Getenv("REPORTLENS_OUTPUT"),
		Watch:        config.WatchConfig{DebounceMs: config.DefaultDebounceMs},
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// openStore opens the run-history database, creating its directory
// and schema when missing.
func openStore(cfg *config.Config) (core.Store, error) {
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.InitSchema(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
