// Package cli implements the cobmap command-line interface.
//
// This package provides commands for analyzing COBOL codebases, reporting
// on their dependency structure, rendering dependency graphs, serving the
// analysis over HTTP, and managing the result cache. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - analyze: Extract facts and export the dependency graph as JSON
//   - report: Print the connectivity report (cycles, components, warnings)
//   - render: Generate DOT, SVG, or PNG visualizations
//   - serve: Expose the analysis over HTTP
//   - watch: Re-run the report whenever sources change
//   - cache: Manage the analysis result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cobmap/cobmap/pkg/buildinfo"
	"github.com/cobmap/cobmap/pkg/cache"
	"github.com/cobmap/cobmap/pkg/config"
	"github.com/cobmap/cobmap/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "cobmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	// configPath is the --config flag value; empty triggers the default
	// search order.
	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "cobmap maps the call structure of COBOL codebases",
		Long:         `cobmap scans legacy COBOL sources, extracts program calls and file usage, and builds a dependency graph you can query, render, and watch for circular dependencies.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			ctx := withLogger(cmd.Context(), c.Logger)
			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default .cobmap.toml)")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.reportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisAddr)
	default:
		fc, err := cache.NewFileCache(c.cacheDir())
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// cacheDir returns the cache directory, preferring the configured override,
// then XDG (~/.cache/cobmap/).
func (c *CLI) cacheDir() string {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", appName)
	}
	return cache.DefaultDir()
}

// pipelineOptions builds pipeline options from configuration; command flags
// override the fields afterwards.
func (c *CLI) pipelineOptions(paths []string) pipeline.Options {
	return pipeline.Options{
		Paths:      paths,
		Extensions: c.Config.Scan.Extensions,
		Excludes:   c.Config.Scan.Excludes,
		Workers:    c.Config.Scan.Workers,
		MaxCycles:  c.Config.Analysis.MaxCycles,
		Style:      c.Config.Render.Style,
		Format:     c.Config.Render.Format,
		Logger:     c.Logger,
	}
}
