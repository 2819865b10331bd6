package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/cobmap/cobmap/pkg/pipeline"
)

// watchDebounce coalesces bursts of filesystem events into one re-analysis.
// Editors typically fire several events per save.
const watchDebounce = 300 * time.Millisecond

// watchOpts holds the command-line flags for the watch command.
type watchOpts struct {
	noCache bool
}

// watchCommand creates the watch command: re-analyze sources whenever they
// change and print an updated summary.
func (c *CLI) watchCommand() *cobra.Command {
	var opts watchOpts

	cmd := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Watch COBOL sources and re-analyze on change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd, args, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runWatch(cmd *cobra.Command, args []string, opts *watchOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, path := range args {
		if err := watchTree(watcher, path); err != nil {
			return err
		}
	}

	popts := c.pipelineOptions(args)
	c.watchAnalyze(ctx, runner, popts)
	printDetail("watching %d paths, ctrl+c to stop", len(args))

	var debounce *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// New directories must be added to the watch set as they
			// appear, or changes inside them go unseen.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watchTree(watcher, event.Name)
				}
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
				debounceCh = debounce.C
			} else {
				debounce.Reset(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("watch error: %v", err)
		case <-debounceCh:
			debounce = nil
			debounceCh = nil
			c.watchAnalyze(ctx, runner, popts)
		}
	}
}

// watchAnalyze runs one analysis pass and prints a compact summary. Watch
// keeps running after a failed pass; a syntax error mid-edit is expected.
func (c *CLI) watchAnalyze(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) {
	start := time.Now()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		printError("analysis failed: %v", err)
		return
	}

	printInfo("%s analyzed %d files in %s",
		time.Now().Format("15:04:05"),
		result.Stats.FileCount,
		time.Since(start).Round(time.Millisecond))

	r := result.Report
	cycleText := StyleDim.Render("no cycles")
	if r.Cycles > 0 {
		cycleText = StyleWarning.Render(fmt.Sprintf("%d cycles", r.Cycles))
	}
	printDetail("%d nodes, %d edges, %d components, %s",
		r.TotalNodes, r.TotalEdges, r.Components, cycleText)
	for _, w := range result.Warnings {
		printWarning("%s: %s", w.Kind, w.Detail)
	}
}

// watchTree registers path and, when it is a directory, every directory
// below it. fsnotify watches are not recursive.
func watchTree(w *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
