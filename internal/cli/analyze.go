package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cobmap/cobmap/pkg/export"
)

// analyzeOpts holds the command-line flags for the analyze command.
type analyzeOpts struct {
	output     string   // graph JSON output path
	programs   string   // per-program analysis JSON output path (optional)
	extensions []string // source extensions to scan
	excludes   []string // glob patterns to skip
	workers    int      // parallel extraction bound
	maxCycles  int      // cycle enumeration cap
	noCache    bool     // disable the result cache
	refresh    bool     // bypass the cache for this run
}

// analyzeCommand creates the analyze command: scan sources, build the
// dependency graph, and export it as JSON.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts analyzeOpts

	cmd := &cobra.Command{
		Use:   "analyze [paths...]",
		Short: "Scan COBOL sources and export the dependency graph",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "graph.json", "graph JSON output file")
	cmd.Flags().StringVar(&opts.programs, "programs", "", "also write per-program analyses to this file")
	cmd.Flags().StringSliceVar(&opts.extensions, "ext", nil, "source extensions to scan (default .cob,.cbl,.cpy)")
	cmd.Flags().StringSliceVar(&opts.excludes, "exclude", nil, "glob patterns matched against file names to skip")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "parallel extraction workers (0 = default)")
	cmd.Flags().IntVar(&opts.maxCycles, "max-cycles", 0, "cycle enumeration cap (0 = config default, -1 = unbounded)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

func (c *CLI) runAnalyze(cmd *cobra.Command, args []string, opts *analyzeOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(args)
	popts.Refresh = opts.refresh
	if cmd.Flags().Changed("ext") {
		popts.Extensions = opts.extensions
	}
	if cmd.Flags().Changed("exclude") {
		popts.Excludes = opts.excludes
	}
	if cmd.Flags().Changed("workers") {
		popts.Workers = opts.workers
	}
	if cmd.Flags().Changed("max-cycles") {
		popts.MaxCycles = opts.maxCycles
	}

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analyzed %d sources", result.Stats.FileCount))

	data, err := export.Marshal(export.Graph(result.Graph, result.Warnings))
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}

	if opts.programs != "" {
		progData, err := export.Marshal(export.Programs(result.Analyses))
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.programs, progData, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.programs, err)
		}
	}

	printSuccess("Exported dependency graph")
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.ReportHit)
	for _, w := range result.Warnings {
		printWarning("%s: %s", w.Kind, w.Detail)
	}
	printFile(opts.output)
	if opts.programs != "" {
		printFile(opts.programs)
	}
	printNewline()
	printNextStep("Inspect the structure", fmt.Sprintf("%s report %s", appName, args[0]))
	return nil
}
