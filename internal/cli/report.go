package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/cobmap/cobmap/pkg/depgraph"
	"github.com/cobmap/cobmap/pkg/export"
	"github.com/cobmap/cobmap/pkg/pipeline"
)

// maxCyclesListed bounds how many cycles the plain report prints before
// referring the user to the interactive browser.
const maxCyclesListed = 20

// reportOpts holds the command-line flags for the report command.
type reportOpts struct {
	maxCycles   int  // cycle enumeration cap
	timeout     int  // analysis timeout in seconds
	jsonOut     bool // print the report as JSON instead of styled text
	interactive bool // browse cycles in a TUI
	noCache     bool // disable the result cache
	refresh     bool // bypass the cache for this run
}

// reportCommand creates the report command: print the connectivity report
// for a COBOL codebase.
func (c *CLI) reportCommand() *cobra.Command {
	var opts reportOpts

	cmd := &cobra.Command{
		Use:   "report [paths...]",
		Short: "Print the dependency report (cycles, components, warnings)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReport(cmd, args, &opts)
		},
	}

	cmd.Flags().IntVar(&opts.maxCycles, "max-cycles", 0, "cycle enumeration cap (0 = config default, -1 = unbounded)")
	cmd.Flags().IntVar(&opts.timeout, "timeout", 0, "analysis timeout in seconds (0 = config default)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the report as JSON")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "browse cycles interactively")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

func (c *CLI) runReport(cmd *cobra.Command, args []string, opts *reportOpts) error {
	ctx := cmd.Context()

	timeout := opts.timeout
	if !cmd.Flags().Changed("timeout") {
		timeout = c.Config.Analysis.TimeoutSeconds
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(args)
	popts.Refresh = opts.refresh
	if cmd.Flags().Changed("max-cycles") {
		popts.MaxCycles = opts.maxCycles
	}

	spinner := newSpinnerWithContext(ctx, "Analyzing sources")
	spinner.Start()

	analyses, err := runner.Scan(ctx, popts)
	if err != nil {
		spinner.Stop()
		return err
	}
	g, warnings := pipeline.BuildGraph(analyses)
	digest := pipeline.Digest(analyses)

	report, cached, err := runner.AnalyzeWithCacheInfo(ctx, g, digest, popts)
	spinner.Stop()
	if err != nil {
		return err
	}

	if opts.jsonOut {
		data, err := export.Marshal(report)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	}

	printReport(g, report, warnings, cached)

	if report.Cycles == 0 {
		return nil
	}
	cycles := g.FindCycles(ctx, popts.EffectiveMaxCycles())
	if opts.interactive {
		model := NewCycleListModel(g, cycles)
		if _, err := tea.NewProgram(model, tea.WithOutput(os.Stderr)).Run(); err != nil {
			return err
		}
		return nil
	}
	printCycles(cycles)
	return nil
}

// printReport prints the styled connectivity report.
func printReport(g *depgraph.Graph, r depgraph.Report, warnings []depgraph.Warning, cached bool) {
	printNewline()
	fmt.Println(StyleTitle.Render("Dependency Report"))
	printStats(r.TotalNodes, r.TotalEdges, cached)
	printNewline()

	printKeyValue("Programs", fmt.Sprintf("%d (%d not analyzed)", r.ProgramNodes, r.PhantomNodes))
	printKeyValue("Files", fmt.Sprintf("%d", r.FileNodes))
	printKeyValue("Call edges", fmt.Sprintf("%d", r.CallEdges))
	printKeyValue("File edges", fmt.Sprintf("%d", r.FileEdges))
	printKeyValue("Components", fmt.Sprintf("%d", r.Components))
	printKeyValue("Isolated", fmt.Sprintf("%d", r.IsolatedNodes))

	cycleText := fmt.Sprintf("%d", r.Cycles)
	if r.CyclesTruncated {
		cycleText += " (truncated)"
	}
	printKeyValue("Cycles", cycleText)

	if len(warnings) > 0 {
		printNewline()
		for _, w := range warnings {
			printWarning("%s: %s", w.Kind, w.Detail)
		}
	}

	conn := g.Connectivity()
	if len(conn.Isolated) > 0 {
		printNewline()
		printDetail("Isolated: %s", strings.Join(conn.Isolated, ", "))
	}
}

// printCycles lists the detected cycles, up to maxCyclesListed.
func printCycles(res depgraph.CycleResult) {
	printNewline()
	fmt.Println(StyleTitle.Render("Circular Dependencies"))

	shown := len(res.Cycles)
	if shown > maxCyclesListed {
		shown = maxCyclesListed
	}
	for i := 0; i < shown; i++ {
		printDetail("%s", formatCycle(res.Cycles[i]))
	}
	if len(res.Cycles) > shown {
		printDetail("... and %d more (use -i to browse)", len(res.Cycles)-shown)
	}
	if res.Truncated {
		printWarning("cycle search truncated; raise --max-cycles to see more")
	}
}
