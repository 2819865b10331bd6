package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cobmap/cobmap/pkg/errors"
	"github.com/cobmap/cobmap/pkg/export"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file path
	style   string // export style: detailed, simple, calls-only
	format  string // output format: dot, svg, png
	noCache bool   // disable the result cache
	refresh bool   // bypass the cache for this run
}

// renderCommand creates the render command for generating graph artifacts.
//
// Default settings come from configuration:
//   - style: detailed (nodes carry source metadata)
//   - format: dot (render externally with Graphviz)
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [paths...]",
		Short: "Render the dependency graph to DOT, SVG, or PNG",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default dependency_graph.<format>)")
	cmd.Flags().StringVar(&opts.style, "style", "", "export style: detailed (default), simple, calls-only")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot (default), svg, png")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(args)
	popts.Refresh = opts.refresh
	if opts.style != "" {
		popts.Style = opts.style
	}
	if opts.format != "" {
		popts.Format = opts.format
	}

	spinner := newSpinnerWithContext(ctx, "Rendering dependency graph")
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	spinner.Stop()
	if err != nil {
		return err
	}
	logger.Debugf("Generated %s: %d bytes", popts.Format, len(result.Artifact))

	outputPath := opts.output
	if outputPath == "" {
		format, _ := export.ParseFormat(popts.Format)
		outputPath = "dependency_graph." + string(format)
	}
	if err := errors.ValidateOutputPath(outputPath); err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, result.Artifact, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}

	printSuccess("Rendered %s", outputPath)
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.ArtifactHit)
	if strings.EqualFold(filepath.Ext(outputPath), ".dot") {
		printNewline()
		printNextStep("Generate an image", fmt.Sprintf("dot -Tpng %s -o graph.png", outputPath))
	}
	return nil
}
