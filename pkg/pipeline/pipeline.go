// Package pipeline provides the core analysis pipeline for cobmap.
//
// This package implements the complete scan → build → analyze → render
// pipeline that is shared by the CLI commands and the HTTP server. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Scan: Discover COBOL sources and extract structural facts
//  2. Build: Ingest the facts into an immutable dependency graph
//  3. Analyze: Compute the connectivity report (cycles, components)
//  4. Render: Generate output artifacts (DOT, SVG, PNG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Paths:  []string{"src/cobol"},
//	    Style:  "detailed",
//	    Format: "svg",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifact
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cobmap/cobmap/pkg/cobol"
	"github.com/cobmap/cobmap/pkg/depgraph"
	"github.com/cobmap/cobmap/pkg/errors"
	"github.com/cobmap/cobmap/pkg/export"
)

// DefaultMaxCycles caps cycle enumeration for pipeline runs. Pathological
// call graphs have exponentially many elementary cycles; a report that says
// "at least 1000, truncated" is more useful than one that never arrives.
// Callers can lift the cap by setting MaxCycles explicitly to -1.
const DefaultMaxCycles = 1000

// Options contains all configuration for the analysis pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Scan options
	Paths      []string `json:"paths"`
	Extensions []string `json:"extensions,omitempty"`
	Excludes   []string `json:"excludes,omitempty"`
	Workers    int      `json:"workers,omitempty"`

	// Analysis options. MaxCycles zero picks DefaultMaxCycles; negative
	// means unbounded.
	MaxCycles int `json:"max_cycles,omitempty"`

	// Render options
	Style  string `json:"style,omitempty"`
	Format string `json:"format,omitempty"`

	// Refresh bypasses the cache for this run.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the built dependency graph.
	Graph *depgraph.Graph

	// Warnings are the non-fatal problems seen while building the graph.
	Warnings []depgraph.Warning

	// Analyses are the per-file extraction results, ordered by source path.
	Analyses []cobol.Analysis

	// SourceDigest identifies the scanned inputs for cache keys.
	SourceDigest string

	// Report is the connectivity report.
	Report depgraph.Report

	// Artifact is the rendered output in the requested format.
	Artifact []byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	FileCount   int
	NodeCount   int
	EdgeCount   int
	ScanTime    time.Duration
	BuildTime   time.Duration
	AnalyzeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ReportHit   bool // Whether the connectivity report came from cache
	ArtifactHit bool // Whether the rendered artifact came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Paths) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one source path is required")
	}
	for _, p := range o.Paths {
		if err := errors.ValidateSourcePath(p); err != nil {
			return err
		}
	}
	if _, err := export.ParseStyle(o.Style); err != nil {
		return err
	}
	if _, err := export.ParseFormat(o.Format); err != nil {
		return err
	}
	if o.MaxCycles == 0 {
		o.MaxCycles = DefaultMaxCycles
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// EffectiveMaxCycles maps the option encoding onto the graph API, where
// zero means unbounded.
func (o *Options) EffectiveMaxCycles() int {
	if o.MaxCycles < 0 {
		return 0
	}
	return o.MaxCycles
}

// scanner builds the source scanner for these options.
func (o *Options) scanner() *cobol.Scanner {
	return &cobol.Scanner{
		Extensions: o.Extensions,
		Excludes:   o.Excludes,
		Workers:    o.Workers,
	}
}
