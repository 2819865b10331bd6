// Package pkg provides the core libraries for cobmap dependency analysis.
//
// # Overview
//
// cobmap scans COBOL codebases, extracts structural facts (program calls and
// file usage), and builds a dependency graph that can be queried, reported
// on, and rendered. The pkg directory is organized into these areas:
//
//  1. [cobol] - Source scanning and structural fact extraction
//  2. [depgraph] - Graph construction, cycle detection, connectivity
//  3. [export] - Stable JSON and Graphviz export surfaces
//  4. [pipeline] - Orchestration (scan → build → analyze → render)
//  5. [cache], [config], [errors], [observability] - Infrastructure
//
// # Architecture
//
// The typical data flow through cobmap:
//
//	COBOL sources (.cob, .cbl, .cpy)
//	         ↓
//	    [cobol] package (scan + extract facts)
//	         ↓
//	    [depgraph] package (build graph, detect cycles, components)
//	         ↓
//	    [export] package (JSON documents, DOT/SVG/PNG)
//
// # Quick Start
//
// Analyze a source tree and print the connectivity report:
//
//	import (
//	    "context"
//	    "github.com/cobmap/cobmap/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Paths: []string{"./src"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d cycles across %d programs\n",
//	    result.Report.Cycles, result.Report.ProgramNodes)
//
// # Main Packages
//
// [cobol] - Walks source trees, filters by extension, and extracts per-file
// facts: program IDs, CALL targets, and file assignments. Extraction is
// line-oriented and tolerant of malformed sources.
//
// [depgraph] - An immutable dependency graph built from extracted facts.
// Duplicate program IDs resolve keep-first; called-but-never-analyzed
// programs become phantom nodes. Cycle enumeration uses Johnson's algorithm
// with a configurable cap, and connectivity uses Tarjan's strongly connected
// components.
//
// [export] - The stable export surface: deterministic JSON documents and
// Graphviz DOT in three styles (detailed, simple, calls-only), plus SVG and
// PNG rendering.
//
// [pipeline] - The complete analysis pipeline used by every CLI command.
// Results are cached by a digest of the extracted facts, so unchanged trees
// re-analyze cheaply.
//
// [cache] - Result cache interface with file, Redis, and null backends.
//
// [config] - TOML configuration loading (.cobmap.toml) with validation.
//
// [errors] - Structured errors with machine-readable codes and input
// validation helpers.
//
// [observability] - Optional hook points for instrumenting analysis and
// cache behavior.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/depgraph/...   # Specific package
//
// [cobol]: https://pkg.go.dev/github.com/cobmap/cobmap/pkg/cobol
// [depgraph]: https://pkg.go.dev/github.com/cobmap/cobmap/pkg/depgraph
// [export]: https://pkg.go.dev/github.com/cobmap/cobmap/pkg/export
// [pipeline]: https://pkg.go.dev/github.com/cobmap/cobmap/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/cobmap/cobmap/pkg/cache
// [config]: https://pkg.go.dev/github.com/cobmap/cobmap/pkg/config
// [errors]: https://pkg.go.dev/github.com/cobmap/cobmap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/cobmap/cobmap/pkg/observability
package pkg
