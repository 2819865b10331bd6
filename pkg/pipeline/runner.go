package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cobmap/cobmap/pkg/cache"
	"github.com/cobmap/cobmap/pkg/cobol"
	"github.com/cobmap/cobmap/pkg/depgraph"
	"github.com/cobmap/cobmap/pkg/errors"
	"github.com/cobmap/cobmap/pkg/export"
	"github.com/cobmap/cobmap/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete scan → build → analyze → render pipeline with
// caching. Scan and build always run; the connectivity report and the
// rendered artifact are cached against a digest of the extracted facts.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}

	result := &Result{}

	// Stage 1: Scan
	scanStart := time.Now()
	analyses, err := r.Scan(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Analyses = analyses
	result.SourceDigest = Digest(analyses)
	result.Stats.ScanTime = time.Since(scanStart)
	result.Stats.FileCount = len(analyses)

	r.Logger.Info("scanned sources",
		"files", len(analyses),
		"duration", result.Stats.ScanTime)

	// Stage 2: Build
	buildStart := time.Now()
	result.Graph, result.Warnings = BuildGraph(analyses)
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = result.Graph.NodeCount()
	result.Stats.EdgeCount = result.Graph.EdgeCount()
	observability.Analysis().OnBuildComplete(ctx,
		result.Stats.NodeCount, result.Stats.EdgeCount, len(result.Warnings))

	r.Logger.Info("built dependency graph",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"warnings", len(result.Warnings),
		"duration", result.Stats.BuildTime)

	// Stage 3: Analyze
	analyzeStart := time.Now()
	report, reportHit, err := r.AnalyzeWithCacheInfo(ctx, result.Graph, result.SourceDigest, opts)
	if err != nil {
		return nil, err
	}
	result.Report = report
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.CacheInfo.ReportHit = reportHit

	r.Logger.Info("computed connectivity report",
		"cycles", report.Cycles,
		"components", report.Components,
		"cached", reportHit,
		"duration", result.Stats.AnalyzeTime)

	// Stage 4: Render
	renderStart := time.Now()
	artifact, renderHit, err := r.RenderWithCacheInfo(ctx, result.Graph, result.SourceDigest, opts)
	if err != nil {
		return nil, err
	}
	result.Artifact = artifact
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.ArtifactHit = renderHit

	r.Logger.Info("rendered artifact",
		"style", opts.Style,
		"format", opts.Format,
		"bytes", len(artifact),
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Scan discovers and extracts the COBOL sources named by opts.
func (r *Runner) Scan(ctx context.Context, opts Options) ([]cobol.Analysis, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Analysis().OnScanStart(ctx, opts.Paths)
	analyses, err := opts.scanner().Scan(ctx, opts.Paths...)
	observability.Analysis().OnScanComplete(ctx, opts.Paths, len(analyses), time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "scan sources")
	}
	return analyses, nil
}

// BuildGraph ingests extraction results into a dependency graph.
// Facts are ingested in the scanner's deterministic source order, so the
// keep-first conflict policy always resolves the same way.
func BuildGraph(analyses []cobol.Analysis) (*depgraph.Graph, []depgraph.Warning) {
	b := depgraph.NewBuilder()
	for _, a := range analyses {
		_ = b.Ingest(a.Fact)
	}
	return b.Build()
}

// AnalyzeWithCacheInfo computes the connectivity report with caching and
// returns cache hit info.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, g *depgraph.Graph, digest string, opts Options) (depgraph.Report, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return depgraph.Report{}, false, err
	}

	maxCycles := opts.EffectiveMaxCycles()
	cacheKey := r.Keyer.ReportKey(digest, maxCycles)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached depgraph.Report
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "report")
				return cached, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "report")
	}

	start := time.Now()
	observability.Analysis().OnCycleSearchStart(ctx, g.NodeCount())
	report := g.Statistics(ctx, maxCycles)
	observability.Analysis().OnCycleSearchComplete(ctx, report.Cycles, report.CyclesTruncated, time.Since(start))

	if err := ctx.Err(); err != nil {
		// A cancelled search yields a truncated report; don't cache it.
		return report, false, nil
	}

	if data, err := json.Marshal(report); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.DefaultGraphTTL)
		observability.Cache().OnCacheSet(ctx, "report", len(data))
	}

	return report, false, nil
}

// Analyze is a convenience wrapper that discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, g *depgraph.Graph, digest string, opts Options) (depgraph.Report, error) {
	report, _, err := r.AnalyzeWithCacheInfo(ctx, g, digest, opts)
	return report, err
}

// RenderWithCacheInfo renders the requested artifact with caching and
// returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *depgraph.Graph, digest string, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	style, _ := export.ParseStyle(opts.Style)
	format, _ := export.ParseFormat(opts.Format)
	cacheKey := r.Keyer.ArtifactKey(digest, string(style), string(format))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	start := time.Now()
	observability.Analysis().OnRenderStart(ctx, string(style), string(format))
	artifact, err := renderArtifact(ctx, g, style, format)
	observability.Analysis().OnRenderComplete(ctx, string(style), string(format), len(artifact), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	_ = r.Cache.Set(ctx, cacheKey, artifact, cache.DefaultArtifactTTL)
	observability.Cache().OnCacheSet(ctx, "artifact", len(artifact))

	return artifact, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *depgraph.Graph, digest string, opts Options) ([]byte, error) {
	artifact, _, err := r.RenderWithCacheInfo(ctx, g, digest, opts)
	return artifact, err
}

// Digest folds extraction results into a source digest for cache keys.
// Any change to a scanned file changes its analysis, which changes the
// digest and invalidates every derived artifact.
func Digest(analyses []cobol.Analysis) string {
	docs := export.Programs(analyses)
	data, _ := json.Marshal(docs)
	return cache.Hash(data)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func renderArtifact(ctx context.Context, g *depgraph.Graph, style export.Style, format export.Format) ([]byte, error) {
	dot := export.ToDOT(g, style)
	switch format {
	case export.FormatSVG:
		return export.RenderSVG(ctx, dot)
	case export.FormatPNG:
		return export.RenderPNG(ctx, dot)
	default:
		return []byte(dot), nil
	}
}
