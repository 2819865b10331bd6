// Package cache provides result caching for analysis runs.
//
// Scanning a large COBOL codebase and enumerating its cycles is the
// expensive part of every invocation; the cache keys results by a digest of
// the source inputs so unchanged codebases render instantly. Backends are
// pluggable: a file cache for CLI usage, Redis for long-running servers,
// and a null cache when caching is disabled.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was present
	// and unexpired; an absent key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL stores forever.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs per artifact class. Graph documents are cheap to keep and
// expensive to recompute; rendered images are cheap to recompute from a
// cached graph.
const (
	DefaultGraphTTL    = 7 * 24 * time.Hour
	DefaultArtifactTTL = 24 * time.Hour
)

// Keyer derives cache keys for the artifacts of an analysis run.
// All keys incorporate a digest of the scanned sources, so any source
// change invalidates every derived artifact.
type Keyer interface {
	// GraphKey keys the built graph document for a source digest.
	GraphKey(sourceDigest string) string

	// ReportKey keys the statistics report; maxCycles participates because
	// a truncated cycle count is not interchangeable with a full one.
	ReportKey(sourceDigest string, maxCycles int) string

	// ArtifactKey keys a rendered artifact for a style and format.
	ArtifactKey(sourceDigest, style, format string) string
}

// DefaultKeyer is the standard key scheme: a class prefix plus a SHA-256
// of the inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GraphKey generates a key for the built graph document.
func (k *DefaultKeyer) GraphKey(sourceDigest string) string {
	return hashKey("graph", sourceDigest)
}

// ReportKey generates a key for the statistics report.
func (k *DefaultKeyer) ReportKey(sourceDigest string, maxCycles int) string {
	return hashKey("report", sourceDigest, maxCycles)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(sourceDigest, style, format string) string {
	return hashKey("artifact", sourceDigest, style, format)
}

// DefaultDir returns the platform cache directory for this tool.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "cobmap")
}
