package cobol

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultExtensions are the source file extensions scanned when none are
// configured.
var DefaultExtensions = []string{".cob", ".cbl", ".cpy"}

// DefaultWorkers bounds parallel file extraction when no worker count is
// configured.
const DefaultWorkers = 8

// Scanner discovers COBOL sources under one or more paths and extracts facts
// from them. Extraction is embarrassingly parallel across files; results are
// funneled back into a single slice so a single-writer graph builder can
// ingest them in a deterministic order.
type Scanner struct {
	// Extensions filters files by extension (case-insensitive). Empty means
	// DefaultExtensions.
	Extensions []string
	// Excludes are glob patterns matched against the base name of each file;
	// matching files are skipped.
	Excludes []string
	// Workers bounds concurrent extractions. Zero means DefaultWorkers.
	Workers int
}

// Scan walks every path (file or directory), extracts each matching source
// file concurrently, and returns the analyses sorted by source file path.
// Unreadable files abort the scan; a legacy audit that silently skips inputs
// would under-report dependencies.
func (s *Scanner) Scan(ctx context.Context, paths ...string) ([]Analysis, error) {
	files, err := s.discover(paths)
	if err != nil {
		return nil, err
	}

	results := make([]Analysis, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())

	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			results[i] = Extract(path, src)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// discover expands paths into the sorted list of matching source files.
func (s *Scanner) discover(paths []string) ([]string, error) {
	var files []string
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			files = append(files, root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !s.matches(path) {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (s *Scanner) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	exts := s.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	ok := false
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			ok = true
			break
		}
	}
	if !ok {
		return false
	}
	base := filepath.Base(path)
	for _, pattern := range s.Excludes {
		if matched, _ := filepath.Match(pattern, base); matched {
			return false
		}
	}
	return true
}

func (s *Scanner) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return DefaultWorkers
}
