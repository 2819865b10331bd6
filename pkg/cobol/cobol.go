// Package cobol extracts structural facts from COBOL source files.
//
// Extraction is heuristic: a handful of regular expressions pull out the
// PROGRAM-ID, CALL targets, SELECT...ASSIGN file resources, and paragraph
// names. No attempt is made to parse the COBOL grammar or validate that call
// targets exist; the graph layer (pkg/depgraph) is deliberately insulated
// from extraction fidelity so a real parser can replace this package without
// touching graph logic.
package cobol

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/cobmap/cobmap/pkg/depgraph"
)

var (
	// PROGRAM-ID. HELLO-WORLD
	programIDRe = regexp.MustCompile(`(?i)PROGRAM-ID\.\s+([A-Za-z0-9\-_]+)`)
	// CALL "SUBPROG" / CALL 'SUBPROG'
	callRe = regexp.MustCompile(`(?i)CALL\s+["']([A-Za-z0-9\-]+)["']`)
	// SELECT employee-file ASSIGN ...
	selectRe = regexp.MustCompile(`(?i)SELECT\s+([A-Za-z0-9\-]+)\s+ASSIGN`)
	// Paragraph names start in area A (column 8+) and end with a period.
	paragraphRe = regexp.MustCompile(`(?m)^[ ]{7,}([A-Za-z0-9\-]+)\.`)
)

// reservedWords are division/section headers and header paragraphs that the
// paragraph pattern would otherwise pick up.
var reservedWords = map[string]bool{
	"PROGRAM-ID":      true,
	"AUTHOR":          true,
	"DATE-WRITTEN":    true,
	"ENVIRONMENT":     true,
	"DATA":            true,
	"PROCEDURE":       true,
	"WORKING-STORAGE": true,
	"FILE":            true,
	"SECTION":         true,
}

// maxParagraphs caps how many paragraph names a single analysis keeps.
const maxParagraphs = 20

// Analysis is the result of extracting one source file: the fact consumed by
// the graph builder plus extractor-only extras (paragraph names) that feed
// the per-program report.
type Analysis struct {
	depgraph.Fact
	// Procedures lists up to maxParagraphs unique paragraph names, sorted.
	Procedures []string
}

// Extract scans src and returns the structural facts found in it. The
// returned fact carries path as its source file and the line count of src.
// A missing PROGRAM-ID leaves Fact.ProgramID empty; the builder decides what
// to do with such facts.
func Extract(path string, src []byte) Analysis {
	content := string(src)

	a := Analysis{Fact: depgraph.Fact{
		SourceFile: path,
		LineCount:  countLines(src),
	}}

	if m := programIDRe.FindStringSubmatch(content); m != nil {
		a.ProgramID = m[1]
	}
	a.Calls = uniqueMatches(callRe, content)
	a.FilesUsed = uniqueMatches(selectRe, content)
	a.Procedures = paragraphs(content)

	return a
}

// uniqueMatches returns the sorted set of first-group captures of re in s.
func uniqueMatches(re *regexp.Regexp, s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	sort.Strings(out)
	return out
}

// paragraphs extracts paragraph names, filters reserved words, and caps the
// result at maxParagraphs.
func paragraphs(s string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range paragraphRe.FindAllStringSubmatch(s, -1) {
		name := m[1]
		if reservedWords[strings.ToUpper(name)] || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	sort.Strings(out)
	if len(out) > maxParagraphs {
		out = out[:maxParagraphs]
	}
	return out
}

func countLines(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	n := bytes.Count(src, []byte{'\n'})
	if src[len(src)-1] != '\n' {
		n++
	}
	return n
}
