package depgraph

import (
	"errors"
	"fmt"
)

// ErrBuilderSealed is returned by [Builder.Ingest] after [Builder.Build] has
// been called. A builder produces exactly one graph; create a new builder for
// a new analysis run.
var ErrBuilderSealed = errors.New("builder already built a graph")

// Fact is the structured per-source-file record handed to the builder by an
// extractor. The builder makes no assumption about how facts were obtained.
type Fact struct {
	// ProgramID is the PROGRAM-ID of the analyzed source. Required; facts
	// without it are skipped with a warning.
	ProgramID string
	// SourceFile is the path of the source file the fact came from.
	SourceFile string
	// LineCount is the number of source lines, when known.
	LineCount int
	// Calls lists the program ids named in CALL statements.
	Calls []string
	// FilesUsed lists the file resources named in SELECT clauses.
	FilesUsed []string
}

// WarningKind classifies non-fatal data problems observed during a build.
type WarningKind string

const (
	// WarnMalformedFact marks a fact that was skipped because it had no
	// program id.
	WarnMalformedFact WarningKind = "MALFORMED_FACT"
	// WarnDuplicateProgramID marks a program id seen in more than one fact.
	// The first-seen metadata wins; later metadata is discarded.
	WarnDuplicateProgramID WarningKind = "DUPLICATE_PROGRAM_ID"
)

// Warning records a non-fatal data problem. Warnings are accumulated during
// ingestion and returned by [Builder.Build]; the caller decides whether to
// surface, log, or fail on them.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Detail string      `json:"detail"`
}

// Builder constructs a [Graph] from a sequence of facts. It is a
// single-writer type: Ingest must not be called concurrently. Ingestion order
// affects only duplicate-id conflict resolution (keep-first), never the final
// node and edge identity sets.
type Builder struct {
	g        *Graph
	edgeSet  map[Edge]bool
	warnings []Warning
	sealed   bool
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		g: &Graph{
			nodes:    make(map[string]Node),
			outgoing: make(map[string][]Edge),
			incoming: make(map[string][]Edge),
		},
		edgeSet: make(map[Edge]bool),
	}
}

// Ingest incorporates one fact into the graph under construction.
//
// A program node is ensured for the fact's program id; if the id was already
// analyzed, the first-seen line count and source file are kept and a
// DUPLICATE_PROGRAM_ID warning is recorded. Every call target is ensured as a
// program node (phantom if never analyzed) with a calls edge, and every file
// resource is ensured as a file node with a uses-file edge. Duplicate edges
// collapse.
//
// Facts without a program id are skipped with a MALFORMED_FACT warning.
// The only error condition is reuse after Build.
func (b *Builder) Ingest(f Fact) error {
	if b.sealed {
		return ErrBuilderSealed
	}
	if f.ProgramID == "" {
		b.warn(WarnMalformedFact, fmt.Sprintf("fact from %q has no program id", f.SourceFile))
		return nil
	}

	b.ensureProgram(f.ProgramID, true, f)

	for _, target := range f.Calls {
		if target == "" {
			continue
		}
		b.ensureProgram(target, false, Fact{})
		b.addEdge(Edge{From: f.ProgramID, To: target, Kind: EdgeCalls})
	}

	for _, file := range f.FilesUsed {
		if file == "" {
			continue
		}
		b.ensureFile(file)
		b.addEdge(Edge{From: f.ProgramID, To: file, Kind: EdgeUsesFile})
	}

	return nil
}

// Build finalizes construction and returns the graph together with the
// accumulated warnings. The builder is sealed afterwards: further Ingest
// calls fail and cannot mutate the returned snapshot.
func (b *Builder) Build() (*Graph, []Warning) {
	b.sealed = true
	return b.g, b.warnings
}

// Warnings returns the warnings accumulated so far without sealing the
// builder.
func (b *Builder) Warnings() []Warning { return b.warnings }

func (b *Builder) warn(kind WarningKind, detail string) {
	b.warnings = append(b.warnings, Warning{Kind: kind, Detail: detail})
}

// ensureProgram creates or upgrades a program node. An analyzed fact fills in
// metadata on a node that exists only as a phantom; a second analyzed fact
// for the same id is a conflict resolved keep-first.
func (b *Builder) ensureProgram(id string, analyzed bool, f Fact) {
	existing, ok := b.g.nodes[id]
	if !ok {
		n := Node{ID: id, Kind: KindProgram}
		if analyzed {
			n.Analyzed = true
			n.SourceFile = f.SourceFile
			n.LineCount = f.LineCount
		}
		b.addNode(n)
		return
	}
	if !analyzed {
		return
	}
	if existing.Analyzed {
		b.warn(WarnDuplicateProgramID, fmt.Sprintf(
			"program %q analyzed again from %q; keeping metadata from %q",
			id, f.SourceFile, existing.SourceFile))
		return
	}
	// Phantom promoted to analyzed.
	existing.Analyzed = true
	existing.SourceFile = f.SourceFile
	existing.LineCount = f.LineCount
	b.g.nodes[id] = existing
}

func (b *Builder) ensureFile(id string) {
	if _, ok := b.g.nodes[id]; ok {
		return
	}
	b.addNode(Node{ID: id, Kind: KindFile})
}

func (b *Builder) addNode(n Node) {
	b.g.nodes[n.ID] = n
	b.g.order = append(b.g.order, n.ID)
}

// addEdge inserts an edge, collapsing duplicates. Both endpoints must already
// exist; a missing endpoint is a builder bug, not bad input, and panics.
func (b *Builder) addEdge(e Edge) {
	if _, ok := b.g.nodes[e.From]; !ok {
		panic(fmt.Sprintf("depgraph: edge %s→%s references unknown source node", e.From, e.To))
	}
	if _, ok := b.g.nodes[e.To]; !ok {
		panic(fmt.Sprintf("depgraph: edge %s→%s references unknown target node", e.From, e.To))
	}
	if b.edgeSet[e] {
		return
	}
	b.edgeSet[e] = true
	b.g.edges = append(b.g.edges, e)
	b.g.outgoing[e.From] = append(b.g.outgoing[e.From], e)
	b.g.incoming[e.To] = append(b.g.incoming[e.To], e)
}
