package depgraph

import "slices"

// NodeKind distinguishes the two vertex types in a dependency graph.
type NodeKind int

const (
	// KindProgram represents a COBOL program, either analyzed from source or
	// referenced as a call target.
	KindProgram NodeKind = iota
	// KindFile represents an external file resource named in a SELECT clause.
	KindFile
)

// String returns the lowercase name of the kind ("program" or "file").
func (k NodeKind) String() string {
	switch k {
	case KindProgram:
		return "program"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// EdgeKind distinguishes the two dependency types in a dependency graph.
type EdgeKind int

const (
	// EdgeCalls is a program-to-program invocation (CALL statement).
	EdgeCalls EdgeKind = iota
	// EdgeUsesFile is a program-to-file reference (SELECT ... ASSIGN).
	EdgeUsesFile
)

// String returns the lowercase name of the kind ("calls" or "uses-file").
func (k EdgeKind) String() string {
	switch k {
	case EdgeCalls:
		return "calls"
	case EdgeUsesFile:
		return "uses-file"
	default:
		return "unknown"
	}
}

// Node is a vertex in the dependency graph. Nodes are identified by ID,
// unique across the graph regardless of kind.
//
// LineCount and SourceFile are only meaningful when Analyzed is true, i.e.
// the node was built from a fact extracted from source. Program nodes that
// only ever appeared as call targets are phantoms: Analyzed is false and both
// attribute fields are zero.
type Node struct {
	ID         string
	Kind       NodeKind
	SourceFile string
	LineCount  int
	Analyzed   bool
}

// Phantom reports whether the node is a program that was called but never
// itself analyzed.
func (n Node) Phantom() bool { return n.Kind == KindProgram && !n.Analyzed }

// Edge is a directed, typed connection between two nodes. At most one edge
// exists per (From, To, Kind) triple; duplicate facts collapse. Self-loops
// (a program calling itself) are permitted.
type Edge struct {
	From string
	To   string
	Kind EdgeKind
}

// Graph is an immutable snapshot of a dependency graph. Instances are
// produced by [Builder.Build] and are safe for concurrent reads; no method
// mutates the graph.
type Graph struct {
	nodes    map[string]Node
	order    []string // node IDs in first-seen order
	edges    []Edge
	outgoing map[string][]Edge
	incoming map[string][]Edge
}

// Node returns the node with the given ID and true, or a zero Node and false
// if no such node exists.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in first-seen order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// NodesByKind returns all nodes of the given kind in first-seen order.
func (g *Graph) NodesByKind(kind NodeKind) []Node {
	var out []Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// EdgesByKind returns all edges of the given kind in insertion order.
func (g *Graph) EdgesByKind(kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Callees returns the IDs of programs called by the given program, in the
// order the call edges were added. The result excludes uses-file edges.
func (g *Graph) Callees(id string) []string {
	var out []string
	for _, e := range g.outgoing[id] {
		if e.Kind == EdgeCalls {
			out = append(out, e.To)
		}
	}
	return out
}

// Callers returns the IDs of programs that call the given program.
func (g *Graph) Callers(id string) []string {
	var out []string
	for _, e := range g.incoming[id] {
		if e.Kind == EdgeCalls {
			out = append(out, e.From)
		}
	}
	return out
}

// FilesUsed returns the IDs of file resources referenced by the given
// program.
func (g *Graph) FilesUsed(id string) []string {
	var out []string
	for _, e := range g.outgoing[id] {
		if e.Kind == EdgeUsesFile {
			out = append(out, e.To)
		}
	}
	return out
}

// OutDegree returns the number of outgoing edges of any kind.
// Returns 0 if the node doesn't exist.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges of any kind.
// Returns 0 if the node doesn't exist.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// IsIsolated reports whether the node exists and has no incident edges of
// either direction or kind. A self-loop counts as an incident edge.
func (g *Graph) IsIsolated(id string) bool {
	if _, ok := g.nodes[id]; !ok {
		return false
	}
	return len(g.outgoing[id]) == 0 && len(g.incoming[id]) == 0
}

// successors returns the IDs of all nodes reachable by one outgoing edge of
// any kind, without duplicates, in edge insertion order.
func (g *Graph) successors(id string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range g.outgoing[id] {
		if !seen[e.To] {
			seen[e.To] = true
			out = append(out, e.To)
		}
	}
	return out
}
