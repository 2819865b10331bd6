package depgraph

import "context"

// Report aggregates the connectivity statistics of a graph. All fields are
// plain counts derived from the immutable snapshot; computing a report never
// mutates the graph and is safe to repeat from any number of goroutines.
type Report struct {
	TotalNodes   int `json:"total_nodes"`
	ProgramNodes int `json:"program_nodes"`
	FileNodes    int `json:"file_nodes"`
	PhantomNodes int `json:"phantom_nodes"`

	TotalEdges int `json:"total_edges"`
	CallEdges  int `json:"call_edges"`
	FileEdges  int `json:"file_edges"`

	IsolatedNodes int `json:"isolated_nodes"`
	Components    int `json:"strongly_connected_components"`

	Cycles int `json:"cycles"`
	// CyclesTruncated is true when the cycle count is a lower bound because
	// the search hit a cap or deadline.
	CyclesTruncated bool `json:"cycles_truncated,omitempty"`
}

// Statistics computes the full connectivity report. maxCycles bounds the
// cycle search exactly as in [Graph.FindCycles]; 0 means unbounded.
func (g *Graph) Statistics(ctx context.Context, maxCycles int) Report {
	r := Report{
		TotalNodes: g.NodeCount(),
		TotalEdges: g.EdgeCount(),
	}

	for _, n := range g.Nodes() {
		switch n.Kind {
		case KindProgram:
			r.ProgramNodes++
			if n.Phantom() {
				r.PhantomNodes++
			}
		case KindFile:
			r.FileNodes++
		}
	}

	for _, e := range g.Edges() {
		switch e.Kind {
		case EdgeCalls:
			r.CallEdges++
		case EdgeUsesFile:
			r.FileEdges++
		}
	}

	conn := g.Connectivity()
	r.IsolatedNodes = len(conn.Isolated)
	r.Components = len(conn.Components)

	cycles := g.FindCycles(ctx, maxCycles)
	r.Cycles = len(cycles.Cycles)
	r.CyclesTruncated = cycles.Truncated

	return r
}
