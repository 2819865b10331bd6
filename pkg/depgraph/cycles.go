package depgraph

import (
	"context"
	"slices"
	"sort"
)

// CycleResult holds the outcome of an elementary-cycle search.
type CycleResult struct {
	// Cycles lists every elementary cycle found, each as an ordered sequence
	// of program ids. Each cycle starts at its lexicographically smallest
	// node, so rotations of the same cycle are never reported twice.
	Cycles [][]string `json:"cycles"`
	// Truncated is true when the search stopped early because the cycle cap
	// was reached or the context was cancelled. A truncated result is partial
	// but valid; truncation is not an error.
	Truncated bool `json:"truncated"`
}

// checkEvery bounds how many search steps pass between context checks.
const checkEvery = 1024

// FindCycles enumerates every elementary cycle in the program-call subgraph
// using Johnson's algorithm. File nodes and uses-file edges are excluded from
// the search. Self-loops are reported as length-1 cycles.
//
// maxCycles caps the number of cycles returned; 0 means unbounded. Call
// graphs can contain a combinatorial number of cycles, so callers that cannot
// bound the input should either set a cap or pass a context with a deadline:
// the search checks ctx periodically and returns the partial result with
// Truncated set when it fires.
//
// For a fixed graph the returned cycle set is deterministic.
func (g *Graph) FindCycles(ctx context.Context, maxCycles int) CycleResult {
	j := newJohnson(g, ctx, maxCycles)
	j.run()
	return CycleResult{Cycles: j.cycles, Truncated: j.truncated}
}

// johnson carries the state of one cycle search. The algorithm works on
// integer vertex indices over the lexicographically sorted program ids, which
// makes the output deterministic and lets each cycle start at its smallest
// node.
type johnson struct {
	ctx       context.Context
	ids       []string // sorted program ids; index is the vertex number
	adj       [][]int  // call adjacency, self-loops removed, sorted
	selfLoops []int    // vertices with a self-loop

	maxCycles int
	cycles    [][]string
	truncated bool
	stop      bool
	steps     int

	blocked  []bool
	blockMap [][]int // vertices to unblock when the key vertex unblocks
	stack    []int
	root     int
	inSCC    []bool
}

func newJohnson(g *Graph, ctx context.Context, maxCycles int) *johnson {
	var ids []string
	for _, n := range g.NodesByKind(KindProgram) {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	adj := make([][]int, len(ids))
	var selfLoops []int
	for _, e := range g.EdgesByKind(EdgeCalls) {
		from, to := index[e.From], index[e.To]
		if from == to {
			selfLoops = append(selfLoops, from)
			continue
		}
		adj[from] = append(adj[from], to)
	}
	for i := range adj {
		slices.Sort(adj[i])
	}
	slices.Sort(selfLoops)

	return &johnson{
		ctx:       ctx,
		ids:       ids,
		adj:       adj,
		selfLoops: selfLoops,
		maxCycles: maxCycles,
		blocked:   make([]bool, len(ids)),
		blockMap:  make([][]int, len(ids)),
		inSCC:     make([]bool, len(ids)),
	}
}

func (j *johnson) run() {
	// Self-loops first: Johnson's blocking scheme assumes a simple digraph,
	// so length-1 cycles are reported separately.
	for _, v := range j.selfLoops {
		if !j.emit([]int{v}) {
			return
		}
	}

	n := len(j.ids)
	for s := 0; s < n && !j.stop; {
		comp, ok := j.leastSCC(s)
		if !ok {
			break
		}
		// Restrict the search to the chosen component, rooted at its
		// smallest vertex.
		for i := range j.inSCC {
			j.inSCC[i] = false
		}
		j.root = n
		for _, v := range comp {
			j.inSCC[v] = true
			if v < j.root {
				j.root = v
			}
		}
		for _, v := range comp {
			j.blocked[v] = false
			j.blockMap[v] = j.blockMap[v][:0]
		}
		j.circuit(j.root)
		s = j.root + 1
	}
}

// leastSCC computes the strongly connected components of the subgraph induced
// by vertices >= s and returns the nontrivial component containing the
// smallest vertex. Returns false when no nontrivial component remains.
func (j *johnson) leastSCC(s int) ([]int, bool) {
	n := len(j.ids)
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []int
	next := 1

	var best []int
	bestMin := n

	var strongconnect func(v int)
	strongconnect = func(v int) {
		index[v], low[v] = next, next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range j.adj[v] {
			if w < s {
				continue
			}
			if index[w] < 0 {
				strongconnect(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var comp []int
			compMin := n
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w < compMin {
					compMin = w
				}
				if w == v {
					break
				}
			}
			if len(comp) > 1 && compMin < bestMin {
				best, bestMin = comp, compMin
			}
		}
	}

	for v := s; v < n; v++ {
		if index[v] < 0 {
			strongconnect(v)
		}
	}
	return best, best != nil
}

// circuit is the blocking/unblocking search of Johnson's algorithm. It
// reports whether an elementary cycle through v back to the root was found.
func (j *johnson) circuit(v int) bool {
	if j.stop {
		return false
	}
	found := false
	j.stack = append(j.stack, v)
	j.blocked[v] = true

	for _, w := range j.adj[v] {
		if j.stop {
			break
		}
		if !j.inSCC[w] || w < j.root {
			continue
		}
		j.tick()
		if w == j.root {
			if !j.emit(j.stack) {
				break
			}
			found = true
		} else if !j.blocked[w] {
			if j.circuit(w) {
				found = true
			}
		}
	}

	if found {
		j.unblock(v)
	} else {
		for _, w := range j.adj[v] {
			if !j.inSCC[w] || w < j.root {
				continue
			}
			if !slices.Contains(j.blockMap[w], v) {
				j.blockMap[w] = append(j.blockMap[w], v)
			}
		}
	}

	j.stack = j.stack[:len(j.stack)-1]
	return found
}

func (j *johnson) unblock(v int) {
	j.blocked[v] = false
	for len(j.blockMap[v]) > 0 {
		w := j.blockMap[v][len(j.blockMap[v])-1]
		j.blockMap[v] = j.blockMap[v][:len(j.blockMap[v])-1]
		if j.blocked[w] {
			j.unblock(w)
		}
	}
}

// emit records one cycle and reports whether the search may continue.
func (j *johnson) emit(verts []int) bool {
	cycle := make([]string, len(verts))
	for i, v := range verts {
		cycle[i] = j.ids[v]
	}
	j.cycles = append(j.cycles, cycle)

	if j.maxCycles > 0 && len(j.cycles) >= j.maxCycles {
		j.truncated = true
		j.stop = true
		return false
	}
	return true
}

// tick checks for cancellation every checkEvery search steps.
func (j *johnson) tick() {
	j.steps++
	if j.steps%checkEvery != 0 {
		return
	}
	if j.ctx != nil && j.ctx.Err() != nil {
		j.truncated = true
		j.stop = true
	}
}
