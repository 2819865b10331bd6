package depgraph

import "sort"

// Connectivity describes how a graph hangs together: its strongly connected
// components and its isolated nodes.
type Connectivity struct {
	// Components lists the strongly connected components over the full node
	// set, calls and uses-file edges together. Each component is sorted by
	// node id; components are ordered by their smallest member. A DAG yields
	// one component per node. File nodes have no outgoing edges, so they can
	// only ever form trivial components.
	Components [][]string
	// Isolated lists nodes with no incident edges of either direction or
	// kind, sorted by id.
	Isolated []string
}

// Connectivity computes strongly connected components with Tarjan's algorithm
// and identifies isolated nodes in the same pass. It runs in linear time over
// nodes and edges and does not mutate the graph.
func (g *Graph) Connectivity() Connectivity {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	sort.Strings(ids)

	index := make(map[string]int, len(ids))
	low := make(map[string]int, len(ids))
	onStack := make(map[string]bool, len(ids))
	var stack []string
	next := 1

	var components [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		index[v], low[v] = next, next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.successors(v) {
			if _, seen := index[w]; !seen {
				strongconnect(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var comp []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			sort.Strings(comp)
			components = append(components, comp)
		}
	}

	for _, v := range ids {
		if _, seen := index[v]; !seen {
			strongconnect(v)
		}
	}

	sort.Slice(components, func(i, j int) bool {
		return components[i][0] < components[j][0]
	})

	var isolated []string
	for _, v := range ids {
		if g.IsIsolated(v) {
			isolated = append(isolated, v)
		}
	}

	return Connectivity{Components: components, Isolated: isolated}
}
