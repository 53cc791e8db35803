package model

import (
	"math"
	"sort"
)

// FlowEdge is one directed entry of the dataflow adjacency.
type FlowEdge struct {
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// Flow is a symmetric dataflow affinity between macros. Neighbor lists are
// kept sorted by name so iteration order is deterministic. A nil *Flow
// reads as an empty graph.
type Flow struct {
	adj map[string][]FlowEdge
}

// NewFlow returns an empty flow graph.
func NewFlow() *Flow {
	return &Flow{adj: make(map[string][]FlowEdge)}
}

// FlowFromMatrix builds a flow graph from a dense matrix indexed by names.
// Entries below threshold are dropped; a kept pair gets the larger of the
// two directed weights in both directions.
func FlowFromMatrix(names []string, matrix [][]float64, threshold float64) *Flow {
	f := NewFlow()
	for i, a := range names {
		f.ensure(a)
		for j, b := range names {
			if i == j || i >= len(matrix) || j >= len(matrix[i]) {
				continue
			}
			w := matrix[i][j]
			if w < threshold {
				continue
			}
			if j < len(matrix) && i < len(matrix[j]) {
				w = math.Max(w, matrix[j][i])
			}
			f.Set(a, b, w)
		}
	}
	return f
}

func (f *Flow) ensure(name string) {
	if _, ok := f.adj[name]; !ok {
		f.adj[name] = nil
	}
}

// Set stores w for both a->b and b->a, replacing any previous weight.
func (f *Flow) Set(a, b string, w float64) {
	if a == b {
		return
	}
	f.setDirected(a, b, w)
	f.setDirected(b, a, w)
}

func (f *Flow) setDirected(from, to string, w float64) {
	edges := f.adj[from]
	i := sort.Search(len(edges), func(i int) bool { return edges[i].To >= to })
	if i < len(edges) && edges[i].To == to {
		edges[i].Weight = w
		return
	}
	edges = append(edges, FlowEdge{})
	copy(edges[i+1:], edges[i:])
	edges[i] = FlowEdge{To: to, Weight: w}
	f.adj[from] = edges
}

// Neighbors returns the outgoing edges of name sorted by neighbor name.
// The returned slice must not be modified.
func (f *Flow) Neighbors(name string) []FlowEdge {
	if f == nil {
		return nil
	}
	return f.adj[name]
}

// Weight returns the flow between a and b, or 0 when there is none.
func (f *Flow) Weight(a, b string) float64 {
	if f == nil {
		return 0
	}
	edges := f.adj[a]
	i := sort.Search(len(edges), func(i int) bool { return edges[i].To >= b })
	if i < len(edges) && edges[i].To == b {
		return edges[i].Weight
	}
	return 0
}

// Total returns the summed flow weight of every neighbor of name.
func (f *Flow) Total(name string) float64 {
	if f == nil {
		return 0
	}
	var total float64
	for _, e := range f.adj[name] {
		total += e.Weight
	}
	return total
}

// TotalWithin is Total restricted to neighbors for which keep returns true.
func (f *Flow) TotalWithin(name string, keep func(string) bool) float64 {
	if f == nil {
		return 0
	}
	var total float64
	for _, e := range f.adj[name] {
		if keep(e.To) {
			total += e.Weight
		}
	}
	return total
}

// Names returns every node that appears in the flow graph, sorted.
func (f *Flow) Names() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.adj))
	for name := range f.adj {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of nodes in the flow graph.
func (f *Flow) Len() int {
	if f == nil {
		return 0
	}
	return len(f.adj)
}
