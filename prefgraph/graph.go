// Package prefgraph implements a tiny directed graph over string-identified
// vertices, used by theory consistency checks to detect cycles in the global
// attribute graph and in each compatible rule set's interval graph. Grounded on
// original_source/preference/preferencegraph.py's PreferenceGraph.
package prefgraph

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Graph is a directed graph keyed by vertex identity strings.
type Graph struct {
	edges map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{edges: make(map[string][]string)}
}

// AddEdge adds an edge from -> to, creating either vertex if absent.
// Duplicate edges are not added twice.
func (g *Graph) AddEdge(from, to string) {
	if _, ok := g.edges[from]; !ok {
		g.edges[from] = nil
	}
	if _, ok := g.edges[to]; !ok {
		g.edges[to] = nil
	}
	for _, v := range g.edges[from] {
		if v == to {
			return
		}
	}
	g.edges[from] = append(g.edges[from], to)
}

// DepthFirstSearch reports whether goal is reachable from start.
func (g *Graph) DepthFirstSearch(start, goal string) bool {
	visited := map[string]bool{start: true}
	waiting := append([]string{}, g.edges[start]...)
	for len(waiting) > 0 {
		next := waiting[len(waiting)-1]
		waiting = waiting[:len(waiting)-1]
		if next == goal {
			return true
		}
		if !visited[next] {
			visited[next] = true
			waiting = append(waiting, g.edges[next]...)
		}
	}
	return false
}

// IsAcyclic reports whether the graph contains no cycle, by running a
// reachability search from every vertex back to itself, in deterministic
// vertex order.
func (g *Graph) IsAcyclic() bool {
	for _, v := range g.Vertices() {
		if g.DepthFirstSearch(v, v) {
			return false
		}
	}
	return true
}

// Vertices returns the graph's vertex identities in deterministic
// (lexicographic) order, so callers that iterate them for display or
// further graph-building get reproducible output across runs.
func (g *Graph) Vertices() []string {
	out := maps.Keys(g.edges)
	slices.Sort(out)
	return out
}
