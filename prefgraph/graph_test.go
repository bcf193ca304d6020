package prefgraph_test

import (
	"testing"

	"github.com/streampref/streampref/prefgraph"
	"github.com/stretchr/testify/require"
)

func TestAcyclic(t *testing.T) {
	g := prefgraph.New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	require.True(t, g.IsAcyclic())
	require.True(t, g.DepthFirstSearch("a", "c"))
	require.False(t, g.DepthFirstSearch("c", "a"))
}

func TestCyclic(t *testing.T) {
	g := prefgraph.New()
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")
	require.False(t, g.IsAcyclic())
}
