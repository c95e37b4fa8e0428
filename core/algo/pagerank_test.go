package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultOpts() PageRankOptions {
	return PageRankOptions{Damping: 0.85, Tolerance: 1e-9, MaxIterations: 200}
}

func TestNewGraphSkipsBadEdges(t *testing.T) {
	g := NewGraph([]string{"b", "a", "c", "a"}, [][2]string{
		{"a", "b"},
		{"a", "b"}, // duplicate
		{"a", "a"}, // self-loop
		{"a", "zzz"},
		{"ghost", "c"},
		{"c", "a"},
	})

	require.Equal(t, []string{"a", "b", "c"}, g.IDs)
	assert.Equal(t, []int{1}, g.OutAdj[g.Index["a"]])
	assert.Equal(t, []int{0}, g.OutAdj[g.Index["c"]])
	assert.Empty(t, g.OutAdj[g.Index["b"]])
	assert.Equal(t, []int{2}, g.InAdj[g.Index["a"]])
}

func TestPageRankEmpty(t *testing.T) {
	res := PageRank(NewGraph(nil, nil), defaultOpts())
	assert.True(t, res.Converged)
	assert.Empty(t, res.Ranks)
}

func TestPageRankMassAndOrdering(t *testing.T) {
	// Everyone follows "hub"; hub follows nobody (dangling).
	g := NewGraph([]string{"hub", "x", "y", "z"}, [][2]string{
		{"x", "hub"}, {"y", "hub"}, {"z", "hub"}, {"x", "y"},
	})
	res := PageRank(g, defaultOpts())

	require.True(t, res.Converged)
	total := 0.0
	for _, r := range res.Ranks {
		total += r
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	hub := res.Ranks[g.Index["hub"]]
	for _, id := range []string{"x", "y", "z"} {
		assert.Greater(t, hub, res.Ranks[g.Index[id]])
	}
	assert.Greater(t, res.Ranks[g.Index["y"]], res.Ranks[g.Index["z"]])
}

func TestPageRankSymmetricCycle(t *testing.T) {
	g := NewGraph([]string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
	res := PageRank(g, defaultOpts())
	for _, r := range res.Ranks {
		assert.InDelta(t, 1.0/3, r, 1e-9)
	}
}

func TestPageRankIdempotent(t *testing.T) {
	g := NewGraph([]string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"d", "c"}, {"c", "a"}})
	first := PageRank(g, defaultOpts())
	second := PageRank(g, defaultOpts())
	assert.Equal(t, first, second)
}

// TestPageRankNonConvergence injects a step that oscillates forever.
func TestPageRankNonConvergence(t *testing.T) {
	flip := func(g *Graph, rank []float64, _ float64) []float64 {
		next := make([]float64, len(rank))
		for i := range rank {
			next[i] = rank[len(rank)-1-i]
		}
		return next
	}
	g := NewGraph([]string{"a", "b"}, nil)
	opts := defaultOpts()
	opts.MaxIterations = 5
	opts.Step = func(g *Graph, rank []float64, d float64) []float64 {
		next := flip(g, rank, d)
		next[0] += 0.1
		next[1] -= 0.1
		return next
	}

	res := PageRank(g, opts)
	assert.False(t, res.Converged)
	assert.Equal(t, 5, res.Iterations)
	assert.Greater(t, res.Delta, opts.Tolerance)
	assert.Len(t, res.Ranks, 2)
}

func BenchmarkPageRank(b *testing.B) {
	ids := make([]string, 300)
	var edges [][2]string
	for i := range ids {
		ids[i] = string(rune('A'+i%26)) + string(rune('a'+i/26))
	}
	for i := range ids {
		edges = append(edges, [2]string{ids[i], ids[(i*7+3)%len(ids)]}, [2]string{ids[i], ids[(i*13+1)%len(ids)]})
	}
	g := NewGraph(ids, edges)
	for b.Loop() {
		_ = PageRank(g, defaultOpts())
	}
}
