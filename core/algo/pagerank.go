package algo

import (
	"math"
	"slices"
)

// Graph is an immutable directed graph snapshot indexed by position.
// Node order is sorted by id so iteration is deterministic.
type Graph struct {
	IDs    []string
	Index  map[string]int
	OutAdj [][]int // source -> targets
	InAdj  [][]int // target -> sources
}

// NewGraph builds a Graph from node ids and (src, dst) pairs.
// Edges touching unknown nodes, self-loops and duplicates are skipped.
func NewGraph(ids []string, edges [][2]string) *Graph {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	g := &Graph{
		IDs:    sorted,
		Index:  make(map[string]int, len(sorted)),
		OutAdj: make([][]int, len(sorted)),
		InAdj:  make([][]int, len(sorted)),
	}
	for i, id := range sorted {
		g.Index[id] = i
	}

	seen := make(map[[2]int]struct{}, len(edges))
	for _, e := range edges {
		src, ok := g.Index[e[0]]
		if !ok {
			continue
		}
		dst, ok := g.Index[e[1]]
		if !ok || src == dst {
			continue
		}
		key := [2]int{src, dst}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		g.OutAdj[src] = append(g.OutAdj[src], dst)
		g.InAdj[dst] = append(g.InAdj[dst], src)
	}
	return g
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.IDs) }

// StepFunc computes one PageRank iteration from the current rank vector.
// It must not modify rank.
type StepFunc func(g *Graph, rank []float64, damping float64) []float64

// PageRankOptions configures PageRank.
type PageRankOptions struct {
	Damping       float64
	Tolerance     float64
	MaxIterations int
	Step          StepFunc // nil uses PowerStep
}

// PageRankResult holds the final ranks and convergence information.
type PageRankResult struct {
	Ranks      []float64 // sums to 1 for a non-empty graph
	Iterations int
	Delta      float64 // L1 change of the last iteration
	Converged  bool
}

// PowerStep is the standard power-iteration step. Rank held by dangling nodes
// is spread uniformly so the total mass stays 1.
func PowerStep(g *Graph, rank []float64, damping float64) []float64 {
	n := g.Len()
	next := make([]float64, n)
	if n == 0 {
		return next
	}

	dangling := 0.0
	for i, out := range g.OutAdj {
		if len(out) == 0 {
			dangling += rank[i]
		}
	}

	base := (1-damping)/float64(n) + damping*dangling/float64(n)
	for i := range next {
		sum := 0.0
		for _, src := range g.InAdj[i] {
			sum += rank[src] / float64(len(g.OutAdj[src]))
		}
		next[i] = base + damping*sum
	}
	return next
}

// PageRank iterates until the L1 change drops below the tolerance or the
// iteration cap is reached. It never fails; callers inspect Converged.
func PageRank(g *Graph, opts PageRankOptions) PageRankResult {
	n := g.Len()
	if n == 0 {
		return PageRankResult{Converged: true}
	}
	step := opts.Step
	if step == nil {
		step = PowerStep
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}

	res := PageRankResult{}
	for res.Iterations < opts.MaxIterations {
		next := step(g, rank, opts.Damping)
		res.Iterations++
		res.Delta = l1Distance(rank, next)
		rank = next
		if res.Delta < opts.Tolerance {
			res.Converged = true
			break
		}
	}
	res.Ranks = rank
	return res
}

func l1Distance(a, b []float64) float64 {
	d := 0.0
	for i := range a {
		d += math.Abs(a[i] - b[i])
	}
	return d
}
