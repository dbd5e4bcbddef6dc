package graph

import "gonum.org/v1/gonum/stat/combin"

// Heuristic selects a greedy elimination-order strategy.
type Heuristic int

const (
	// MinDegree repeatedly eliminates the node with fewest remaining
	// neighbors.
	MinDegree Heuristic = iota
	// MinFill repeatedly eliminates the node whose removal adds the fewest
	// fill-in edges.
	MinFill
	// WeightedMinFill is MinFill but weighs each fill-in edge by the
	// product of its endpoints' cardinalities, rather than counting edges.
	WeightedMinFill
)

// EliminationOrder greedily chooses an elimination order over g using the
// given heuristic. cardinality reports a node's variable cardinality
// (only consulted by WeightedMinFill). It returns the order and the induced
// width (the size of the largest clique formed during elimination, minus
// one).
func EliminationOrder(g *UndirectedGraph, heuristic Heuristic, cardinality func(v int) int) ([]int, int) {
	work := g.Clone()
	remaining := make([]int, 0, g.N())
	for v := 0; v < g.N(); v++ {
		remaining = append(remaining, v)
	}

	order := make([]int, 0, g.N())
	width := 0

	for len(remaining) > 0 {
		best, bestIdx := remaining[0], 0
		bestScore := score(work, remaining[0], heuristic, cardinality)
		bestDegree := work.Degree(remaining[0])
		for i := 1; i < len(remaining); i++ {
			s := score(work, remaining[i], heuristic, cardinality)
			d := work.Degree(remaining[i])
			if s < bestScore || (s == bestScore && d < bestDegree) {
				best, bestIdx, bestScore, bestDegree = remaining[i], i, s, d
			}
		}

		clique := len(work.Neighbors(best)) + 1
		if clique-1 > width {
			width = clique - 1
		}

		connectNeighbors(work, best)
		work.RemoveNode(best)

		order = append(order, best)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return order, width
}

// OrderWidth replays a caller-supplied elimination order over g and reports
// its induced width, without choosing the order itself.
func OrderWidth(g *UndirectedGraph, order []int) int {
	work := g.Clone()
	width := 0
	for _, v := range order {
		clique := len(work.Neighbors(v)) + 1
		if clique-1 > width {
			width = clique - 1
		}
		connectNeighbors(work, v)
		work.RemoveNode(v)
	}
	return width
}

func score(g *UndirectedGraph, v int, heuristic Heuristic, cardinality func(v int) int) int {
	switch heuristic {
	case MinDegree:
		return g.Degree(v)
	case MinFill:
		return fillIn(g, v, nil)
	case WeightedMinFill:
		return fillIn(g, v, cardinality)
	default:
		return g.Degree(v)
	}
}

// fillIn counts the fill-in edges that eliminating v would add: pairs of
// v's neighbors that are not already adjacent. When weight is non-nil the
// count is weighted by the product of each missing edge's endpoint
// cardinalities instead of counted as 1 per edge.
func fillIn(g *UndirectedGraph, v int, weight func(v int) int) int {
	neighbors := g.Neighbors(v)
	if len(neighbors) < 2 {
		return 0
	}
	total := 0
	for _, pair := range combin.Combinations(len(neighbors), 2) {
		a, b := neighbors[pair[0]], neighbors[pair[1]]
		if g.HasEdge(a, b) {
			continue
		}
		if weight == nil {
			total++
			continue
		}
		total += weight(a) * weight(b)
	}
	return total
}

// connectNeighbors adds the fill-in edges among v's neighbors ("marrying"
// them), as a bucket-elimination step requires before v is removed.
func connectNeighbors(g *UndirectedGraph, v int) {
	neighbors := g.Neighbors(v)
	if len(neighbors) < 2 {
		return
	}
	for _, pair := range combin.Combinations(len(neighbors), 2) {
		g.AddEdge(neighbors[pair[0]], neighbors[pair[1]])
	}
}
