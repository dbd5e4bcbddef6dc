package graph

// MoralGraph builds the moralized undirected graph of d: every edge of d is
// kept (direction dropped), and every pair of parents sharing a common child
// gets an edge ("marrying the parents"). Variable elimination and the
// ordering heuristics below operate on this undirected graph, never on the
// DAG directly.
func (d *DAG) MoralGraph() *UndirectedGraph {
	g := NewUndirectedGraph(d.n)
	for v := 0; v < d.n; v++ {
		for c := range d.children[v] {
			g.AddEdge(v, c)
		}
	}
	for v := 0; v < d.n; v++ {
		parents := d.Parents(v)
		for i := 0; i < len(parents); i++ {
			for j := i + 1; j < len(parents); j++ {
				g.AddEdge(parents[i], parents[j])
			}
		}
	}
	return g
}
