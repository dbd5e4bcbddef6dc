package model

// bayesBallTraversal runs Shachter's Bayes-Ball reachability algorithm
// from sources against observed nodes. The ball starts moving "up" (as
// if arriving from a child) at each source. At an unobserved node: a ball
// arriving from a child continues up to its parents and fans out to its
// children (an unobserved common cause does not block correlation
// between its children); a ball arriving from a parent continues down to
// its children (a chain passes through an unobserved middle node). At an
// observed node: a ball arriving from a child is blocked; a ball arriving
// from a parent bounces back up to the node's parents (an observed
// collider opens an explaining-away path) but does not continue downward.
//
// bottom reports nodes that passed the ball up to their parents (an
// unobserved node reached from a child, or an observed node reached from a
// parent), top reports nodes that passed the ball down to their children
// (any unobserved node reached), and visited is every node the ball
// reached, including observed nodes where it was blocked.
func (bn *BayesNet) bayesBallTraversal(sources []int, observed map[int]bool) (top, bottom, visited map[int]bool) {
	type step struct {
		node      int
		fromChild bool
	}

	top = make(map[int]bool)
	bottom = make(map[int]bool)
	visited = make(map[int]bool)

	stack := make([]step, 0, len(sources))
	for _, v := range sources {
		stack = append(stack, step{v, true})
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited[cur.node] = true

		if cur.fromChild {
			if observed[cur.node] {
				continue
			}
			if !bottom[cur.node] {
				bottom[cur.node] = true
				for _, p := range bn.DAG.Parents(cur.node) {
					stack = append(stack, step{p, true})
				}
			}
			if !top[cur.node] {
				top[cur.node] = true
				for _, c := range bn.DAG.Children(cur.node) {
					stack = append(stack, step{c, false})
				}
			}
			continue
		}

		if observed[cur.node] {
			if !bottom[cur.node] {
				bottom[cur.node] = true
				for _, p := range bn.DAG.Parents(cur.node) {
					stack = append(stack, step{p, true})
				}
			}
			continue
		}
		if !top[cur.node] {
			top[cur.node] = true
			for _, c := range bn.DAG.Children(cur.node) {
				stack = append(stack, step{c, false})
			}
		}
	}

	return top, bottom, visited
}

// BayesBall returns Np, the requisite probability nodes (every node whose
// conditional factor is needed to compute a query rooted at j given k —
// always a subset of the ancestors of j ∪ k), and Ne, the requisite
// observation nodes (the subset of k actually encountered by the
// traversal).
func (bn *BayesNet) BayesBall(j, k []int) (np, ne []int) {
	observed := make(map[int]bool, len(k))
	for _, v := range k {
		observed[v] = true
	}

	_, bottom, visited := bn.bayesBallTraversal(j, observed)

	for v := range bottom {
		np = append(np, v)
	}
	for _, v := range k {
		if visited[v] {
			ne = append(ne, v)
		}
	}
	return np, ne
}

// MSeparated reports whether v1 and v2 are m-separated (d-separated)
// given evidence: whether no active trail connects them.
func (bn *BayesNet) MSeparated(v1, v2 int, evidence map[int]int) bool {
	observed := make(map[int]bool, len(evidence))
	for v := range evidence {
		observed[v] = true
	}
	_, _, visited := bn.bayesBallTraversal([]int{v1}, observed)
	return !visited[v2]
}
