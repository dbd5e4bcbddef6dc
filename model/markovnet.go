package model

import (
	"github.com/pgmgo/pgmgo/factor"
)

// MarkovNet is a Model over an undirected set of factors with no
// particular per-variable ownership: neighbors[v] is the union of every
// co-scope variable across factors whose scope contains v.
type MarkovNet struct {
	Model
	neighbors map[int][]int
}

// NewMarkovNet builds a MarkovNet from an arbitrary factor set.
func NewMarkovNet(reg *factor.Registry, factors []*factor.Factor) *MarkovNet {
	neighbors := make(map[int]map[int]bool)
	for _, f := range factors {
		scope := f.Domain.Scope()
		for _, v := range scope {
			if neighbors[v] == nil {
				neighbors[v] = make(map[int]bool)
			}
			for _, u := range scope {
				if u != v {
					neighbors[v][u] = true
				}
			}
		}
	}

	out := make(map[int][]int, len(neighbors))
	for v, set := range neighbors {
		list := make([]int, 0, len(set))
		for u := range set {
			list = append(list, u)
		}
		out[v] = list
	}

	return &MarkovNet{Model: Model{Reg: reg, Factors: factors}, neighbors: out}
}

// Neighbors returns every variable sharing a factor scope with v.
func (mn *MarkovNet) Neighbors(v int) []int { return append([]int(nil), mn.neighbors[v]...) }

// Partition and Marginals are inherited unmodified from Model: per
// spec.md §4.5, MarkovNet's partition is joint.condition(evidence).partition
// and its marginals are the brute sum-out from the conditioned normalized
// joint — exactly Model's default, with no elimination-order-aware
// override.
