package model

import (
	"fmt"
	"math/rand"

	"github.com/pgmgo/pgmgo/elimination"
	"github.com/pgmgo/pgmgo/factor"
	"github.com/pgmgo/pgmgo/graph"
	"github.com/pgmgo/pgmgo/sampling"
	"github.com/pgmgo/pgmgo/sumproduct"
)

// BayesNet is a Model whose factors are indexed by child variable id:
// Factors[v] is P(Xv | Pa(Xv)), with scope [Xv, parent1, parent2, ...].
// The topological sampling order is computed once at construction and
// shared by every caller per spec.md §5's eager-cache policy.
type BayesNet struct {
	Model
	DAG   *graph.DAG
	order []int
}

// NewBayesNet builds a BayesNet from factors indexed so that
// factors[v].Domain.Scope()[0] == v for every variable v owned by reg. It
// rejects a cyclic parent structure.
func NewBayesNet(reg *factor.Registry, factors []*factor.Factor) (*BayesNet, error) {
	n := reg.Len()
	if len(factors) != n {
		return nil, fmt.Errorf("model: expected %d factors, got %d", n, len(factors))
	}

	dag := graph.NewDAG(n)
	for v, f := range factors {
		scope := f.Domain.Scope()
		if len(scope) == 0 || scope[0] != v {
			return nil, fmt.Errorf("model: factor %d must have itself first in scope, got %v", v, scope)
		}
		for _, p := range scope[1:] {
			if err := dag.AddEdge(p, v); err != nil {
				return nil, err
			}
		}
	}

	order, err := dag.TopologicalSort()
	if err != nil {
		return nil, err
	}

	return &BayesNet{
		Model: Model{Reg: reg, Factors: factors},
		DAG:   dag,
		order: order,
	}, nil
}

// Parents returns v's parent variables.
func (bn *BayesNet) Parents(v int) []int { return bn.DAG.Parents(v) }

// Children returns v's child variables.
func (bn *BayesNet) Children(v int) []int { return bn.DAG.Children(v) }

// Roots returns every variable with no parents.
func (bn *BayesNet) Roots() []int { return bn.DAG.Roots() }

// Leaves returns every variable with no children.
func (bn *BayesNet) Leaves() []int { return bn.DAG.Leaves() }

// Ancestors returns every proper ancestor of v.
func (bn *BayesNet) Ancestors(v int) []int { return bn.DAG.Ancestors(v) }

// Descendants returns every proper descendant of v.
func (bn *BayesNet) Descendants(v int) []int { return bn.DAG.Descendants(v) }

// SamplingOrder returns the cached topological order used by the
// sampling drivers.
func (bn *BayesNet) SamplingOrder() []int { return append([]int(nil), bn.order...) }

// MarkovBlanket returns v's parents, children, and the other parents of
// v's children (the minimal set that renders v conditionally independent
// of the rest of the network).
func (bn *BayesNet) MarkovBlanket(v int) []int {
	set := make(map[int]bool)
	for _, p := range bn.DAG.Parents(v) {
		set[p] = true
	}
	for _, c := range bn.DAG.Children(v) {
		set[c] = true
		for _, p := range bn.DAG.Parents(c) {
			if p != v {
				set[p] = true
			}
		}
	}
	out := make([]int, 0, len(set))
	for x := range set {
		out = append(out, x)
	}
	return out
}

// factorByVar builds the variable -> conditional-factor map the sampling
// package's drivers need.
func (bn *BayesNet) factorByVar() map[int]*factor.Factor {
	out := make(map[int]*factor.Factor, len(bn.Factors))
	for v, f := range bn.Factors {
		out[v] = f
	}
	return out
}

// moralGraph builds the undirected moralized graph used for elimination
// ordering; it is rebuilt on every call.
func (bn *BayesNet) moralGraph() *graph.UndirectedGraph { return bn.DAG.MoralGraph() }

func (bn *BayesNet) eliminationOrderFor(heuristic EliminationHeuristic, excluded map[int]bool) []int {
	g := bn.moralGraph()
	h := graph.Heuristic(heuristic)
	full, _ := graph.EliminationOrder(g, h, bn.Reg.Cardinality)

	order := make([]int, 0, len(full))
	for _, v := range full {
		if !excluded[v] {
			order = append(order, v)
		}
	}
	return order
}

func defaultSamplingParams(opts QueryOptions) (delta, eps, lp float64) {
	delta, eps, lp = opts.Delta, opts.Epsilon, opts.Lp
	if delta == 0 {
		delta = 0.05
	}
	if eps == 0 {
		eps = 0.05
	}
	if lp == 0 {
		lp = 0.1
	}
	return
}

// Partition computes P(evidence) using the method named by opts.
func (bn *BayesNet) Partition(evidence map[int]int, opts QueryOptions, r *rand.Rand) (float64, error) {
	switch opts.Method {
	case VariableElimination:
		excluded := map[int]bool{}
		for v := range evidence {
			excluded[v] = true
		}
		order := bn.eliminationOrderFor(opts.Heuristic, excluded)
		result, err := elimination.Query(bn.Factors, nil, evidence, order)
		if err != nil {
			return 0, err
		}
		return result.Partition, nil

	case LogicalSampling:
		delta, eps, lp := defaultSamplingParams(opts)
		m := opts.SampleCount
		if m == 0 {
			m = sampling.RejectionSampleCount(delta, eps, lp)
		}
		estimate, _, err := sampling.Forward(bn.factorByVar(), bn.order, evidence, m, r)
		return estimate, err

	case LikelihoodWeighting:
		delta, eps, _ := defaultSamplingParams(opts)
		n := opts.SampleCount
		if n == 0 {
			n = sampling.LikelihoodWeightingSampleCount(delta, eps)
		}
		return sampling.LikelihoodWeighting(bn.factorByVar(), bn.order, evidence, n, r)

	case GibbsSampling:
		return sampling.Gibbs(bn.Factors, bn.order, evidence, opts.BurnIn, opts.GibbsSteps, r)

	default:
		return 0, fmt.Errorf("model: unknown partition method %v", opts.Method)
	}
}

// Marginals computes each variable's marginal under evidence using the
// method named by opts.
func (bn *BayesNet) Marginals(evidence map[int]int, opts QueryOptions) (map[int]*factor.Factor, error) {
	switch opts.MarginalsMethod {
	case MarginalsSumProduct:
		conditioned := make([]*factor.Factor, len(bn.Factors))
		for i, f := range bn.Factors {
			conditioned[i] = f.Condition(evidence)
		}
		fg := sumproduct.New(bn.Reg, conditioned)
		maxIter := opts.BPMaxIterations
		if maxIter == 0 {
			maxIter = 50
		}
		eps := opts.BPEpsilon
		if eps == 0 {
			eps = 1e-6
		}
		fg.Run(maxIter, eps)

		out := make(map[int]*factor.Factor)
		for v := 0; v < bn.Reg.Len(); v++ {
			if _, isEvidence := evidence[v]; isEvidence {
				continue
			}
			out[v] = fg.Marginal(v)
		}
		return out, nil

	default: // MarginalsVE
		out := make(map[int]*factor.Factor)
		for v := 0; v < bn.Reg.Len(); v++ {
			if _, isEvidence := evidence[v]; isEvidence {
				continue
			}
			excluded := map[int]bool{v: true}
			for e := range evidence {
				excluded[e] = true
			}
			order := bn.eliminationOrderFor(opts.Heuristic, excluded)
			result, err := elimination.Query(bn.Factors, []int{v}, evidence, order)
			if err != nil {
				return nil, err
			}
			out[v] = result.Normalize()
		}
		return out, nil
	}
}

// Query computes P(target | evidence): the conditioned-and-marginalized
// numerator, normalized by summing target back out of it (spec.md §9's
// pinned denominator convention, P(evidence) = Σ_target joint_{target∪evidence}).
func (bn *BayesNet) Query(target []int, evidence map[int]int, opts QueryOptions) (*factor.Factor, error) {
	factors := bn.Factors
	if opts.BayesBall {
		requisite := bn.requisiteFactors(target, evidence)
		factors = requisite
	}

	excluded := map[int]bool{}
	for _, v := range target {
		excluded[v] = true
	}
	for v := range evidence {
		excluded[v] = true
	}
	order := bn.eliminationOrderFor(opts.Heuristic, excluded)

	numerator, err := elimination.Query(factors, target, evidence, order)
	if err != nil {
		return nil, err
	}
	return numerator.Normalize(), nil
}

// requisiteFactors restricts the factor set to those touching a node the
// Bayes-Ball traversal marks requisite for computing P(target | evidence).
func (bn *BayesNet) requisiteFactors(target []int, evidence map[int]int) []*factor.Factor {
	k := make([]int, 0, len(evidence))
	for v := range evidence {
		k = append(k, v)
	}
	np, _ := bn.BayesBall(target, k)
	requisite := make(map[int]bool, len(np))
	for _, v := range np {
		requisite[v] = true
	}
	for _, v := range target {
		requisite[v] = true
	}

	out := make([]*factor.Factor, 0, len(bn.Factors))
	for v, f := range bn.Factors {
		if requisite[v] {
			out = append(out, f)
		}
	}
	return out
}
