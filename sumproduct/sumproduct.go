// Package sumproduct implements loopy sum-product belief propagation over
// a bipartite factor graph: variable nodes and factor nodes, with an edge
// wherever a variable appears in a factor's scope.
package sumproduct

import (
	"math"

	"github.com/pgmgo/pgmgo/factor"
)

// edge identifies a message slot: (factor index, variable id).
type edge struct {
	factorIdx int
	variable  int
}

// FactorGraph runs loopy sum-product over a fixed set of factors.
type FactorGraph struct {
	reg     *factor.Registry
	factors []*factor.Factor
	nbrVars map[int][]int // factor index -> variables in its scope
	nbrFact map[int][]int // variable id -> factor indices touching it

	varToFact map[edge]*factor.Factor
	factToVar map[edge]*factor.Factor
}

// New builds a FactorGraph over factors. reg must be the shared registry
// every factor's domain was built against.
func New(reg *factor.Registry, factors []*factor.Factor) *FactorGraph {
	g := &FactorGraph{
		reg:       reg,
		factors:   factors,
		nbrVars:   make(map[int][]int),
		nbrFact:   make(map[int][]int),
		varToFact: make(map[edge]*factor.Factor),
		factToVar: make(map[edge]*factor.Factor),
	}

	for fi, f := range factors {
		scope := f.Domain.Scope()
		g.nbrVars[fi] = scope
		for _, v := range scope {
			g.nbrFact[v] = append(g.nbrFact[v], fi)
		}
	}

	for fi, vars := range g.nbrVars {
		for _, v := range vars {
			e := edge{fi, v}
			g.varToFact[e] = uniformMessage(reg, v)
			g.factToVar[e] = uniformMessage(reg, v)
		}
	}

	return g
}

func uniformMessage(reg *factor.Registry, v int) *factor.Factor {
	card := reg.Cardinality(v)
	values := make([]float64, card)
	for i := range values {
		values[i] = 1.0 / float64(card)
	}
	d := factor.NewDomain(reg, []int{v})
	f, _ := factor.NewFactor(d, values)
	return f
}

// Run iterates the update rule up to max rounds, stopping early once the
// L-infinity change across every message falls below epsilon. It returns
// the number of iterations actually performed and the largest per-message
// delta observed in the final iteration.
func (g *FactorGraph) Run(max int, epsilon float64) (iterations int, maxDelta float64) {
	for iterations = 1; iterations <= max; iterations++ {
		maxDelta = g.step()
		if maxDelta < epsilon {
			return iterations, maxDelta
		}
	}
	iterations = max
	return iterations, maxDelta
}

func (g *FactorGraph) step() float64 {
	delta := 0.0

	newVarToFact := make(map[edge]*factor.Factor, len(g.varToFact))
	for fi, vars := range g.nbrVars {
		for _, v := range vars {
			msg := g.variableToFactorMessage(v, fi)
			d := messageDelta(g.varToFact[edge{fi, v}], msg)
			if d > delta {
				delta = d
			}
			newVarToFact[edge{fi, v}] = msg
		}
	}

	newFactToVar := make(map[edge]*factor.Factor, len(g.factToVar))
	for fi, vars := range g.nbrVars {
		for _, v := range vars {
			msg := g.factorToVariableMessage(fi, v, newVarToFact)
			d := messageDelta(g.factToVar[edge{fi, v}], msg)
			if d > delta {
				delta = d
			}
			newFactToVar[edge{fi, v}] = msg
		}
	}

	g.varToFact = newVarToFact
	g.factToVar = newFactToVar
	return delta
}

// variableToFactorMessage computes mu_{v->f} = normalize(product of
// mu_{f'->v} over every other factor neighboring v).
func (g *FactorGraph) variableToFactorMessage(v, f int) *factor.Factor {
	var product *factor.Factor
	for _, fp := range g.nbrFact[v] {
		if fp == f {
			continue
		}
		msg := g.factToVar[edge{fp, v}]
		if product == nil {
			product = msg
			continue
		}
		product = product.Product(msg)
	}
	if product == nil {
		return uniformMessage(g.reg, v)
	}
	return product.Normalize()
}

// factorToVariableMessage computes mu_{f->v} = normalize(sum_out the rest
// of scope(f) from f times the product of mu_{u->f} for every other
// u in scope(f)).
func (g *FactorGraph) factorToVariableMessage(f, v int, varToFact map[edge]*factor.Factor) *factor.Factor {
	product := g.factors[f]
	for _, u := range g.nbrVars[f] {
		if u == v {
			continue
		}
		product = product.Product(varToFact[edge{f, u}])
	}
	for _, u := range product.Domain.Scope() {
		if u != v {
			product = product.SumOut(u)
		}
	}
	return product.Normalize()
}

// Marginal computes normalize(product of mu_{f->v} over every factor
// neighboring v) using the current message state.
func (g *FactorGraph) Marginal(v int) *factor.Factor {
	var product *factor.Factor
	for _, fi := range g.nbrFact[v] {
		msg := g.factToVar[edge{fi, v}]
		if product == nil {
			product = msg
			continue
		}
		product = product.Product(msg)
	}
	if product == nil {
		return uniformMessage(g.reg, v)
	}
	return product.Normalize()
}

func messageDelta(a, b *factor.Factor) float64 {
	delta := 0.0
	for i := range a.Values {
		d := math.Abs(a.Values[i] - b.Values[i])
		if d > delta {
			delta = d
		}
	}
	return delta
}
