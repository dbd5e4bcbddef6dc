// Package model provides the BayesNet and MarkovNet model wrappers over
// the factor algebra package, plus the structural and probabilistic
// queries a front-end depends on.
package model

import (
	"github.com/pgmgo/pgmgo/factor"
)

// Model is the shared base every model kind embeds: a variable registry
// and the factors that define the joint distribution.
type Model struct {
	Reg     *factor.Registry
	Factors []*factor.Factor
}

// JointDistribution returns the product of every factor (the scalar 1 if
// there are none).
func (m *Model) JointDistribution() *factor.Factor {
	if len(m.Factors) == 0 {
		d := factor.NewDomain(m.Reg, nil)
		f, _ := factor.NewFactor(d, []float64{1})
		return f
	}
	result := m.Factors[0]
	for i := 1; i < len(m.Factors); i++ {
		result = result.Product(m.Factors[i])
	}
	return result
}

// JointDistributionWithEvidence is the product of every factor conditioned
// on evidence.
func (m *Model) JointDistributionWithEvidence(evidence map[int]int) *factor.Factor {
	if len(m.Factors) == 0 {
		d := factor.NewDomain(m.Reg, nil)
		f, _ := factor.NewFactor(d, []float64{1})
		return f
	}
	result := m.Factors[0].Condition(evidence)
	for i := 1; i < len(m.Factors); i++ {
		result = result.Product(m.Factors[i].Condition(evidence))
	}
	return result
}

// Partition is the default implementation: the partition of the
// evidence-conditioned joint. Subclasses may override with a
// method-selected estimator (see BayesNet.Partition).
func (m *Model) Partition(evidence map[int]int) float64 {
	return m.JointDistributionWithEvidence(evidence).Partition
}

// Marginals is the default implementation described in spec.md §4.3:
// normalize the conditioned joint, then sum out everything except each
// variable in turn. Subclasses override with a more efficient routine.
func (m *Model) Marginals(evidence map[int]int) map[int]*factor.Factor {
	joint := m.JointDistributionWithEvidence(evidence).Normalize()
	scope := joint.Domain.Scope()

	out := make(map[int]*factor.Factor, len(scope))
	for _, v := range scope {
		marginal := joint
		for _, other := range scope {
			if other != v {
				marginal = marginal.SumOut(other)
			}
		}
		out[v] = marginal
	}
	return out
}
