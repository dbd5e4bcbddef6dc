// Package sampling implements the three approximate inference drivers:
// logical (rejection) sampling, likelihood weighting, and Gibbs sampling.
// Each accepts its sample-budget as an explicit parameter rather than a
// hard-coded constant, and an injected random source for reproducibility.
package sampling

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pgmgo/pgmgo/factor"
)

// RejectionSampleCount computes M = ceil(3*ln(2/delta)/eps^2 * 1/lp), the
// sample budget the logical-sampling estimator needs to hit accuracy eps
// with confidence 1-delta, given a prior lower bound lp on the event
// probability.
func RejectionSampleCount(delta, eps, lp float64) int {
	m := 3 * math.Log(2/delta) / (eps * eps) / lp
	return int(math.Ceil(m))
}

// LikelihoodWeightingSampleCount computes N* = ceil(4*ln(2/delta)*(1+eps)/eps^2).
func LikelihoodWeightingSampleCount(delta, eps float64) int {
	n := 4 * math.Log(2/delta) * (1 + eps) / (eps * eps)
	return int(math.Ceil(n))
}

// Forward draws m complete samples in topological order and rejects those
// inconsistent with evidence, returning the accepted/m ratio as the
// partition estimate. factorByVar must map every variable in order to its
// conditional factor (scope[0] == that variable).
func Forward(factorByVar map[int]*factor.Factor, order []int, evidence map[int]int, m int, r *rand.Rand) (estimate float64, accepted int, err error) {
	for s := 0; s < m; s++ {
		valuation := make(map[int]int, len(order))
		for _, v := range order {
			f, ok := factorByVar[v]
			if !ok {
				return 0, 0, fmt.Errorf("sampling: no factor for variable %d", v)
			}
			_, val, sampleErr := f.Sample(valuation, r)
			if sampleErr != nil {
				return 0, 0, sampleErr
			}
			valuation[v] = val
		}
		if matches(valuation, evidence) {
			accepted++
		}
	}
	return float64(accepted) / float64(m), accepted, nil
}

// LikelihoodWeighting draws n weighted samples: non-evidence variables are
// sampled from their conditional given the current valuation; evidence
// variables are fixed, and the running weight is multiplied by the
// factor's value at the observed row. The final estimate follows
// U*N/M with U = product of each factor's max value, N = sum(weight)/U.
func LikelihoodWeighting(factorByVar map[int]*factor.Factor, order []int, evidence map[int]int, n int, r *rand.Rand) (estimate float64, err error) {
	u := 1.0
	for _, f := range factorByVar {
		u *= f.Max()
	}

	sumW := 0.0
	for s := 0; s < n; s++ {
		valuation := make(map[int]int, len(order))
		weight := 1.0
		for _, v := range order {
			f, ok := factorByVar[v]
			if !ok {
				return 0, fmt.Errorf("sampling: no factor for variable %d", v)
			}
			if ev, isEvidence := evidence[v]; isEvidence {
				valuation[v] = ev
				weight *= valueAt(f, valuation)
				continue
			}
			_, val, sampleErr := f.Sample(valuation, r)
			if sampleErr != nil {
				return 0, sampleErr
			}
			valuation[v] = val
		}
		sumW += weight
	}

	if u == 0 {
		return 0, nil
	}
	nStar := sumW / u
	return u * nStar / float64(n), nil
}

// valueAt reads f's table at the row implied by valuation, which must
// assign every variable in f's scope.
func valueAt(f *factor.Factor, valuation map[int]int) float64 {
	scope := f.Domain.Scope()
	val := make([]int, len(scope))
	for i, v := range scope {
		val[i] = valuation[v]
	}
	return f.Values[f.Domain.Position(val)]
}

// Gibbs runs a Markov chain over vars: evidence variables are clamped at
// their observed value for the whole run, non-evidence variables are
// resampled each step from their Markov-blanket conditional (the product
// of every factor touching that variable, conditioned on the rest of the
// current valuation and renormalized). After discarding burnIn steps, it
// returns the fraction of the remaining steps whose valuation matches
// evidence as the partition estimate.
func Gibbs(factors []*factor.Factor, vars []int, evidence map[int]int, burnIn, steps int, r *rand.Rand) (estimate float64, err error) {
	relevant := make(map[int][]*factor.Factor, len(vars))
	for _, v := range vars {
		for _, f := range factors {
			if f.Domain.Contains(v) {
				relevant[v] = append(relevant[v], f)
			}
		}
	}

	valuation := make(map[int]int, len(vars))
	nonEvidence := make([]int, 0, len(vars))
	for _, v := range vars {
		if ev, ok := evidence[v]; ok {
			valuation[v] = ev
		} else {
			valuation[v] = 0
			nonEvidence = append(nonEvidence, v)
		}
	}

	if len(nonEvidence) == 0 {
		return 1.0, nil
	}

	hits := 0
	for t := 0; t < burnIn+steps; t++ {
		for _, v := range nonEvidence {
			fs := relevant[v]
			if len(fs) == 0 {
				return 0, fmt.Errorf("sampling: variable %d touches no factor", v)
			}
			product := fs[0]
			for i := 1; i < len(fs); i++ {
				product = product.Product(fs[i])
			}

			rest := make(map[int]int, len(valuation)-1)
			for k, val := range valuation {
				if k != v {
					rest[k] = val
				}
			}
			conditional := product.Condition(rest).Normalize()
			if conditional.Partition == 0 {
				return 0, fmt.Errorf("sampling: degenerate Markov-blanket conditional for variable %d", v)
			}

			u := r.Float64()
			cum := 0.0
			card := len(conditional.Values)
			val := card - 1
			for k := 0; k < card; k++ {
				cum += conditional.Values[k]
				if u <= cum {
					val = k
					break
				}
			}
			valuation[v] = val
		}

		if t >= burnIn {
			if matches(valuation, evidence) {
				hits++
			}
		}
	}

	return float64(hits) / float64(steps), nil
}

func matches(valuation, evidence map[int]int) bool {
	for v, ev := range evidence {
		if valuation[v] != ev {
			return false
		}
	}
	return true
}
