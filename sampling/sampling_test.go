package sampling

import (
	"math/rand"
	"testing"

	"github.com/pgmgo/pgmgo/factor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChain(t *testing.T) (*factor.Registry, int, int, map[int]*factor.Factor, []int) {
	t.Helper()
	reg := factor.NewRegistry()
	x0, err := reg.Add(2)
	require.NoError(t, err)
	x1, err := reg.Add(2)
	require.NoError(t, err)

	d0 := factor.NewDomain(reg, []int{x0})
	f0, err := factor.NewFactor(d0, []float64{0.3, 0.7})
	require.NoError(t, err)

	d1 := factor.NewDomain(reg, []int{x1, x0})
	f1, err := factor.NewFactor(d1, []float64{0.8, 0.4, 0.2, 0.6})
	require.NoError(t, err)

	return reg, x0, x1, map[int]*factor.Factor{x0: f0, x1: f1}, []int{x0, x1}
}

func TestRejectionSampleCountIsPositive(t *testing.T) {
	m := RejectionSampleCount(0.05, 0.05, 0.1)
	assert.Greater(t, m, 0)
}

func TestForwardEstimatesPartitionNearHandComputedValue(t *testing.T) {
	_, _, x1, factorByVar, order := buildChain(t)
	r := rand.New(rand.NewSource(7))

	m := RejectionSampleCount(0.05, 0.05, 0.1)
	estimate, accepted, err := Forward(factorByVar, order, map[int]int{x1: 0}, m, r)
	require.NoError(t, err)
	assert.InDelta(t, 0.52, estimate, 0.05)
	assert.LessOrEqual(t, accepted, m)
}

func TestLikelihoodWeightingEstimatesPartition(t *testing.T) {
	_, _, x1, factorByVar, order := buildChain(t)
	r := rand.New(rand.NewSource(11))

	n := LikelihoodWeightingSampleCount(0.05, 0.05)
	estimate, err := LikelihoodWeighting(factorByVar, order, map[int]int{x1: 0}, n, r)
	require.NoError(t, err)
	assert.InDelta(t, 0.52, estimate, 0.05)
}

func TestGibbsWithNoNonEvidenceVariablesReturnsOne(t *testing.T) {
	_, x0, x1, factorByVar, order := buildChain(t)
	factors := []*factor.Factor{factorByVar[x0], factorByVar[x1]}
	r := rand.New(rand.NewSource(3))

	estimate, err := Gibbs(factors, order, map[int]int{x0: 0, x1: 0}, 10, 50, r)
	require.NoError(t, err)
	assert.Equal(t, 1.0, estimate)
}

func TestGibbsRunsWithoutError(t *testing.T) {
	_, _, x1, factorByVar, order := buildChain(t)
	factors := []*factor.Factor{factorByVar[order[0]], factorByVar[order[1]]}
	r := rand.New(rand.NewSource(5))

	estimate, err := Gibbs(factors, order, map[int]int{x1: 0}, 20, 200, r)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, estimate, 0.0)
	assert.LessOrEqual(t, estimate, 1.0)
}
