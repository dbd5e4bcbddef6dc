package elimination

import (
	"testing"

	"github.com/pgmgo/pgmgo/factor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChain(t *testing.T) (*factor.Registry, int, int, []*factor.Factor) {
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

	return reg, x0, x1, []*factor.Factor{f0, f1}
}

func TestRunEliminatesToSingleVariable(t *testing.T) {
	_, x0, x1, factors := buildChain(t)

	result, err := Run(factors, []int{x0})
	require.NoError(t, err)

	assert.Equal(t, []int{x1}, result.Domain.Scope())
	assert.InDelta(t, 1.0, result.Partition, 1e-9)
}

func TestQueryMatchesHandComputedMarginal(t *testing.T) {
	_, x0, x1, factors := buildChain(t)

	result, err := Query(factors, []int{x1}, nil, []int{x0})
	require.NoError(t, err)

	// P(X1=0) = 0.3*0.8 + 0.7*0.4 = 0.52
	assert.InDelta(t, 0.52, result.Values[0], 1e-9)
	assert.InDelta(t, 0.48, result.Values[1], 1e-9)
}

func TestQueryWithEvidenceMatchesPartition(t *testing.T) {
	_, x0, x1, factors := buildChain(t)

	result, err := Query(factors, []int{x0}, map[int]int{x1: 0}, nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.3*0.8, result.Values[0], 1e-9)
	assert.InDelta(t, 0.7*0.4, result.Values[1], 1e-9)
}

func TestRunOrderIndependentResult(t *testing.T) {
	reg := factor.NewRegistry()
	a, _ := reg.Add(2)
	b, _ := reg.Add(2)
	c, _ := reg.Add(2)

	da := factor.NewDomain(reg, []int{a})
	fa, _ := factor.NewFactor(da, []float64{0.5, 0.5})
	dab := factor.NewDomain(reg, []int{b, a})
	fb, _ := factor.NewFactor(dab, []float64{0.9, 0.2, 0.1, 0.8})
	dbc := factor.NewDomain(reg, []int{c, b})
	fc, _ := factor.NewFactor(dbc, []float64{0.6, 0.3, 0.4, 0.7})

	factors := []*factor.Factor{fa, fb, fc}

	r1, err := Query(factors, []int{c}, nil, []int{a, b})
	require.NoError(t, err)
	r2, err := Query(factors, []int{c}, nil, []int{b, a})
	require.NoError(t, err)

	assert.InDeltaSlice(t, r1.Values, r2.Values, 1e-9)
}
