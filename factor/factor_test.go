package factor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func buildChain(t *testing.T) (*Registry, int, int, *Factor, *Factor) {
	t.Helper()
	reg := NewRegistry()
	x0, err := reg.Add(2)
	require.NoError(t, err)
	x1, err := reg.Add(2)
	require.NoError(t, err)

	d0 := NewDomain(reg, []int{x0})
	f0, err := NewFactor(d0, []float64{0.3, 0.7})
	require.NoError(t, err)

	// P(X1 | X0): scope [X1, X0] per the child-first BayesNet convention.
	d1 := NewDomain(reg, []int{x1, x0})
	f1, err := NewFactor(d1, []float64{0.8, 0.4, 0.2, 0.6})
	require.NoError(t, err)

	return reg, x0, x1, f0, f1
}

func TestPartitionInvariant(t *testing.T) {
	_, _, _, f0, f1 := buildChain(t)
	for _, f := range []*Factor{f0, f1} {
		assert.True(t, floats.EqualWithinAbsOrRel(f.Partition, floats.Sum(f.Values), 1e-9, 1e-9))
	}
}

func TestProductCommutesUnderPermutation(t *testing.T) {
	_, _, _, f0, f1 := buildChain(t)

	ab := f0.Product(f1)
	ba := f1.Product(f0)

	// Same scope set, possibly different order; compare by re-projecting
	// both onto a single common domain.
	common := ab.Domain
	val := make([]int, common.Width())
	for i := 0; i < common.Size(); i++ {
		posAB := common.ProjectPosition(val, common)
		posBA := ba.Domain.ProjectPosition(val, common)
		assert.InDelta(t, ab.Values[posAB], ba.Values[posBA], 1e-12)
		common.NextValuation(val)
	}
}

func TestSumOutOrderIndependence(t *testing.T) {
	reg := NewRegistry()
	a, _ := reg.Add(2)
	b, _ := reg.Add(2)
	c, _ := reg.Add(2)
	d := NewDomain(reg, []int{a, b, c})
	f, err := NewFactor(d, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)

	ab := f.SumOut(a).SumOut(b)
	ba := f.SumOut(b).SumOut(a)

	assert.Equal(t, ab.Domain.Scope(), ba.Domain.Scope())
	assert.InDeltaSlice(t, ab.Values, ba.Values, 1e-12)
}

func TestConditionComposesOverDisjointEvidence(t *testing.T) {
	reg := NewRegistry()
	a, _ := reg.Add(2)
	b, _ := reg.Add(2)
	c, _ := reg.Add(2)
	d := NewDomain(reg, []int{a, b, c})
	f, err := NewFactor(d, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)

	combined := f.Condition(map[int]int{a: 1, b: 0})
	sequential := f.Condition(map[int]int{a: 1}).Condition(map[int]int{b: 0})

	assert.Equal(t, combined.Domain.Scope(), sequential.Domain.Scope())
	assert.InDeltaSlice(t, combined.Values, sequential.Values, 1e-12)
}

func TestNormalizeIdempotent(t *testing.T) {
	_, _, _, f0, _ := buildChain(t)
	scaled, err := NewFactor(f0.Domain, []float64{3, 7})
	require.NoError(t, err)

	once := scaled.Normalize()
	twice := once.Normalize()

	assert.InDelta(t, 1.0, once.Partition, 1e-12)
	assert.InDeltaSlice(t, once.Values, twice.Values, 1e-12)
}

func TestNormalizeZeroPartitionIsMarkedInconsistent(t *testing.T) {
	reg := NewRegistry()
	id, _ := reg.Add(2)
	d := NewDomain(reg, []int{id})
	f, err := NewFactor(d, []float64{0, 0})
	require.NoError(t, err)

	result := f.Normalize()
	assert.Equal(t, 0.0, result.Partition)
}

func TestDivideConventions(t *testing.T) {
	reg, ids := newTestRegistry(t, 2)
	d := NewDomain(reg, ids)
	zero, _ := NewFactor(d, []float64{0, 0})
	pos, _ := NewFactor(d, []float64{1, 2})

	quotient, err := zero.Divide(zero)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, quotient.Values)

	_, err = pos.Divide(zero)
	assert.Error(t, err)
}

func TestBayesNetJointSumsToOne(t *testing.T) {
	_, _, _, f0, f1 := buildChain(t)
	joint := f0.Product(f1)
	assert.InDelta(t, 1.0, joint.Partition, 1e-9)
}

func TestPartitionWithEvidenceMatchesHandComputation(t *testing.T) {
	_, _, x1, f0, f1 := buildChain(t)
	joint := f0.Product(f1)
	conditioned := joint.Condition(map[int]int{x1: 0})
	assert.InDelta(t, 0.3*0.8+0.7*0.4, conditioned.Partition, 1e-9)
}

func TestSampleDrawsFromConditional(t *testing.T) {
	_, x0, x1, _, f1 := buildChain(t)
	r := rand.New(rand.NewSource(1))
	v, val, err := f1.Sample(map[int]int{x0: 0}, r)
	require.NoError(t, err)
	assert.Equal(t, x1, v)
	assert.True(t, val == 0 || val == 1)
}

func TestMaxMin(t *testing.T) {
	_, _, _, f0, _ := buildChain(t)
	assert.InDelta(t, 0.7, f0.Max(), 1e-12)
	assert.InDelta(t, 0.3, f0.Min(), 1e-12)
}
