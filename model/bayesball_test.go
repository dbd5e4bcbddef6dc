package model

import (
	"testing"

	"github.com/pgmgo/pgmgo/factor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildVStructure builds X0 -> X2 <- X1, a classic collider.
func buildVStructure(t *testing.T) (*BayesNet, int, int, int) {
	t.Helper()
	reg := factor.NewRegistry()
	x0, err := reg.Add(2)
	require.NoError(t, err)
	x1, err := reg.Add(2)
	require.NoError(t, err)
	x2, err := reg.Add(2)
	require.NoError(t, err)

	d0 := factor.NewDomain(reg, []int{x0})
	f0, _ := factor.NewFactor(d0, []float64{0.5, 0.5})
	d1 := factor.NewDomain(reg, []int{x1})
	f1, _ := factor.NewFactor(d1, []float64{0.5, 0.5})
	d2 := factor.NewDomain(reg, []int{x2, x0, x1})
	f2, _ := factor.NewFactor(d2, []float64{0.9, 0.1, 0.1, 0.9, 0.1, 0.9, 0.9, 0.1})

	bn, err := NewBayesNet(reg, []*factor.Factor{f0, f1, f2})
	require.NoError(t, err)
	return bn, x0, x1, x2
}

func TestMSeparatedColliderBlocksWithoutEvidence(t *testing.T) {
	bn, x0, x1, _ := buildVStructure(t)
	assert.True(t, bn.MSeparated(x0, x1, nil), "an unobserved collider must block the path")
}

func TestMSeparatedColliderOpensWithEvidence(t *testing.T) {
	bn, x0, x1, x2 := buildVStructure(t)
	assert.False(t, bn.MSeparated(x0, x1, map[int]int{x2: 0}), "observing a collider must open the path")
}

func TestBayesBallNpSubsetOfAncestorsOfJUnionK(t *testing.T) {
	bn, x0, x1, x2 := buildVStructure(t)
	np, ne := bn.BayesBall([]int{x0}, []int{x2})

	ancestors := map[int]bool{x0: true, x2: true}
	for _, a := range bn.Ancestors(x2) {
		ancestors[a] = true
	}
	for _, v := range np {
		assert.True(t, ancestors[v], "Np must be a subset of ancestors(J ∪ K), got %d", v)
	}

	evidence := map[int]bool{x2: true}
	for _, v := range ne {
		assert.True(t, evidence[v], "Ne must be a subset of K")
	}
	_ = x1
}

func TestBayesBallNeSubsetOfK(t *testing.T) {
	bn, x0, x1, x2 := buildVStructure(t)
	k := []int{x1, x2}
	_, ne := bn.BayesBall([]int{x0}, k)

	kSet := map[int]bool{x1: true, x2: true}
	for _, v := range ne {
		assert.True(t, kSet[v])
	}
}
