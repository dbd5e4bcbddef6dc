// Package elimination implements exact inference by bucket elimination,
// driven by an externally supplied elimination order (see package graph).
package elimination

import (
	"fmt"

	"github.com/pgmgo/pgmgo/factor"
)

// Run eliminates every variable in order from factors, multiplying factors
// filed into each variable's bucket and summing the variable out, then
// returns the product of whatever factors remain. Each input factor is
// filed under the earliest-in-order variable in its scope ("bucket
// assignment"); a factor whose scope is disjoint from order is never
// touched until the final product.
func Run(factors []*factor.Factor, order []int) (*factor.Factor, error) {
	if len(factors) == 0 {
		return nil, fmt.Errorf("elimination: no factors to combine")
	}

	position := make(map[int]int, len(order))
	for i, v := range order {
		position[v] = i
	}

	remaining := append([]*factor.Factor(nil), factors...)

	for _, v := range order {
		bucket := make([]*factor.Factor, 0)
		rest := make([]*factor.Factor, 0, len(remaining))
		for _, f := range remaining {
			if belongsInBucket(f, v, position) {
				bucket = append(bucket, f)
			} else {
				rest = append(rest, f)
			}
		}
		if len(bucket) == 0 {
			remaining = rest
			continue
		}
		product := bucket[0]
		for i := 1; i < len(bucket); i++ {
			product = product.Product(bucket[i])
		}
		summed := product.SumOut(v)
		remaining = append(rest, summed)
	}

	result := remaining[0]
	for i := 1; i < len(remaining); i++ {
		result = result.Product(remaining[i])
	}
	return result, nil
}

// belongsInBucket reports whether factor f should be filed in v's bucket:
// v is in f's scope, and no other variable in f's scope comes earlier in
// the elimination order (so each factor is multiplied exactly once, at the
// earliest bucket its scope reaches).
func belongsInBucket(f *factor.Factor, v int, position map[int]int) bool {
	if !f.Domain.Contains(v) {
		return false
	}
	vPos := position[v]
	for _, sv := range f.Domain.Scope() {
		if sv == v {
			continue
		}
		if p, ok := position[sv]; ok && p < vPos {
			return false
		}
	}
	return true
}

// Query computes the unnormalized joint factor over queryVars conditioned
// on evidence, eliminating every other variable in the given order.
// Evidence variables must not appear in order (they are conditioned away
// before bucket elimination begins, not summed out).
func Query(factors []*factor.Factor, queryVars []int, evidence map[int]int, order []int) (*factor.Factor, error) {
	conditioned := make([]*factor.Factor, len(factors))
	for i, f := range factors {
		conditioned[i] = f.Condition(evidence)
	}

	result, err := Run(conditioned, order)
	if err != nil {
		return nil, err
	}

	queried := make(map[int]bool, len(queryVars))
	for _, v := range queryVars {
		queried[v] = true
	}
	for _, v := range result.Domain.Scope() {
		if !queried[v] {
			result = result.SumOut(v)
		}
	}
	return result, nil
}
