package factor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, cards ...int) (*Registry, []int) {
	t.Helper()
	reg := NewRegistry()
	ids := make([]int, len(cards))
	for i, c := range cards {
		id, err := reg.Add(c)
		require.NoError(t, err)
		ids[i] = id
	}
	return reg, ids
}

func TestDomainStrides(t *testing.T) {
	reg, ids := newTestRegistry(t, 2, 3, 2)
	d := NewDomain(reg, ids)

	assert.Equal(t, 3, d.Width())
	assert.Equal(t, 12, d.Size())
	assert.Equal(t, 0, d.Position([]int{0, 0, 0}))
	assert.Equal(t, 1, d.Position([]int{0, 0, 1}))
	assert.Equal(t, 2, d.Position([]int{0, 1, 0}))
	assert.Equal(t, 11, d.Position([]int{1, 2, 1}))
}

func TestDomainEmptyScope(t *testing.T) {
	reg := NewRegistry()
	d := NewDomain(reg, nil)
	assert.Equal(t, 0, d.Width())
	assert.Equal(t, 1, d.Size())
}

func TestNextValuationVisitsEverythingOnce(t *testing.T) {
	reg, ids := newTestRegistry(t, 2, 3)
	d := NewDomain(reg, ids)

	seen := make(map[int]bool)
	val := []int{0, 0}
	for i := 0; i < d.Size(); i++ {
		pos := d.Position(val)
		assert.False(t, seen[pos], "position %d visited twice", pos)
		seen[pos] = true
		d.NextValuation(val)
	}
	assert.Len(t, seen, d.Size())
	assert.Equal(t, []int{0, 0}, val, "odometer should wrap back to all-zero")
}

func TestNextValuationFixingSkipsFrozenPositions(t *testing.T) {
	reg, ids := newTestRegistry(t, 2, 3)
	d := NewDomain(reg, ids)
	evidence := map[int]int{ids[0]: 1}

	val := []int{1, 0}
	count := 1
	for d.NextValuationFixing(val, evidence) {
		assert.Equal(t, 1, val[0], "frozen position must never change")
		count++
	}
	assert.Equal(t, 3, count)
}

func TestUnionPreservesOrderAndDedups(t *testing.T) {
	reg, ids := newTestRegistry(t, 2, 2, 2)
	a, b, c := ids[0], ids[1], ids[2]

	d1 := NewDomain(reg, []int{a, b})
	d2 := NewDomain(reg, []int{b, c})

	u := Union(d1, d2)
	assert.Equal(t, []int{a, b, c}, u.Scope())
}

func TestMinusAndRestrict(t *testing.T) {
	reg, ids := newTestRegistry(t, 2, 2, 2)
	a, b, c := ids[0], ids[1], ids[2]

	d := NewDomain(reg, []int{a, b, c})
	assert.Equal(t, []int{a, c}, Minus(d, b).Scope())
	assert.Equal(t, []int{a, b, c}, Minus(d, 9999).Scope(), "removing an absent variable is a no-op")

	restricted := Restrict(d, map[int]int{b: 0, c: 1})
	assert.Equal(t, []int{a}, restricted.Scope())
}

func TestProjectPosition(t *testing.T) {
	reg, ids := newTestRegistry(t, 2, 2)
	a, b := ids[0], ids[1]

	da := NewDomain(reg, []int{a})
	dab := NewDomain(reg, []int{a, b})

	// val = (a=1, b=0) in dab's order; projecting into da drops b.
	got := da.ProjectPosition([]int{1, 0}, dab)
	assert.Equal(t, 1, got)

	// A variable absent from the projected-from domain contributes 0.
	dc, _ := reg.Add(2)
	dWithC := NewDomain(reg, []int{a, dc})
	got2 := dWithC.ProjectPosition([]int{1}, da)
	assert.Equal(t, 1*2+0, got2) // a=1, c defaults to 0
}
