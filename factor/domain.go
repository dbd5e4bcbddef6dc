package factor

import "fmt"

// Domain is an ordered scope of variables, plus the row-major linearization
// derived from it: width, size, per-position strides (offset) and a
// variable-id-to-position index. Domain holds variable ids and a reference
// to the shared Registry that owns them, never a raw *Variable — two
// Domains built from the same Registry always agree on cardinalities.
type Domain struct {
	reg        *Registry
	scope      []int
	offset     []int
	varToIndex map[int]int
	size       int
}

// NewDomain builds a Domain over scope, in the given order. It panics if a
// variable id appears twice: callers build scopes themselves and a duplicate
// is a programming error, not a data error.
func NewDomain(reg *Registry, scope []int) *Domain {
	seen := make(map[int]bool, len(scope))
	for _, v := range scope {
		if seen[v] {
			panic(fmt.Sprintf("factor: variable %d appears twice in domain scope", v))
		}
		seen[v] = true
	}

	width := len(scope)
	offset := make([]int, width)
	size := 1
	for i := width - 1; i >= 0; i-- {
		offset[i] = size
		size *= reg.Cardinality(scope[i])
	}

	idx := make(map[int]int, width)
	for i, v := range scope {
		idx[v] = i
	}

	return &Domain{
		reg:        reg,
		scope:      append([]int(nil), scope...),
		offset:     offset,
		varToIndex: idx,
		size:       size,
	}
}

// Registry returns the shared variable registry this domain was built from.
func (d *Domain) Registry() *Registry { return d.reg }

// Width returns the number of variables in the scope.
func (d *Domain) Width() int { return len(d.scope) }

// Size returns the number of valuations (1 for the empty scope).
func (d *Domain) Size() int { return d.size }

// Scope returns a copy of the ordered variable ids.
func (d *Domain) Scope() []int { return append([]int(nil), d.scope...) }

// IndexOf reports the position of variable v in the scope, if present.
func (d *Domain) IndexOf(v int) (int, bool) {
	i, ok := d.varToIndex[v]
	return i, ok
}

// Contains reports whether v is in the scope.
func (d *Domain) Contains(v int) bool {
	_, ok := d.varToIndex[v]
	return ok
}

// Position returns the row-major linear index Σ val[i]*offset[i] of the
// valuation val, which must have length Width().
func (d *Domain) Position(val []int) int {
	pos := 0
	for i, v := range val {
		pos += v * d.offset[i]
	}
	return pos
}

// NextValuation performs the row-major odometer increment on val in place:
// the rightmost position is incremented first and carries leftward into the
// next. It returns false once the increment wraps back to the all-zero
// valuation (the iteration is "done"); starting from all-zero and calling
// NextValuation Size()-1 more times visits every valuation exactly once.
func (d *Domain) NextValuation(val []int) bool {
	for i := d.Width() - 1; i >= 0; i-- {
		val[i]++
		if val[i] < d.reg.Cardinality(d.scope[i]) {
			return true
		}
		val[i] = 0
	}
	return false
}

// NextValuationFixing is NextValuation but treats every position whose
// variable id is a key of evidence as frozen: it is never incremented and
// never carried into. Callers must pre-set those positions to the observed
// value before iterating.
func (d *Domain) NextValuationFixing(val []int, evidence map[int]int) bool {
	for i := d.Width() - 1; i >= 0; i-- {
		if _, frozen := evidence[d.scope[i]]; frozen {
			continue
		}
		val[i]++
		if val[i] < d.reg.Cardinality(d.scope[i]) {
			return true
		}
		val[i] = 0
	}
	return false
}

// ProjectPosition returns the linear position, in this domain, of the
// valuation whose coordinates are copied from val (a valuation of src).
// Variables in this domain's scope that are absent from src contribute 0.
func (d *Domain) ProjectPosition(val []int, src *Domain) int {
	pos := 0
	for i, v := range d.scope {
		if j, ok := src.varToIndex[v]; ok {
			pos += val[j] * d.offset[i]
		}
	}
	return pos
}

// ProjectPositionWith is ProjectPosition but additionally pins variable v to
// value before projecting. v need not be present in src, and need not be
// present in this domain either (in which case it has no effect).
func (d *Domain) ProjectPositionWith(val []int, src *Domain, v, value int) int {
	pos := 0
	for i, sv := range d.scope {
		if sv == v {
			pos += value * d.offset[i]
			continue
		}
		if j, ok := src.varToIndex[sv]; ok {
			pos += val[j] * d.offset[i]
		}
	}
	return pos
}

// Union returns a Domain whose scope is d1's scope followed by the
// variables of d2 not already in d1, preserving order.
func Union(d1, d2 *Domain) *Domain {
	scope := append([]int(nil), d1.scope...)
	for _, v := range d2.scope {
		if _, ok := d1.varToIndex[v]; !ok {
			scope = append(scope, v)
		}
	}
	return NewDomain(d1.reg, scope)
}

// Minus returns a Domain with v removed, preserving relative order. It is a
// no-op (returns a copy) if v is not in the scope.
func Minus(d *Domain, v int) *Domain {
	scope := make([]int, 0, len(d.scope))
	for _, sv := range d.scope {
		if sv != v {
			scope = append(scope, sv)
		}
	}
	return NewDomain(d.reg, scope)
}

// Restrict returns a Domain with every variable that is a key of evidence
// removed, preserving relative order.
func Restrict(d *Domain, evidence map[int]int) *Domain {
	scope := make([]int, 0, len(d.scope))
	for _, v := range d.scope {
		if _, ok := evidence[v]; !ok {
			scope = append(scope, v)
		}
	}
	return NewDomain(d.reg, scope)
}
