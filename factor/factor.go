package factor

import (
	"fmt"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Factor is a non-negative table over a Domain. Factor is pure data: every
// algebraic operation below produces a new Factor and never mutates its
// operands. Partition always equals the sum of Values, to within floating
// point precision.
type Factor struct {
	Domain    *Domain
	Values    []float64
	Partition float64
}

// NewFactor builds a Factor, validating that values has exactly Domain.Size()
// non-negative entries. This is the entry point for externally supplied
// tables (a CPD loaded from a file, a hand-built example model); algebra
// operations below construct their result directly, since the operation
// itself guarantees the right shape.
func NewFactor(domain *Domain, values []float64) (*Factor, error) {
	if len(values) != domain.Size() {
		return nil, fmt.Errorf("factor: values length %d does not match domain size %d", len(values), domain.Size())
	}
	for i, v := range values {
		if v < 0 {
			return nil, fmt.Errorf("factor: negative value %.6g at index %d", v, i)
		}
	}
	cp := append([]float64(nil), values...)
	return &Factor{Domain: domain, Values: cp, Partition: floats.Sum(cp)}, nil
}

func newResult(d *Domain, values []float64) *Factor {
	return &Factor{Domain: d, Values: values, Partition: floats.Sum(values)}
}

// Copy returns a deep copy of f.
func (f *Factor) Copy() *Factor {
	values := append([]float64(nil), f.Values...)
	return &Factor{Domain: f.Domain, Values: values, Partition: f.Partition}
}

// Product computes self * g: the domain is the union of both scopes, and
// each output entry is the product of the two inputs' values projected into
// the union.
func (f *Factor) Product(g *Factor) *Factor {
	d := Union(f.Domain, g.Domain)
	values := make([]float64, d.Size())
	val := make([]int, d.Width())
	for i := 0; i < d.Size(); i++ {
		fi := f.Domain.ProjectPosition(val, d)
		gi := g.Domain.ProjectPosition(val, d)
		values[i] = f.Values[fi] * g.Values[gi]
		d.NextValuation(val)
	}
	return newResult(d, values)
}

// SumOut eliminates v from the scope by summing over its values. It returns
// a copy of f if v is not in the scope.
func (f *Factor) SumOut(v int) *Factor {
	if !f.Domain.Contains(v) {
		return f.Copy()
	}
	d2 := Minus(f.Domain, v)
	card := f.Domain.Registry().Cardinality(v)
	values := make([]float64, d2.Size())
	val := make([]int, d2.Width())
	for i := 0; i < d2.Size(); i++ {
		sum := 0.0
		for k := 0; k < card; k++ {
			sum += f.Values[f.Domain.ProjectPositionWith(val, d2, v, k)]
		}
		values[i] = sum
		d2.NextValuation(val)
	}
	return newResult(d2, values)
}

// Condition fixes every variable that is a key of evidence to its observed
// value, dropping it from the resulting scope. Zero-probability outputs are
// allowed (inconsistent evidence is only detected at Normalize/Divide time).
func (f *Factor) Condition(evidence map[int]int) *Factor {
	d2 := Restrict(f.Domain, evidence)
	values := make([]float64, d2.Size())
	val := make([]int, d2.Width())
	full := make([]int, f.Domain.Width())
	scope := f.Domain.Scope()
	for i := 0; i < d2.Size(); i++ {
		for j, v := range scope {
			if ev, ok := evidence[v]; ok {
				full[j] = ev
				continue
			}
			idx, _ := d2.IndexOf(v)
			full[j] = val[idx]
		}
		values[i] = f.Values[f.Domain.Position(full)]
		d2.NextValuation(val)
	}
	return newResult(d2, values)
}

// Normalize returns a copy of f scaled so its values sum to 1. If f's
// partition is 0, normalization is undefined: the result is a zero factor
// with partition 0, and the caller must treat that as inconsistent evidence
// rather than treating it as an error here.
func (f *Factor) Normalize() *Factor {
	values := make([]float64, len(f.Values))
	if f.Partition == 0 {
		return &Factor{Domain: f.Domain, Values: values, Partition: 0}
	}
	for i, v := range f.Values {
		values[i] = v / f.Partition
	}
	return &Factor{Domain: f.Domain, Values: values, Partition: 1}
}

// Divide computes self / g pointwise over the union of both scopes, with
// 0/0 defined as 0. Dividing a positive numerator by a zero denominator is
// an inconsistency the caller must handle, so it is reported as an error
// rather than producing +Inf.
func (f *Factor) Divide(g *Factor) (*Factor, error) {
	d := Union(f.Domain, g.Domain)
	values := make([]float64, d.Size())
	val := make([]int, d.Width())
	for i := 0; i < d.Size(); i++ {
		fi := f.Domain.ProjectPosition(val, d)
		gi := g.Domain.ProjectPosition(val, d)
		num, den := f.Values[fi], g.Values[gi]
		switch {
		case den == 0 && num == 0:
			values[i] = 0
		case den == 0:
			return nil, fmt.Errorf("factor: division by zero at position %d (numerator %g)", i, num)
		default:
			values[i] = num / den
		}
		d.NextValuation(val)
	}
	return newResult(d, values), nil
}

// Sample interprets f as a conditional P(X | parents), X = Scope()[0], and
// draws a single value for X using the uniform source r. Every parent in
// the scope must have an observed value in evidence.
func (f *Factor) Sample(evidence map[int]int, r *rand.Rand) (variable int, value int, err error) {
	scope := f.Domain.Scope()
	if len(scope) == 0 {
		return 0, 0, fmt.Errorf("factor: cannot sample from a scope-less factor")
	}
	x := scope[0]
	card := f.Domain.Registry().Cardinality(x)

	full := make([]int, f.Domain.Width())
	for j := 1; j < len(scope); j++ {
		v := scope[j]
		val, ok := evidence[v]
		if !ok {
			return 0, 0, fmt.Errorf("factor: missing parent value for variable %d", v)
		}
		full[j] = val
	}

	probs := make([]float64, card)
	sum := 0.0
	for k := 0; k < card; k++ {
		full[0] = k
		p := f.Values[f.Domain.Position(full)]
		probs[k] = p
		sum += p
	}
	if sum == 0 {
		return 0, 0, fmt.Errorf("factor: all-zero conditional for variable %d, cannot sample", x)
	}

	u := r.Float64() * sum
	cum := 0.0
	for k := 0; k < card; k++ {
		cum += probs[k]
		if u <= cum {
			return x, k, nil
		}
	}
	return x, card - 1, nil
}

// Max reports the largest table value.
func (f *Factor) Max() float64 { return floats.Max(f.Values) }

// Min reports the smallest table value.
func (f *Factor) Min() float64 { return floats.Min(f.Values) }

// String renders a human-readable table, one row per valuation.
func (f *Factor) String() string {
	var sb strings.Builder
	scope := f.Domain.Scope()
	fmt.Fprintf(&sb, "Factor(%v)\n", scope)

	val := make([]int, f.Domain.Width())
	for i := 0; i < f.Domain.Size(); i++ {
		sb.WriteString("  ")
		for j, v := range scope {
			fmt.Fprintf(&sb, "x%d=%d ", v, val[j])
		}
		fmt.Fprintf(&sb, "-> %.6f\n", f.Values[i])
		f.Domain.NextValuation(val)
	}
	return sb.String()
}
