package model

import "time"

// Timed wraps a result with the wall-clock duration its computation took,
// matching the Engine-level API table's "elapsed" output column for
// partition/marginals/query. The timing itself is a thin collaborator
// (spec.md's "wall-clock timing shim"), not part of the inference core.
type Timed[T any] struct {
	Value   T
	Elapsed time.Duration
}

// Time runs fn and reports how long it took alongside its result.
func Time[T any](fn func() (T, error)) (Timed[T], error) {
	start := time.Now()
	value, err := fn()
	return Timed[T]{Value: value, Elapsed: time.Since(start)}, err
}
