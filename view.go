package soa

import (
	"iter"
)

// View is a half-open index window [start, end) over a container. It is
// lazy and restartable: ranging over it twice yields the same sequence of
// proxies as long as the container length does not change in between, and
// every proxy reads live storage at access time.
type View[T any] struct {
	t          table
	start, end int
}

// Len returns end-start.
func (v View[T]) Len() int { return v.end - v.start }

// At returns a proxy for the i'th element of the view (index relative to
// the view's start).
func (v View[T]) At(i int) Elem[T] {
	checkIndex(i, v.Len())
	return Elem[T]{t: v.t, i: v.start + i}
}

// Slice narrows the view to its elements [s, e).
func (v View[T]) Slice(s, e int) View[T] {
	checkRange(s, e, v.Len())
	return View[T]{t: v.t, start: v.start + s, end: v.start + e}
}

// Elems yields a proxy per element in ascending index order.
func (v View[T]) Elems() iter.Seq[Elem[T]] {
	return func(yield func(Elem[T]) bool) {
		for i := v.start; i < v.end; i++ {
			if !yield(Elem[T]{t: v.t, i: i}) {
				return
			}
		}
	}
}

// Values yields each element reconstructed as a T, in ascending index
// order. Each value is an independent copy.
func (v View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := v.start; i < v.end; i++ {
			if !yield((Elem[T]{t: v.t, i: i}).Value()) {
				return
			}
		}
	}
}

// Equal reports whether two views have the same length and element-wise
// equal values, short-circuiting on the first mismatch.
func (v View[T]) Equal(o View[T]) bool {
	if v.Len() != o.Len() {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if !v.At(i).Equal(o.At(i)) {
			return false
		}
	}
	return true
}
