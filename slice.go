package soa

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Slice is the growable column container: one independently owned,
// independently resizable sequence per field. Its logical length is
// defined as the length of the first field's sequence; SetLen keeps all
// sequences in step, and the equal-length invariant is otherwise the
// caller's to preserve (see SetColumn).
//
// SetLen may reallocate column storage, which invalidates slices taken
// earlier via Field and proxies' view of reallocated columns in the same
// way growing a plain Go slice with append invalidates aliases of it.
type Slice[T any] struct {
	s    *Schema
	cols [][]byte
}

// NewSlice returns an empty container (length 0, no storage).
func NewSlice[T any]() *Slice[T] {
	s := MustSchema[T]()
	return &Slice[T]{s: s, cols: make([][]byte, len(s.fields))}
}

func (c *Slice[T]) schema() *Schema   { return c.s }
func (c *Slice[T]) col(fi int) []byte { return c.cols[fi] }

// Len returns the current length: by convention, the length of the first
// field's sequence.
func (c *Slice[T]) Len() int {
	return len(c.cols[0]) / c.s.fields[0].Size
}

// SetLen resizes every field sequence to n. Growth fills slots [old, n) of
// each field with that field's default; shrink truncates in place. Growth
// builds every new column before committing any of them, so an allocation
// panic unwinds with the container still in its prior state.
func (c *Slice[T]) SetLen(n int) {
	if n < 0 {
		panic(fmt.Sprintf("soa: negative length %d", n))
	}
	old := c.Len()
	switch {
	case n == old:
	case n < old:
		for fi := range c.s.fields {
			c.cols[fi] = c.cols[fi][:n*c.s.fields[fi].Size]
		}
	default:
		grown := make([][]byte, len(c.cols))
		for fi := range c.s.fields {
			buf := make([]byte, n*c.s.fields[fi].Size)
			copy(buf, c.cols[fi])
			c.s.fill(buf, fi, old, n)
			grown[fi] = buf
		}
		copy(c.cols, grown)
	}
}

// Append grows the container and assigns vs to the new slots.
func (c *Slice[T]) Append(vs ...T) {
	old := c.Len()
	c.SetLen(old + len(vs))
	for i := range vs {
		(Elem[T]{t: c, i: old + i}).SetValue(vs[i])
	}
}

// At returns a proxy for element i.
func (c *Slice[T]) At(i int) Elem[T] {
	checkIndex(i, c.Len())
	return Elem[T]{t: c, i: i}
}

// Slice returns a view over [s, e).
func (c *Slice[T]) Slice(s, e int) View[T] {
	checkRange(s, e, c.Len())
	return View[T]{t: c, start: s, end: e}
}

// All returns a view over every element.
func (c *Slice[T]) All() View[T] { return View[T]{t: c, start: 0, end: c.Len()} }

// Field returns one field's sequence as a typed slice aliasing the
// container's storage for that field.
func (c *Slice[T]) Field(name string) any {
	fi := c.s.mustField(name)
	return fieldView(c.s, fi, c.cols[fi], len(c.cols[fi])/c.s.fields[fi].Size)
}

// SetColumn replaces one field's storage with col, which must be a []F for
// the field's exact type F. The container aliases col's memory without
// copying; it does not re-validate lengths, so a col whose length differs
// from the other fields' leaves the container inconsistent until the
// caller fixes it (Check reports such a state). This is the escape hatch
// for externally placed column storage.
func (c *Slice[T]) SetColumn(name string, col any) error {
	fi := c.s.mustField(name)
	f := &c.s.fields[fi]
	rv := reflect.ValueOf(col)
	if rv.Kind() != reflect.Slice || rv.Type().Elem() != f.Type {
		return fmt.Errorf("%w: field %s wants []%s, got %T", ErrUnsupported, f.Name, f.Type, col)
	}
	n := rv.Len()
	if n == 0 {
		c.cols[fi] = nil
		return nil
	}
	c.cols[fi] = unsafe.Slice((*byte)(rv.UnsafePointer()), n*f.Size)
	return nil
}

// Check verifies that every field sequence has the container's logical
// length, returning ErrLengthMismatch (wrapped with the offending field)
// otherwise. Index and view operations do not run this; it exists for
// callers who reassign columns and want an explicit probe.
func (c *Slice[T]) Check() error {
	n := c.Len()
	for fi := range c.s.fields {
		f := &c.s.fields[fi]
		if got := len(c.cols[fi]) / f.Size; got != n {
			return fmt.Errorf("%w: field %s has %d rows, want %d", ErrLengthMismatch, f.Name, got, n)
		}
	}
	return nil
}
