package soa

import (
	"fmt"
)

// Fixed is the fixed-length column container. It owns a single byte block
// of exactly n*sizeof(T): n values of the first field in index order,
// followed by n values of the second field, and so on in declaration
// order, with nothing else in between. That layout is a contract: callers
// may reinterpret Bytes() (or a Field slice) as raw per-field arrays for
// vectorized math.
type Fixed[T any] struct {
	s    *Schema
	n    int
	data []byte
}

// NewFixed returns a container of n elements with every slot of every field
// set to that field's default. It panics if T is not a valid aggregate or
// if T's layout has internal padding, which would break the byte-size
// contract; both are type-level defects, not runtime conditions.
func NewFixed[T any](n int) *Fixed[T] {
	if n < 0 {
		panic(fmt.Sprintf("soa: negative length %d", n))
	}
	s := MustSchema[T]()
	if !s.Packed() {
		panic(fmt.Sprintf("soa: %v: %s is %d bytes but its fields sum to %d",
			ErrPadded, s.typ, s.typ.Size(), s.rowSize))
	}
	c := &Fixed[T]{s: s, n: n, data: make([]byte, n*s.rowSize)}
	for fi := range s.fields {
		s.fill(c.col(fi), fi, 0, n)
	}
	return c
}

func (c *Fixed[T]) schema() *Schema { return c.s }

// col returns field fi's block. With a packed layout the field's struct
// offset is also the packed width of everything before it, so block fi
// starts at n*off.
func (c *Fixed[T]) col(fi int) []byte {
	f := &c.s.fields[fi]
	start := c.n * int(f.off)
	return c.data[start : start+c.n*f.Size]
}

// Len returns the element count the container was built with.
func (c *Fixed[T]) Len() int { return c.n }

// Bytes exposes the backing block: len(Bytes()) == Len()*sizeof(T), columns
// back to back in field-declaration order. Mutating it mutates elements.
func (c *Fixed[T]) Bytes() []byte { return c.data }

// At returns a proxy for element i.
func (c *Fixed[T]) At(i int) Elem[T] {
	checkIndex(i, c.n)
	return Elem[T]{t: c, i: i}
}

// Slice returns a view over [s, e).
func (c *Fixed[T]) Slice(s, e int) View[T] {
	checkRange(s, e, c.n)
	return View[T]{t: c, start: s, end: e}
}

// All returns a view over every element.
func (c *Fixed[T]) All() View[T] { return View[T]{t: c, start: 0, end: c.n} }

// Field returns one field's block as a typed slice aliasing the container.
func (c *Fixed[T]) Field(name string) any {
	fi := c.s.mustField(name)
	return fieldView(c.s, fi, c.col(fi), c.n)
}
