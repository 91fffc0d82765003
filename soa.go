// Package soa stores values of a struct type in column order: all values of
// the first field back to back, then all values of the second field, and so
// on. Call sites keep reading and writing whole elements through Elem
// proxies and View ranges, while hot loops grab one field's storage as a
// plain contiguous slice.
//
// Two container variants exist. Fixed is built over a single byte block
// whose size is exactly N aggregates and whose layout is the bit-exact
// column contract. Slice owns one independently resizable sequence per
// field and grows with per-field default filling.
//
// Containers, proxies and views are not safe for concurrent mutation;
// concurrent reads are fine as long as nothing resizes or reassigns the
// underlying storage.
package soa

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Container is the element-access surface shared by Fixed and Slice, for
// generic code that takes either variant.
type Container[T any] interface {
	// Len returns the number of logical elements.
	Len() int
	// At returns a proxy for element i. Panics if i is out of range.
	At(i int) Elem[T]
	// Slice returns a view over indices [s, e). Panics if the range is
	// invalid.
	Slice(s, e int) View[T]
	// All is Slice(0, Len()).
	All() View[T]
	// Field returns one field's storage as a typed slice ([]F for a field
	// of type F) aliasing the container's memory. Panics on unknown names.
	Field(name string) any
}

// table is the raw surface the proxy and view layers dereference: the
// schema plus one byte sequence per field, each Len()*Size bytes.
type table interface {
	schema() *Schema
	col(f int) []byte
}

func checkIndex(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("soa: index %d out of range with length %d", i, n))
	}
}

func checkRange(s, e, n int) {
	if s < 0 || s > e || e > n {
		panic(fmt.Sprintf("soa: range [%d:%d] invalid with length %d", s, e, n))
	}
}

// fieldView aliases one column's bytes as a typed slice.
func fieldView(sch *Schema, fi int, col []byte, n int) any {
	f := &sch.fields[fi]
	if n == 0 {
		return reflect.MakeSlice(reflect.SliceOf(f.Type), 0, 0).Interface()
	}
	return reflect.SliceAt(f.Type, unsafe.Pointer(&col[0]), n).Interface()
}
