package soa

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Elem is the element proxy: a non-owning (container, index) handle that
// makes one column-stored element look like a single aggregate value. It
// stays valid as long as the container does and the index stays in range;
// a Slice resize that reallocates storage detaches nothing, since the proxy
// dereferences live storage on every access.
//
// Two proxies for the same container and index are interchangeable.
type Elem[T any] struct {
	t table
	i int
}

// Index returns the element index the proxy is bound to.
func (e Elem[T]) Index() int { return e.i }

func (e Elem[T]) fieldPtr(fi int) unsafe.Pointer {
	sz := e.t.schema().fields[fi].Size
	return unsafe.Pointer(&e.t.col(fi)[e.i*sz])
}

// Get reads one field by name.
func (e Elem[T]) Get(name string) any {
	s := e.t.schema()
	fi := s.mustField(name)
	return reflect.NewAt(s.fields[fi].Type, e.fieldPtr(fi)).Elem().Interface()
}

// Set writes one field by name. v's dynamic type must be the field's exact
// type.
func (e Elem[T]) Set(name string, v any) {
	s := e.t.schema()
	fi := s.mustField(name)
	f := &s.fields[fi]
	rv := reflect.ValueOf(v)
	if rv.Type() != f.Type {
		panic(fmt.Sprintf("soa: field %s.%s is %s, got %T", s.typ, f.Name, f.Type, v))
	}
	reflect.NewAt(f.Type, e.fieldPtr(fi)).Elem().Set(rv)
}

// Value reconstructs the element as a fresh T, reading every field slot in
// declaration order. The result is a copy; mutating it never touches the
// container.
func (e Elem[T]) Value() T {
	var out T
	s := e.t.schema()
	base := unsafe.Pointer(&out)
	for fi := range s.fields {
		f := &s.fields[fi]
		dst := unsafe.Slice((*byte)(unsafe.Add(base, f.off)), f.Size)
		copy(dst, e.t.col(fi)[e.i*f.Size:(e.i+1)*f.Size])
	}
	return out
}

// SetValue writes every field of v into the element's slots in declaration
// order.
func (e Elem[T]) SetValue(v T) {
	s := e.t.schema()
	base := unsafe.Pointer(&v)
	for fi := range s.fields {
		f := &s.fields[fi]
		src := unsafe.Slice((*byte)(unsafe.Add(base, f.off)), f.Size)
		copy(e.t.col(fi)[e.i*f.Size:(e.i+1)*f.Size], src)
	}
}

// Equal reports field-by-field value equality with another proxy, possibly
// from a different container, short-circuiting on the first mismatch.
// Float fields follow Go == semantics, so NaN slots compare unequal.
func (e Elem[T]) Equal(o Elem[T]) bool {
	s := e.t.schema()
	for fi := range s.fields {
		typ := s.fields[fi].Type
		a := reflect.NewAt(typ, e.fieldPtr(fi)).Elem().Interface()
		b := reflect.NewAt(typ, o.fieldPtr(fi)).Elem().Interface()
		if a != b {
			return false
		}
	}
	return true
}

// EqualValue reports whether every field of v equals the corresponding
// stored slot.
func (e Elem[T]) EqualValue(v T) bool {
	s := e.t.schema()
	base := unsafe.Pointer(&v)
	for fi := range s.fields {
		f := &s.fields[fi]
		a := reflect.NewAt(f.Type, e.fieldPtr(fi)).Elem().Interface()
		b := reflect.NewAt(f.Type, unsafe.Add(base, f.off)).Elem().Interface()
		if a != b {
			return false
		}
	}
	return true
}

// GetField is the static-dispatch read path: no interface boxing, one
// checked pointer cast. E must be the field's exact type.
func GetField[E any, T any](e Elem[T], name string) E {
	fi := checkFieldType[E](e.t.schema(), name)
	return *(*E)(e.fieldPtr(fi))
}

// SetField is the static-dispatch write path, the counterpart of GetField.
func SetField[E any, T any](e Elem[T], name string, v E) {
	fi := checkFieldType[E](e.t.schema(), name)
	*(*E)(e.fieldPtr(fi)) = v
}

func checkFieldType[E any](s *Schema, name string) int {
	fi := s.mustField(name)
	f := &s.fields[fi]
	if et := reflect.TypeFor[E](); et != f.Type {
		panic(fmt.Sprintf("soa: field %s.%s is %s, not %s", s.typ, f.Name, f.Type, et))
	}
	return fi
}
