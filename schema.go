package soa

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/rawbytedev/soa/internal/common"
)

var (
	ErrNotStruct      = errors.New("expected struct")
	ErrNoFields       = errors.New("struct has no fields")
	ErrUnsupported    = errors.New("unsupported field type")
	ErrPadded         = errors.New("struct layout has internal padding")
	ErrLengthMismatch = errors.New("column lengths differ")
)

// Defaulter lets an aggregate pick per-field fill values. Schema derivation
// calls SetDefaults once on a zero instance of the type; fields it leaves
// untouched keep their zero value.
type Defaulter interface {
	SetDefaults()
}

// Field describes one column of an aggregate type: its name, storage type
// and the value new slots are filled with.
type Field struct {
	Name    string
	Type    reflect.Type
	Kind    reflect.Kind
	Size    int
	Default any

	// struct field index and byte offset inside the aggregate; with no
	// padding the offset is also the packed width of the preceding fields
	idx int
	off uintptr
}

// Schema is the ordered field descriptor set of an aggregate type, derived
// once per type and shared by every container over it.
type Schema struct {
	typ    reflect.Type
	fields []Field
	byName map[string]int
	// sum of field widths; equals typ.Size() iff the layout is padding-free
	rowSize int
	// raw per-field default patterns, host representation
	defbytes [][]byte
	zerodef  []bool
}

var (
	schemaMu sync.RWMutex
	schemas  = make(map[reflect.Type]*Schema)
)

// SchemaOf derives (or returns the cached) schema for T. T must be a struct
// whose fields are all exported fixed-width primitives: bool, sized
// ints/uints or floats, including named types over them.
func SchemaOf[T any]() (*Schema, error) {
	return schemaOf(reflect.TypeFor[T]())
}

// MustSchema is SchemaOf for callers that treat a bad T as a programming
// error. The container constructors go through it.
func MustSchema[T any]() *Schema {
	s, err := SchemaOf[T]()
	if err != nil {
		panic("soa: " + err.Error())
	}
	return s
}

func schemaOf(t reflect.Type) (*Schema, error) {
	schemaMu.RLock()
	if s, ok := schemas[t]; ok {
		schemaMu.RUnlock()
		return s, nil
	}
	schemaMu.RUnlock()

	schemaMu.Lock()
	defer schemaMu.Unlock()

	// Double-check
	if s, ok := schemas[t]; ok {
		return s, nil
	}
	s, err := deriveSchema(t)
	if err != nil {
		return nil, err
	}
	schemas[t] = s
	return s, nil
}

func deriveSchema(t reflect.Type) (*Schema, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w, got %s", ErrNotStruct, t.Kind())
	}
	s := &Schema{typ: t, byName: make(map[string]int, t.NumField())}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			return nil, fmt.Errorf("%w: unexported field %s.%s", ErrUnsupported, t, sf.Name)
		}
		k := sf.Type.Kind()
		if !common.IsFixedKind(k) {
			return nil, fmt.Errorf("%w: field %s.%s is %s", ErrUnsupported, t, sf.Name, sf.Type)
		}
		s.byName[sf.Name] = len(s.fields)
		s.fields = append(s.fields, Field{
			Name: sf.Name,
			Type: sf.Type,
			Kind: k,
			Size: common.FixedSize(k),
			idx:  i,
			off:  sf.Offset,
		})
		s.rowSize += common.FixedSize(k)
	}
	if len(s.fields) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoFields, t)
	}

	// Defaults come from a zero instance, optionally adjusted by the type.
	proto := reflect.New(t)
	if d, ok := proto.Interface().(Defaulter); ok {
		d.SetDefaults()
	}
	base := proto.UnsafePointer()
	s.defbytes = make([][]byte, len(s.fields))
	s.zerodef = make([]bool, len(s.fields))
	for i := range s.fields {
		f := &s.fields[i]
		f.Default = proto.Elem().Field(f.idx).Interface()
		src := unsafe.Slice((*byte)(unsafe.Add(base, f.off)), f.Size)
		s.defbytes[i] = append([]byte(nil), src...)
		s.zerodef[i] = allZero(s.defbytes[i])
	}
	return s, nil
}

// Type returns the aggregate type the schema was derived from.
func (s *Schema) Type() reflect.Type { return s.typ }

// NumFields returns the number of columns.
func (s *Schema) NumFields() int { return len(s.fields) }

// Fields returns the descriptors in declaration order. Callers must not
// mutate the returned slice.
func (s *Schema) Fields() []Field { return s.fields }

// FieldByName looks a descriptor up by field name.
func (s *Schema) FieldByName(name string) (Field, bool) {
	fi, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[fi], true
}

// RowSize is the packed width of one aggregate value: the sum of the field
// widths with no padding.
func (s *Schema) RowSize() int { return s.rowSize }

// Packed reports whether the aggregate's in-memory layout has no padding,
// i.e. RowSize() equals the type's size. Only packed types can back the
// fixed container's byte-layout contract.
func (s *Schema) Packed() bool { return s.rowSize == int(s.typ.Size()) }

// fill writes field f's default pattern into slots [from, to) of col.
// Freshly allocated columns are already zeroed, so all-zero patterns skip.
func (s *Schema) fill(col []byte, f, from, to int) {
	if s.zerodef[f] {
		return
	}
	def := s.defbytes[f]
	sz := s.fields[f].Size
	for i := from; i < to; i++ {
		copy(col[i*sz:(i+1)*sz], def)
	}
}

func (s *Schema) mustField(name string) int {
	fi, ok := s.byName[name]
	if !ok {
		panic(fmt.Sprintf("soa: type %s has no field %q", s.typ, name))
	}
	return fi
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
