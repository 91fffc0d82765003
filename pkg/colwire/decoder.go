package colwire

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/rawbytedev/soa"
	"github.com/rawbytedev/soa/internal/common"
)

// Unmarshal parses a frame into dst, replacing its contents. The frame's
// fields must match T's schema exactly: same names, same order, payloads
// sized rows*width. By default column payloads are copied into storage dst
// owns; with Options.ZeroCopy they alias the input (or, for compressed
// frames, the decompression buffer).
func Unmarshal[T any](data []byte, dst *soa.Slice[T], opts Options) error {
	s, err := soa.SchemaOf[T]()
	if err != nil {
		return err
	}
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: %d bytes is shorter than the header", ErrBadFrame, len(data))
	}
	h := decodeHeader(data)
	if h.Magic != MagicV1 {
		return fmt.Errorf("%w: bad magic %#08x", ErrBadFrame, h.Magic)
	}
	if h.Version != VersionV1 {
		return fmt.Errorf("%w: unknown version %d", ErrBadFrame, h.Version)
	}
	rows := int(h.Rows)

	body := data[HeaderSize:]
	comp := h.Flags & CompressionMask
	switch comp {
	case CompRaw:
	case CompZstd:
		dec, err := zstdDecoder()
		if err != nil {
			return err
		}
		body, err = dec.DecodeAll(body, nil)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadFrame, err)
		}
	default:
		return fmt.Errorf("%w: %#04x", ErrCompression, comp)
	}

	nf, n := common.ReadVarUint(body)
	if n == 0 {
		return fmt.Errorf("%w: truncated field count", ErrBadFrame)
	}
	pos := n
	if int(nf) != s.NumFields() {
		return fmt.Errorf("%w: frame has %d fields, %s has %d", ErrSchemaMismatch, nf, s.Type(), s.NumFields())
	}

	for _, f := range s.Fields() {
		name, next, err := readFramed(body, pos)
		if err != nil {
			return err
		}
		pos = next
		if string(name) != f.Name {
			return fmt.Errorf("%w: frame field %q, %s wants %s", ErrSchemaMismatch, name, s.Type(), f.Name)
		}
		payload, next, err := readFramed(body, pos)
		if err != nil {
			return err
		}
		pos = next
		if len(payload) != rows*f.Size {
			return fmt.Errorf("%w: field %s payload is %d bytes, want %d", ErrBadFrame, f.Name, len(payload), rows*f.Size)
		}
		if err := dst.SetColumn(f.Name, column(f, payload, rows, opts.ZeroCopy)); err != nil {
			return err
		}
	}
	if pos != len(body) {
		return fmt.Errorf("%w: %d trailing bytes", ErrBadFrame, len(body)-pos)
	}
	return dst.Check()
}

func decodeHeader(buf []byte) Header {
	return Header{
		Magic:   binary.LittleEndian.Uint32(buf[0:]),
		Version: binary.LittleEndian.Uint16(buf[4:]),
		Flags:   binary.LittleEndian.Uint16(buf[6:]),
		Rows:    binary.LittleEndian.Uint32(buf[8:]),
	}
}

// readFramed reads a varint length then that many bytes, returning the
// payload and the next cursor position.
func readFramed(body []byte, pos int) ([]byte, int, error) {
	length, n := common.ReadVarUint(body[pos:])
	if n == 0 || uint64(len(body)-pos-n) < length {
		return nil, 0, fmt.Errorf("%w: truncated at offset %d", ErrBadFrame, pos)
	}
	pos += n
	return body[pos : pos+int(length)], pos + int(length), nil
}

// column builds the typed slice handed to SetColumn, either aliasing
// payload or copying it into fresh storage. Aliasing needs the payload to
// sit on the element type's natural alignment; misaligned payloads fall
// back to the copy path.
func column(f soa.Field, payload []byte, rows int, zeroCopy bool) any {
	if rows == 0 {
		return reflect.MakeSlice(reflect.SliceOf(f.Type), 0, 0).Interface()
	}
	if zeroCopy {
		p := unsafe.Pointer(&payload[0])
		if uintptr(p)%uintptr(f.Type.Align()) == 0 {
			return reflect.SliceAt(f.Type, p, rows).Interface()
		}
	}
	rv := reflect.MakeSlice(reflect.SliceOf(f.Type), rows, rows)
	copy(unsafe.Slice((*byte)(rv.UnsafePointer()), rows*f.Size), payload)
	return rv.Interface()
}
