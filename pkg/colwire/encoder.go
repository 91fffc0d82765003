package colwire

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"unsafe"

	"github.com/rawbytedev/soa"
	"github.com/rawbytedev/soa/internal/common"
)

// Marshal frames c. The body is, per field in declaration order, a
// varint-framed field name followed by a varint-framed column payload of
// exactly Len()*width bytes.
func Marshal[T any](c soa.Container[T], opts Options) ([]byte, error) {
	s, err := soa.SchemaOf[T]()
	if err != nil {
		return nil, err
	}
	rows := c.Len()
	if uint64(rows) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d rows exceed frame limit", ErrBadFrame, rows)
	}

	body := make([]byte, 0, bodyEstimate(s, rows))
	body = common.WriteVarUint(body, uint64(s.NumFields()))
	for _, f := range s.Fields() {
		body = common.WriteVarUintTo(body, uint64(len(f.Name)))
		body = append(body, f.Name...)
		payload := columnBytes(c.Field(f.Name), f.Size)
		body = common.WriteVarUintTo(body, uint64(len(payload)))
		body = append(body, payload...)
	}

	comp := opts.Compression & CompressionMask
	switch comp {
	case CompRaw:
	case CompZstd:
		enc, err := zstdEncoder()
		if err != nil {
			return nil, err
		}
		body = enc.EncodeAll(body, nil)
	default:
		return nil, fmt.Errorf("%w: %#04x", ErrCompression, comp)
	}

	out := make([]byte, HeaderSize, HeaderSize+len(body))
	encodeHeader(out, Header{
		Magic:   MagicV1,
		Version: VersionV1,
		Flags:   comp,
		Rows:    uint32(rows),
	})
	return append(out, body...), nil
}

func encodeHeader(buf []byte, h Header) {
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:], h.Version)
	binary.LittleEndian.PutUint16(buf[6:], h.Flags)
	binary.LittleEndian.PutUint32(buf[8:], h.Rows)
}

// columnBytes aliases a typed column slice as raw bytes without copying.
func columnBytes(col any, width int) []byte {
	rv := reflect.ValueOf(col)
	n := rv.Len()
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(rv.UnsafePointer()), n*width)
}

func bodyEstimate(s *soa.Schema, rows int) int {
	est := 10
	for _, f := range s.Fields() {
		est += 20 + len(f.Name) + rows*f.Size
	}
	return est
}
