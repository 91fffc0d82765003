// Package colwire frames a column container for the wire: a fixed header,
// then each field's name and raw column payload, optionally
// zstd-compressed as a whole. Column payloads are the container's memory
// as-is, so frames are only portable between little-endian hosts.
package colwire

import (
	"errors"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const (
	MagicV1    = 0x31414F53 // "SOA1"
	VersionV1  = 1
	HeaderSize = 12
)

// flags & CompressionMask == compressor ID
const (
	CompressionMask uint16 = 0x000F
	CompRaw         uint16 = 0x0000
	CompZstd        uint16 = 0x0004
)

var (
	ErrBadFrame       = errors.New("malformed frame")
	ErrSchemaMismatch = errors.New("frame does not match aggregate schema")
	ErrCompression    = errors.New("unknown compression id")
)

// Options controls framing.
type Options struct {
	// Compression selects the compressor ID written into the header
	// (CompRaw or CompZstd).
	Compression uint16

	// ZeroCopy makes Unmarshal alias column payloads instead of copying
	// them. For raw frames the container then shares memory with the
	// input buffer; the caller must keep it alive and unmodified.
	ZeroCopy bool
}

// Header occupies HeaderSize bytes, little-endian.
type Header struct {
	Magic   uint32
	Version uint16
	Flags   uint16
	Rows    uint32
}

var (
	zencOnce sync.Once
	zenc     *zstd.Encoder
	zencErr  error

	zdecOnce sync.Once
	zdec     *zstd.Decoder
	zdecErr  error
)

func zstdEncoder() (*zstd.Encoder, error) {
	zencOnce.Do(func() {
		zenc, zencErr = zstd.NewWriter(nil)
	})
	return zenc, zencErr
}

func zstdDecoder() (*zstd.Decoder, error) {
	zdecOnce.Do(func() {
		zdec, zdecErr = zstd.NewReader(nil)
	})
	return zdec, zdecErr
}
