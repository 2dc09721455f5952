package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/sparsevec/internal/compress"
)

const (
	// Magic identifies a vector snapshot.
	Magic = "SPVC"
	// Version is the current format version.
	Version = 1

	// HeaderSize is the fixed size of the snapshot header.
	HeaderSize = 17
	// planeHeaderSize is the per-plane prefix: index u8, crc32 u32.
	planeHeaderSize = 5

	flagNullable = 1 << 0
)

var (
	// ErrCorrupt is returned for truncated data, bad checksums or
	// inconsistent plane tables.
	ErrCorrupt = errors.New("snapshot: corrupt data")
	// ErrWidthMismatch is returned when the stored value width differs from
	// the requested element type.
	ErrWidthMismatch = errors.New("snapshot: value width mismatch")
	// ErrUnsupportedVersion is returned for unknown format versions.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
)

// Compression selects the block codec used for plane payloads.
type Compression = compress.Codec

const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZSTD = compress.ZSTD
)

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(s string) (Compression, error) {
	return compress.ParseCodec(s)
}

// Header is the fixed-size snapshot header.
//
// Layout (little endian):
//
//	magic "SPVC" (4) | version (1) | value bits (1) | flags (1)
//	compression (1) | size (4) | bound (4) | plane count (1)
type Header struct {
	Version     uint8
	ValueBits   uint8
	Nullable    bool
	Compression Compression
	Size        uint32
	Bound       uint32
	Planes      uint8
}

func (h Header) append(dst []byte) []byte {
	var flags uint8
	if h.Nullable {
		flags |= flagNullable
	}
	dst = append(dst, Magic...)
	dst = append(dst, h.Version, h.ValueBits, flags, uint8(h.Compression))
	dst = binary.LittleEndian.AppendUint32(dst, h.Size)
	dst = binary.LittleEndian.AppendUint32(dst, h.Bound)
	return append(dst, h.Planes)
}

// ReadHeader parses and validates the header at the start of data.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: short header (%d bytes)", ErrCorrupt, len(data))
	}
	if string(data[:4]) != Magic {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrCorrupt, data[:4])
	}

	h := Header{
		Version:     data[4],
		ValueBits:   data[5],
		Nullable:    data[6]&flagNullable != 0,
		Compression: Compression(data[7]),
		Size:        binary.LittleEndian.Uint32(data[8:]),
		Bound:       binary.LittleEndian.Uint32(data[12:]),
		Planes:      data[16],
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if !h.Compression.Valid() {
		return Header{}, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, data[7])
	}
	if int(h.Planes) > int(h.ValueBits)+1 {
		return Header{}, fmt.Errorf("%w: %d planes for %d value bits", ErrCorrupt, h.Planes, h.ValueBits)
	}
	return h, nil
}
