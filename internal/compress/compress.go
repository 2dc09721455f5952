package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec selects the block compression algorithm.
type Codec uint8

const (
	// None stores blocks raw.
	None Codec = 0
	// LZ4 is fast block compression.
	LZ4 Codec = 1
	// ZSTD trades speed for a better ratio.
	ZSTD Codec = 2
)

// HeaderSize is the size of a block header in bytes.
const HeaderSize = 8

// ErrCorruptBlock is returned for truncated or undecodable blocks.
var ErrCorruptBlock = errors.New("compress: corrupt block")

// String returns the string representation of a Codec.
func (c Codec) String() string {
	switch c {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// ParseCodec parses a codec name.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return ZSTD, nil
	default:
		return None, fmt.Errorf("compress: unknown codec %q", s)
	}
}

// Valid reports whether c names a known codec.
func (c Codec) Valid() bool {
	return c <= ZSTD
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// AppendBlock appends data as one block to dst.
func AppendBlock(dst, data []byte, c Codec) ([]byte, error) {
	var payload []byte
	switch c {
	case None:
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("compress: lz4: %w", err)
		}
		payload = buf[:n]
	case ZSTD:
		enc := getZstdEncoder()
		payload = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("compress: unknown codec %d", uint8(c))
	}

	// incompressible or not worth it
	if len(payload) == 0 || float64(len(payload)) > float64(len(data))*0.9 {
		payload = nil
	}

	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(payload)))
	dst = append(dst, hdr[:]...)
	if payload == nil {
		return append(dst, data...), nil
	}
	return append(dst, payload...), nil
}

// ReadBlock decodes the block at the start of src and returns the raw bytes
// and the number of bytes consumed. Raw blocks alias src.
func ReadBlock(src []byte, c Codec) ([]byte, int, error) {
	if len(src) < HeaderSize {
		return nil, 0, fmt.Errorf("%w: short header", ErrCorruptBlock)
	}
	rawLen := int(binary.LittleEndian.Uint32(src[0:]))
	storedLen := int(binary.LittleEndian.Uint32(src[4:]))
	body := src[HeaderSize:]

	if storedLen == 0 {
		if len(body) < rawLen {
			return nil, 0, fmt.Errorf("%w: raw block truncated", ErrCorruptBlock)
		}
		return body[:rawLen], HeaderSize + rawLen, nil
	}
	if len(body) < storedLen {
		return nil, 0, fmt.Errorf("%w: compressed block truncated", ErrCorruptBlock)
	}
	payload := body[:storedLen]
	out := make([]byte, rawLen)

	switch c {
	case LZ4:
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: lz4: %w", ErrCorruptBlock, err)
		}
		if n != rawLen {
			return nil, 0, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptBlock)
		}
	case ZSTD:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(payload, out[:0])
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: zstd: %w", ErrCorruptBlock, err)
		}
		if len(decoded) != rawLen {
			return nil, 0, fmt.Errorf("%w: decompressed size mismatch", ErrCorruptBlock)
		}
		out = decoded
	default:
		return nil, 0, fmt.Errorf("%w: compressed payload with codec %s", ErrCorruptBlock, c)
	}
	return out, HeaderSize + storedLen, nil
}

// BlockSize returns the encoded size of the block at the start of src, header
// included, and its raw (decompressed) length.
func BlockSize(src []byte) (encoded, raw int, err error) {
	if len(src) < HeaderSize {
		return 0, 0, fmt.Errorf("%w: short header", ErrCorruptBlock)
	}
	raw = int(binary.LittleEndian.Uint32(src[0:]))
	stored := int(binary.LittleEndian.Uint32(src[4:]))
	if stored == 0 {
		stored = raw
	}
	if len(src)-HeaderSize < stored {
		return 0, 0, fmt.Errorf("%w: block truncated", ErrCorruptBlock)
	}
	return HeaderSize + stored, raw, nil
}
