package snapshot

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math/bits"

	"github.com/hupe1980/sparsevec"
	"github.com/hupe1980/sparsevec/internal/compress"
	"github.com/hupe1980/sparsevec/plane"
	"golang.org/x/sync/errgroup"
)

type planeEntry struct {
	index int
	crc   uint32
	block []byte
}

// Decode reconstructs a vector from a snapshot. The value width of T must
// match the stored width.
//
// With a resource controller, the decompressed plane payloads are charged
// against its memory budget while decoding; a refused reservation yields an
// error wrapping sparsevec.ErrAllocation and no vector.
func Decode[T sparsevec.Unsigned](ctx context.Context, data []byte, optFns ...Option) (*sparsevec.Vector[T], error) {
	o := applyOptions(optFns)
	return decode[T](ctx, data, &o)
}

func decode[T sparsevec.Unsigned](ctx context.Context, data []byte, o *options) (*sparsevec.Vector[T], error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	width := bits.Len64(uint64(^T(0)))
	if int(h.ValueBits) != width {
		return nil, fmt.Errorf("%w: stored %d bits, requested %d", ErrWidthMismatch, h.ValueBits, width)
	}

	entries, budget, err := readPlaneTable(data[HeaderSize:], h)
	if err != nil {
		return nil, err
	}

	if err := o.controller.AcquireMemory(ctx, budget); err != nil {
		return nil, fmt.Errorf("%w: %w", sparsevec.ErrAllocation, err)
	}
	defer o.controller.ReleaseMemory(budget)

	planes := make([]*plane.Plane, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers())

	for i, e := range entries {
		g.Go(func() error {
			if err := o.controller.AcquireWorker(gctx); err != nil {
				return err
			}
			defer o.controller.ReleaseWorker()

			raw, _, err := compress.ReadBlock(e.block, h.Compression)
			if err != nil {
				return fmt.Errorf("%w: plane %d: %w", ErrCorrupt, e.index, err)
			}
			if crc32.ChecksumIEEE(raw) != e.crc {
				return fmt.Errorf("%w: plane %d: checksum mismatch", ErrCorrupt, e.index)
			}

			p := plane.New(h.Bound)
			if err := p.UnmarshalBinary(raw); err != nil {
				return fmt.Errorf("%w: plane %d: %w", ErrCorrupt, e.index, err)
			}
			planes[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	vecOpts := append([]sparsevec.Option{sparsevec.WithMaxSize(h.Bound)}, o.vectorOpts...)
	if h.Nullable {
		vecOpts = append(vecOpts, sparsevec.WithNullSupport())
	}
	v := sparsevec.New[T](vecOpts...)
	v.Resize(h.Size)
	for i, e := range entries {
		v.AttachPlane(e.index, planes[i])
	}
	return v, nil
}

// readPlaneTable splits the body into plane entries and sums their raw sizes.
func readPlaneTable(body []byte, h Header) ([]planeEntry, int64, error) {
	nullIndex := int(h.ValueBits)
	seen := make([]bool, nullIndex+1)
	entries := make([]planeEntry, 0, h.Planes)
	var budget int64

	for range h.Planes {
		if len(body) < planeHeaderSize {
			return nil, 0, fmt.Errorf("%w: truncated plane table", ErrCorrupt)
		}
		idx := int(body[0])
		if idx > nullIndex || seen[idx] {
			return nil, 0, fmt.Errorf("%w: bad plane index %d", ErrCorrupt, idx)
		}
		if idx == nullIndex && !h.Nullable {
			return nil, 0, fmt.Errorf("%w: NULL plane in a vector without NULL support", ErrCorrupt)
		}
		seen[idx] = true

		crc := binary.LittleEndian.Uint32(body[1:])
		body = body[planeHeaderSize:]

		n, raw, err := compress.BlockSize(body)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: plane %d: %w", ErrCorrupt, idx, err)
		}
		entries = append(entries, planeEntry{index: idx, crc: crc, block: body[:n]})
		budget += int64(raw)
		body = body[n:]
	}
	if len(body) != 0 {
		return nil, 0, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(body))
	}
	return entries, budget, nil
}
