package snapshot

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/hupe1980/sparsevec"
	"github.com/hupe1980/sparsevec/internal/compress"
	"github.com/hupe1980/sparsevec/plane"
	"golang.org/x/sync/errgroup"
)

// Encode serializes v. Planes are marshaled and compressed in parallel;
// v must not be mutated until Encode returns.
func Encode[T sparsevec.Unsigned](ctx context.Context, v *sparsevec.Vector[T], optFns ...Option) ([]byte, error) {
	o := applyOptions(optFns)
	return encode(ctx, v, &o)
}

func encode[T sparsevec.Unsigned](ctx context.Context, v *sparsevec.Vector[T], o *options) ([]byte, error) {
	if !o.compression.Valid() {
		return nil, fmt.Errorf("snapshot: unknown compression %d", uint8(o.compression))
	}

	type job struct {
		index int
		p     *plane.Plane
	}
	var jobs []job
	for j := 0; j < v.StoredPlanes(); j++ {
		if p := v.Plane(j); p != nil {
			jobs = append(jobs, job{index: j, p: p})
		}
	}

	blocks := make([][]byte, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers())

	for i, jb := range jobs {
		g.Go(func() error {
			if err := o.controller.AcquireWorker(gctx); err != nil {
				return err
			}
			defer o.controller.ReleaseWorker()

			raw, err := jb.p.MarshalBinary()
			if err != nil {
				return fmt.Errorf("snapshot: marshal plane %d: %w", jb.index, err)
			}

			buf := make([]byte, 0, planeHeaderSize+compress.HeaderSize+len(raw))
			buf = append(buf, uint8(jb.index))
			buf = binary.LittleEndian.AppendUint32(buf, crc32.ChecksumIEEE(raw))
			buf, err = compress.AppendBlock(buf, raw, o.compression)
			if err != nil {
				return fmt.Errorf("snapshot: plane %d: %w", jb.index, err)
			}
			blocks[i] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	h := Header{
		Version:     Version,
		ValueBits:   uint8(v.ValueBits()),
		Nullable:    v.IsNullable(),
		Compression: o.compression,
		Size:        v.Size(),
		Bound:       v.Bound(),
		Planes:      uint8(len(jobs)),
	}

	total := HeaderSize
	for _, b := range blocks {
		total += len(b)
	}
	out := h.append(make([]byte, 0, total))
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out, nil
}
