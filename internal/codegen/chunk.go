package codegen

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultChunkSize bounds how many codes are held in memory at once.
const DefaultChunkSize int64 = 1_000_000

// minSliceLen keeps encode tasks large enough that scheduling does not dominate.
const minSliceLen = 4096

// PlanChunks splits total into ceil(total/chunkSize) chunk sizes. Every
// chunk is chunkSize except possibly the last, which carries the remainder.
func PlanChunks(total, chunkSize int64) []int64 {
	if total <= 0 {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	n := (total + chunkSize - 1) / chunkSize
	out := make([]int64, n)
	for i := range out {
		out[i] = chunkSize
	}
	if rem := total % chunkSize; rem != 0 {
		out[n-1] = rem
	}
	return out
}

// EncodeRange encodes every value in [start, start+count) and returns the
// codes indexed by offset from start. The range is split into contiguous
// slices encoded by at most workers goroutines; workers <= 0 uses GOMAXPROCS.
//
// The whole range is validated up front, so a range that would reach
// MaxCodes fails with ErrOutOfRange before any work is done.
func EncodeRange(ctx context.Context, start, count int64, workers int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}
	if start < 0 || start > MaxCodes-count {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrOutOfRange, start, start+count)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]string, count)

	span := (count + int64(workers) - 1) / int64(workers)
	if span < minSliceLen {
		span = minSliceLen
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := int64(0); lo < count; lo += span {
		lo, hi := lo, min(lo+span, count)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				out[i] = MustEncode(start + i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
