// Package codegen contains the pure building blocks of the code generator:
// the monotonic sequence that hands out non-overlapping integer ranges, the
// fixed-width base-62 encoder, and the helpers that split a request into
// generation chunks and encode a chunk in parallel.
//
// Nothing in this package touches storage. Uniqueness of the produced codes
// follows from two facts only: Sequence never returns overlapping ranges, and
// Encode is injective on [0, MaxCodes).
package codegen

import "sync/atomic"

// Sequence is a process-local monotonic counter. Each call to Allocate
// reserves a contiguous range [start, start+count) that no other call will
// ever receive from the same Sequence.
//
// A Sequence is owned by one engine instance; construct one per engine so
// that independent engines (e.g. in tests) never share state.
type Sequence struct {
	next atomic.Int64
}

// NewSequence returns a Sequence whose first allocation starts at start.
// Values below 1 are clamped to 1 so that 0 is never handed out.
func NewSequence(start int64) *Sequence {
	if start < 1 {
		start = 1
	}
	s := &Sequence{}
	s.next.Store(start)
	return s
}

// SeedFromHighWaterMark returns the first value to allocate given the
// largest value already persisted. ok=false means storage holds no codes.
func SeedFromHighWaterMark(hwm int64, ok bool) int64 {
	if !ok || hwm < 1 {
		return 1
	}
	return hwm + 1
}

// Allocate reserves count values and returns the first one. The reservation
// is a single atomic add, so concurrent callers always get disjoint ranges.
// A non-positive count reserves nothing and returns the current value.
func (s *Sequence) Allocate(count int64) int64 {
	if count <= 0 {
		return s.next.Load()
	}
	return s.next.Add(count) - count
}

// Next reports the value the next allocation would start at.
func (s *Sequence) Next() int64 { return s.next.Load() }
