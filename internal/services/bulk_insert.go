// Package services – BulkInserter
//
// BulkInserter persists one generation chunk through a bounded pool of
// workers. The chunk is split into fixed-size sub-batches and every
// sub-batch is written in its own transaction, so a failing sub-batch is
// rolled back alone and never affects its siblings. Failures are collected
// and returned to the caller rather than aborting the pool.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-code-generator/internal/domain"
)

const (
	DefaultInsertChunkSize  = 10_000
	DefaultInsertMaxWorkers = 40
	DefaultInsertTimeout    = 10 * time.Minute
)

// BulkInserter writes codes to a CodeStore in parallel sub-batches.
type BulkInserter struct {
	Store CodeStore

	// ChunkSize is the number of rows per sub-batch (one transaction each).
	ChunkSize int
	// MaxWorkers caps the number of concurrent sessions.
	MaxWorkers int
	// Timeout bounds a whole Persist call.
	Timeout time.Duration
}

// PersistResult is the outcome of one Persist call. Batches counts the
// sub-batches the codes were split into.
type PersistResult struct {
	Batches   int
	Persisted int64
	Failed    []BatchFailure
}

// NotPersisted returns how many rows ended up in failed sub-batches.
func (r PersistResult) NotPersisted() int64 {
	var n int64
	for _, f := range r.Failed {
		n += f.Size
	}
	return n
}

// Workers returns the pool size for n rows: one worker per sub-batch,
// clamped to [1, MaxWorkers].
func (b *BulkInserter) Workers(n int) int {
	size := b.chunkSize()
	w := (n + size - 1) / size
	maxW := b.MaxWorkers
	if maxW <= 0 {
		maxW = DefaultInsertMaxWorkers
	}
	return max(1, min(w, maxW))
}

// Persist writes codes and reports which sub-batches failed. It returns once
// every scheduled sub-batch has finished or the timeout (or ctx) expired; in
// the latter case sub-batches that never started are reported with the
// context error and in-flight transactions are rolled back by the driver.
func (b *BulkInserter) Persist(ctx context.Context, requestID uint64, codes []domain.GeneratedCode) PersistResult {
	if len(codes) == 0 {
		return PersistResult{}
	}
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultInsertTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	size := b.chunkSize()
	nBatches := (len(codes) + size - 1) / size
	workers := b.Workers(len(codes))
	insertWorkers.Set(float64(workers))

	errs := make([]error, nBatches)

	// Plain group: one sub-batch failing must not cancel the others.
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < nBatches; i++ {
		lo, hi := i*size, min((i+1)*size, len(codes))
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		g.Go(func() error {
			errs[i] = b.insertOne(ctx, codes[lo:hi])
			return nil
		})
	}
	_ = g.Wait()

	res := PersistResult{Batches: nBatches}
	for i, err := range errs {
		lo, hi := i*size, min((i+1)*size, len(codes))
		if err == nil {
			res.Persisted += int64(hi - lo)
			continue
		}
		res.Failed = append(res.Failed, BatchFailure{
			Batch:  i,
			Offset: int64(lo),
			Size:   int64(hi - lo),
			Err:    err,
		})
		log.Warn().
			Uint64("request_id", requestID).
			Int("batch", i).
			Int("size", hi-lo).
			Err(err).
			Msg("sub-batch not persisted")
	}
	codesPersisted.Add(float64(res.Persisted))
	subBatchFailures.Add(float64(len(res.Failed)))
	return res
}

func (b *BulkInserter) insertOne(ctx context.Context, rows []domain.GeneratedCode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sess, err := b.Store.BeginBulk(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Insert(rows); err != nil {
		_ = sess.Rollback()
		return err
	}
	return sess.Commit()
}

func (b *BulkInserter) chunkSize() int {
	if b.ChunkSize <= 0 {
		return DefaultInsertChunkSize
	}
	return b.ChunkSize
}
