// Package services – GenerationService
//
// GenerationService is the engine behind "generate N codes". A request is
// split into generation chunks that run one after another; inside a chunk a
// contiguous range is reserved from the shared Sequence, encoded in
// parallel and handed to the BulkInserter. Sub-batch failures do not stop
// the request: remaining chunks still run, and the shortfall is returned as
// a *GenerationError next to the closed request record.
//
// Observability: GenerateCodes and every chunk are traced with
// OpenTelemetry; chunk phases are timed in Prometheus and logged via zerolog.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-code-generator/internal/codegen"
	"github.com/tbourn/go-code-generator/internal/domain"
)

// GenerationOptions tunes a GenerationService. Zero values pick defaults.
type GenerationOptions struct {
	ChunkSize       int64
	InsertChunkSize int
	MaxWorkers      int
	InsertTimeout   time.Duration
	EncodeWorkers   int
	Now             func() time.Time
}

// GenerationService generates and persists unique codes.
type GenerationService struct {
	Store    CodeStore
	Seq      *codegen.Sequence
	Tracker  *Tracker
	Inserter *BulkInserter

	ChunkSize     int64
	EncodeWorkers int
}

// NewGenerationService reads the storage high-water mark once and seeds the
// sequence from it. One service owns one Sequence; concurrent GenerateCodes
// calls on it share the sequence and nothing else.
func NewGenerationService(ctx context.Context, store CodeStore, opts GenerationOptions) (*GenerationService, error) {
	hwm, ok, err := store.HighWaterMark(ctx)
	if err != nil {
		return nil, fmt.Errorf("read high-water mark: %w", err)
	}
	seed := codegen.SeedFromHighWaterMark(hwm, ok)

	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = codegen.DefaultChunkSize
	}

	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = DefaultInsertMaxWorkers
	}
	if wl, ok := store.(WriterLimiter); ok {
		if limit := wl.MaxWriters(); limit > 0 && workers > limit {
			workers = limit
		}
	}

	log.Info().
		Int64("seed", seed).
		Int64("chunk_size", chunk).
		Int("insert_chunk_size", opts.InsertChunkSize).
		Int("insert_max_workers", workers).
		Msg("generation engine ready")

	return &GenerationService{
		Store:   store,
		Seq:     codegen.NewSequence(seed),
		Tracker: &Tracker{Store: store, Now: opts.Now},
		Inserter: &BulkInserter{
			Store:      store,
			ChunkSize:  opts.InsertChunkSize,
			MaxWorkers: workers,
			Timeout:    opts.InsertTimeout,
		},
		ChunkSize:     chunk,
		EncodeWorkers: opts.EncodeWorkers,
	}, nil
}

// GenerateCodes generates count unique codes, persists them under a new
// GenerationRequest and returns the closed request.
//
// When some sub-batches fail the request is still closed (status partial or
// failed) and returned together with a *GenerationError. Tracker failures
// are fatal and wrap ErrTrackerPersist.
func (s *GenerationService) GenerateCodes(ctx context.Context, count int64) (*domain.GenerationRequest, error) {
	tr := otel.Tracer("services/GenerationService")
	ctx, span := tr.Start(ctx, "GenerateCodes",
		trace.WithAttributes(attribute.Int64("codes.requested", count)),
	)
	defer span.End()

	if count < 1 || count > codegen.MaxCodes {
		span.RecordError(ErrInvalidCount)
		span.SetStatus(codes.Error, "invalid count")
		return nil, ErrInvalidCount
	}
	// Best effort; a concurrent caller can still win the race, in which
	// case the encoder rejects the chunk that crosses the limit.
	if s.Seq.Next() > codegen.MaxCodes-count {
		span.RecordError(ErrSequenceExhausted)
		span.SetStatus(codes.Error, "sequence exhausted")
		return nil, ErrSequenceExhausted
	}

	req, err := s.Tracker.Open(ctx, count)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open request")
		return nil, err
	}
	span.SetAttributes(attribute.Int64("request.id", int64(req.ID)))
	started := time.Now()

	var (
		persisted int64
		failures  []BatchFailure
	)
	plan := codegen.PlanChunks(count, s.ChunkSize)
	for i, size := range plan {
		if err := ctx.Err(); err != nil {
			var rest int64
			for _, n := range plan[i:] {
				rest += n
			}
			failures = append(failures, BatchFailure{Chunk: i, Batch: -1, Size: rest, Err: err})
			break
		}
		p, f := s.generateChunk(ctx, req.ID, i, size)
		persisted += p
		failures = append(failures, f...)
	}
	notPersisted := count - persisted

	// The record must be closed even when the caller has gone away.
	if err := s.Tracker.Close(context.WithoutCancel(ctx), req, persisted, notPersisted); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "close request")
		return nil, err
	}

	ev := log.Info()
	if len(failures) > 0 {
		ev = log.Warn()
	}
	ev.Uint64("request_id", req.ID).
		Int64("requested", count).
		Int64("persisted", persisted).
		Int("chunks", len(plan)).
		Int("failed_batches", len(failures)).
		Dur("elapsed", time.Since(started)).
		Str("status", req.Status).
		Msg("generation request finished")

	span.SetAttributes(
		attribute.Int64("codes.persisted", persisted),
		attribute.String("request.status", req.Status),
	)
	if len(failures) == 0 {
		return req, nil
	}

	gerr := &GenerationError{
		RequestID:    req.ID,
		Requested:    count,
		Persisted:    persisted,
		NotPersisted: notPersisted,
		Failures:     failures,
	}
	span.RecordError(gerr)
	span.SetStatus(codes.Error, "codes not persisted")
	return req, gerr
}

// generateChunk reserves, encodes and persists one chunk. It returns the
// number of committed rows and the failures with Chunk filled in.
func (s *GenerationService) generateChunk(ctx context.Context, requestID uint64, chunk int, size int64) (int64, []BatchFailure) {
	tr := otel.Tracer("services/GenerationService")
	ctx, span := tr.Start(ctx, "chunk",
		trace.WithAttributes(
			attribute.Int("chunk.index", chunk),
			attribute.Int64("chunk.size", size),
		),
	)
	defer span.End()

	start := s.Seq.Allocate(size)
	span.SetAttributes(attribute.Int64("seq.start", start))

	t0 := time.Now()
	encoded, err := codegen.EncodeRange(ctx, start, size, s.EncodeWorkers)
	chunkDuration.WithLabelValues("encode").Observe(time.Since(t0).Seconds())
	if err != nil {
		if errors.Is(err, codegen.ErrOutOfRange) {
			err = fmt.Errorf("%w: %w", ErrSequenceExhausted, err)
		}
		span.RecordError(err)
		subBatchFailures.Inc()
		log.Error().Err(err).Uint64("request_id", requestID).Int("chunk", chunk).Msg("chunk encoding failed")
		return 0, []BatchFailure{{Chunk: chunk, Batch: -1, Size: size, Err: err}}
	}
	codesGenerated.Add(float64(size))

	rows := make([]domain.GeneratedCode, len(encoded))
	for i, c := range encoded {
		rows[i] = domain.GeneratedCode{
			Seq:                 start + int64(i),
			Code:                c,
			GenerationRequestID: requestID,
		}
	}

	t1 := time.Now()
	res := s.Inserter.Persist(ctx, requestID, rows)
	chunkDuration.WithLabelValues("persist").Observe(time.Since(t1).Seconds())

	for i := range res.Failed {
		res.Failed[i].Chunk = chunk
	}
	span.SetAttributes(
		attribute.Int("chunk.batches", res.Batches),
		attribute.Int("chunk.failed_batches", len(res.Failed)),
		attribute.Int64("chunk.not_persisted", res.NotPersisted()),
	)

	log.Info().
		Uint64("request_id", requestID).
		Int("chunk", chunk).
		Int64("seq_start", start).
		Int64("size", size).
		Int64("persisted", res.Persisted).
		Int64("not_persisted", res.NotPersisted()).
		Int("batches", res.Batches).
		Dur("elapsed", time.Since(t0)).
		Msg("chunk done")

	return res.Persisted, res.Failed
}
