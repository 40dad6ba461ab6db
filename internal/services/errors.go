// Package services defines the business logic of the code generator.
// This file centralizes service-level error values and the error types that
// describe a partially failed generation, so that handlers can translate
// them into HTTP responses consistently.
package services

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// ErrInvalidCount is returned when the requested number of codes is
	// below 1 or above the size of the code space.
	ErrInvalidCount = errors.New("number of codes must be between 1 and 62^7")

	// ErrSequenceExhausted is returned when the remaining code space cannot
	// hold the requested number of codes.
	ErrSequenceExhausted = errors.New("code space exhausted")

	// ErrTrackerPersist wraps failures to write the generation request record.
	ErrTrackerPersist = errors.New("persist generation request")

	// ErrRequestClosed is returned when a generation request that already
	// has an end time is closed again.
	ErrRequestClosed = errors.New("generation request already closed")

	// ErrRequestNotFound indicates that the requested generation request does
	// not exist.
	ErrRequestNotFound = errors.New("generation request not found")
)

var printer = message.NewPrinter(language.English)

// BatchFailure describes one sub-batch whose rows were not persisted.
// Batch is -1 when the failure covers a whole chunk that never reached the
// persistence pool.
type BatchFailure struct {
	Chunk  int
	Batch  int
	Offset int64 // first row of the sub-batch within its chunk
	Size   int64
	Err    error
}

func (f BatchFailure) Error() string {
	if f.Batch < 0 {
		return printer.Sprintf("chunk %d (%d codes): %v", f.Chunk, f.Size, f.Err)
	}
	return printer.Sprintf("chunk %d batch %d (offset %d, %d codes): %v", f.Chunk, f.Batch, f.Offset, f.Size, f.Err)
}

func (f BatchFailure) Unwrap() error { return f.Err }

// GenerationError reports that a generation request ended with fewer
// persisted codes than requested. Committed sub-batches stay committed.
type GenerationError struct {
	RequestID    uint64
	Requested    int64
	Persisted    int64
	NotPersisted int64
	Failures     []BatchFailure
}

func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString(printer.Sprintf("generation request %d: %d of %d codes not persisted (%d failed sub-batches)",
		e.RequestID, e.NotPersisted, e.Requested, len(e.Failures)))
	for _, f := range e.Failures {
		b.WriteString("; ")
		b.WriteString(f.Error())
	}
	return b.String()
}

// Unwrap exposes the per-batch causes to errors.Is and errors.As.
func (e *GenerationError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Err)
	}
	return out
}

func trackerErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTrackerPersist, op, err)
}
