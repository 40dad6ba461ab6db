package services

import (
	"context"
	"time"

	"github.com/tbourn/go-code-generator/internal/domain"
)

// Tracker writes the GenerationRequest record that brackets one generate
// call: opened before any code is produced, closed once when work ends.
type Tracker struct {
	Store CodeStore
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// Open persists a running request for total codes and returns it with its
// storage-assigned ID.
func (t *Tracker) Open(ctx context.Context, total int64) (*domain.GenerationRequest, error) {
	req := &domain.GenerationRequest{
		StartedAt:     t.now(),
		NumberOfCodes: total,
		Status:        domain.StatusRunning,
	}
	if err := t.Store.SaveRequest(ctx, req); err != nil {
		return nil, trackerErr("open", err)
	}
	return req, nil
}

// Close stamps EndedAt, the outcome counters and the terminal status.
// EndedAt is never earlier than StartedAt even if the clock stepped back.
// A request is closed once; a second Close returns ErrRequestClosed.
func (t *Tracker) Close(ctx context.Context, req *domain.GenerationRequest, persisted, failed int64) error {
	if req.Done() {
		return trackerErr("close", ErrRequestClosed)
	}
	end := t.now()
	if end.Before(req.StartedAt) {
		end = req.StartedAt
	}
	req.EndedAt = &end
	req.PersistedCodes = persisted
	req.FailedCodes = failed
	req.Status = terminalStatus(persisted, failed)

	if err := t.Store.SaveRequest(ctx, req); err != nil {
		return trackerErr("close", err)
	}
	return nil
}

func terminalStatus(persisted, failed int64) string {
	switch {
	case failed == 0:
		return domain.StatusCompleted
	case persisted == 0:
		return domain.StatusFailed
	default:
		return domain.StatusPartial
	}
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now().UTC()
	}
	return time.Now().UTC()
}
