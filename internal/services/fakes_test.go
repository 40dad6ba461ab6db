package services

import (
	"context"
	"errors"
	"sync"

	"github.com/tbourn/go-code-generator/internal/domain"
)

// ----- Fake store -----

type fakeStore struct {
	mu sync.Mutex

	hwm    int64
	hwmOK  bool
	hwmErr error

	beginErr error
	// failRows, when set, is consulted on every Insert.
	failRows func(rows []domain.GeneratedCode) error
	// blockInsert makes Insert wait for the session context to end.
	blockInsert bool

	saveErr   error
	saveCalls int
	saved     []domain.GenerationRequest

	committed map[int64]string
	begins    int
	rollbacks int
	closes    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{committed: map[int64]string{}}
}

func (s *fakeStore) HighWaterMark(ctx context.Context) (int64, bool, error) {
	return s.hwm, s.hwmOK, s.hwmErr
}

func (s *fakeStore) BeginBulk(ctx context.Context) (BulkSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begins++
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &fakeSession{store: s, ctx: ctx}, nil
}

func (s *fakeStore) SaveRequest(ctx context.Context, r *domain.GenerationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	if r.ID == 0 {
		r.ID = uint64(len(s.saved) + 1)
		s.saved = append(s.saved, *r)
		return nil
	}
	s.saved[r.ID-1] = *r
	return nil
}

func (s *fakeStore) request(id uint64) domain.GenerationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[id-1]
}

func (s *fakeStore) committedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.committed)
}

type fakeSession struct {
	store   *fakeStore
	ctx     context.Context
	pending []domain.GeneratedCode
	done    bool
}

var errSessionDone = errors.New("session done")

func (f *fakeSession) Insert(rows []domain.GeneratedCode) error {
	if f.done {
		return errSessionDone
	}
	if f.store.blockInsert {
		<-f.ctx.Done()
		return f.ctx.Err()
	}
	if f.store.failRows != nil {
		if err := f.store.failRows(rows); err != nil {
			return err
		}
	}
	f.pending = append(f.pending, rows...)
	return nil
}

func (f *fakeSession) Commit() error {
	if f.done {
		return errSessionDone
	}
	f.done = true
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, r := range f.pending {
		if _, dup := f.store.committed[r.Seq]; dup {
			panic("sequence value committed twice")
		}
		f.store.committed[r.Seq] = r.Code
	}
	return nil
}

func (f *fakeSession) Rollback() error {
	if f.done {
		return nil
	}
	f.done = true
	f.store.mu.Lock()
	f.store.rollbacks++
	f.store.mu.Unlock()
	return nil
}

func (f *fakeSession) Close() {
	_ = f.Rollback()
	f.store.mu.Lock()
	f.store.closes++
	f.store.mu.Unlock()
}

// failSeq fails any sub-batch that contains seq.
func failSeq(seq int64, err error) func([]domain.GeneratedCode) error {
	return func(rows []domain.GeneratedCode) error {
		for _, r := range rows {
			if r.Seq == seq {
				return err
			}
		}
		return nil
	}
}

func rowsFrom(start int64, n int) []domain.GeneratedCode {
	out := make([]domain.GeneratedCode, n)
	for i := range out {
		out[i] = domain.GeneratedCode{Seq: start + int64(i), Code: "c", GenerationRequestID: 1}
	}
	return out
}
