package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-code-generator/internal/domain"
	"github.com/tbourn/go-code-generator/internal/repo"
)

// BulkSession is one exclusive, transactional write session. A session is
// used by a single worker and must always be closed.
type BulkSession interface {
	Insert(codes []domain.GeneratedCode) error
	Commit() error
	Rollback() error
	Close()
}

// CodeStore is the storage collaborator of the generation engine.
type CodeStore interface {
	// HighWaterMark returns the largest persisted sequence value; ok is
	// false when nothing has been persisted yet.
	HighWaterMark(ctx context.Context) (hwm int64, ok bool, err error)
	// BeginBulk opens a session bound to ctx.
	BeginBulk(ctx context.Context) (BulkSession, error)
	// SaveRequest inserts or updates a generation request record.
	SaveRequest(ctx context.Context, r *domain.GenerationRequest) error
}

// WriterLimiter is implemented by stores that can only run a bounded number
// of write sessions at once. MaxWriters returns 0 when there is no bound.
type WriterLimiter interface {
	MaxWriters() int
}

// GormStore adapts the repo functions to CodeStore.
type GormStore struct {
	DB *gorm.DB
	// InsertRows is the number of rows per INSERT statement inside a session.
	InsertRows int
}

// NewGormStore returns a CodeStore backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db, InsertRows: repo.DefaultInsertRows}
}

func (s *GormStore) HighWaterMark(ctx context.Context) (int64, bool, error) {
	return repo.HighWaterMark(ctx, s.DB)
}

func (s *GormStore) BeginBulk(ctx context.Context) (BulkSession, error) {
	tx, err := repo.BeginBulk(ctx, s.DB, s.InsertRows)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *GormStore) SaveRequest(ctx context.Context, r *domain.GenerationRequest) error {
	return repo.SaveRequest(ctx, s.DB, r)
}

// MaxWriters reports the backend's concurrent writer limit.
func (s *GormStore) MaxWriters() int {
	return repo.MaxWriters(s.DB)
}
