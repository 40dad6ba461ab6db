// Package services – RequestService
//
// RequestService serves the read side of generation requests: paginated
// listing, single lookup, the codes a request produced and the aggregate
// used for list ETags.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-code-generator/internal/domain"
	"github.com/tbourn/go-code-generator/internal/utils"
)

// RequestRepo defines the repository contract required by RequestService.
type RequestRepo interface {
	GetRequest(ctx context.Context, db *gorm.DB, id uint64) (*domain.GenerationRequest, error)
	CountRequests(ctx context.Context, db *gorm.DB) (int64, error)
	ListRequestsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.GenerationRequest, error)
	CountCodes(ctx context.Context, db *gorm.DB, requestID uint64) (int64, error)
	ListCodesPage(ctx context.Context, db *gorm.DB, requestID uint64, offset, limit int) ([]domain.GeneratedCode, error)
	RequestsStats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error)
}

// RequestService provides read access to generation requests.
type RequestService struct {
	DB   *gorm.DB
	Repo RequestRepo

	// MaxPageSize caps page sizes requested by clients.
	MaxPageSize int
}

// NewRequestService constructs a RequestService with a page size cap of 100.
func NewRequestService(db *gorm.DB, r RequestRepo) *RequestService {
	return &RequestService{DB: db, Repo: r, MaxPageSize: 100}
}

// ListPage returns a page of requests, newest first, and the total count.
func (s *RequestService) ListPage(ctx context.Context, page, pageSize int) ([]domain.GenerationRequest, int64, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	offset, limit := s.window(page, pageSize)
	total, err := s.Repo.CountRequests(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.GenerationRequest{}, 0, nil
	}
	items, err := s.Repo.ListRequestsPage(ctx, s.DB, offset, limit)
	return items, total, err
}

// Get returns one request or ErrRequestNotFound.
func (s *RequestService) Get(ctx context.Context, id uint64) (*domain.GenerationRequest, error) {
	r, err := s.Repo.GetRequest(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	return r, err
}

// CodesPage returns a page of the codes a request produced, in sequence order.
func (s *RequestService) CodesPage(ctx context.Context, id uint64, page, pageSize int) ([]domain.GeneratedCode, int64, error) {
	tr := otel.Tracer("services/RequestService")
	ctx, span := tr.Start(ctx, "CodesPage",
		trace.WithAttributes(
			attribute.Int64("request.id", int64(id)),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if _, err := s.Get(ctx, id); err != nil {
		return nil, 0, err
	}
	offset, limit := s.window(page, pageSize)
	total, err := s.Repo.CountCodes(ctx, s.DB, id)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.GeneratedCode{}, 0, nil
	}
	items, err := s.Repo.ListCodesPage(ctx, s.DB, id, offset, limit)
	return items, total, err
}

// Stats returns the request count and the latest UpdatedAt, for ETags.
func (s *RequestService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return s.Repo.RequestsStats(ctx, s.DB)
}

func (s *RequestService) window(page, pageSize int) (offset, limit int) {
	page, pageSize = utils.ClampPage(page, pageSize, 20, s.MaxPageSize)
	return utils.Offset(page, pageSize), pageSize
}
