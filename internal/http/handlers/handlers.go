// Package handlers provides the HTTP endpoints of the code generator.
//
// Endpoints:
//   - POST|GET /codes/generate?number=N        (generate N codes)
//   - GET      /generation-requests            (list, paginated, ETag support)
//   - GET      /generation-requests/{id}       (single request)
//   - GET      /generation-requests/{id}/codes (codes of a request, paginated)
//
// Handlers are transport-thin: they validate input, call application services
// and translate results and errors into HTTP responses.
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-code-generator/internal/codegen"
	"github.com/tbourn/go-code-generator/internal/domain"
	"github.com/tbourn/go-code-generator/internal/utils"
)

//
// Service contracts (context-aware)
//

// Generator runs generation requests.
type Generator interface {
	// GenerateCodes generates and persists count codes under one request.
	GenerateCodes(ctx context.Context, count int64) (*domain.GenerationRequest, error)
}

// RequestReader serves the read side of generation requests.
type RequestReader interface {
	ListPage(ctx context.Context, page, pageSize int) ([]domain.GenerationRequest, int64, error)
	Get(ctx context.Context, id uint64) (*domain.GenerationRequest, error)
	CodesPage(ctx context.Context, id uint64, page, pageSize int) ([]domain.GeneratedCode, int64, error)
	// Stats returns the request count and the latest update time, for ETags.
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// IdempotencyStore remembers which request an Idempotency-Key produced.
type IdempotencyStore interface {
	// Lookup returns the request id stored for (clientID, key) if it has not
	// expired at now.
	Lookup(ctx context.Context, clientID, key string, now time.Time) (requestID uint64, found bool, err error)
	// Remember stores the mapping. A concurrent duplicate is not an error.
	Remember(ctx context.Context, clientID, key string, requestID uint64) error
}

//
// Handler wiring
//

// Options tunes handler behaviour.
type Options struct {
	// MaxCodesPerRequest bounds the number query parameter; <= 0 means 62^7.
	MaxCodesPerRequest int64
	// RequestTimeout bounds one generate call; 0 disables the deadline.
	RequestTimeout time.Duration
}

// Handlers groups the HTTP endpoints. Idempotency is optional.
type Handlers struct {
	gen  Generator
	reqs RequestReader
	idem IdempotencyStore
	opts Options
}

// New constructs Handlers bound to the given services. idem may be nil.
func New(gen Generator, reqs RequestReader, idem IdempotencyStore, opts Options) *Handlers {
	if opts.MaxCodesPerRequest <= 0 || opts.MaxCodesPerRequest > codegen.MaxCodes {
		opts.MaxCodesPerRequest = codegen.MaxCodes
	}
	return &Handlers{gen: gen, reqs: reqs, idem: idem, opts: opts}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := utils.TotalPages(total, pageSize)
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	return utils.ClampPage(
		utils.AtoiDefault(c.Query("page"), defaultPage),
		utils.AtoiDefault(c.Query("page_size"), defaultPageSize),
		defaultPageSize, maxPageSize,
	)
}
