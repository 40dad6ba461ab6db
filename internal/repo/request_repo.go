// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// GenerationRequest model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only persistence
// and query composition.
//
// Error semantics:
//   - When a request is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-code-generator/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// SaveRequest inserts the request when it has no ID yet and overwrites all
// columns otherwise.
func SaveRequest(ctx context.Context, db *gorm.DB, r *domain.GenerationRequest) error {
	return db.WithContext(ctx).Save(r).Error
}

// GetRequest fetches a generation request by ID.
func GetRequest(ctx context.Context, db *gorm.DB, id uint64) (*domain.GenerationRequest, error) {
	var r domain.GenerationRequest
	if err := db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// CountRequests returns the total number of generation requests.
func CountRequests(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.GenerationRequest{}).Count(&total).Error
	return total, err
}

// ListRequestsPage returns a page of requests, most recent first.
func ListRequestsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.GenerationRequest, error) {
	var out []domain.GenerationRequest
	err := db.WithContext(ctx).
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
