// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// GeneratedCode model, including the bulk-insert session used by the
// persistence pool.
package repo

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-code-generator/internal/domain"
)

// DefaultInsertRows is the number of rows per multi-row INSERT statement.
// Two bound parameters per row keeps this well under SQLite's variable limit.
const DefaultInsertRows = 1000

// ErrSessionClosed is returned when a finished BulkTx is used again.
var ErrSessionClosed = errors.New("bulk session already finished")

// HighWaterMark returns the largest sequence value stored in generated_codes.
// ok is false when the table is empty.
func HighWaterMark(ctx context.Context, db *gorm.DB) (hwm int64, ok bool, err error) {
	var max sql.NullInt64
	row := db.WithContext(ctx).Model(&domain.GeneratedCode{}).Select("MAX(seq)").Row()
	if err := row.Scan(&max); err != nil {
		return 0, false, err
	}
	return max.Int64, max.Valid, nil
}

// CountCodes returns how many codes are stored for a generation request.
func CountCodes(ctx context.Context, db *gorm.DB, requestID uint64) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.GeneratedCode{}).
		Where("generation_request_id = ?", requestID).
		Count(&total).Error
	return total, err
}

// ListCodesPage returns a page of a request's codes ordered by sequence.
func ListCodesPage(ctx context.Context, db *gorm.DB, requestID uint64, offset, limit int) ([]domain.GeneratedCode, error) {
	var out []domain.GeneratedCode
	err := db.WithContext(ctx).
		Where("generation_request_id = ?", requestID).
		Order("seq ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// BulkTx is one transaction on a lightweight session: no default
// transaction wrapping, no prepared statement cache, no SQL logging.
// It holds a pooled connection from BeginBulk until Commit, Rollback or
// Close, and Close is always safe to call.
type BulkTx struct {
	tx   *gorm.DB
	rows int
	done bool
}

// BeginBulk opens a BulkTx bound to ctx. Cancelling ctx aborts the
// transaction. rows <= 0 uses DefaultInsertRows.
func BeginBulk(ctx context.Context, db *gorm.DB, rows int) (*BulkTx, error) {
	if rows <= 0 {
		rows = DefaultInsertRows
	}
	sess := db.Session(&gorm.Session{
		Context:                ctx,
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
		SkipHooks:              true,
		Logger:                 db.Logger.LogMode(logger.Silent),
	})
	tx := sess.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &BulkTx{tx: tx, rows: rows}, nil
}

// Insert writes codes inside the transaction.
func (b *BulkTx) Insert(codes []domain.GeneratedCode) error {
	if b.done {
		return ErrSessionClosed
	}
	if len(codes) == 0 {
		return nil
	}
	return b.tx.Omit(clause.Associations).CreateInBatches(codes, b.rows).Error
}

// Commit makes the inserted rows durable.
func (b *BulkTx) Commit() error {
	if b.done {
		return ErrSessionClosed
	}
	b.done = true
	return b.tx.Commit().Error
}

// Rollback discards the inserted rows. It is a no-op after Commit.
func (b *BulkTx) Rollback() error {
	if b.done {
		return nil
	}
	b.done = true
	return b.tx.Rollback().Error
}

// Close releases the connection, rolling back if the transaction is still open.
func (b *BulkTx) Close() {
	_ = b.Rollback()
}
