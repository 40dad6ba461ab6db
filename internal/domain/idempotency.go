package domain

import "time"

// Idempotency records which generation request a client's Idempotency-Key
// produced, so a retried generate call returns the original record instead
// of allocating and persisting another batch of codes.
type Idempotency struct {
	ID        string    `gorm:"size:36;primaryKey"`
	ClientID  string    `gorm:"size:128;not null;uniqueIndex:ux_client_key,priority:1"`
	Key       string    `gorm:"size:200;not null;uniqueIndex:ux_client_key,priority:2"`
	RequestID uint64    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

// Expired reports whether the record is no longer valid at now.
func (i Idempotency) Expired(now time.Time) bool { return !now.Before(i.ExpiresAt) }
