// Package domain defines the persistence models for generation requests and
// the codes they produce. These types are mapped with GORM and form the core
// data layer of the code generator.
package domain

import "time"

// Generation request lifecycle states.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// GenerationRequest is the audit record of one top-level "generate N codes"
// call. It is written before any code is generated and updated exactly once
// when the work ends.
//
// Fields:
//   - ID: autoincrement primary key assigned by storage.
//   - StartedAt: set when the request is opened.
//   - EndedAt: nil while running; set once on close, never before StartedAt.
//   - NumberOfCodes: the requested total; immutable after creation.
//   - PersistedCodes / FailedCodes: outcome counters filled in on close.
//   - Status: running, completed, partial or failed.
//   - UpdatedAt: managed by GORM; drives list ETags.
type GenerationRequest struct {
	ID             uint64     `json:"id"              gorm:"primaryKey;autoIncrement"`
	StartedAt      time.Time  `json:"started_at"      gorm:"not null;index"`
	EndedAt        *time.Time `json:"ended_at"`
	NumberOfCodes  int64      `json:"number_of_codes" gorm:"not null"`
	PersistedCodes int64      `json:"persisted_codes" gorm:"not null;default:0"`
	FailedCodes    int64      `json:"failed_codes"    gorm:"not null;default:0"`
	Status         string     `json:"status"          gorm:"type:varchar(16);not null;default:'running'"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TableName returns the database table name for GenerationRequest.
func (GenerationRequest) TableName() string { return "generation_requests" }

// Done reports whether the request has been closed.
func (r *GenerationRequest) Done() bool { return r.EndedAt != nil }

// GeneratedCode is one persisted short code.
//
// Seq is the sequence value the code was encoded from. It is unique and its
// maximum is the high-water mark used to reseed the sequence on restart.
type GeneratedCode struct {
	ID                  uint64 `json:"id"                    gorm:"primaryKey;autoIncrement"`
	Seq                 int64  `json:"seq"                   gorm:"not null;uniqueIndex:ux_generated_codes_seq"`
	Code                string `json:"code"                  gorm:"type:char(7);not null;uniqueIndex:ux_generated_codes_code"`
	GenerationRequestID uint64 `json:"generation_request_id" gorm:"not null;index:idx_codes_request"`

	GenerationRequest GenerationRequest `json:"-" gorm:"foreignKey:GenerationRequestID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for GeneratedCode.
func (GeneratedCode) TableName() string { return "generated_codes" }
