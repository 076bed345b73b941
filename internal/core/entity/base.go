// Package entity holds the fields shared by every persisted record.
package entity

import (
	"context"
	"time"

	"venuedesk/internal/core/id"
)

// Validatable is implemented by entities that check their own invariants
// without database access.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity contains the primary key of a record.
type BaseEntity struct {
	ID id.ID `db:"id" json:"id"`
}

// NewBaseEntity creates a new BaseEntity with a generated ID.
func NewBaseEntity() BaseEntity {
	return BaseEntity{ID: id.New()}
}

// Timestamps are maintained by the repositories on insert and update.
type Timestamps struct {
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewTimestamps returns creation timestamps set to now.
func NewTimestamps(now time.Time) Timestamps {
	now = now.UTC()
	return Timestamps{CreatedAt: now, UpdatedAt: now}
}

// Touch updates UpdatedAt.
func (t *Timestamps) Touch(now time.Time) {
	t.UpdatedAt = now.UTC()
}

// Record is the common base of mutable domain records.
type Record struct {
	BaseEntity
	Timestamps
}

// NewRecord creates a Record with a generated ID and timestamps.
func NewRecord(now time.Time) Record {
	return Record{BaseEntity: NewBaseEntity(), Timestamps: NewTimestamps(now)}
}
