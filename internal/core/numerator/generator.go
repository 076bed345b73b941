package numerator

import (
	"context"
	"time"
)

// Generator hands out gap-free sequential voucher numbers.
// Pattern: PREFIX-YEAR-XXXXX (e.g., INV-2026-00001).
//
// Implementations must join the caller's transaction when one is active
// so that a rolled back invoice does not consume a number.
type Generator interface {
	GetNextNumber(ctx context.Context, cfg Config, period time.Time) (string, error)

	// SetNextNumber sets the current sequence value (data migration).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
