// Package tx defines transaction management abstractions used by domain services.
// The postgres implementation lives in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs a function inside a database transaction.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// SerializableManager extends Manager with SERIALIZABLE isolation.
// Booking writes use it so that the overlap check and the insert
// cannot interleave with a concurrent booking for the same room.
type SerializableManager interface {
	Manager

	// RunSerializable executes fn in a SERIALIZABLE transaction.
	// A serialization failure is reported as apperror CONCURRENT_MODIFICATION.
	RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Passthrough runs fn directly. Used by unit tests of domain services.
type Passthrough struct {
	Calls int
}

// RunInTransaction implements Manager.
func (p *Passthrough) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	p.Calls++
	return fn(ctx)
}

// RunSerializable implements SerializableManager.
func (p *Passthrough) RunSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	p.Calls++
	return fn(ctx)
}
