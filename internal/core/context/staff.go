// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"venuedesk/internal/core/id"
)

// StaffContext identifies the authenticated staff member of a request.
type StaffContext struct {
	StaffID   id.ID
	Email     string
	Name      string
	SessionID string
}

type staffContextKey struct{}

// WithStaff adds StaffContext to context.
func WithStaff(ctx context.Context, staff *StaffContext) context.Context {
	return context.WithValue(ctx, staffContextKey{}, staff)
}

// GetStaff returns StaffContext from context.
func GetStaff(ctx context.Context) *StaffContext {
	if v, ok := ctx.Value(staffContextKey{}).(*StaffContext); ok {
		return v
	}
	return nil
}

// GetStaffID returns staff ID from context or the nil id.
func GetStaffID(ctx context.Context) id.ID {
	if s := GetStaff(ctx); s != nil {
		return s.StaffID
	}
	return id.Nil()
}
