package booking

import (
	"context"
	"time"

	"venuedesk/internal/core/id"
)

// ListFilter selects booking details for the list view.
type ListFilter struct {
	BookingID    *id.ID
	CustomerName string
	Statuses     []Status
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

// ScheduleFilter selects the active details of enabled rooms that lie
// within [From, To).
type ScheduleFilter struct {
	From time.Time
	To   time.Time
}

// Repository persists bookings and their details.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Update(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, bookingID id.ID) (*Booking, error)

	CreateDetail(ctx context.Context, d *Detail) error
	UpdateDetail(ctx context.Context, d *Detail) error
	GetDetail(ctx context.Context, detailID id.ID) (*Detail, error)

	// GetDetailForUpdate locks the detail row until the transaction ends.
	GetDetailForUpdate(ctx context.Context, detailID id.ID) (*Detail, error)
	GetDetailsByIDs(ctx context.Context, detailIDs []id.ID) ([]*Detail, error)
	ListDetailsByBooking(ctx context.Context, bookingID id.ID) ([]*Detail, error)
	ListDetails(ctx context.Context, filter ListFilter) ([]*DetailView, int64, error)
	ListSchedule(ctx context.Context, filter ScheduleFilter) ([]*DetailView, error)

	// HasOverlap reports whether any stored detail matches q.
	HasOverlap(ctx context.Context, q OverlapQuery) (bool, error)

	ListServices(ctx context.Context, detailID id.ID) ([]*DetailService, error)
	// ReplaceServices deletes the services of detailID and inserts services.
	ReplaceServices(ctx context.Context, detailID id.ID, services []*DetailService) error
}
