package catalog

import (
	"context"
	"time"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain"
)

// AvailabilityFilter selects the services offered for meeting rooms.
type AvailabilityFilter struct {
	Type *ServiceType
	IDs  []id.ID
}

// Repository persists services.
type Repository interface {
	domain.MasterRepository[*Service]

	// GetByIDs returns the services found among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []id.ID) ([]*Service, error)

	// ListForRooms returns enabled meeting-room services matching filter.
	ListForRooms(ctx context.Context, filter AvailabilityFilter) ([]*Service, error)

	// ListUsage returns the units of serviceIDs booked by active booking
	// details (official, temporary or checked in) lying within [dayStart, dayEnd).
	ListUsage(ctx context.Context, serviceIDs []id.ID, dayStart, dayEnd time.Time) ([]Usage, error)
}
