package operations

import (
	"context"
	"time"

	"venuedesk/internal/core/id"
)

// Repository reads the day sheets.
type Repository interface {
	// OfficialDetails returns the official details held entirely within
	// [from, to), ordered by room then start.
	OfficialDetails(ctx context.Context, from, to time.Time) ([]BusinessDetail, error)
	DetailServices(ctx context.Context, detailIDs []id.ID) ([]UsedService, error)
	// StockServices returns the enabled meeting room services with stock
	// management.
	StockServices(ctx context.Context) ([]ServiceSchedule, error)
	// ScheduledUses returns the bookings of serviceIDs on details held
	// within [from, to) that are neither canceled nor waiting to be.
	ScheduledUses(ctx context.Context, serviceIDs []id.ID, from, to time.Time) ([]ScheduledUse, error)
}
