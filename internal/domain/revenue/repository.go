package revenue

import (
	"context"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/catalog"
)

// Repository runs the aggregate reads behind the reports.
type Repository interface {
	// BookingLines returns invoiced lines of paid details starting in w,
	// excluding revision invoices.
	BookingLines(ctx context.Context, w Window) ([]Line, error)

	// UnsettledLines returns all lines of official, checked-in or withheld
	// details starting in w.
	UnsettledLines(ctx context.Context, w Window) ([]Line, error)

	// LobbyLines returns lines of lobby invoices paid in w, excluding
	// revision invoices.
	LobbyLines(ctx context.Context, w Window) ([]Line, error)

	// RevisionLines returns lines of revision invoices paid in w.
	RevisionLines(ctx context.Context, w Window) ([]Line, error)

	// InvoiceLines returns the lines of the given invoices.
	InvoiceLines(ctx context.Context, invoiceIDs []id.ID) ([]Line, error)

	// DetailCounts counts held, not canceled details per start day in w.
	DetailCounts(ctx context.Context, w Window) ([]DayCount, error)

	// RoomUsage returns room fee activity per room in w. With unsettled
	// set, details not yet paid are included.
	RoomUsage(ctx context.Context, w Window, unsettled bool) ([]RoomUsage, error)

	// ServiceSales returns one row per service of the given types with its
	// sales in w and its accumulated sales, ordered by type and name.
	ServiceSales(ctx context.Context, w Window, types []catalog.ServiceType) ([]ServiceSale, error)
}
