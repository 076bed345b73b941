package invoice

import (
	"context"
	"time"

	"venuedesk/internal/core/id"
)

// ListFilter selects invoices for the list view.
type ListFilter struct {
	BookingID    *id.ID
	CustomerName string
	Status       *Status
	From         *time.Time
	To           *time.Time
	Lobby        *bool
	Limit        int
	Offset       int
}

// Repository persists invoices.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	Update(ctx context.Context, inv *Invoice) error
	Delete(ctx context.Context, invoiceID id.ID) error
	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]*Invoice, int64, error)

	// FindIssued returns the completed invoice with the given voucher and
	// segment, or a NotFound error.
	FindIssued(ctx context.Context, voucherNum string, segmentNum int) (*Invoice, error)

	// HasRevision reports whether an invoice names invoiceID as its past
	// invoice.
	HasRevision(ctx context.Context, invoiceID id.ID) (bool, error)
}

// ItemRepository persists invoice items.
type ItemRepository interface {
	CreateBatch(ctx context.Context, items []*Item) error
	Update(ctx context.Context, item *Item) error
	DeleteByIDs(ctx context.Context, itemIDs []id.ID) error

	// GetByIDs returns the items found among itemIDs.
	GetByIDs(ctx context.Context, itemIDs []id.ID) ([]*Item, error)
	ListByDetail(ctx context.Context, detailID id.ID) ([]*Item, error)
	ListByInvoice(ctx context.Context, invoiceID id.ID) ([]*Item, error)

	// DeleteDrafts removes the draft items of detailID. With serviceIDs set
	// only those services are removed.
	DeleteDrafts(ctx context.Context, detailID id.ID, serviceIDs []id.ID) error

	// Attach links itemIDs to invoiceID.
	Attach(ctx context.Context, invoiceID id.ID, itemIDs []id.ID) error

	// Detach clears the invoice link of itemIDs.
	Detach(ctx context.Context, itemIDs []id.ID) error

	// DetachInvoice clears the invoice link of every item of invoiceID.
	DetachInvoice(ctx context.Context, invoiceID id.ID) error

	// DeleteByInvoice removes every item of invoiceID.
	DeleteByInvoice(ctx context.Context, invoiceID id.ID) error

	// CountDrafts returns how many draft items detailID still has.
	CountDrafts(ctx context.Context, detailID id.ID) (int, error)

	// CountBilled returns how many items of detailID are attached to an invoice.
	CountBilled(ctx context.Context, detailID id.ID) (int, error)
}
