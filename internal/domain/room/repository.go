package room

import (
	"context"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain"
)

// Repository persists rooms.
type Repository interface {
	domain.MasterRepository[*Room]

	// NameTaken reports whether an enabled room other than exclude uses name.
	NameTaken(ctx context.Context, name string, exclude id.ID) (bool, error)
}

// ChargeRepository persists tariff history.
type ChargeRepository interface {
	Create(ctx context.Context, charge *Charge) error
	GetByID(ctx context.Context, chargeID id.ID) (*Charge, error)
	// SetEndDate updates only the end date and updated_at.
	SetEndDate(ctx context.Context, charge *Charge) error
	Delete(ctx context.Context, chargeID id.ID) error

	// ListByRoom returns the room's charges ordered by start date.
	// With forUpdate the rows stay locked until the transaction ends.
	ListByRoom(ctx context.Context, roomID id.ID, forUpdate bool) ([]*Charge, error)
}
