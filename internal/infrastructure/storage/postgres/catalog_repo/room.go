package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/room"
	"venuedesk/internal/infrastructure/storage/postgres"
)

const (
	roomTable   = "rooms"
	chargeTable = "room_charges"
)

// RoomRepo implements room.Repository.
type RoomRepo struct {
	*BaseMasterRepo[*room.Room]
}

// NewRoomRepo creates a new room repository.
func NewRoomRepo(txm *postgres.TxManager) *RoomRepo {
	return &RoomRepo{
		BaseMasterRepo: NewBaseMasterRepo(
			txm,
			roomTable,
			postgres.ExtractDBColumns[room.Room](),
			[]string{"name"},
			func() *room.Room { return &room.Room{} },
		),
	}
}

// NameTaken reports whether an enabled room other than exclude uses name.
func (r *RoomRepo) NameTaken(ctx context.Context, name string, exclude id.ID) (bool, error) {
	cond := squirrel.And{
		squirrel.Eq{"name": name},
		squirrel.Eq{"is_enabled": true},
	}
	if !id.IsNil(exclude) {
		cond = append(cond, squirrel.NotEq{"id": exclude})
	}
	return r.exists(ctx, cond)
}

// ChargeRepo implements room.ChargeRepository.
type ChargeRepo struct {
	*BaseMasterRepo[*room.Charge]
}

// NewChargeRepo creates a new room charge repository.
func NewChargeRepo(txm *postgres.TxManager) *ChargeRepo {
	return &ChargeRepo{
		BaseMasterRepo: NewBaseMasterRepo(
			txm,
			chargeTable,
			postgres.ExtractDBColumns[room.Charge](),
			nil,
			func() *room.Charge { return &room.Charge{} },
		),
	}
}

// SetEndDate updates only the end date and updated_at.
func (r *ChargeRepo) SetEndDate(ctx context.Context, charge *room.Charge) error {
	affected, err := r.exec(ctx, r.Builder().
		Update(chargeTable).
		Set("end_date", charge.EndDate).
		Set("updated_at", charge.UpdatedAt).
		Where(squirrel.Eq{"id": charge.ID}), "update")
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperror.NewNotFound("room charge", charge.ID.String())
	}
	return nil
}

// listByRoomQuery selects the charges of roomID ordered by start date.
func (r *ChargeRepo) listByRoomQuery(roomID id.ID, forUpdate bool) squirrel.SelectBuilder {
	q := r.baseSelect().
		Where(squirrel.Eq{"room_id": roomID}).
		OrderBy("start_date ASC")
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}
	return q
}

// ListByRoom returns the room's charges ordered by start date.
func (r *ChargeRepo) ListByRoom(ctx context.Context, roomID id.ID, forUpdate bool) ([]*room.Charge, error) {
	return r.Select(ctx, r.listByRoomQuery(roomID, forUpdate))
}

var (
	_ room.Repository       = (*RoomRepo)(nil)
	_ room.ChargeRepository = (*ChargeRepo)(nil)
)
