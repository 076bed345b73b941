package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/catalog"
	"venuedesk/internal/domain/operations"
	"venuedesk/internal/infrastructure/storage/postgres"
)

// OperationsRepo implements operations.Repository.
type OperationsRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewOperationsRepo creates a new day sheet repository.
func NewOperationsRepo(txm *postgres.TxManager) *OperationsRepo {
	return &OperationsRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// heldWithin keeps details that start and end inside [from, to).
func heldWithin(from, to time.Time) squirrel.And {
	return squirrel.And{
		squirrel.GtOrEq{"d.start_datetime": from},
		squirrel.Lt{"d.end_datetime": to},
	}
}

// withParties adds the room and customer of the detail d to q.
func withParties(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	return q.
		Column("r.name AS room_name").
		Column("c.name AS customer_name").
		Join("bookings b ON b.id = d.booking_id").
		Join("customers c ON c.id = b.customer_id").
		Join("rooms r ON r.id = d.room_id")
}

func (r *OperationsRepo) officialQuery(from, to time.Time) squirrel.SelectBuilder {
	q := r.builder.
		Select(
			"d.id", "d.booking_id", "d.title", "d.start_datetime", "d.end_datetime",
			"d.layout_type", "d.guest_count", "d.extra_table_count", "d.extra_chair_count", "d.note",
		).
		From("booking_details d")
	return withParties(q).
		Where(squirrel.Eq{"d.status": booking.StatusOfficial}).
		Where(heldWithin(from, to)).
		OrderBy("r.sort_order", "r.id", "d.start_datetime")
}

func (r *OperationsRepo) detailServicesQuery(detailIDs []id.ID) squirrel.SelectBuilder {
	return r.builder.
		Select("bds.id", "bds.booking_detail_id", "s.name", "bds.usage_count").
		From("booking_detail_services bds").
		Join("services s ON s.id = bds.service_id").
		Where(squirrel.Eq{"bds.booking_detail_id": detailIDs}).
		OrderBy("bds.booking_detail_id", "s.name")
}

func (r *OperationsRepo) stockServicesQuery() squirrel.SelectBuilder {
	return r.builder.
		Select("id", "name", "type", "stock_count").
		From("services").
		Where(squirrel.Eq{
			"location_type":        catalog.LocationMeetingRoom,
			"has_stock_management": true,
			"is_enabled":           true,
		}).
		OrderBy("type", "name")
}

func (r *OperationsRepo) scheduledUsesQuery(serviceIDs []id.ID, from, to time.Time) squirrel.SelectBuilder {
	q := r.builder.
		Select(
			"bds.id AS booking_detail_service_id", "bds.service_id", "bds.usage_count", "bds.price",
			"d.id AS booking_detail_id", "d.booking_id", "d.title", "d.start_datetime", "d.end_datetime",
			"d.status", "d.guest_count",
		).
		From("booking_detail_services bds").
		Join("booking_details d ON d.id = bds.booking_detail_id")
	return withParties(q).
		Where(squirrel.Eq{"bds.service_id": serviceIDs}).
		Where(heldWithin(from, to)).
		Where(squirrel.NotEq{"d.status": operations.HiddenStatuses()}).
		OrderBy("d.start_datetime", "r.sort_order")
}

func (r *OperationsRepo) selectAll(ctx context.Context, dst any, q squirrel.SelectBuilder, scope string) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build %s: %w", scope, err)
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), dst, sql, args...); err != nil {
		return fmt.Errorf("%s: %w", scope, err)
	}
	return nil
}

// OfficialDetails implements operations.Repository.
func (r *OperationsRepo) OfficialDetails(ctx context.Context, from, to time.Time) ([]operations.BusinessDetail, error) {
	var out []operations.BusinessDetail
	if err := r.selectAll(ctx, &out, r.officialQuery(from, to), "official details"); err != nil {
		return nil, err
	}
	return out, nil
}

// DetailServices implements operations.Repository.
func (r *OperationsRepo) DetailServices(ctx context.Context, detailIDs []id.ID) ([]operations.UsedService, error) {
	if len(detailIDs) == 0 {
		return nil, nil
	}
	var out []operations.UsedService
	if err := r.selectAll(ctx, &out, r.detailServicesQuery(detailIDs), "detail services"); err != nil {
		return nil, err
	}
	return out, nil
}

// StockServices implements operations.Repository.
func (r *OperationsRepo) StockServices(ctx context.Context) ([]operations.ServiceSchedule, error) {
	var out []operations.ServiceSchedule
	if err := r.selectAll(ctx, &out, r.stockServicesQuery(), "stock services"); err != nil {
		return nil, err
	}
	return out, nil
}

// ScheduledUses implements operations.Repository.
func (r *OperationsRepo) ScheduledUses(ctx context.Context, serviceIDs []id.ID, from, to time.Time) ([]operations.ScheduledUse, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}
	var out []operations.ScheduledUse
	if err := r.selectAll(ctx, &out, r.scheduledUsesQuery(serviceIDs, from, to), "scheduled uses"); err != nil {
		return nil, err
	}
	return out, nil
}

var _ operations.Repository = (*OperationsRepo)(nil)
