package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/catalog"
	"venuedesk/internal/infrastructure/storage/postgres"
)

const serviceTable = "services"

// usageStatuses are the detail statuses whose services hold stock.
var usageStatuses = []booking.Status{
	booking.StatusOfficial,
	booking.StatusTemporary,
	booking.StatusCheckIn,
}

// ServiceRepo implements catalog.Repository.
type ServiceRepo struct {
	*BaseMasterRepo[*catalog.Service]
}

// NewServiceRepo creates a new service repository.
func NewServiceRepo(txm *postgres.TxManager) *ServiceRepo {
	return &ServiceRepo{
		BaseMasterRepo: NewBaseMasterRepo(
			txm,
			serviceTable,
			postgres.ExtractDBColumns[catalog.Service](),
			[]string{"name"},
			func() *catalog.Service { return &catalog.Service{} },
		),
	}
}

// GetByIDs returns the services found among ids.
func (r *ServiceRepo) GetByIDs(ctx context.Context, ids []id.ID) ([]*catalog.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.Select(ctx, r.baseSelect().Where(squirrel.Eq{"id": ids}))
}

func (r *ServiceRepo) forRoomsQuery(filter catalog.AvailabilityFilter) squirrel.SelectBuilder {
	q := r.baseSelect().
		Where(squirrel.Eq{"is_enabled": true}).
		Where(squirrel.Eq{"location_type": catalog.LocationMeetingRoom})
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	return q.OrderBy("created_at ASC", "id ASC")
}

// ListForRooms returns enabled meeting-room services matching filter.
func (r *ServiceRepo) ListForRooms(ctx context.Context, filter catalog.AvailabilityFilter) ([]*catalog.Service, error) {
	return r.Select(ctx, r.forRoomsQuery(filter))
}

func (r *ServiceRepo) usageQuery(serviceIDs []id.ID, dayStart, dayEnd time.Time) squirrel.SelectBuilder {
	return r.Builder().
		Select(
			"bds.service_id",
			"bds.booking_detail_id",
			"b.customer_id",
			"bd.start_datetime",
			"bd.end_datetime",
			"bds.usage_count",
		).
		From("booking_detail_services bds").
		Join("booking_details bd ON bd.id = bds.booking_detail_id").
		Join("bookings b ON b.id = bd.booking_id").
		Where(squirrel.Eq{"bds.service_id": serviceIDs}).
		Where(squirrel.Eq{"bd.status": usageStatuses}).
		Where(squirrel.Eq{"bd.cancel_datetime": nil}).
		Where(squirrel.Lt{"bd.start_datetime": dayEnd}).
		Where(squirrel.Gt{"bd.end_datetime": dayStart})
}

// ListUsage returns the units of serviceIDs booked by active details within
// [dayStart, dayEnd).
func (r *ServiceRepo) ListUsage(ctx context.Context, serviceIDs []id.ID, dayStart, dayEnd time.Time) ([]catalog.Usage, error) {
	if len(serviceIDs) == 0 {
		return nil, nil
	}
	sql, args, err := r.usageQuery(serviceIDs, dayStart, dayEnd).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var usages []catalog.Usage
	if err := pgxscan.Select(ctx, r.querier(ctx), &usages, sql, args...); err != nil {
		return nil, fmt.Errorf("list usage: %w", err)
	}
	return usages, nil
}

var _ catalog.Repository = (*ServiceRepo)(nil)
