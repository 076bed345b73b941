package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/booking"
	"venuedesk/internal/infrastructure/storage/postgres"
)

const (
	bookingsTable       = "bookings"
	detailsTable        = "booking_details"
	detailServicesTable = "booking_detail_services"
)

// BookingRepo implements booking.Repository.
type BookingRepo struct {
	*BaseDocumentRepo[*booking.Booking]
	details  *BaseDocumentRepo[*booking.Detail]
	services *BaseDocumentRepo[*booking.DetailService]
}

// NewBookingRepo creates a new booking repository.
func NewBookingRepo(txm *postgres.TxManager) *BookingRepo {
	return &BookingRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm, bookingsTable, "booking",
			postgres.ExtractDBColumns[booking.Booking](),
			func() *booking.Booking { return &booking.Booking{} },
		),
		details: NewBaseDocumentRepo(
			txm, detailsTable, "booking detail",
			postgres.ExtractDBColumns[booking.Detail](),
			func() *booking.Detail { return &booking.Detail{} },
		),
		services: NewBaseDocumentRepo(
			txm, detailServicesTable, "booking detail service",
			postgres.ExtractDBColumns[booking.DetailService](),
			func() *booking.DetailService { return &booking.DetailService{} },
		),
	}
}

// CreateDetail inserts a booking detail.
func (r *BookingRepo) CreateDetail(ctx context.Context, d *booking.Detail) error {
	return r.details.Create(ctx, d)
}

// UpdateDetail rewrites a booking detail.
func (r *BookingRepo) UpdateDetail(ctx context.Context, d *booking.Detail) error {
	return r.details.Update(ctx, d)
}

// GetDetail retrieves a booking detail.
func (r *BookingRepo) GetDetail(ctx context.Context, detailID id.ID) (*booking.Detail, error) {
	return r.details.GetByID(ctx, detailID)
}

// GetDetailForUpdate locks the detail row until the transaction ends.
func (r *BookingRepo) GetDetailForUpdate(ctx context.Context, detailID id.ID) (*booking.Detail, error) {
	return r.details.GetForUpdate(ctx, detailID)
}

// GetDetailsByIDs returns the details found among detailIDs.
func (r *BookingRepo) GetDetailsByIDs(ctx context.Context, detailIDs []id.ID) ([]*booking.Detail, error) {
	if len(detailIDs) == 0 {
		return nil, nil
	}
	var out []*booking.Detail
	err := r.details.selectAll(ctx, &out, r.details.baseSelect().
		Where(squirrel.Eq{"id": detailIDs}).
		OrderBy("created_at ASC", "id ASC"))
	return out, err
}

// ListDetailsByBooking returns the booking's details, main detail first.
func (r *BookingRepo) ListDetailsByBooking(ctx context.Context, bookingID id.ID) ([]*booking.Detail, error) {
	var out []*booking.Detail
	err := r.details.selectAll(ctx, &out, r.details.baseSelect().
		Where(squirrel.Eq{"booking_id": bookingID}).
		OrderBy("created_at ASC", "id ASC"))
	return out, err
}

// viewSelect joins details with their booking, room, customer and billing.
func (r *BookingRepo) viewSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(prefixed("d", r.details.selectCols)...).
		Columns(
			"rm.name AS room_name",
			"b.customer_id",
			"c.name AS customer_name",
			"c.name_kana AS customer_name_kana",
			"b.contact_name",
			"b.contact_tel",
			"st.name AS cancel_staff_name",
			"(SELECT COUNT(*) FROM invoice_items ii WHERE ii.booking_detail_id = d.id) AS item_count",
			`ARRAY(SELECT DISTINCT ii.invoice_id FROM invoice_items ii
				WHERE ii.booking_detail_id = d.id AND ii.invoice_id IS NOT NULL) AS invoice_ids`,
			`ARRAY(SELECT DISTINCT i.payment_date FROM invoice_items ii
				JOIN invoices i ON i.id = ii.invoice_id WHERE ii.booking_detail_id = d.id) AS payment_dates`,
		).
		From(detailsTable + " d").
		Join(bookingsTable + " b ON b.id = d.booking_id").
		Join("rooms rm ON rm.id = d.room_id").
		Join("customers c ON c.id = b.customer_id").
		LeftJoin("staffs st ON st.id = d.cancel_staff_id")
}

func (r *BookingRepo) listQuery(filter booking.ListFilter) squirrel.SelectBuilder {
	q := r.viewSelect()
	if filter.BookingID != nil {
		q = q.Where(squirrel.Eq{"d.booking_id": *filter.BookingID})
	}
	if filter.CustomerName != "" {
		pattern := "%" + filter.CustomerName + "%"
		q = q.Where(squirrel.Or{squirrel.ILike{"c.name": pattern}, squirrel.ILike{"c.name_kana": pattern}})
	}
	if len(filter.Statuses) > 0 {
		q = q.Where(squirrel.Eq{"d.status": filter.Statuses})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"d.start_datetime": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"d.start_datetime": *filter.To})
	}
	return q
}

// ListDetails returns one page of detail views and the total count.
func (r *BookingRepo) ListDetails(ctx context.Context, filter booking.ListFilter) ([]*booking.DetailView, int64, error) {
	q := r.listQuery(filter)
	total, err := r.count(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	var out []*booking.DetailView
	q = page(q.OrderBy("d.start_datetime DESC", "d.id ASC"), filter.Limit, filter.Offset)
	if err := r.selectAll(ctx, &out, q); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// active restricts details to those occupying their room.
func active(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	return q.
		Where(squirrel.NotEq{"d.status": booking.InactiveStatuses}).
		Where(squirrel.Eq{"d.cancel_datetime": nil})
}

func (r *BookingRepo) scheduleQuery(filter booking.ScheduleFilter) squirrel.SelectBuilder {
	return active(r.viewSelect()).
		Where(squirrel.Eq{"rm.is_enabled": true}).
		Where(squirrel.Lt{"d.start_datetime": filter.To}).
		Where(squirrel.Gt{"d.end_datetime": filter.From}).
		OrderBy("d.start_datetime ASC", "d.id ASC")
}

// ListSchedule returns the active details of enabled rooms within the
// filter's range.
func (r *BookingRepo) ListSchedule(ctx context.Context, filter booking.ScheduleFilter) ([]*booking.DetailView, error) {
	var out []*booking.DetailView
	err := r.selectAll(ctx, &out, r.scheduleQuery(filter))
	return out, err
}

// overlapQuery is the SQL form of booking.OverlapQuery.Matches.
func (r *BookingRepo) overlapQuery(oq booking.OverlapQuery) squirrel.SelectBuilder {
	cs, ce := oq.Interval.Start, oq.Interval.End
	q := active(r.Builder().Select("1").From(detailsTable + " d")).
		Where(squirrel.Eq{"d.room_id": oq.RoomIDs}).
		Where(squirrel.Or{
			squirrel.And{squirrel.Gt{"d.start_datetime": cs}, squirrel.Lt{"d.start_datetime": ce}},
			squirrel.And{squirrel.Gt{"d.end_datetime": cs}, squirrel.Lt{"d.end_datetime": ce}},
			squirrel.And{squirrel.LtOrEq{"d.start_datetime": cs}, squirrel.GtOrEq{"d.end_datetime": ce}},
		})
	if !id.IsNil(oq.ExcludeDetailID) {
		q = q.Where(squirrel.NotEq{"d.id": oq.ExcludeDetailID})
	}
	return q.Limit(1)
}

// HasOverlap reports whether any stored detail matches oq.
func (r *BookingRepo) HasOverlap(ctx context.Context, oq booking.OverlapQuery) (bool, error) {
	if len(oq.RoomIDs) == 0 {
		return false, nil
	}
	sql, args, err := r.Builder().
		Select().
		Column(squirrel.Expr("EXISTS (?)", r.overlapQuery(oq))).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build overlap query: %w", err)
	}
	var busy bool
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&busy); err != nil {
		return false, fmt.Errorf("check overlap: %w", err)
	}
	return busy, nil
}

// ListServices returns the services stored against detailID.
func (r *BookingRepo) ListServices(ctx context.Context, detailID id.ID) ([]*booking.DetailService, error) {
	var out []*booking.DetailService
	err := r.services.selectAll(ctx, &out, r.services.baseSelect().
		Where(squirrel.Eq{"booking_detail_id": detailID}).
		OrderBy("id ASC"))
	return out, err
}

// ReplaceServices deletes the services of detailID and inserts services.
func (r *BookingRepo) ReplaceServices(ctx context.Context, detailID id.ID, services []*booking.DetailService) error {
	if _, err := r.services.exec(ctx, r.Builder().
		Delete(detailServicesTable).
		Where(squirrel.Eq{"booking_detail_id": detailID}), "delete"); err != nil {
		return err
	}
	return r.services.CreateBatch(ctx, services)
}

var _ booking.Repository = (*BookingRepo)(nil)
