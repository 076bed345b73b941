package catalog_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/customer"
	"venuedesk/internal/domain/invoice"
	"venuedesk/internal/infrastructure/storage/postgres"
)

const customerTable = "customers"

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseMasterRepo[*customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txm *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		BaseMasterRepo: NewBaseMasterRepo(
			txm,
			customerTable,
			postgres.ExtractDBColumns[customer.Customer](),
			[]string{"name", "name_kana", "tel", "contact_name"},
			func() *customer.Customer { return &customer.Customer{} },
		),
	}
}

// paidInvoiceSum totals completed invoices of the customer's bookings that
// bill a paid detail starting in [$from, $to).
const paidInvoiceSum = `COALESCE((
	SELECT SUM(i.total_amount) FROM invoices i
	JOIN bookings ib ON ib.id = i.booking_id
	WHERE ib.customer_id = c.id AND i.status = ? AND EXISTS (
		SELECT 1 FROM invoice_items ii
		JOIN booking_details bd ON bd.id = ii.booking_detail_id
		WHERE ii.invoice_id = i.id AND bd.status = ?%s
	)
), 0)`

func paidSum(alias string, bounded bool, from, to time.Time) squirrel.Sqlizer {
	args := []any{invoice.StatusCompleted, booking.StatusCompletePayment}
	bound := ""
	if bounded {
		bound = " AND bd.start_datetime >= ? AND bd.start_datetime < ?"
		args = append(args, from, to)
	}
	return squirrel.Alias(squirrel.Expr(fmt.Sprintf(paidInvoiceSum, bound), args...), alias)
}

// exportQuery selects the customers matching the text and date filters
// with their statistics for [yearStart, yearEnd).
func (r *CustomerRepo) exportQuery(filter customer.ExportFilter, yearStart, yearEnd time.Time) squirrel.SelectBuilder {
	cols := make([]string, 0, len(r.selectCols))
	for _, col := range r.selectCols {
		cols = append(cols, "c."+col)
	}
	paid := booking.StatusCompletePayment

	q := r.Builder().
		Select(cols...).
		Column(squirrel.Alias(squirrel.Expr(
			`(SELECT COUNT(*) FROM booking_details d JOIN bookings b ON b.id = d.booking_id
				WHERE b.customer_id = c.id AND d.status = ? AND d.start_datetime >= ? AND d.start_datetime < ?)`,
			paid, yearStart, yearEnd), "bookings_this_year")).
		Column(squirrel.Alias(squirrel.Expr(
			`(SELECT COUNT(*) FROM booking_details d JOIN bookings b ON b.id = d.booking_id
				WHERE b.customer_id = c.id AND d.status = ?)`, paid), "bookings_total")).
		Column(squirrel.Alias(squirrel.Expr(
			`(SELECT MAX(d.end_datetime) FROM booking_details d JOIN bookings b ON b.id = d.booking_id
				WHERE b.customer_id = c.id AND d.status = ?)`, paid), "latest_used_at")).
		Column(paidSum("amount_last_year", true, yearStart.AddDate(-1, 0, 0), yearStart)).
		Column(paidSum("amount_this_year", true, yearStart, yearEnd)).
		Column(paidSum("amount_total", false, time.Time{}, time.Time{})).
		From(customerTable + " c")

	if filter.Name != "" {
		pattern := "%" + filter.Name + "%"
		q = q.Where(squirrel.Or{squirrel.ILike{"c.name": pattern}, squirrel.ILike{"c.name_kana": pattern}})
	}
	if filter.ContactName != "" {
		q = q.Where(squirrel.ILike{"c.contact_name": "%" + filter.ContactName + "%"})
	}
	if filter.Tel != "" {
		pattern := "%" + filter.Tel + "%"
		q = q.Where(squirrel.Or{squirrel.ILike{"c.tel": pattern}, squirrel.ILike{"c.contact_tel": pattern}})
	}
	if !filter.CreatedFrom.IsZero() {
		q = q.Where(squirrel.GtOrEq{"c.created_at": filter.CreatedFrom})
	}
	if !filter.CreatedTo.IsZero() {
		q = q.Where(squirrel.Lt{"c.created_at": filter.CreatedTo.AddDate(0, 0, 1)})
	}
	if !filter.BookingFrom.IsZero() || !filter.BookingTo.IsZero() {
		sub := squirrel.And{squirrel.Expr("b.customer_id = c.id")}
		if !filter.BookingFrom.IsZero() {
			sub = append(sub, squirrel.GtOrEq{"d.start_datetime": filter.BookingFrom})
		}
		if !filter.BookingTo.IsZero() {
			sub = append(sub, squirrel.Lt{"d.start_datetime": filter.BookingTo.AddDate(0, 0, 1)})
		}
		exists := squirrel.Select("1").
			From("booking_details d").
			Join("bookings b ON b.id = d.booking_id").
			Where(sub)
		q = q.Where(squirrel.Expr("EXISTS (?)", exists))
	}
	return q.OrderBy("c.created_at ASC", "c.id ASC")
}

// ListForExport returns customers matching the text and date filters with
// their statistics for the year starting at yearStart.
func (r *CustomerRepo) ListForExport(ctx context.Context, filter customer.ExportFilter, yearStart, yearEnd time.Time) ([]customer.ExportRow, error) {
	sql, args, err := r.exportQuery(filter, yearStart, yearEnd).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build export query: %w", err)
	}
	var rows []customer.ExportRow
	if err := pgxscan.Select(ctx, r.querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list customers for export: %w", err)
	}
	return rows, nil
}

var _ customer.Repository = (*CustomerRepo)(nil)
