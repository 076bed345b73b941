// Package report_repo provides PostgreSQL implementations for report repositories.
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
	"venuedesk/internal/domain/invoice"
	"venuedesk/internal/domain/revenue"
	"venuedesk/internal/infrastructure/storage/postgres"
)

var (
	// heldStatuses are the details counted as meetings that take place.
	heldStatuses = []booking.Status{
		booking.StatusOfficial,
		booking.StatusCheckIn,
		booking.StatusWithholdPayment,
		booking.StatusCompletePayment,
	}

	// unsettledStatuses are held details not yet paid in full.
	unsettledStatuses = []booking.Status{
		booking.StatusOfficial,
		booking.StatusCheckIn,
		booking.StatusWithholdPayment,
	}
)

// lineColumns are the figures of every revenue line. Lines of uninvoiced
// items carry zero invoice figures and no payment date. Booking sales
// take service, discount and tax from the detail columns.
var lineColumns = []string{
	"ii.id AS item_id",
	"ii.invoice_id",
	"i.past_invoice_id",
	"i.payment_date",
	"ii.booking_detail_id",
	"ii.type",
	"ii.subtotal_without_tax_amount",
	"COALESCE(i.service_without_tax_amount, 0) AS service_without_tax_amount",
	"COALESCE(i.discount_without_tax_amount, 0) AS discount_without_tax_amount",
	"COALESCE(i.total_tax_amount, 0) AS total_tax_amount",
	"COALESCE(i.cash_payment_amount, 0) AS cash_payment_amount",
	"COALESCE(i.card_payment_amount, 0) AS card_payment_amount",
	"COALESCE(i.credit_payment_amount, 0) AS credit_payment_amount",
	"COALESCE(i.deposit_amount, 0) AS deposit_amount",
	"COALESCE(d.total_service_without_tax_amount, 0) AS detail_service_amount",
	"COALESCE(d.discount_amount, 0) AS detail_discount_amount",
	"COALESCE(d.deposit_amount, 0) AS detail_deposit_amount",
	"COALESCE(d.tax_rate, 0) AS detail_tax_rate",
}

// RevenueRepo implements revenue.Repository.
type RevenueRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
	tz      string
}

// NewRevenueRepo creates a new revenue repository. Sales dates of booking
// lines are calendar days in loc.
func NewRevenueRepo(txm *postgres.TxManager, loc *time.Location) *RevenueRepo {
	return &RevenueRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		tz:      loc.String(),
	}
}

// bookingDay is the calendar day a detail starts on.
func (r *RevenueRepo) bookingDay() squirrel.Sqlizer {
	return squirrel.Expr("(d.start_datetime AT TIME ZONE ?)::date", r.tz)
}

func (r *RevenueRepo) lines(byDetail bool) squirrel.SelectBuilder {
	sales := squirrel.Sqlizer(squirrel.Expr("i.payment_date"))
	if byDetail {
		sales = r.bookingDay()
	}
	return r.builder.
		Select(lineColumns...).
		Column(squirrel.Alias(sales, "sales_date")).
		From("invoice_items ii").
		LeftJoin("invoices i ON i.id = ii.invoice_id").
		LeftJoin("booking_details d ON d.id = ii.booking_detail_id")
}

func startsIn(w revenue.Window) squirrel.And {
	return squirrel.And{
		squirrel.GtOrEq{"d.start_datetime": w.From},
		squirrel.Lt{"d.start_datetime": w.To},
	}
}

func paidIn(w revenue.Window) squirrel.And {
	return squirrel.And{
		squirrel.GtOrEq{"i.payment_date": w.FirstDay()},
		squirrel.Lt{"i.payment_date": w.EndDay()},
	}
}

func (r *RevenueRepo) bookingQuery(w revenue.Window) squirrel.SelectBuilder {
	return r.lines(true).
		Where(squirrel.NotEq{"ii.invoice_id": nil}).
		Where(squirrel.Eq{"d.status": booking.StatusCompletePayment}).
		Where(startsIn(w)).
		Where(squirrel.Eq{"i.past_invoice_id": nil})
}

func (r *RevenueRepo) unsettledQuery(w revenue.Window) squirrel.SelectBuilder {
	return r.lines(true).
		Where(squirrel.Eq{"d.status": unsettledStatuses}).
		Where(startsIn(w))
}

func (r *RevenueRepo) lobbyQuery(w revenue.Window) squirrel.SelectBuilder {
	return r.lines(false).
		Where(squirrel.Eq{"i.booking_id": nil}).
		Where(squirrel.Eq{"i.past_invoice_id": nil}).
		Where(paidIn(w))
}

func (r *RevenueRepo) revisionQuery(w revenue.Window) squirrel.SelectBuilder {
	return r.lines(false).
		Where(squirrel.NotEq{"i.past_invoice_id": nil}).
		Where(paidIn(w))
}

func (r *RevenueRepo) selectLines(ctx context.Context, q squirrel.SelectBuilder, scope string) ([]revenue.Line, error) {
	sql, args, err := q.OrderBy("ii.created_at ASC", "ii.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s lines: %w", scope, err)
	}
	var out []revenue.Line
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("%s lines: %w", scope, err)
	}
	return out, nil
}

// BookingLines returns invoiced lines of paid details starting in w. The
// payment date is returned so payments count only on the day they are
// received.
func (r *RevenueRepo) BookingLines(ctx context.Context, w revenue.Window) ([]revenue.Line, error) {
	return r.selectLines(ctx, r.bookingQuery(w), "booking")
}

// UnsettledLines returns all lines of held, unpaid details starting in w.
func (r *RevenueRepo) UnsettledLines(ctx context.Context, w revenue.Window) ([]revenue.Line, error) {
	return r.selectLines(ctx, r.unsettledQuery(w), "unsettled")
}

// LobbyLines returns lines of lobby invoices paid in w.
func (r *RevenueRepo) LobbyLines(ctx context.Context, w revenue.Window) ([]revenue.Line, error) {
	return r.selectLines(ctx, r.lobbyQuery(w), "lobby")
}

// RevisionLines returns lines of revision invoices paid in w.
func (r *RevenueRepo) RevisionLines(ctx context.Context, w revenue.Window) ([]revenue.Line, error) {
	return r.selectLines(ctx, r.revisionQuery(w), "revision")
}

// InvoiceLines returns the lines of the given invoices.
func (r *RevenueRepo) InvoiceLines(ctx context.Context, invoiceIDs []id.ID) ([]revenue.Line, error) {
	if len(invoiceIDs) == 0 {
		return nil, nil
	}
	return r.selectLines(ctx, r.lines(false).Where(squirrel.Eq{"ii.invoice_id": invoiceIDs}), "invoice")
}

func (r *RevenueRepo) countsQuery(w revenue.Window) squirrel.SelectBuilder {
	return r.builder.
		Select().
		Column(squirrel.Alias(r.bookingDay(), "day")).
		Columns("COUNT(*) AS details", "COALESCE(SUM(d.guest_count), 0) AS guests").
		From("booking_details d").
		Where(startsIn(w)).
		Where(squirrel.Eq{"d.status": heldStatuses}).
		Where(squirrel.Eq{"d.cancel_datetime": nil}).
		GroupBy("1").
		OrderBy("1")
}

// DetailCounts counts held, not canceled details per start day in w.
func (r *RevenueRepo) DetailCounts(ctx context.Context, w revenue.Window) ([]revenue.DayCount, error) {
	sql, args, err := r.countsQuery(w).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build detail counts: %w", err)
	}
	var out []revenue.DayCount
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("detail counts: %w", err)
	}
	return out, nil
}

// roomUsageSQL reports per enabled room the tariff active on $1, the held
// details starting in [$2, $3) and the room fees billed for them.
const roomUsageSQL = `
	WITH held AS (
		SELECT d.room_id,
			COUNT(*) AS count,
			COALESCE(SUM(d.guest_count), 0) AS guests,
			COALESCE(SUM(EXTRACT(EPOCH FROM d.end_datetime - d.start_datetime)::numeric / 3600), 0) AS hours
		FROM booking_details d
		WHERE d.start_datetime >= $2 AND d.start_datetime < $3
			AND d.status = ANY($4) AND d.cancel_datetime IS NULL
		GROUP BY d.room_id
	),
	fees AS (
		SELECT d.room_id,
			COALESCE(SUM(CASE WHEN ii.type = $6 THEN ii.subtotal_without_tax_amount END), 0) AS basic_amount,
			COALESCE(SUM(CASE WHEN ii.type = $7 THEN ii.subtotal_without_tax_amount END), 0) AS overtime_amount
		FROM invoice_items ii
		JOIN booking_details d ON d.id = ii.booking_detail_id
		LEFT JOIN invoices i ON i.id = ii.invoice_id
		WHERE ii.type IN ($6, $7)
			AND d.start_datetime >= $2 AND d.start_datetime < $3
			AND (
				(ii.invoice_id IS NOT NULL AND d.status = $8 AND i.past_invoice_id IS NULL)
				OR d.status = ANY($5)
			)
		GROUP BY d.room_id
	)
	SELECT rm.id AS room_id,
		rm.name AS room_name,
		COALESCE(rc.basic_amount, 0) AS basic_price,
		COALESCE(rc.extension_amount, 0) AS extension_price,
		COALESCE(h.count, 0) AS count,
		COALESCE(h.guests, 0) AS guests,
		COALESCE(h.hours, 0) AS hours,
		COALESCE(f.basic_amount, 0) AS basic_amount,
		COALESCE(f.overtime_amount, 0) AS overtime_amount
	FROM rooms rm
	LEFT JOIN LATERAL (
		SELECT c.basic_amount, c.extension_amount
		FROM room_charges c
		WHERE c.room_id = rm.id AND c.start_date <= $1
			AND (c.end_date IS NULL OR c.end_date >= $1)
		ORDER BY c.start_date DESC
		LIMIT 1
	) rc ON TRUE
	LEFT JOIN held h ON h.room_id = rm.id
	LEFT JOIN fees f ON f.room_id = rm.id
	WHERE rm.is_enabled
	ORDER BY rm.sort_order, rm.name
`

// roomUsageArgs binds roomUsageSQL. Without unsettled only paid details
// count.
func roomUsageArgs(w revenue.Window, unsettled bool) []any {
	held := []int{int(booking.StatusCompletePayment)}
	var open []int
	if unsettled {
		for _, s := range unsettledStatuses {
			held = append(held, int(s))
			open = append(open, int(s))
		}
	}
	return []any{
		w.FirstDay(), w.From, w.To,
		held, open,
		int(catalog.TypeBasicFee), int(catalog.TypeOvertimeFee),
		int(booking.StatusCompletePayment),
	}
}

// RoomUsage returns room fee activity per enabled room in w.
func (r *RevenueRepo) RoomUsage(ctx context.Context, w revenue.Window, unsettled bool) ([]revenue.RoomUsage, error) {
	var out []revenue.RoomUsage
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, roomUsageSQL, roomUsageArgs(w, unsettled)...); err != nil {
		return nil, fmt.Errorf("room usage: %w", err)
	}
	return out, nil
}

// soldItemsQuery selects the items of completed invoices that count as
// sold: lobby items and items of paid details. in_day marks the items sold
// in w.
func (r *RevenueRepo) soldItemsQuery(w revenue.Window) squirrel.SelectBuilder {
	inDay := squirrel.Or{
		squirrel.And{squirrel.Eq{"i.booking_id": nil}, paidIn(w)},
		startsIn(w),
	}
	return r.builder.
		Select("ii.service_id", "ii.invoice_id", "ii.count", "ii.subtotal_without_tax_amount").
		Column(squirrel.Alias(inDay, "in_day")).
		From("invoice_items ii").
		Join("invoices i ON i.id = ii.invoice_id").
		LeftJoin("booking_details d ON d.id = ii.booking_detail_id").
		Where(squirrel.Eq{"i.status": invoice.StatusCompleted}).
		Where(squirrel.Or{
			squirrel.Eq{"i.booking_id": nil},
			squirrel.Eq{"d.status": booking.StatusCompletePayment},
		})
}

func (r *RevenueRepo) serviceSalesQuery(w revenue.Window, types []catalog.ServiceType) squirrel.SelectBuilder {
	return r.builder.
		Select(
			"s.id AS service_id",
			"s.type",
			"s.name",
			"s.unit_price",
			"COALESCE(SUM(x.count) FILTER (WHERE x.in_day), 0) AS count",
			"COALESCE(SUM(x.subtotal_without_tax_amount) FILTER (WHERE x.in_day), 0) AS amount",
			"COALESCE(ARRAY_AGG(DISTINCT x.invoice_id) FILTER (WHERE x.in_day), '{}') AS invoice_ids",
			"COALESCE(SUM(x.count), 0) AS accumulated_count",
			"COALESCE(SUM(x.subtotal_without_tax_amount), 0) AS accumulated_amount",
		).
		From("services s").
		JoinClause(squirrel.Expr("LEFT JOIN (?) x ON x.service_id = s.id", r.soldItemsQuery(w))).
		Where(squirrel.Eq{"s.type": types}).
		GroupBy("s.id", "s.type", "s.name", "s.unit_price").
		OrderBy("s.type", "s.name")
}

// ServiceSales returns per service of types its sales in w and overall.
func (r *RevenueRepo) ServiceSales(ctx context.Context, w revenue.Window, types []catalog.ServiceType) ([]revenue.ServiceSale, error) {
	sql, args, err := r.serviceSalesQuery(w, types).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build service sales: %w", err)
	}
	var out []revenue.ServiceSale
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("service sales: %w", err)
	}
	return out, nil
}

var _ revenue.Repository = (*RevenueRepo)(nil)
