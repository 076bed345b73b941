package document_repo

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/booking"
	"venuedesk/internal/domain/invoice"
)

func TestBookingRepo_OverlapQuery(t *testing.T) {
	repo := NewBookingRepo(nil)
	start := time.Date(2026, 4, 1, 1, 0, 0, 0, time.UTC)
	roomID := id.New()
	exclude := id.New()

	sql, args, err := repo.overlapQuery(booking.OverlapQuery{
		RoomIDs:         []id.ID{roomID},
		Interval:        booking.Interval{Start: start, End: start.Add(2 * time.Hour)},
		ExcludeDetailID: exclude,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "d.status NOT IN ($1,$2)")
	assert.Contains(t, sql, "d.cancel_datetime IS NULL")
	assert.Contains(t, sql, "d.room_id IN ($3)")
	assert.Contains(t, sql, "((d.start_datetime > $4 AND d.start_datetime < $5) OR (d.end_datetime > $6 AND d.end_datetime < $7) OR (d.start_datetime <= $8 AND d.end_datetime >= $9))")
	assert.Contains(t, sql, "d.id <> $10")
	assert.Len(t, args, 10)
	assert.Equal(t, booking.StatusWaitingCancel, args[0])
	assert.Equal(t, booking.StatusCanceled, args[1])
}

func TestBookingRepo_OverlapQueryWithoutExclude(t *testing.T) {
	repo := NewBookingRepo(nil)
	start := time.Date(2026, 4, 1, 1, 0, 0, 0, time.UTC)

	sql, _, err := repo.overlapQuery(booking.OverlapQuery{
		RoomIDs:  []id.ID{id.New(), id.New()},
		Interval: booking.Interval{Start: start, End: start.Add(time.Hour)},
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "d.room_id IN ($3,$4)")
	assert.NotContains(t, sql, "d.id <>")
}

func TestBookingRepo_ListQuery(t *testing.T) {
	repo := NewBookingRepo(nil)
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	sql, args, err := repo.listQuery(booking.ListFilter{
		CustomerName: "山田",
		Statuses:     []booking.Status{booking.StatusOfficial, booking.StatusTemporary},
		From:         &from,
	}).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "SELECT d.id, d.created_at, d.updated_at"))
	assert.Contains(t, sql, "AS room_name")
	assert.Contains(t, sql, "AS invoice_ids")
	assert.Contains(t, sql, "LEFT JOIN staffs st ON st.id = d.cancel_staff_id")
	assert.Contains(t, sql, "(c.name ILIKE $1 OR c.name_kana ILIKE $2) AND d.status IN ($3,$4) AND d.start_datetime >= $5")
	assert.Equal(t, "%山田%", args[0])
}

func TestBookingRepo_ScheduleQuery(t *testing.T) {
	repo := NewBookingRepo(nil)
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	sql, _, err := repo.scheduleQuery(booking.ScheduleFilter{From: from, To: from.AddDate(0, 0, 1)}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "rm.is_enabled = $3")
	assert.Contains(t, sql, "d.start_datetime < $4 AND d.end_datetime > $5")
	assert.True(t, strings.HasSuffix(sql, "ORDER BY d.start_datetime ASC, d.id ASC"))
}

func TestBaseDocumentRepo_InsertQuery(t *testing.T) {
	repo := NewItemRepo(nil)
	detailID := id.New()
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	items := []*invoice.Item{
		{Record: entity.NewRecord(now), BookingDetailID: &detailID, ServiceID: id.New(), Name: "基本料金", Count: decimal.NewFromInt(1)},
		{Record: entity.NewRecord(now), BookingDetailID: &detailID, ServiceID: id.New(), Name: "延長料金", Count: decimal.RequireFromString("1.5")},
	}

	sql, args, err := repo.insertQuery(items).ToSql()
	require.NoError(t, err)

	cols := len(repo.selectCols)
	assert.Len(t, args, 2*cols)
	assert.True(t, strings.HasPrefix(sql, "INSERT INTO invoice_items (id,created_at,updated_at,booking_detail_id,invoice_id"))
	assert.Equal(t, items[0].ID, args[0])
	assert.Equal(t, items[1].ID, args[cols])
	assert.Equal(t, "延長料金", args[cols+6])
}

func TestInvoiceRepo_ListQuery(t *testing.T) {
	repo := NewInvoiceRepo(nil)
	lobby := true
	status := invoice.StatusCompleted

	sql, args, err := repo.listQuery(invoice.ListFilter{Lobby: &lobby, Status: &status}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "FROM invoices i WHERE i.status = $1 AND i.booking_id IS NULL")
	assert.Equal(t, []any{invoice.StatusCompleted}, args)
	assert.NotContains(t, sql, "JOIN")

	sql, _, err = repo.listQuery(invoice.ListFilter{CustomerName: "山田"}).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "JOIN customers c ON c.id = b.customer_id")
}

func TestItemRepo_DraftCondition(t *testing.T) {
	detailID := id.New()

	sql, args, err := draftsOf(detailID, []id.ID{id.New()}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(booking_detail_id = ? AND invoice_id IS NULL AND service_id IN (?))", sql)
	assert.Len(t, args, 2)
}
