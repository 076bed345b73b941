package customer

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/id"
	"venuedesk/internal/core/tx"
	"venuedesk/internal/domain"
)

type exportRepo struct {
	rows      []ExportRow
	yearStart time.Time
}

func (r *exportRepo) Create(context.Context, *Customer) error { return nil }
func (r *exportRepo) Update(context.Context, *Customer) error { return nil }
func (r *exportRepo) GetByID(_ context.Context, customerID id.ID) (*Customer, error) {
	return nil, apperror.NewNotFound("customers", customerID)
}
func (r *exportRepo) List(context.Context, domain.ListFilter) (domain.ListResult[*Customer], error) {
	return domain.ListResult[*Customer]{}, nil
}
func (r *exportRepo) Exists(context.Context, id.ID) (bool, error) { return false, nil }

func (r *exportRepo) ListForExport(_ context.Context, _ ExportFilter, yearStart, _ time.Time) ([]ExportRow, error) {
	r.yearStart = yearStart
	return r.rows, nil
}

func row(name string, bookings int, amount int64) ExportRow {
	return ExportRow{
		Customer: Customer{Record: entity.NewRecord(time.Now()), Name: name},
		Stats:    Stats{BookingsTotal: bookings, AmountTotal: decimal.NewFromInt(amount)},
	}
}

func TestService_ExportRows(t *testing.T) {
	ctx := context.Background()
	repo := &exportRepo{rows: []ExportRow{row("A", 1, 1000), row("B", 5, 90000), row("C", 12, 300000)}}
	svc := NewService(repo, &tx.Passthrough{}, time.UTC)
	svc.now = func() time.Time { return time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC) }

	t.Run("statistic filters", func(t *testing.T) {
		repo.rows = []ExportRow{row("A", 1, 1000), row("B", 5, 90000), row("C", 12, 300000)}
		rows, err := svc.ExportRows(ctx, ExportFilter{MinBookings: 2, MaxAmount: decimal.NewFromInt(100000)})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "B", rows[0].Name)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), repo.yearStart)
	})

	t.Run("nothing matches", func(t *testing.T) {
		repo.rows = []ExportRow{row("A", 1, 1000)}
		_, err := svc.ExportRows(ctx, ExportFilter{MinBookings: 3})
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("reversed range", func(t *testing.T) {
		_, err := svc.ExportRows(ctx, ExportFilter{CreatedFrom: time.Now(), CreatedTo: time.Now().AddDate(0, 0, -1)})
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
	})
}

func TestCustomer_Validate(t *testing.T) {
	c := &Customer{Name: "  ", ContactMail: "x@example.com"}
	assert.Error(t, c.Validate(context.Background()))
	c.Name = "Acme"
	assert.NoError(t, c.Validate(context.Background()))
	c.ContactMail = "broken"
	assert.Error(t, c.Validate(context.Background()))
}
