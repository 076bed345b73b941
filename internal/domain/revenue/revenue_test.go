package revenue

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/catalog"
)

func yen(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// invoiceSpec describes one invoice. Setting detail makes its lines
// booking lines of that detail taxed at 10%.
type invoiceSpec struct {
	id      id.ID
	past    *id.ID
	detail  *id.ID
	day     time.Time
	service int64
	tax     int64
	cash    int64
	items   map[catalog.ServiceType]int64
}

func (s invoiceSpec) lines() []Line {
	var out []Line
	for typ, amount := range s.items {
		invoiceID, paid := s.id, s.day
		l := Line{
			ItemID:                   id.New(),
			InvoiceID:                &invoiceID,
			PastInvoiceID:            s.past,
			Type:                     typ,
			SubtotalWithoutTaxAmount: yen(amount),
			SalesDate:                s.day,
			PaymentDate:              &paid,
			InvoiceFigures: InvoiceFigures{
				ServiceWithoutTaxAmount: yen(s.service),
				TotalTaxAmount:          yen(s.tax),
				CashPaymentAmount:       yen(s.cash),
			},
		}
		if s.detail != nil {
			l.BookingDetailID = s.detail
			l.DetailFigures = DetailFigures{DetailServiceAmount: yen(s.service), DetailTaxRate: yen(10)}
		}
		out = append(out, l)
	}
	return out
}

func detailID() *id.ID {
	v := id.New()
	return &v
}

func TestTotalize_CountsInvoiceFiguresOnce(t *testing.T) {
	inv := invoiceSpec{
		id:      id.New(),
		service: 600,
		tax:     1000,
		cash:    11000,
		items: map[catalog.ServiceType]int64{
			catalog.TypeBasicFee:    6000,
			catalog.TypeOvertimeFee: 1000,
			catalog.TypeDrinks:      2400,
			catalog.TypeCopyFee:     0,
		},
	}
	lines := inv.lines()
	lines = append(lines, lines[0])

	got := Totalize(lines)

	assert.True(t, got.Basic.Equal(yen(6000)))
	assert.True(t, got.Room.Equal(yen(7000)))
	assert.True(t, got.Service.Equal(yen(600)))
	assert.True(t, got.Tax.Equal(yen(1000)))
	assert.True(t, got.SubtotalSales.Equal(yen(10000)))
	assert.True(t, got.Net.Equal(yen(10000)))
	assert.True(t, got.Sales.Equal(yen(11000)))
	assert.True(t, got.Payment.Equal(yen(11000)))
}

func TestTotalize_DiscountAndMisc(t *testing.T) {
	invoiceID := id.New()
	lines := []Line{
		{ItemID: id.New(), InvoiceID: &invoiceID, Type: catalog.TypeFood, SubtotalWithoutTaxAmount: yen(5000),
			InvoiceFigures: InvoiceFigures{DiscountWithoutTaxAmount: yen(500), TotalTaxAmount: yen(480)}},
		{ItemID: id.New(), InvoiceID: &invoiceID, Type: catalog.TypeDeliveryFee, SubtotalWithoutTaxAmount: yen(300),
			InvoiceFigures: InvoiceFigures{DiscountWithoutTaxAmount: yen(500), TotalTaxAmount: yen(480)}},
	}

	got := Totalize(lines)

	assert.True(t, got.Misc.Equal(yen(300)))
	assert.True(t, got.Net.Equal(yen(4800)))
	assert.True(t, got.Sales.Equal(yen(5280)))
}

func TestPast_NetsRevisionAgainstOriginal(t *testing.T) {
	day := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	original := invoiceSpec{
		id: id.New(), day: day, tax: 800, cash: 8800,
		items: map[catalog.ServiceType]int64{catalog.TypeBasicFee: 8000},
	}
	revised := invoiceSpec{
		id: id.New(), past: &original.id, day: day, tax: 600, cash: 6600,
		items: map[catalog.ServiceType]int64{catalog.TypeBasicFee: 6000},
	}

	period := Totalize(original.lines()).Add(Past(revised.lines(), original.lines()))
	only := Totalize(revised.lines())

	assert.True(t, period.Sales.Equal(only.Sales), "sales %s vs %s", period.Sales, only.Sales)
	assert.True(t, period.Basic.Equal(only.Basic))
	assert.True(t, period.Payment.Equal(only.Payment))

	t.Run("chain telescopes", func(t *testing.T) {
		second := invoiceSpec{
			id: id.New(), past: &revised.id, day: day, tax: 500, cash: 5500,
			items: map[catalog.ServiceType]int64{catalog.TypeBasicFee: 5000},
		}
		revisions := append(revised.lines(), second.lines()...)
		predecessors := append(original.lines(), revised.lines()...)

		period := Totalize(original.lines()).Add(Past(revisions, predecessors))

		assert.True(t, period.Sales.Equal(yen(5500)), "got %s", period.Sales)
	})
}

func TestEstimate_FloorsTaxPerDetail(t *testing.T) {
	a, b := id.New(), id.New()
	figures := DetailFigures{
		DetailServiceAmount:  yen(100),
		DetailDiscountAmount: yen(50),
		DetailDepositAmount:  yen(1000),
		DetailTaxRate:        yen(10),
	}
	lines := []Line{
		{ItemID: id.New(), BookingDetailID: &a, Type: catalog.TypeBasicFee, SubtotalWithoutTaxAmount: yen(1005), DetailFigures: figures},
		{ItemID: id.New(), BookingDetailID: &b, Type: catalog.TypeBasicFee, SubtotalWithoutTaxAmount: yen(1005), DetailFigures: figures},
	}

	got := Estimate(lines)

	// floor(1055 / 100 * 10) = 105 per detail
	assert.True(t, got.Tax.Equal(yen(210)), "got %s", got.Tax)
	assert.True(t, got.Service.Equal(yen(200)))
	assert.True(t, got.Discount.Equal(yen(100)))
	assert.True(t, got.Deposit.Equal(yen(2000)))
	assert.True(t, got.Cash.IsZero())
	assert.True(t, got.Payment.Equal(yen(2000)))
}

func TestSettle_TakesFiguresPerDetail(t *testing.T) {
	invoiceID := id.New()
	a, b := id.New(), id.New()
	figures := InvoiceFigures{
		ServiceWithoutTaxAmount:  yen(1000),
		DiscountWithoutTaxAmount: yen(400),
		TotalTaxAmount:           yen(1060),
		CashPaymentAmount:        yen(11660),
	}
	lines := []Line{
		{ItemID: id.New(), InvoiceID: &invoiceID, BookingDetailID: &a, Type: catalog.TypeBasicFee,
			SubtotalWithoutTaxAmount: yen(5000), InvoiceFigures: figures,
			DetailFigures: DetailFigures{DetailServiceAmount: yen(500), DetailDiscountAmount: yen(400), DetailTaxRate: yen(10)}},
		{ItemID: id.New(), InvoiceID: &invoiceID, BookingDetailID: &b, Type: catalog.TypeBasicFee,
			SubtotalWithoutTaxAmount: yen(5000), InvoiceFigures: figures,
			DetailFigures: DetailFigures{DetailServiceAmount: yen(500), DetailTaxRate: yen(10)}},
	}

	first, second := Settle(lines[:1]), Settle(lines[1:])
	both := Settle(lines)

	// floor(5100 / 100 * 10) and floor(5500 / 100 * 10)
	assert.True(t, first.Tax.Equal(yen(510)), "got %s", first.Tax)
	assert.True(t, second.Tax.Equal(yen(550)), "got %s", second.Tax)
	assert.True(t, both.Sales.Equal(first.Sales.Add(second.Sales)), "split %s + %s vs %s", first.Sales, second.Sales, both.Sales)
	assert.True(t, both.Service.Equal(yen(1000)))
	assert.True(t, both.Discount.Equal(yen(400)))
	assert.True(t, both.Payment.IsZero(), "payments are summed separately")
	assert.True(t, Payments(append(lines, lines...)).Cash.Equal(yen(11660)))
}

func TestPaidIn(t *testing.T) {
	loc := time.FixedZone("JST", 9*3600)
	w := DayWindow(time.Date(2026, 2, 3, 10, 0, 0, 0, loc), loc)
	feb2 := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	feb3 := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	lines := []Line{
		{ItemID: id.New(), PaymentDate: &feb2},
		{ItemID: id.New(), PaymentDate: &feb3},
		{ItemID: id.New()},
	}

	got := PaidIn(lines, w)

	require.Len(t, got, 1)
	assert.Equal(t, lines[1].ItemID, got[0].ItemID)
}

func TestTotals_WithRoomAverages(t *testing.T) {
	base := Totals{Basic: yen(30000), Overtime: yen(1000)}
	base.derive()

	t.Run("no meetings keeps per day at zero", func(t *testing.T) {
		got := base.WithRoomAverages(31)
		assert.True(t, got.RoomPerDay.IsZero())
		assert.True(t, got.RoomPerArea.Equal(yen(134)))
	})

	t.Run("per day floors", func(t *testing.T) {
		withCounts := base.WithCounts([]DayCount{{Details: 2, Guests: 10}, {Details: 1, Guests: 4}})
		got := withCounts.WithRoomAverages(31)
		assert.Equal(t, int64(3), got.Details)
		assert.Equal(t, int64(14), got.Guests)
		assert.True(t, got.RoomPerDay.Equal(yen(1000)))
	})
}

func TestRoomBreakdown(t *testing.T) {
	roomID := id.New()
	rows := RoomBreakdown([]RoomUsage{{
		RoomID:         roomID,
		RoomName:       "会議室A",
		BasicPrice:     yen(3000),
		ExtensionPrice: yen(1000),
		Count:          3,
		Hours:          decimal.RequireFromString("10"),
		BasicAmount:    yen(18000),
		OvertimeAmount: yen(2000),
	}})

	require.Len(t, rows, 2)
	assert.Equal(t, "会議室A R2時間迄", rows[0].Title)
	assert.True(t, rows[0].TotalAmount.Equal(yen(20000)))
	assert.True(t, rows[0].SalesUnitAmount.Equal(yen(6666)))
	assert.True(t, rows[0].AverageHours.Equal(decimal.RequireFromString("3.33")))
	assert.Equal(t, catalog.TypeOvertimeFee, rows[1].Type)
	assert.True(t, rows[1].SubtotalAmount.Equal(yen(2000)))
	assert.Zero(t, rows[1].Count)
}

type fakeRepo struct {
	booking   []Line
	unsettled []Line
	lobby     []Line
	revisions []Line
	invoices  map[id.ID][]Line
	counts    []DayCount
	sales     []ServiceSale
	windows   []Window
}

func (f *fakeRepo) BookingLines(_ context.Context, w Window) ([]Line, error) {
	f.windows = append(f.windows, w)
	return inWindow(f.booking, w), nil
}

func (f *fakeRepo) UnsettledLines(_ context.Context, w Window) ([]Line, error) {
	return inWindow(f.unsettled, w), nil
}

func (f *fakeRepo) LobbyLines(_ context.Context, w Window) ([]Line, error) {
	return inWindow(f.lobby, w), nil
}

func (f *fakeRepo) RevisionLines(_ context.Context, w Window) ([]Line, error) {
	return inWindow(f.revisions, w), nil
}

func (f *fakeRepo) InvoiceLines(_ context.Context, ids []id.ID) ([]Line, error) {
	var out []Line
	for _, v := range ids {
		out = append(out, f.invoices[v]...)
	}
	return out, nil
}

func (f *fakeRepo) DetailCounts(_ context.Context, w Window) ([]DayCount, error) {
	var out []DayCount
	for _, c := range f.counts {
		if !c.Day.Before(w.FirstDay()) && c.Day.Before(w.EndDay()) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) RoomUsage(context.Context, Window, bool) ([]RoomUsage, error) {
	return nil, nil
}

func (f *fakeRepo) ServiceSales(_ context.Context, w Window, _ []catalog.ServiceType) ([]ServiceSale, error) {
	f.windows = append(f.windows, w)
	return f.sales, nil
}

func inWindow(lines []Line, w Window) []Line {
	var out []Line
	for _, l := range lines {
		if !l.SalesDate.Before(w.FirstDay()) && l.SalesDate.Before(w.EndDay()) {
			out = append(out, l)
		}
	}
	return out
}

func newReportFixture() (*Service, *fakeRepo) {
	repo := &fakeRepo{invoices: map[id.ID][]Line{}}
	svc := NewService(repo, time.FixedZone("JST", 9*3600))
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestService_MonthlyReport(t *testing.T) {
	svc, repo := newReportFixture()
	may3 := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	may20 := time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)

	original := invoiceSpec{id: id.New(), detail: detailID(), day: may3, tax: 800, cash: 8800,
		items: map[catalog.ServiceType]int64{catalog.TypeBasicFee: 8000}}
	revised := invoiceSpec{id: id.New(), past: &original.id, day: may20, tax: 600, cash: 6600,
		items: map[catalog.ServiceType]int64{catalog.TypeBasicFee: 6000}}
	lobby := invoiceSpec{id: id.New(), day: may20, tax: 40, cash: 440,
		items: map[catalog.ServiceType]int64{catalog.TypeDrinks: 400}}

	repo.booking = original.lines()
	repo.revisions = revised.lines()
	repo.invoices[original.id] = original.lines()
	repo.lobby = lobby.lines()
	repo.counts = []DayCount{{Day: may3, Details: 1, Guests: 8}}

	r, err := svc.MonthlyReport(context.Background(), 2026, time.May)
	require.NoError(t, err)

	assert.True(t, r.All.Sales.Equal(yen(9240)), "all %s", r.All.Sales)
	assert.True(t, r.Past.Sales.Equal(yen(-2200)), "past %s", r.Past.Sales)
	assert.True(t, r.Period.Sales.Equal(yen(7040)), "period %s", r.Period.Sales)
	assert.Equal(t, int64(1), r.Period.Details)
	assert.True(t, r.All.RoomPerDay.Equal(yen(258)))
	require.NotEmpty(t, repo.windows)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), repo.windows[0].FirstDay())
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), repo.windows[0].EndDay())
}

func TestService_DaysOfMonth(t *testing.T) {
	svc, repo := newReportFixture()
	feb2 := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	feb9 := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)

	original := invoiceSpec{id: id.New(), detail: detailID(), day: feb2, tax: 300, cash: 3300,
		items: map[catalog.ServiceType]int64{catalog.TypeBasicFee: 3000}}
	revised := invoiceSpec{id: id.New(), past: &original.id, day: feb9, tax: 200, cash: 2200,
		items: map[catalog.ServiceType]int64{catalog.TypeBasicFee: 2000}}
	repo.booking = original.lines()
	repo.revisions = revised.lines()
	repo.invoices[original.id] = original.lines()

	r, err := svc.DaysOfMonth(context.Background(), 2026, time.February)
	require.NoError(t, err)

	require.Len(t, r.Days, 28)
	assert.True(t, r.Days[1].Totals.Sales.Equal(yen(3300)))
	assert.True(t, r.Days[8].Totals.Sales.Equal(yen(-1100)), "correction lands on the revision day")
	assert.True(t, r.Days[0].Totals.Sales.IsZero())
	assert.True(t, r.Total.Sales.Equal(yen(2200)))
}

func TestService_InvoiceAcrossDays(t *testing.T) {
	svc, repo := newReportFixture()
	feb2 := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	feb3 := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)

	// one invoice paid on Feb 3 covering a detail on each day
	invoiceID := id.New()
	figures := InvoiceFigures{TotalTaxAmount: yen(1000), CashPaymentAmount: yen(11000)}
	line := func(day time.Time) Line {
		detail := id.New()
		return Line{
			ItemID: id.New(), InvoiceID: &invoiceID, BookingDetailID: &detail,
			Type: catalog.TypeBasicFee, SubtotalWithoutTaxAmount: yen(5000),
			SalesDate: day, PaymentDate: &feb3,
			InvoiceFigures: figures,
			DetailFigures:  DetailFigures{DetailTaxRate: yen(10)},
		}
	}
	repo.booking = []Line{line(feb2), line(feb3)}
	ctx := context.Background()

	month, err := svc.MonthlyReport(ctx, 2026, time.February)
	require.NoError(t, err)
	assert.True(t, month.Period.Sales.Equal(yen(11000)), "month sales %s", month.Period.Sales)
	assert.True(t, month.Period.Cash.Equal(yen(11000)), "month cash %s", month.Period.Cash)

	days, err := svc.DaysOfMonth(ctx, 2026, time.February)
	require.NoError(t, err)
	assert.True(t, days.Total.Sales.Equal(month.Period.Sales), "days sales %s", days.Total.Sales)
	assert.True(t, days.Total.Cash.Equal(month.Period.Cash), "days cash %s", days.Total.Cash)
	assert.True(t, days.Total.Tax.Equal(yen(1000)))
	assert.True(t, days.Days[1].Totals.Sales.Equal(yen(5500)))
	assert.True(t, days.Days[1].Totals.Cash.IsZero())
	assert.True(t, days.Days[2].Totals.Sales.Equal(yen(5500)))
	assert.True(t, days.Days[2].Totals.Cash.Equal(yen(11000)))

	t.Run("day report counts payments on the payment day only", func(t *testing.T) {
		first, err := svc.DayReport(ctx, time.Date(2026, 2, 2, 12, 0, 0, 0, svc.loc))
		require.NoError(t, err)
		assert.True(t, first.All.Sales.Equal(yen(5500)))
		assert.True(t, first.All.Payment.IsZero())

		second, err := svc.DayReport(ctx, time.Date(2026, 2, 3, 12, 0, 0, 0, svc.loc))
		require.NoError(t, err)
		assert.True(t, second.All.Sales.Equal(yen(5500)))
		assert.True(t, second.All.Payment.Equal(yen(11000)))
	})
}

func TestService_YearReport(t *testing.T) {
	svc, repo := newReportFixture()
	lobby := invoiceSpec{id: id.New(), day: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), tax: 40, cash: 440,
		items: map[catalog.ServiceType]int64{catalog.TypeDrinks: 400}}
	repo.lobby = lobby.lines()

	r, err := svc.YearReport(context.Background(), 2026)
	require.NoError(t, err)

	require.Len(t, r.Months, 12)
	assert.True(t, r.Months[2].Totals.Sales.Equal(yen(440)))
	assert.True(t, r.Months[3].Totals.Sales.IsZero())
	assert.True(t, r.Total.Sales.Equal(yen(440)))
	assert.Len(t, repo.windows, 12)
}

func TestService_RejectsBadMonth(t *testing.T) {
	svc, _ := newReportFixture()
	_, err := svc.MonthlyReport(context.Background(), 2026, 13)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
}
