package revenue

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/id"
	"venuedesk/internal/core/types"
	"venuedesk/internal/domain/catalog"
	"venuedesk/pkg/logger"
)

// Service builds revenue reports.
type Service struct {
	repo Repository
	loc  *time.Location
	now  func() time.Time
}

// NewService creates a new revenue service.
func NewService(repo Repository, loc *time.Location) *Service {
	return &Service{repo: repo, loc: loc, now: time.Now}
}

type sales struct {
	booking   []Line
	payments  []Line
	unsettled []Line
	lobby     []Line
	revisions []Line
	previous  []Line
	counts    []DayCount
}

func (s *Service) load(ctx context.Context, w Window, withUnsettled bool) (*sales, error) {
	var (
		out sales
		err error
	)
	if out.booking, err = s.repo.BookingLines(ctx, w); err != nil {
		return nil, fmt.Errorf("booking lines: %w", err)
	}
	out.payments = PaidIn(out.booking, w)
	if withUnsettled {
		if out.unsettled, err = s.repo.UnsettledLines(ctx, w); err != nil {
			return nil, fmt.Errorf("unsettled lines: %w", err)
		}
	}
	if out.lobby, err = s.repo.LobbyLines(ctx, w); err != nil {
		return nil, fmt.Errorf("lobby lines: %w", err)
	}
	if out.revisions, err = s.repo.RevisionLines(ctx, w); err != nil {
		return nil, fmt.Errorf("revision lines: %w", err)
	}
	if ids := PastInvoiceIDs(out.revisions); len(ids) > 0 {
		if out.previous, err = s.repo.InvoiceLines(ctx, ids); err != nil {
			return nil, fmt.Errorf("predecessor lines: %w", err)
		}
	}
	if out.counts, err = s.repo.DetailCounts(ctx, w); err != nil {
		return nil, fmt.Errorf("detail counts: %w", err)
	}
	return &out, nil
}

func (x *sales) all() Totals {
	t := Settle(x.booking).Add(Payments(x.payments)).Add(Totalize(x.lobby))
	if len(x.unsettled) > 0 {
		t = t.Add(Estimate(x.unsettled))
	}
	return t.WithCounts(x.counts)
}

func (x *sales) past() Totals {
	return Past(x.revisions, x.previous)
}

// DayReport builds the daily journal of day.
func (s *Service) DayReport(ctx context.Context, day time.Time) (*PeriodReport, error) {
	w := DayWindow(day, s.loc)
	x, err := s.load(ctx, w, false)
	if err != nil {
		return nil, err
	}
	usage, err := s.repo.RoomUsage(ctx, w, false)
	if err != nil {
		return nil, fmt.Errorf("room usage: %w", err)
	}

	r := &PeriodReport{Window: w, All: x.all(), Past: x.past(), IssuedAt: s.now()}
	r.Period = r.All.Add(r.Past)
	r.Rooms = RoomBreakdown(usage)
	logger.Debug(ctx, "day revenue built", "day", w.FirstDay().Format(types.DateLayout), "sales", r.Period.Sales.String())
	return r, nil
}

// MonthlyReport builds the monthly journal. Details not yet paid are
// included at their estimated amounts.
func (s *Service) MonthlyReport(ctx context.Context, year int, month time.Month) (*PeriodReport, error) {
	if err := validMonth(year, month); err != nil {
		return nil, err
	}
	w := MonthWindow(year, month, s.loc)
	x, err := s.load(ctx, w, true)
	if err != nil {
		return nil, err
	}
	usage, err := s.repo.RoomUsage(ctx, w, true)
	if err != nil {
		return nil, fmt.Errorf("room usage: %w", err)
	}

	r := &PeriodReport{Window: w, Month: true, IssuedAt: s.now()}
	r.All = x.all().WithRoomAverages(types.DaysIn(year, month, s.loc))
	r.Past = x.past()
	r.Period = r.All.Add(r.Past)
	r.Rooms = RoomBreakdown(usage)
	return r, nil
}

// YearReport builds one column per month of year and the year total.
func (s *Service) YearReport(ctx context.Context, year int) (*YearReport, error) {
	if err := validMonth(year, time.January); err != nil {
		return nil, err
	}
	r := &YearReport{Year: year, IssuedAt: s.now()}
	for m := time.January; m <= time.December; m++ {
		x, err := s.load(ctx, MonthWindow(year, m, s.loc), false)
		if err != nil {
			return nil, err
		}
		col := MonthColumn{Month: m, Totals: x.all().Add(x.past())}
		r.Months = append(r.Months, col)
		r.Total = r.Total.Add(col.Totals)
	}
	return r, nil
}

// DaysOfMonth builds one row per calendar day of the month.
func (s *Service) DaysOfMonth(ctx context.Context, year int, month time.Month) (*DaysReport, error) {
	if err := validMonth(year, month); err != nil {
		return nil, err
	}
	x, err := s.load(ctx, MonthWindow(year, month, s.loc), false)
	if err != nil {
		return nil, err
	}

	r := &DaysReport{Year: year, Month: month, IssuedAt: s.now()}
	byDay := x.split()
	for d := 1; d <= types.DaysIn(year, month, s.loc); d++ {
		day := time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
		row := DayRow{Day: day}
		if part, ok := byDay[day]; ok {
			row.Totals = part.all().Add(part.past())
		}
		r.Days = append(r.Days, row)
		r.Total = r.Total.Add(row.Totals)
	}
	return r, nil
}

// split groups the month's lines by sales date. Booking payments follow
// their payment date and predecessors the date of the revision that
// replaced them.
func (x *sales) split() map[time.Time]*sales {
	out := make(map[time.Time]*sales)
	get := func(day time.Time) *sales {
		if p, ok := out[day]; ok {
			return p
		}
		p := &sales{}
		out[day] = p
		return p
	}
	for _, l := range x.booking {
		p := get(l.SalesDate)
		p.booking = append(p.booking, l)
	}
	for _, l := range x.payments {
		p := get(*l.PaymentDate)
		p.payments = append(p.payments, l)
	}
	for _, l := range x.lobby {
		p := get(l.SalesDate)
		p.lobby = append(p.lobby, l)
	}
	replacedOn := make(map[id.ID]time.Time)
	for _, l := range x.revisions {
		p := get(l.SalesDate)
		p.revisions = append(p.revisions, l)
		if l.PastInvoiceID != nil {
			replacedOn[*l.PastInvoiceID] = l.SalesDate
		}
	}
	for _, l := range x.previous {
		if l.InvoiceID == nil {
			continue
		}
		if day, ok := replacedOn[*l.InvoiceID]; ok {
			p := get(day)
			p.previous = append(p.previous, l)
		}
	}
	for _, c := range x.counts {
		p := get(c.Day)
		p.counts = append(p.counts, c)
	}
	return out
}

// RoomBreakdown turns room usage into the basic and overtime rows of
// each room, ordered as given.
func RoomBreakdown(usage []RoomUsage) []RoomSales {
	out := make([]RoomSales, 0, 2*len(usage))
	for _, u := range usage {
		total := u.BasicAmount.Add(u.OvertimeAmount)
		avgHours, unit := decimal.Zero, decimal.Zero
		if u.Count > 0 {
			n := decimal.NewFromInt(u.Count)
			avgHours = u.Hours.Div(n).Round(2)
			unit = total.Div(n).Floor()
		}
		out = append(out,
			RoomSales{
				RoomID:          u.RoomID,
				Type:            catalog.TypeBasicFee,
				Title:           u.RoomName + " R2時間迄",
				UnitAmount:      u.BasicPrice,
				Count:           u.Count,
				UsageHours:      u.Hours,
				AverageHours:    avgHours,
				GuestCount:      u.Guests,
				SubtotalAmount:  u.BasicAmount,
				TotalAmount:     total,
				SalesUnitAmount: unit,
			},
			RoomSales{
				RoomID:         u.RoomID,
				Type:           catalog.TypeOvertimeFee,
				Title:          u.RoomName + " R2時間超",
				UnitAmount:     u.ExtensionPrice,
				SubtotalAmount: u.OvertimeAmount,
			},
		)
	}
	return out
}

func validMonth(year int, month time.Month) error {
	if year < 2000 || year > 2100 {
		return apperror.NewInvalidInput().WithDetail("field", "year")
	}
	if month < time.January || month > time.December {
		return apperror.NewInvalidInput().WithDetail("field", "month")
	}
	return nil
}
