package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venuedesk/internal/domain/revenue"
	"venuedesk/internal/infrastructure/objectstore"
)

type fakeRevenue struct {
	day   time.Time
	year  int
	month time.Month
}

func (f *fakeRevenue) DayReport(_ context.Context, day time.Time) (*revenue.PeriodReport, error) {
	f.day = day
	return &revenue.PeriodReport{
		Window:   revenue.DayWindow(day, jst),
		Period:   revenue.Totals{Details: 2, Basic: decimal.NewFromInt(12000)},
		IssuedAt: time.Date(2026, 4, 2, 9, 0, 0, 0, jst),
	}, nil
}

func (f *fakeRevenue) MonthlyReport(_ context.Context, year int, month time.Month) (*revenue.PeriodReport, error) {
	f.year, f.month = year, month
	return &revenue.PeriodReport{Window: revenue.MonthWindow(year, month, jst), Month: true}, nil
}

func (f *fakeRevenue) YearReport(_ context.Context, year int) (*revenue.YearReport, error) {
	f.year = year
	return &revenue.YearReport{}, nil
}

func (f *fakeRevenue) DaysOfMonth(_ context.Context, year int, month time.Month) (*revenue.DaysReport, error) {
	f.year, f.month = year, month
	return &revenue.DaysReport{}, nil
}

func (f *fakeRevenue) ServiceSales(_ context.Context, day time.Time) (*revenue.ServiceSalesReport, error) {
	f.day = day
	r := &revenue.ServiceSalesReport{Day: day, IssuedAt: time.Date(2026, 4, 2, 9, 0, 0, 0, jst)}
	r.Types, r.Total = revenue.SummarizeTypes(nil)
	return r, nil
}

type recordingArchiver struct {
	keys []string
	err  error
}

func (a *recordingArchiver) Archive(_ context.Context, key string, data []byte, contentType string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, key)
	return "venuedesk-reports/" + key, nil
}

func newReportRouter(svc *fakeRevenue, archiver objectstore.Archiver) http.Handler {
	h := NewReportHandler(newTestBase(), svc, NewWorkbookSender(archiver))
	r := newTestRouter()
	r.GET("/reports/day-revenue", h.DayRevenue)
	r.GET("/reports/monthly-revenue", h.MonthlyRevenue)
	r.GET("/reports/month-revenue", h.MonthRevenue)
	r.GET("/reports/revenue-between-months", h.RevenueBetweenMonths)
	r.GET("/reports/services", h.ServiceSales)
	return r
}

func TestReportHandler_DayRevenue(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		svc := &fakeRevenue{}
		w := doJSON(t, newReportRouter(svc, nil), http.MethodGet, "/reports/day-revenue?date=2026-04-01", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, jst), svc.day)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	})

	t.Run("workbook is streamed and archived", func(t *testing.T) {
		archiver := &recordingArchiver{}
		w := doJSON(t, newReportRouter(&fakeRevenue{}, archiver), http.MethodGet, "/reports/day-revenue?date=2026-04-01&format=xlsx", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, objectstore.XLSXContentType, w.Header().Get("Content-Type"))
		name, err := url.PathUnescape(w.Header().Get(HeaderFileName))
		require.NoError(t, err)
		assert.Equal(t, "売上仕訳日計表_20260402.xlsx", name)
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename*=UTF-8''")
		require.Len(t, archiver.keys, 1)
		assert.Contains(t, archiver.keys[0], "day-revenue_20260401")
		assert.Equal(t, "venuedesk-reports/"+archiver.keys[0], w.Header().Get(HeaderArchiveKey))
		assert.NotZero(t, w.Body.Len())
	})

	t.Run("archive failure does not fail the download", func(t *testing.T) {
		archiver := &recordingArchiver{err: errors.New("bucket unavailable")}
		w := doJSON(t, newReportRouter(&fakeRevenue{}, archiver), http.MethodGet, "/reports/day-revenue?date=2026-04-01&format=xlsx", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get(HeaderArchiveKey))
	})

	t.Run("unknown format", func(t *testing.T) {
		w := doJSON(t, newReportRouter(&fakeRevenue{}, nil), http.MethodGet, "/reports/day-revenue?date=2026-04-01&format=pdf", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReportHandler_MonthParams(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantCode  int
		wantYear  int
		wantMonth time.Month
	}{
		{"monthly", "/reports/monthly-revenue?year=2026&month=4", http.StatusOK, 2026, time.April},
		{"days of month", "/reports/revenue-between-months?year=2026&month=12", http.StatusOK, 2026, time.December},
		{"year", "/reports/month-revenue?year=2025", http.StatusOK, 2025, 0},
		{"month out of range", "/reports/monthly-revenue?year=2026&month=13", http.StatusBadRequest, 0, 0},
		{"year missing", "/reports/month-revenue", http.StatusBadRequest, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeRevenue{}
			w := doJSON(t, newReportRouter(svc, nil), http.MethodGet, tt.target, nil)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantYear, svc.year)
			assert.Equal(t, tt.wantMonth, svc.month)
		})
	}
}

func TestReportHandler_ServiceSales(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		svc := &fakeRevenue{}
		w := doJSON(t, newReportRouter(svc, nil), http.MethodGet, "/reports/services?date=2026-04-01", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, jst), svc.day)
		assert.Contains(t, w.Body.String(), `"label":"合計"`)
	})

	t.Run("workbook", func(t *testing.T) {
		archiver := &recordingArchiver{}
		w := doJSON(t, newReportRouter(&fakeRevenue{}, archiver), http.MethodGet, "/reports/services?date=2026-04-01&format=xlsx", nil)

		require.Equal(t, http.StatusOK, w.Code)
		name, err := url.PathUnescape(w.Header().Get(HeaderFileName))
		require.NoError(t, err)
		assert.Equal(t, "商品別売上報告書_20260402.xlsx", name)
		require.Len(t, archiver.keys, 1)
		assert.Contains(t, archiver.keys[0], "service-sales_20260401")
	})

	t.Run("date is required", func(t *testing.T) {
		w := doJSON(t, newReportRouter(&fakeRevenue{}, nil), http.MethodGet, "/reports/services", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
