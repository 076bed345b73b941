package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"venuedesk/internal/core/entity"
	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/catalog"
	"venuedesk/internal/domain/customer"
	"venuedesk/internal/domain/operations"
	"venuedesk/internal/domain/revenue"
)

var jst = time.FixedZone("JST", 9*3600)

// reopen serializes w and parses it back.
func reopen(t *testing.T, w *Workbook) *excelize.File {
	t.Helper()
	data, err := w.Bytes()
	require.NoError(t, err)
	require.NoError(t, w.Close())
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, name string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, name)
	require.NoError(t, err)
	return v
}

func TestDayRevenue(t *testing.T) {
	issued := time.Date(2026, 4, 2, 10, 0, 0, 0, jst)
	report := &revenue.PeriodReport{
		Window:   revenue.DayWindow(time.Date(2026, 4, 1, 0, 0, 0, 0, jst), jst),
		All:      revenue.Totals{Details: 3, Basic: decimal.NewFromInt(12000)},
		Past:     revenue.Totals{Basic: decimal.NewFromInt(-2000)},
		Period:   revenue.Totals{Details: 3, Basic: decimal.NewFromInt(14000)},
		IssuedAt: issued,
		Rooms: []revenue.RoomSales{
			{Type: catalog.TypeBasicFee, Title: "会議室A R2時間迄", UnitAmount: decimal.NewFromInt(5000), Count: 2, GuestCount: 10, TotalAmount: decimal.NewFromInt(10000)},
			{Type: catalog.TypeOvertimeFee, Title: "会議室A R2時間超", UnitAmount: decimal.NewFromInt(2500), Count: 1, GuestCount: 4},
		},
	}

	w, err := DayRevenue(report)
	require.NoError(t, err)
	assert.Equal(t, "売上仕訳日計表_20260402.xlsx", w.FileName)

	f := reopen(t, w)
	assert.Equal(t, []string{"売上", "内訳"}, f.GetSheetList())

	assert.Equal(t, "分類名", cell(t, f, "売上", "A1"))
	assert.Equal(t, "本日分売上", cell(t, f, "売上", "D1"))
	assert.Equal(t, "対象日: 2026/04/01", cell(t, f, "売上", "E1"))
	assert.Equal(t, "発行日: 2026/04/02", cell(t, f, "売上", "F1"))
	assert.Equal(t, "会議数", cell(t, f, "売上", "A2"))
	assert.Equal(t, "R2時間迄", cell(t, f, "売上", "A4"))
	assert.Equal(t, "<売上計>", cell(t, f, "売上", "A12"))
	assert.Equal(t, "<入金合計>", cell(t, f, "売上", "A26"))

	raw, err := f.GetCellValue("売上", "C4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "-2000", raw)

	assert.Equal(t, "品名", cell(t, f, "内訳", "A1"))
	assert.Equal(t, "利用人数", cell(t, f, "内訳", "E1"))
	assert.Equal(t, "(R2時間迄合計)", cell(t, f, "内訳", "A4"))
	assert.Equal(t, "(ルーム料金合計)", cell(t, f, "内訳", "A6"))
	raw, err = f.GetCellValue("内訳", "C6", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "3", raw)
}

func TestMonthlyRevenue_Labels(t *testing.T) {
	report := &revenue.PeriodReport{
		Window:   revenue.MonthWindow(2026, time.April, jst),
		Month:    true,
		IssuedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, jst),
	}

	w, err := MonthlyRevenue(report)
	require.NoError(t, err)
	assert.Equal(t, "売上仕訳月報_20260501.xlsx", w.FileName)

	f := reopen(t, w)
	assert.Equal(t, "今月分売上", cell(t, f, "売上", "D1"))
	assert.Equal(t, "対象月: 2026/04", cell(t, f, "売上", "E1"))
	assert.Equal(t, "<ルーム計>", cell(t, f, "売上", "A6"))
	assert.Equal(t, "<ルーム料 / 坪>", cell(t, f, "売上", "A24"))
	assert.Equal(t, "<入金合計>", cell(t, f, "売上", "A29"))
	assert.Equal(t, "平均利用時間", cell(t, f, "内訳", "E1"))
}

func TestYearRevenue(t *testing.T) {
	months := make([]revenue.MonthColumn, 12)
	for i := range months {
		months[i] = revenue.MonthColumn{Month: time.Month(i + 1), Totals: revenue.Totals{Guests: int64(i)}}
	}
	w, err := YearRevenue(&revenue.YearReport{
		Year:     2026,
		Months:   months,
		Total:    revenue.Totals{Guests: 66},
		IssuedAt: time.Date(2026, 12, 5, 0, 0, 0, 0, jst),
	})
	require.NoError(t, err)
	assert.Equal(t, "月別売上報告書_20261205.xlsx", w.FileName)

	f := reopen(t, w)
	assert.Equal(t, "2026年分", cell(t, f, YearRevenueName, "A1"))
	assert.Equal(t, "利用者数", cell(t, f, YearRevenueName, "A2"))
	assert.Equal(t, "1月", cell(t, f, YearRevenueName, "B1"))
	assert.Equal(t, "累計", cell(t, f, YearRevenueName, "N1"))
	assert.Equal(t, "66", cell(t, f, YearRevenueName, "N2"))
	assert.Equal(t, "発行日：2026/12/5", cell(t, f, YearRevenueName, "O1"))
	assert.Equal(t, "<入金合計>", cell(t, f, YearRevenueName, "A27"))
}

func TestDaysRevenue_Subtotals(t *testing.T) {
	var days []revenue.DayRow
	for d := 1; d <= 30; d++ {
		days = append(days, revenue.DayRow{
			Day:    time.Date(2026, 4, d, 0, 0, 0, 0, jst),
			Totals: revenue.Totals{Details: 1},
		})
	}
	w, err := DaysRevenue(&revenue.DaysReport{
		Year: 2026, Month: time.April, Days: days,
		Total:    revenue.Totals{Details: 30},
		IssuedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, jst),
	})
	require.NoError(t, err)

	f := reopen(t, w)
	rows, err := f.GetRows(DaysRevenueName)
	require.NoError(t, err)
	header := rows[0]

	assert.Equal(t, "2026年4月分", header[0])
	assert.Equal(t, "1日(水)", header[1])
	assert.Equal(t, "小計", header[11])
	assert.Equal(t, "小計", header[22])
	assert.Equal(t, "小計", header[33])
	assert.Equal(t, "累計", header[34])
	assert.Equal(t, "発行日：2026/5/1", header[35])

	// Row 3 is the meeting count.
	assert.Equal(t, "会議室", rows[2][0])
	assert.Equal(t, "10", rows[2][11])
	assert.Equal(t, "30", rows[2][34])
}

func TestCustomerList(t *testing.T) {
	created := time.Date(2026, 1, 10, 20, 0, 0, 0, time.UTC)
	row := customer.ExportRow{
		Customer: customer.Customer{
			Record:  entity.NewRecord(created),
			Name:    "株式会社テスト",
			Address: "東京都千代田区 ",
		},
		Stats: customer.Stats{BookingsTotal: 4, AmountTotal: decimal.NewFromInt(88000)},
	}

	w, err := CustomerList([]customer.ExportRow{row}, created, jst)
	require.NoError(t, err)
	assert.Equal(t, "顧客一覧表_20260111.xlsx", w.FileName)

	f := reopen(t, w)
	assert.Equal(t, []string{CustomerListName}, f.GetSheetList())
	assert.Equal(t, "顧客番号", cell(t, f, CustomerListName, "A1"))
	assert.Equal(t, "登録日", cell(t, f, CustomerListName, "Q1"))
	assert.Equal(t, row.ID.String(), cell(t, f, CustomerListName, "A2"))
	assert.Equal(t, "東京都千代田区", cell(t, f, CustomerListName, "D2"))
	assert.Equal(t, "", cell(t, f, CustomerListName, "O2"))
	assert.Equal(t, "2026/01/11", cell(t, f, CustomerListName, "Q2"))
}

func TestServiceSales(t *testing.T) {
	first, second := id.New(), id.New()
	sales := []revenue.ServiceSale{
		{
			ServiceID: id.New(), Type: catalog.TypeFood, Name: "幕の内",
			UnitAmount: decimal.NewFromInt(1500), Count: decimal.NewFromInt(4), Amount: decimal.NewFromInt(6000),
			InvoiceIDs:       []id.ID{first, second},
			AccumulatedCount: decimal.NewFromInt(10), AccumulatedAmount: decimal.NewFromInt(15000),
		},
	}
	report := &revenue.ServiceSalesReport{
		Day:      time.Date(2026, 4, 10, 0, 0, 0, 0, jst),
		Services: sales,
		IssuedAt: time.Date(2026, 4, 11, 8, 0, 0, 0, jst),
	}
	report.Types, report.Total = revenue.SummarizeTypes(sales)

	w, err := ServiceSales(report)
	require.NoError(t, err)
	assert.Equal(t, "商品別売上報告書_20260411.xlsx", w.FileName)

	f := reopen(t, w)
	assert.Equal(t, []string{"商品別売上", "商品項目別売上"}, f.GetSheetList())
	assert.Equal(t, "精算番号", cell(t, f, "商品別売上", "F1"))
	assert.Equal(t, "対象日: 2026/04/10", cell(t, f, "商品別売上", "I1"))
	assert.Equal(t, "幕の内", cell(t, f, "商品別売上", "B2"))
	assert.Equal(t, first.String()+", "+second.String(), cell(t, f, "商品別売上", "F2"))

	assert.Equal(t, "料理", cell(t, f, "商品項目別売上", "A2"))
	assert.Equal(t, "機器使用料", cell(t, f, "商品項目別売上", "A6"))
	assert.Equal(t, "合計", cell(t, f, "商品項目別売上", "A7"))
	raw, err := f.GetCellValue("商品項目別売上", "C7", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "6000", raw)
}

func TestDailyBusiness(t *testing.T) {
	report := &operations.DailyBusinessReport{
		Day:      time.Date(2026, 4, 10, 0, 0, 0, 0, jst),
		IssuedAt: time.Date(2026, 4, 10, 8, 15, 0, 0, jst),
		Details: []operations.BusinessDetail{
			{
				RoomName: "会議室A", CustomerName: "株式会社テスト", StartTime: "10:00", EndTime: "13:30",
				LayoutName: "S型", GuestCount: 12,
				UsedServices: []operations.UsedService{{Name: "幕の内", Count: 12}, {Name: "プロジェクター", Count: 1}},
			},
		},
	}

	w, err := DailyBusiness(report)
	require.NoError(t, err)
	assert.Equal(t, "業務連絡書_20260410.xlsx", w.FileName)

	f := reopen(t, w)
	assert.Equal(t, []string{DailyBusinessName}, f.GetSheetList())
	assert.Equal(t, "対象日: 2026/04/10", cell(t, f, DailyBusinessName, "A1"))
	assert.Equal(t, "発行日時: 2026/04/10 08:15", cell(t, f, DailyBusinessName, "F1"))
	assert.Equal(t, "会議室", cell(t, f, DailyBusinessName, "A2"))
	assert.Equal(t, "会議室A", cell(t, f, DailyBusinessName, "A3"))
	assert.Equal(t, "13:30", cell(t, f, DailyBusinessName, "D3"))
	assert.Equal(t, "幕の内×12、プロジェクター×1", cell(t, f, DailyBusinessName, "J3"))
}
