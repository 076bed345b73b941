package xlsx

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"venuedesk/internal/domain/catalog"
	"venuedesk/internal/domain/revenue"
)

// Workbook base names.
const (
	DayRevenueName     = "売上仕訳日計表"
	MonthlyRevenueName = "売上仕訳月報"
	YearRevenueName    = "月別売上報告書"
	DaysRevenueName    = "月間売上報告書"
)

// row is one labelled figure of a revenue sheet. Total rows are shaded.
type row struct {
	label string
	total bool
	value func(revenue.Totals) any
}

func count(f func(revenue.Totals) int64) func(revenue.Totals) any {
	return func(t revenue.Totals) any { return f(t) }
}

func amount(f func(revenue.Totals) decimal.Decimal) func(revenue.Totals) any {
	return func(t revenue.Totals) any { return f(t) }
}

var (
	rowDetails  = row{label: "会議数", value: count(func(t revenue.Totals) int64 { return t.Details })}
	rowGuests   = row{label: "延利用者数", value: count(func(t revenue.Totals) int64 { return t.Guests })}
	rowBasic    = row{label: "R2時間迄", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Basic })}
	rowOvertime = row{label: "R2時間超", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Overtime })}
	rowRoom     = row{label: "<ルーム計>", total: true, value: amount(func(t revenue.Totals) decimal.Decimal { return t.Room })}
	rowFood     = row{label: "料理", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Food })}
	rowBoxLunch = row{label: "弁当", value: amount(func(t revenue.Totals) decimal.Decimal { return t.BoxLunch })}
	rowDrinks   = row{label: "飲物", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Drinks })}
	rowDevice   = row{label: "機器使用料", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Device })}
	rowService  = row{label: "サービス料", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Service })}
	rowCancel   = row{label: "キャンセル", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Cancel })}
	rowSubtotal = row{label: "<売上計>", total: true, value: amount(func(t revenue.Totals) decimal.Decimal { return t.SubtotalSales })}
	rowDelivery = row{label: "通話料", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Delivery })}
	rowCopy     = row{label: "コピー", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Copy })}
	rowBringing = row{label: "持ち込み料", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Bringing })}
	rowPrepaid  = row{label: "立替", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Prepaid })}
	rowMisc     = row{label: "<雑収入計>", total: true, value: amount(func(t revenue.Totals) decimal.Decimal { return t.Misc })}
	rowDiscount = row{label: "値引", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Discount })}
	rowNet      = row{label: "<純売上計>", total: true, value: amount(func(t revenue.Totals) decimal.Decimal { return t.Net })}
	rowTax      = row{label: "消費税", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Tax })}
	rowSales    = row{label: "<売上総合計>", total: true, value: amount(func(t revenue.Totals) decimal.Decimal { return t.Sales })}
	rowPerDay   = row{label: "<ルーム料 / 日>", total: true, value: amount(func(t revenue.Totals) decimal.Decimal { return t.RoomPerDay })}
	rowPerArea  = row{label: "<ルーム料 / 坪>", total: true, value: amount(func(t revenue.Totals) decimal.Decimal { return t.RoomPerArea })}
	rowCash     = row{label: "現金", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Cash })}
	rowCard     = row{label: "カード", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Card })}
	rowCredit   = row{label: "売掛", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Credit })}
	rowDeposit  = row{label: "前受金", value: amount(func(t revenue.Totals) decimal.Decimal { return t.Deposit })}
	rowPayment  = row{label: "<入金合計>", total: true, value: amount(func(t revenue.Totals) decimal.Decimal { return t.Payment })}
)

// relabel returns r shown under another label.
func relabel(r row, label string) row {
	r.label = label
	return r
}

var (
	dayRows = []row{
		rowDetails, rowGuests, rowBasic, rowOvertime,
		rowFood, rowBoxLunch, rowDrinks, rowDevice, rowService, rowCancel, rowSubtotal,
		rowDelivery, rowCopy, rowBringing, rowPrepaid, rowMisc,
		rowDiscount, rowNet, rowTax, rowSales,
		rowCash, rowCard, rowCredit, rowDeposit, rowPayment,
	}

	monthlyRows = []row{
		rowDetails, rowGuests, rowBasic, rowOvertime, rowRoom,
		rowFood, rowBoxLunch, rowDrinks, rowDevice, rowService, rowCancel, rowSubtotal,
		rowDelivery, rowCopy, rowBringing, rowPrepaid, rowMisc,
		rowDiscount, rowNet, rowTax, rowSales, rowPerDay, rowPerArea,
		rowCash, rowCard, rowCredit, rowDeposit, rowPayment,
	}

	// summaryRows are the rows of the year and days-of-month reports.
	summaryRows = []row{
		relabel(rowGuests, "利用者数"),
		relabel(rowDetails, "会議室"),
		rowBasic,
		rowOvertime,
		relabel(rowRoom, "ルーム計"),
		rowFood, rowBoxLunch, rowDrinks, rowDevice, rowService, rowCancel, rowSubtotal,
		relabel(rowBringing, "持込料"), rowPrepaid, rowCopy, rowDelivery, rowMisc,
		rowDiscount,
		relabel(rowNet, "純売上計"),
		rowTax,
		relabel(rowSales, "売上総合計"),
		rowCash, rowCredit, rowCard, rowDeposit, rowPayment,
	}
)

// DayRevenue renders the day journal with its sales and room breakdown sheets.
func DayRevenue(r *revenue.PeriodReport) (*Workbook, error) {
	return periodWorkbook(r, dayRows, "本日分売上", "対象日: "+r.Window.From.Format("2006/01/02"), DayRevenueName)
}

// MonthlyRevenue renders the month journal.
func MonthlyRevenue(r *revenue.PeriodReport) (*Workbook, error) {
	return periodWorkbook(r, monthlyRows, "今月分売上", "対象月: "+r.Window.From.Format("2006/01"), MonthlyRevenueName)
}

func periodWorkbook(r *revenue.PeriodReport, rows []row, periodHeader, target, base string) (*Workbook, error) {
	f := excelize.NewFile()
	issued := "発行日: " + r.IssuedAt.Format("2006/01/02")

	sales := newSheet(f, "売上")
	for col, h := range []string{"分類名", "売上", "過去分修正", periodHeader, target, issued} {
		sales.set(col+1, 1, h)
	}
	for i, rw := range rows {
		line := i + 2
		sales.set(1, line, rw.label)
		sales.set(2, line, rw.value(r.All))
		sales.set(3, line, rw.value(r.Past))
		sales.set(4, line, rw.value(r.Period))
		color := ""
		if rw.total {
			color = fillTotal
		}
		sales.style(2, line, 4, line, amountStyle(color))
	}
	sales.style(1, 1, 6, 1, headerStyle(fillHeader))
	for col, w := range []float64{15, 15, 15, 15, 20, 20} {
		sales.width(col+1, w)
	}
	if sales.err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("sales sheet: %w", sales.err)
	}

	if err := roomSheet(f, r, target, issued); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Workbook{FileName: fileName(base, r.IssuedAt), file: f}, nil
}

// roomSheet writes the per-room breakdown followed by the fee type and
// grand totals.
func roomSheet(f *excelize.File, r *revenue.PeriodReport, target, issued string) error {
	s := newSheet(f, "内訳")
	headers := []string{"品名", "単価", "回数", "時間"}
	if r.Month {
		headers = append(headers, "平均利用時間", "売上金額")
	}
	headers = append(headers, "利用人数", "売上合計", "売上単価", target, issued)
	for col, h := range headers {
		s.set(col+1, 1, h)
		s.width(col+1, 15)
	}
	s.style(1, 1, len(headers), 1, headerStyle(fillHeader))

	write := func(line int, x revenue.RoomSales) {
		values := []any{x.Title, x.UnitAmount, x.Count, x.UsageHours}
		if r.Month {
			values = append(values, x.AverageHours, x.SubtotalAmount)
		}
		values = append(values, x.GuestCount, x.TotalAmount, x.SalesUnitAmount)
		for col, v := range values {
			s.set(col+1, line, v)
		}
	}

	line := 2
	for _, x := range r.Rooms {
		write(line, x)
		line++
	}
	for _, t := range roomTotals(r.Rooms) {
		write(line, t)
		s.style(1, line, len(headers)-2, line, amountStyle(fillTotal))
		line++
	}

	if s.err != nil {
		return fmt.Errorf("room sheet: %w", s.err)
	}
	return nil
}

// roomTotals sums the breakdown per fee type and overall. Fee type rows
// carry no amounts.
func roomTotals(rooms []revenue.RoomSales) []revenue.RoomSales {
	basic := revenue.RoomSales{Title: "(R2時間迄合計)"}
	overtime := revenue.RoomSales{Title: "(R2時間超合計)"}
	all := revenue.RoomSales{Title: "(ルーム料金合計)"}
	for _, x := range rooms {
		target := &overtime
		if x.Type == catalog.TypeBasicFee {
			target = &basic
		}
		for _, t := range []*revenue.RoomSales{target, &all} {
			t.UnitAmount = t.UnitAmount.Add(x.UnitAmount)
			t.Count += x.Count
			t.UsageHours = t.UsageHours.Add(x.UsageHours)
			t.GuestCount += x.GuestCount
		}
		all.SubtotalAmount = all.SubtotalAmount.Add(x.SubtotalAmount)
		all.TotalAmount = all.TotalAmount.Add(x.TotalAmount)
		all.SalesUnitAmount = all.SalesUnitAmount.Add(x.SalesUnitAmount)
	}
	return []revenue.RoomSales{basic, overtime, all}
}

// column is one value column of a summary sheet.
type column struct {
	title  string
	totals revenue.Totals
}

// YearRevenue renders the month-of-year report: one column per month and
// the year total.
func YearRevenue(r *revenue.YearReport) (*Workbook, error) {
	cols := make([]column, 0, len(r.Months)+1)
	for _, m := range r.Months {
		cols = append(cols, column{title: fmt.Sprintf("%d月", int(m.Month)), totals: m.Totals})
	}
	cols = append(cols, column{title: "累計", totals: r.Total})
	return summaryWorkbook(YearRevenueName, fmt.Sprintf("%d年分", r.Year), cols, r.IssuedAt)
}

var weekdaysJP = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// DaysRevenue renders the month-by-day report. Days 1-10, 11-20 and the
// rest are each followed by a subtotal column.
func DaysRevenue(r *revenue.DaysReport) (*Workbook, error) {
	var cols []column
	var sub revenue.Totals
	for i, d := range r.Days {
		cols = append(cols, column{
			title:  fmt.Sprintf("%d日(%s)", d.Day.Day(), weekdaysJP[d.Day.Weekday()]),
			totals: d.Totals,
		})
		sub = sub.Add(d.Totals)
		if i == 9 || i == 19 || i == len(r.Days)-1 {
			cols = append(cols, column{title: "小計", totals: sub})
			sub = revenue.Totals{}
		}
	}
	cols = append(cols, column{title: "累計", totals: r.Total})
	return summaryWorkbook(DaysRevenueName, fmt.Sprintf("%d年%d月分", r.Year, int(r.Month)), cols, r.IssuedAt)
}

func summaryWorkbook(base, title string, cols []column, issuedAt time.Time) (*Workbook, error) {
	f := excelize.NewFile()
	s := newSheet(f, base)

	s.set(1, 1, title)
	for i, rw := range summaryRows {
		s.set(1, i+2, rw.label)
	}
	for c, col := range cols {
		s.set(c+2, 1, col.title)
		for i, rw := range summaryRows {
			s.set(c+2, i+2, rw.value(col.totals))
		}
	}
	last := len(cols) + 2
	s.set(last, 1, "発行日："+issuedAt.Format("2006/1/2"))

	for c := 1; c <= last; c++ {
		s.width(c, 16)
	}
	s.style(1, 2, last-1, len(summaryRows)+1, amountStyle(""))
	for i, rw := range summaryRows {
		if rw.total {
			s.style(1, i+2, last-1, i+2, amountStyle(fillTotal))
		}
	}
	s.style(1, 1, last, 1, headerStyle(fillRevenue))

	if s.err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s sheet: %w", base, s.err)
	}
	return &Workbook{FileName: fileName(base, issuedAt), file: f}, nil
}
