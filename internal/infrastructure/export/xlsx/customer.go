package xlsx

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"venuedesk/internal/domain/customer"
)

// CustomerListName is the sheet and file base name of the customer list.
const CustomerListName = "顧客一覧表"

type customerColumn struct {
	title string
	width float64
	value func(customer.ExportRow) any
}

func date(t *time.Time, loc *time.Location) any {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(loc).Format("2006/01/02")
}

func customerColumns(loc *time.Location) []customerColumn {
	return []customerColumn{
		{"顧客番号", 38, func(r customer.ExportRow) any { return r.ID.String() }},
		{"顧客名", 20, func(r customer.ExportRow) any { return r.Name }},
		{"顧客名カナ", 30, func(r customer.ExportRow) any { return r.NameKana }},
		{"住所", 40, func(r customer.ExportRow) any { return strings.TrimSpace(r.Address) }},
		{"顧客担当者氏名", 25, func(r customer.ExportRow) any { return r.ContactName }},
		{"顧客担当者電話番号", 25, func(r customer.ExportRow) any { return r.ContactTel }},
		{"顧客担当者メールアドレス", 30, func(r customer.ExportRow) any { return r.ContactMail }},
		{"電話番号", 15, func(r customer.ExportRow) any { return r.Tel }},
		{"FAX番号", 15, func(r customer.ExportRow) any { return r.Fax }},
		{"利用回数 (本年)", 15, func(r customer.ExportRow) any { return r.BookingsThisYear }},
		{"利用回数 (累計)", 15, func(r customer.ExportRow) any { return r.BookingsTotal }},
		{"利用金額 (前年)", 15, func(r customer.ExportRow) any { return r.AmountLastYear }},
		{"利用金額 (本年)", 15, func(r customer.ExportRow) any { return r.AmountThisYear }},
		{"利用金額 (累計)", 15, func(r customer.ExportRow) any { return r.AmountTotal }},
		{"最終利用日", 15, func(r customer.ExportRow) any { return date(r.LatestUsedAt, loc) }},
		{"変更日", 15, func(r customer.ExportRow) any { return date(&r.UpdatedAt, loc) }},
		{"登録日", 15, func(r customer.ExportRow) any { return date(&r.CreatedAt, loc) }},
	}
}

// CustomerList renders the customer list with dates shown in loc.
func CustomerList(rows []customer.ExportRow, issuedAt time.Time, loc *time.Location) (*Workbook, error) {
	f := excelize.NewFile()
	s := newSheet(f, CustomerListName)
	cols := customerColumns(loc)

	for c, col := range cols {
		s.set(c+1, 1, col.title)
		s.width(c+1, col.width)
		for i, row := range rows {
			s.set(c+1, i+2, col.value(row))
		}
	}
	if len(rows) > 0 {
		s.style(1, 2, len(cols), len(rows)+1, amountStyle(""))
	}
	s.style(1, 1, len(cols), 1, headerStyle(fillList))

	if s.err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("customer sheet: %w", s.err)
	}
	return &Workbook{FileName: fileName(CustomerListName, issuedAt.In(loc)), file: f}, nil
}
