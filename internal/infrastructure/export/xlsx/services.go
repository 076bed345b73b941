package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"venuedesk/internal/domain/revenue"
)

// ServiceSalesName is the file base name of the service sales report.
const ServiceSalesName = "商品別売上報告書"

// ServiceSales renders the per service and per service type sheets.
func ServiceSales(r *revenue.ServiceSalesReport) (*Workbook, error) {
	f := excelize.NewFile()
	target := "対象日: " + r.Day.Format("2006/01/02")
	issued := "発行日: " + r.IssuedAt.Format("2006/01/02")

	s := newSheet(f, "商品別売上")
	headers := []string{"商品コード", "商品名", "単価", "数量", "金額", "精算番号", "累計数量", "累計金額", target, issued}
	for col, h := range headers {
		s.set(col+1, 1, h)
		s.width(col+1, 15)
	}
	s.width(1, 38)
	s.width(6, 40)
	for i, x := range r.Services {
		line := i + 2
		invoices := make([]string, len(x.InvoiceIDs))
		for j, invoiceID := range x.InvoiceIDs {
			invoices[j] = invoiceID.String()
		}
		for col, v := range []any{
			x.ServiceID.String(), x.Name, x.UnitAmount, x.Count, x.Amount,
			strings.Join(invoices, ", "), x.AccumulatedCount, x.AccumulatedAmount,
		} {
			s.set(col+1, line, v)
		}
	}
	if len(r.Services) > 0 {
		s.style(1, 2, 8, len(r.Services)+1, amountStyle(""))
	}
	s.style(1, 1, len(headers), 1, headerStyle(fillHeader))
	if s.err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("service sheet: %w", s.err)
	}

	types := newSheet(f, "商品項目別売上")
	for col, h := range []string{"商品項目", "数量", "金額", "累計数量", "累計金額", target, issued} {
		types.set(col+1, 1, h)
		types.width(col+1, 15)
	}
	write := func(line int, x revenue.TypeSale) {
		for col, v := range []any{x.Label, x.Count, x.Amount, x.AccumulatedCount, x.AccumulatedAmount} {
			types.set(col+1, line, v)
		}
	}
	for i, x := range r.Types {
		write(i+2, x)
	}
	last := len(r.Types) + 2
	write(last, r.Total)
	if len(r.Types) > 0 {
		types.style(1, 2, 5, last-1, amountStyle(""))
	}
	types.style(1, last, 5, last, amountStyle(fillTotal))
	types.style(1, 1, 7, 1, headerStyle(fillHeader))
	if types.err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("service type sheet: %w", types.err)
	}
	return &Workbook{FileName: fileName(ServiceSalesName, r.IssuedAt), file: f}, nil
}
