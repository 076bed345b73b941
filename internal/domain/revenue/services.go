package revenue

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/id"
	"venuedesk/internal/domain/catalog"
)

// SoldTypes are the service types listed on the service sales report, in
// report order.
var SoldTypes = []catalog.ServiceType{
	catalog.TypeFood,
	catalog.TypeBoxLunch,
	catalog.TypeDrinks,
	catalog.TypePrepaidFee,
	catalog.TypeDeviceFee,
}

// ServiceSale is what one service sold on the report day and since the
// first sale. Only items of completed invoices count: booking items once
// their detail is paid, lobby items on the payment date.
type ServiceSale struct {
	ServiceID         id.ID               `db:"service_id" json:"serviceId"`
	Type              catalog.ServiceType `db:"type" json:"type"`
	Name              string              `db:"name" json:"name"`
	UnitAmount        decimal.Decimal     `db:"unit_price" json:"unitAmount"`
	Count             decimal.Decimal     `db:"count" json:"totalCount"`
	Amount            decimal.Decimal     `db:"amount" json:"totalAmount"`
	InvoiceIDs        []id.ID             `db:"invoice_ids" json:"invoiceIds"`
	AccumulatedCount  decimal.Decimal     `db:"accumulated_count" json:"accumulatedTotalCount"`
	AccumulatedAmount decimal.Decimal     `db:"accumulated_amount" json:"accumulatedTotalAmount"`
}

// TypeSale sums the services of one type. Type 0 is the grand total.
type TypeSale struct {
	Type              catalog.ServiceType `json:"type"`
	Label             string              `json:"label"`
	Count             decimal.Decimal     `json:"totalCount"`
	Amount            decimal.Decimal     `json:"totalAmount"`
	AccumulatedCount  decimal.Decimal     `json:"accumulatedTotalCount"`
	AccumulatedAmount decimal.Decimal     `json:"accumulatedTotalAmount"`
}

func (t *TypeSale) add(s ServiceSale) {
	t.Count = t.Count.Add(s.Count)
	t.Amount = t.Amount.Add(s.Amount)
	t.AccumulatedCount = t.AccumulatedCount.Add(s.AccumulatedCount)
	t.AccumulatedAmount = t.AccumulatedAmount.Add(s.AccumulatedAmount)
}

// ServiceSalesReport lists sales per service and per service type.
type ServiceSalesReport struct {
	Day      time.Time     `json:"day"`
	Services []ServiceSale `json:"services"`
	Types    []TypeSale    `json:"types"`
	Total    TypeSale      `json:"total"`
	IssuedAt time.Time     `json:"issuedAt"`
}

// SummarizeTypes sums sales per type of SoldTypes, in that order, and
// returns the grand total.
func SummarizeTypes(sales []ServiceSale) ([]TypeSale, TypeSale) {
	out := make([]TypeSale, len(SoldTypes))
	index := make(map[catalog.ServiceType]int, len(SoldTypes))
	for i, typ := range SoldTypes {
		out[i] = TypeSale{Type: typ, Label: catalog.TypeLabel(typ)}
		index[typ] = i
	}
	total := TypeSale{Label: "合計"}
	for _, s := range sales {
		i, ok := index[s.Type]
		if !ok {
			continue
		}
		out[i].add(s)
		total.add(s)
	}
	return out, total
}

// ServiceSales builds the service sales report of day.
func (s *Service) ServiceSales(ctx context.Context, day time.Time) (*ServiceSalesReport, error) {
	w := DayWindow(day, s.loc)
	sales, err := s.repo.ServiceSales(ctx, w, SoldTypes)
	if err != nil {
		return nil, fmt.Errorf("service sales: %w", err)
	}
	r := &ServiceSalesReport{Day: w.FirstDay(), Services: sales, IssuedAt: s.now()}
	r.Types, r.Total = SummarizeTypes(sales)
	return r, nil
}
