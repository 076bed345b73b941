package invoice

import (
	"github.com/shopspring/decimal"

	"venuedesk/internal/core/id"
	"venuedesk/internal/core/types"
	"venuedesk/internal/domain/catalog"
)

// Amounts are the invoice totals derived from a set of items.
type Amounts struct {
	ServiceFee               decimal.Decimal `json:"serviceFee"`
	DiscountWithoutTaxAmount decimal.Decimal `json:"discountWithoutTaxAmount"`
	SubtotalWithoutTaxAmount decimal.Decimal `json:"subtotalWithoutTaxAmount"`
	TaxableAmount            decimal.Decimal `json:"taxableAmount"`
	TaxAmount                decimal.Decimal `json:"taxAmount"`
	Subtotal                 decimal.Decimal `json:"subtotal"`
}

// Add sums two results.
func (a Amounts) Add(o Amounts) Amounts {
	return Amounts{
		ServiceFee:               a.ServiceFee.Add(o.ServiceFee),
		DiscountWithoutTaxAmount: a.DiscountWithoutTaxAmount.Add(o.DiscountWithoutTaxAmount),
		SubtotalWithoutTaxAmount: a.SubtotalWithoutTaxAmount.Add(o.SubtotalWithoutTaxAmount),
		TaxableAmount:            a.TaxableAmount.Add(o.TaxableAmount),
		TaxAmount:                a.TaxAmount.Add(o.TaxAmount),
		Subtotal:                 a.Subtotal.Add(o.Subtotal),
	}
}

// CalculateAmounts totals items at rate percent. subtotalTypes maps a
// service id to its subtotal type; discounts maps a booking detail id to
// its discount, counted once per detail.
//
// The service fee is floor(serviceFee items / 100 * rate), the discount is
// negative, and non-taxable items are left out of the taxable amount.
func CalculateAmounts(items []*Item, subtotalTypes map[id.ID]catalog.SubtotalType, discounts map[id.ID]decimal.Decimal, rate decimal.Decimal) Amounts {
	serviceBase := decimal.Zero
	for _, it := range items {
		if subtotalTypes[it.ServiceID] == catalog.SubtotalServiceFee {
			serviceBase = serviceBase.Add(it.SubtotalWithoutTaxAmount)
		}
	}
	serviceFee := types.RateOf(serviceBase, rate)

	discount := decimal.Zero
	for _, detailID := range DetailIDs(items) {
		discount = discount.Sub(discounts[detailID])
	}

	withoutTax := serviceFee
	taxable := serviceFee
	for _, it := range items {
		withoutTax = withoutTax.Add(it.SubtotalWithoutTaxAmount)
		if subtotalTypes[it.ServiceID] != catalog.SubtotalNonTaxable {
			taxable = taxable.Add(it.SubtotalWithoutTaxAmount)
		}
	}
	withoutTax = withoutTax.Add(discount)
	taxable = taxable.Add(discount)
	tax := types.RateOf(taxable, rate)

	return Amounts{
		ServiceFee:               serviceFee,
		DiscountWithoutTaxAmount: discount,
		SubtotalWithoutTaxAmount: withoutTax,
		TaxableAmount:            taxable,
		TaxAmount:                tax,
		Subtotal:                 withoutTax.Add(tax),
	}
}
