package revenue

import (
	"github.com/shopspring/decimal"

	"venuedesk/internal/core/id"
	"venuedesk/internal/core/types"
	"venuedesk/internal/domain/catalog"
)

// Totals is one column of a revenue report. The base amounts are summed
// from lines; the derived amounts are recomputed by every constructor and
// by Add and Sub.
type Totals struct {
	Details int64 `json:"details"`
	Guests  int64 `json:"guests"`

	Basic    decimal.Decimal `json:"basic"`
	Overtime decimal.Decimal `json:"overtime"`
	Food     decimal.Decimal `json:"food"`
	BoxLunch decimal.Decimal `json:"boxLunch"`
	Drinks   decimal.Decimal `json:"drinks"`
	Device   decimal.Decimal `json:"device"`
	Cancel   decimal.Decimal `json:"cancel"`
	Delivery decimal.Decimal `json:"delivery"`
	Copy     decimal.Decimal `json:"copy"`
	Bringing decimal.Decimal `json:"bringing"`
	Prepaid  decimal.Decimal `json:"prepaid"`

	Service  decimal.Decimal `json:"service"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Cash     decimal.Decimal `json:"cash"`
	Card     decimal.Decimal `json:"card"`
	Credit   decimal.Decimal `json:"credit"`
	Deposit  decimal.Decimal `json:"deposit"`

	Room          decimal.Decimal `json:"room"`
	SubtotalSales decimal.Decimal `json:"subtotalSales"`
	Misc          decimal.Decimal `json:"misc"`
	Net           decimal.Decimal `json:"net"`
	Sales         decimal.Decimal `json:"sales"`
	Payment       decimal.Decimal `json:"payment"`

	RoomPerDay  decimal.Decimal `json:"roomPerDay"`
	RoomPerArea decimal.Decimal `json:"roomPerArea"`
}

func (t *Totals) derive() {
	t.Room = t.Basic.Add(t.Overtime)
	t.SubtotalSales = types.Sum(t.Basic, t.Overtime, t.Food, t.BoxLunch, t.Drinks, t.Cancel, t.Device, t.Service)
	t.Misc = types.Sum(t.Delivery, t.Copy, t.Bringing, t.Prepaid)
	t.Net = t.SubtotalSales.Add(t.Misc).Sub(t.Discount)
	t.Sales = t.Net.Add(t.Tax)
	t.Payment = types.Sum(t.Cash, t.Card, t.Credit, t.Deposit)
}

func (t *Totals) byType(typ catalog.ServiceType) *decimal.Decimal {
	switch typ {
	case catalog.TypeBasicFee:
		return &t.Basic
	case catalog.TypeOvertimeFee:
		return &t.Overtime
	case catalog.TypeFood:
		return &t.Food
	case catalog.TypeBoxLunch:
		return &t.BoxLunch
	case catalog.TypeDrinks:
		return &t.Drinks
	case catalog.TypeDeviceFee, catalog.TypeDevice:
		return &t.Device
	case catalog.TypeCancelFee:
		return &t.Cancel
	case catalog.TypeDeliveryFee:
		return &t.Delivery
	case catalog.TypeCopyFee:
		return &t.Copy
	case catalog.TypeBringingFee:
		return &t.Bringing
	case catalog.TypePrepaidFee:
		return &t.Prepaid
	}
	return nil
}

func (t Totals) combine(o Totals, sign int64) Totals {
	s := decimal.NewFromInt(sign)
	f := func(a, b decimal.Decimal) decimal.Decimal { return a.Add(b.Mul(s)) }
	r := Totals{
		Details:  t.Details + sign*o.Details,
		Guests:   t.Guests + sign*o.Guests,
		Basic:    f(t.Basic, o.Basic),
		Overtime: f(t.Overtime, o.Overtime),
		Food:     f(t.Food, o.Food),
		BoxLunch: f(t.BoxLunch, o.BoxLunch),
		Drinks:   f(t.Drinks, o.Drinks),
		Device:   f(t.Device, o.Device),
		Cancel:   f(t.Cancel, o.Cancel),
		Delivery: f(t.Delivery, o.Delivery),
		Copy:     f(t.Copy, o.Copy),
		Bringing: f(t.Bringing, o.Bringing),
		Prepaid:  f(t.Prepaid, o.Prepaid),
		Service:  f(t.Service, o.Service),
		Discount: f(t.Discount, o.Discount),
		Tax:      f(t.Tax, o.Tax),
		Cash:     f(t.Cash, o.Cash),
		Card:     f(t.Card, o.Card),
		Credit:   f(t.Credit, o.Credit),
		Deposit:  f(t.Deposit, o.Deposit),

		RoomPerDay:  f(t.RoomPerDay, o.RoomPerDay),
		RoomPerArea: f(t.RoomPerArea, o.RoomPerArea),
	}
	r.derive()
	return r
}

// Add returns t + o.
func (t Totals) Add(o Totals) Totals { return t.combine(o, 1) }

// Sub returns t - o.
func (t Totals) Sub(o Totals) Totals { return t.combine(o, -1) }

func sumItems(t *Totals, lines []Line) {
	seen := make(map[id.ID]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ItemID]; ok {
			continue
		}
		seen[l.ItemID] = struct{}{}
		if dst := t.byType(l.Type); dst != nil {
			*dst = dst.Add(l.SubtotalWithoutTaxAmount)
		}
	}
}

// Totalize sums lobby and revision lines. Item amounts count once per
// item and invoice amounts once per invoice.
func Totalize(lines []Line) Totals {
	var t Totals
	sumItems(&t, lines)

	invoices := make(map[id.ID]struct{})
	for _, l := range lines {
		if l.InvoiceID == nil {
			continue
		}
		if _, ok := invoices[*l.InvoiceID]; ok {
			continue
		}
		invoices[*l.InvoiceID] = struct{}{}
		f := l.InvoiceFigures
		t.Service = t.Service.Add(f.ServiceWithoutTaxAmount)
		t.Discount = t.Discount.Add(f.DiscountWithoutTaxAmount)
		t.Tax = t.Tax.Add(f.TotalTaxAmount)
		t.Cash = t.Cash.Add(f.CashPaymentAmount)
		t.Card = t.Card.Add(f.CardPaymentAmount)
		t.Credit = t.Credit.Add(f.CreditPaymentAmount)
		t.Deposit = t.Deposit.Add(f.DepositAmount)
	}
	t.derive()
	return t
}

// sumDetails adds, once per booking detail, the detail's service and
// discount and the tax floored over its items plus service minus
// discount. It returns the deposits of the details seen.
func sumDetails(t *Totals, lines []Line) decimal.Decimal {
	type detailSum struct {
		items   decimal.Decimal
		figures DetailFigures
	}
	var order []id.ID
	details := make(map[id.ID]*detailSum)
	seen := make(map[id.ID]struct{}, len(lines))
	for _, l := range lines {
		if l.BookingDetailID == nil {
			continue
		}
		if _, ok := seen[l.ItemID]; ok {
			continue
		}
		seen[l.ItemID] = struct{}{}
		d, ok := details[*l.BookingDetailID]
		if !ok {
			d = &detailSum{figures: l.DetailFigures}
			details[*l.BookingDetailID] = d
			order = append(order, *l.BookingDetailID)
		}
		d.items = d.items.Add(l.SubtotalWithoutTaxAmount)
	}
	deposit := decimal.Zero
	for _, detailID := range order {
		d := details[detailID]
		base := d.items.Add(d.figures.DetailServiceAmount).Sub(d.figures.DetailDiscountAmount)
		t.Service = t.Service.Add(d.figures.DetailServiceAmount)
		t.Discount = t.Discount.Add(d.figures.DetailDiscountAmount)
		t.Tax = t.Tax.Add(types.RateOf(base, d.figures.DetailTaxRate))
		deposit = deposit.Add(d.figures.DetailDepositAmount)
	}
	return deposit
}

// Settle sums invoiced lines of paid details. Service, discount and tax
// are taken per detail, so an invoice whose details fall on different
// days splits cleanly between them. Payments are left to Payments.
func Settle(lines []Line) Totals {
	var t Totals
	sumItems(&t, lines)
	sumDetails(&t, lines)
	t.derive()
	return t
}

// Payments sums the payment columns once per invoice.
func Payments(lines []Line) Totals {
	var t Totals
	invoices := make(map[id.ID]struct{})
	for _, l := range lines {
		if l.InvoiceID == nil {
			continue
		}
		if _, ok := invoices[*l.InvoiceID]; ok {
			continue
		}
		invoices[*l.InvoiceID] = struct{}{}
		t.Cash = t.Cash.Add(l.CashPaymentAmount)
		t.Card = t.Card.Add(l.CardPaymentAmount)
		t.Credit = t.Credit.Add(l.CreditPaymentAmount)
		t.Deposit = t.Deposit.Add(l.DepositAmount)
	}
	t.derive()
	return t
}

// PaidIn keeps the lines whose invoice is paid inside w.
func PaidIn(lines []Line, w Window) []Line {
	var out []Line
	for _, l := range lines {
		if l.PaymentDate != nil && w.HasDay(*l.PaymentDate) {
			out = append(out, l)
		}
	}
	return out
}

// Estimate sums lines of details that are not paid yet. Nothing has been
// received, so the payment columns stay zero apart from the deposit.
func Estimate(lines []Line) Totals {
	var t Totals
	sumItems(&t, lines)
	t.Deposit = sumDetails(&t, lines)
	t.derive()
	return t
}

// PastInvoiceIDs returns the predecessors of the revision lines.
func PastInvoiceIDs(revisions []Line) []id.ID {
	var ids []id.ID
	for _, l := range revisions {
		if l.PastInvoiceID != nil {
			ids = append(ids, *l.PastInvoiceID)
		}
	}
	return id.Unique(ids)
}

// Past nets revisions issued in a period against the invoices they
// replaced. Adding the result to the period's sales leaves each corrected
// sale counted at its latest value; a chain of revisions telescopes
// because every revision nets only against its own predecessor.
func Past(revisions, predecessors []Line) Totals {
	return Totalize(revisions).Sub(Totalize(predecessors))
}

// WithCounts sets the meeting and guest counts from per-day counts.
func (t Totals) WithCounts(counts []DayCount) Totals {
	t.Details, t.Guests = 0, 0
	for _, c := range counts {
		t.Details += c.Details
		t.Guests += c.Guests
	}
	return t
}

// WithRoomAverages sets room revenue per day of the month and per tsubo.
// The per-day figure stays zero in a month without meetings.
func (t Totals) WithRoomAverages(days int) Totals {
	t.RoomPerArea = t.Room.Div(FloorArea).Floor()
	t.RoomPerDay = decimal.Zero
	if t.Details > 0 && days > 0 {
		t.RoomPerDay = t.Room.Div(decimal.NewFromInt(int64(days))).Floor()
	}
	return t
}
