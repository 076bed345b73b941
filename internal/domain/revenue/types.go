// Package revenue totals settled sales into day, month and year reports.
package revenue

import (
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/id"
	"venuedesk/internal/core/types"
	"venuedesk/internal/domain/catalog"
)

// FloorArea is the rentable floor area in tsubo used for the room
// revenue per area figure.
var FloorArea = decimal.RequireFromString("229.77")

// Window is the reporting period [From, To). Booking sales are scoped by
// detail start time, lobby sales by invoice payment date.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	loc  *time.Location
}

// DayWindow covers one calendar day in loc.
func DayWindow(day time.Time, loc *time.Location) Window {
	from := types.StartOfDay(day, loc)
	return Window{From: from, To: from.AddDate(0, 0, 1), loc: loc}
}

// MonthWindow covers one calendar month in loc.
func MonthWindow(year int, month time.Month, loc *time.Location) Window {
	from, to := types.MonthRange(year, month, loc)
	return Window{From: from, To: to, loc: loc}
}

// FirstDay is the first payment date inside the window.
func (w Window) FirstDay() time.Time { return types.Day(w.From, w.loc) }

// EndDay is the first payment date after the window.
func (w Window) EndDay() time.Time { return types.Day(w.To, w.loc) }

// HasDay reports whether the payment date day falls inside the window.
func (w Window) HasDay(day time.Time) bool {
	return !day.Before(w.FirstDay()) && day.Before(w.EndDay())
}

// Line is one invoice item joined with its invoice and booking detail.
// Invoice figures repeat on every line of the same invoice; detail
// figures repeat on every line of the same detail. SalesDate is the day
// the item is sold on, PaymentDate the day its invoice is paid on.
type Line struct {
	ItemID                   id.ID               `db:"item_id"`
	InvoiceID                *id.ID              `db:"invoice_id"`
	PastInvoiceID            *id.ID              `db:"past_invoice_id"`
	BookingDetailID          *id.ID              `db:"booking_detail_id"`
	Type                     catalog.ServiceType `db:"type"`
	SubtotalWithoutTaxAmount decimal.Decimal     `db:"subtotal_without_tax_amount"`
	SalesDate                time.Time           `db:"sales_date"`
	PaymentDate              *time.Time          `db:"payment_date"`

	InvoiceFigures
	DetailFigures
}

// InvoiceFigures are the invoice-level amounts a report sums once per invoice.
type InvoiceFigures struct {
	ServiceWithoutTaxAmount  decimal.Decimal `db:"service_without_tax_amount"`
	DiscountWithoutTaxAmount decimal.Decimal `db:"discount_without_tax_amount"`
	TotalTaxAmount           decimal.Decimal `db:"total_tax_amount"`
	CashPaymentAmount        decimal.Decimal `db:"cash_payment_amount"`
	CardPaymentAmount        decimal.Decimal `db:"card_payment_amount"`
	CreditPaymentAmount      decimal.Decimal `db:"credit_payment_amount"`
	DepositAmount            decimal.Decimal `db:"deposit_amount"`
}

// DetailFigures are the booking detail amounts used to estimate sales of
// details not yet invoiced.
type DetailFigures struct {
	DetailServiceAmount  decimal.Decimal `db:"detail_service_amount"`
	DetailDiscountAmount decimal.Decimal `db:"detail_discount_amount"`
	DetailDepositAmount  decimal.Decimal `db:"detail_deposit_amount"`
	DetailTaxRate        decimal.Decimal `db:"detail_tax_rate"`
}

// DayCount is the number of held meetings and their guests on one day.
type DayCount struct {
	Day     time.Time `db:"day"`
	Details int64     `db:"details"`
	Guests  int64     `db:"guests"`
}

// RoomUsage is the room fee activity of one room over a window.
type RoomUsage struct {
	RoomID         id.ID           `db:"room_id"`
	RoomName       string          `db:"room_name"`
	BasicPrice     decimal.Decimal `db:"basic_price"`
	ExtensionPrice decimal.Decimal `db:"extension_price"`
	Count          int64           `db:"count"`
	Guests         int64           `db:"guests"`
	Hours          decimal.Decimal `db:"hours"`
	BasicAmount    decimal.Decimal `db:"basic_amount"`
	OvertimeAmount decimal.Decimal `db:"overtime_amount"`
}

// RoomSales is one row of the room breakdown sheet.
type RoomSales struct {
	RoomID          id.ID               `json:"roomId"`
	Type            catalog.ServiceType `json:"type"`
	Title           string              `json:"title"`
	UnitAmount      decimal.Decimal     `json:"unitAmount"`
	Count           int64               `json:"count"`
	UsageHours      decimal.Decimal     `json:"usageHours"`
	AverageHours    decimal.Decimal     `json:"averageHours"`
	GuestCount      int64               `json:"guestCount"`
	SubtotalAmount  decimal.Decimal     `json:"subtotalAmount"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	SalesUnitAmount decimal.Decimal     `json:"salesUnitAmount"`
}

// PeriodReport is the day or month journal: all sales of the period,
// corrections to earlier periods, and their sum.
type PeriodReport struct {
	Window   Window      `json:"window"`
	Month    bool        `json:"month"`
	All      Totals      `json:"all"`
	Past     Totals      `json:"past"`
	Period   Totals      `json:"period"`
	Rooms    []RoomSales `json:"rooms"`
	IssuedAt time.Time   `json:"issuedAt"`
}

// MonthColumn is one month of the year report. Month 0 is the year total.
type MonthColumn struct {
	Month  time.Month `json:"month"`
	Totals Totals     `json:"totals"`
}

// YearReport holds twelve monthly columns and their total.
type YearReport struct {
	Year     int           `json:"year"`
	Months   []MonthColumn `json:"months"`
	Total    Totals        `json:"total"`
	IssuedAt time.Time     `json:"issuedAt"`
}

// DayRow is one day of the month-by-day report.
type DayRow struct {
	Day    time.Time `json:"day"`
	Totals Totals    `json:"totals"`
}

// DaysReport holds one row per day of a month and the month total.
type DaysReport struct {
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	Days     []DayRow   `json:"days"`
	Total    Totals     `json:"total"`
	IssuedAt time.Time  `json:"issuedAt"`
}
