// Package tariff prices the room fee lines of a booking detail. It performs
// no I/O.
package tariff

import (
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/id"
	"venuedesk/internal/core/types"
	"venuedesk/internal/domain/catalog"
)

var (
	maxBasicHours  = decimal.NewFromInt(2)
	minAllDayHours = decimal.NewFromInt(10)
	one            = decimal.NewFromInt(1)
)

// BusinessHours is the opening time of the facility.
type BusinessHours struct {
	OpenHour, OpenMinute   int
	CloseHour, CloseMinute int
	Location               *time.Location
}

// DefaultBusinessHours is 09:00 to 21:00 in loc.
func DefaultBusinessHours(loc *time.Location) BusinessHours {
	return BusinessHours{OpenHour: 9, CloseHour: 21, Location: loc}
}

func (b BusinessHours) on(t time.Time) (time.Time, time.Time) {
	return types.AtClock(t, b.OpenHour, b.OpenMinute, b.Location),
		types.AtClock(t, b.CloseHour, b.CloseMinute, b.Location)
}

// Rates are the unit prices snapshotted on a booking detail.
type Rates struct {
	Basic     decimal.Decimal
	Extension decimal.Decimal
	AllDay    decimal.Decimal
	Incurred  decimal.Decimal
	TaxRate   decimal.Decimal
}

// Kind names a room fee line.
type Kind string

const (
	KindBasic     Kind = "basic"
	KindExtension Kind = "extension"
	KindAllDay    Kind = "allDay"
	KindIncurred  Kind = "incurred"
)

// Line is one priced room fee.
type Line struct {
	Kind               Kind            `json:"kind"`
	ServiceID          id.ID           `json:"serviceId"`
	Unit               decimal.Decimal `json:"unit"`
	Count              decimal.Decimal `json:"count"`
	Tax                decimal.Decimal `json:"tax"`
	SubtotalWithoutTax decimal.Decimal `json:"subtotalWithoutTax"`
	Subtotal           decimal.Decimal `json:"subtotal"`
}

// Breakdown is the full price of a room occupation.
type Breakdown struct {
	Basic         Line            `json:"basicPrice"`
	Extension     Line            `json:"extensionPrice"`
	AllDay        Line            `json:"allDayPrice"`
	Incurred      Line            `json:"incurredPrice"`
	AllDayBooking bool            `json:"isAllDayBooking"`
	UsageHours    decimal.Decimal `json:"usageHours"`
}

// Lines returns the four lines in a fixed order.
func (b Breakdown) Lines() []Line {
	return []Line{b.Basic, b.Extension, b.AllDay, b.Incurred}
}

// Billable returns the lines with a non-zero subtotal.
func (b Breakdown) Billable() []Line {
	var out []Line
	for _, l := range b.Lines() {
		if !l.Subtotal.IsZero() {
			out = append(out, l)
		}
	}
	return out
}

// RoomSubtotal is the sum of the basic, extension and all-day subtotals,
// the base of the cancellation fee.
func (b Breakdown) RoomSubtotal() decimal.Decimal {
	return types.Sum(b.Basic.Subtotal, b.Extension.Subtotal, b.AllDay.Subtotal)
}

// Calculator prices room occupations.
type Calculator struct {
	hours    BusinessHours
	services catalog.FixedServiceIDs
}

// NewCalculator creates a calculator for the given opening hours.
func NewCalculator(hours BusinessHours, services catalog.FixedServiceIDs) *Calculator {
	return &Calculator{hours: hours, services: services}
}

// IsAllDay reports whether [start, end) is billed as a full day.
func (c *Calculator) IsAllDay(start, end time.Time) bool {
	open, closing := c.hours.on(start)
	usage := types.Hours(end.Sub(start))

	if !start.Before(open) && !end.After(closing) && usage.GreaterThanOrEqual(minAllDayHours) {
		return true
	}
	if !start.After(open) && types.Hours(end.Sub(open)).GreaterThanOrEqual(minAllDayHours) {
		return true
	}
	if !end.Before(closing) && types.Hours(closing.Sub(start)).GreaterThanOrEqual(minAllDayHours) {
		return true
	}
	return false
}

// Calculate prices [start, end) with rates.
func (c *Calculator) Calculate(start, end time.Time, rates Rates) Breakdown {
	open, closing := c.hours.on(start)
	usage := types.Hours(end.Sub(start))
	allDay := c.IsAllDay(start, end)

	basicCount := decimal.Zero
	extensionCount := decimal.Zero
	allDayCount := decimal.Zero
	if allDay {
		allDayCount = one
		if !start.After(open) {
			extensionCount = extensionCount.Add(types.Hours(open.Sub(start)))
		}
		if !end.Before(closing) {
			extensionCount = extensionCount.Add(types.Hours(end.Sub(closing)))
		}
	} else {
		basicCount = decimal.Min(maxBasicHours, usage)
		extensionCount = usage.Sub(basicCount)
	}

	incurredCount := decimal.Zero
	if start.Before(open) {
		incurredCount = one
	}

	return Breakdown{
		Basic:         price(KindBasic, c.services.BasicFee, rates.Basic, basicCount, rates.TaxRate),
		Extension:     price(KindExtension, c.services.ExtensionFee, rates.Extension, extensionCount, rates.TaxRate),
		AllDay:        price(KindAllDay, c.services.AllDayFee, rates.AllDay, allDayCount, rates.TaxRate),
		Incurred:      price(KindIncurred, c.services.IncurredFee, rates.Incurred, incurredCount, rates.TaxRate),
		AllDayBooking: allDay,
		UsageHours:    usage,
	}
}

func price(kind Kind, serviceID id.ID, unit, count, taxRate decimal.Decimal) Line {
	tax := types.Percent(unit, taxRate)
	withoutTax := unit.Mul(count)
	return Line{
		Kind:               kind,
		ServiceID:          serviceID,
		Unit:               unit,
		Count:              count,
		Tax:                tax,
		SubtotalWithoutTax: withoutTax,
		Subtotal:           withoutTax.Add(tax.Mul(count)).Floor(),
	}
}
