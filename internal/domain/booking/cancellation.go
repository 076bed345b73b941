package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"venuedesk/internal/core/types"
)

var (
	fullRate = decimal.NewFromInt(100)
	halfRate = decimal.NewFromInt(50)
)

const (
	normalFeeDays  = 14
	studentFeeDays = 30
)

// Policy computes cancellation fees in the business time zone.
type Policy struct {
	Location *time.Location
}

// DayLimit returns how many days before the start a detail can be canceled
// for free.
func DayLimit(d *Detail) int {
	switch d.CancelType {
	case CancelNormal:
		return normalFeeDays
	case CancelStudent:
		return studentFeeDays
	default:
		if d.CancellationFeeDays != nil {
			return *d.CancellationFeeDays
		}
		return 0
	}
}

// FeeRate returns the percent of the room fee charged when a detail of
// cancelType is canceled diffDays before its start.
func FeeRate(cancelType CancelType, diffDays int) decimal.Decimal {
	if cancelType == CancelStudent || diffDays <= 0 {
		return fullRate
	}
	return halfRate
}

// DaysBefore returns the calendar days between the cancel day and the
// detail's start day.
func (p Policy) DaysBefore(d *Detail, cancelDay time.Time) int {
	return types.DaysBetween(d.Start, cancelDay, p.Location)
}

// Fee returns the fee for canceling d on cancelDay. roomSubtotal is the sum
// of the basic, extension and all-day subtotals of the detail.
func (p Policy) Fee(d *Detail, cancelDay time.Time, roomSubtotal decimal.Decimal) decimal.Decimal {
	if d.CancelType == CancelNone || d.Status == StatusTemporary || d.Status == StatusWaitingCancel {
		return decimal.Zero
	}
	diff := p.DaysBefore(d, cancelDay)
	if diff <= DayLimit(d) {
		return decimal.Zero
	}
	return types.Percent(roomSubtotal, FeeRate(d.CancelType, diff))
}
