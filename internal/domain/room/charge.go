package room

import (
	"time"

	"venuedesk/internal/core/apperror"
)

// CheckNewCharge validates a tariff change starting on start against the
// existing charges of the room and returns the open-ended charge the new
// one supersedes, if any. today and start are calendar days (types.Day).
func CheckNewCharge(existing []*Charge, start, today time.Time) (*Charge, error) {
	if start.Before(today) {
		return nil, apperror.NewValidation(apperror.MsgTariffNotChanged).WithDetail("startDate", start)
	}

	var previous *Charge
	for _, c := range existing {
		if clashes(c, start, today) {
			return nil, apperror.NewValidation(apperror.MsgTariffNotChanged).WithDetail("clashesWith", c.ID.String())
		}
		if c.EndDate == nil && c.StartDate.Before(start) {
			if previous == nil || c.StartDate.After(previous.StartDate) {
				previous = c
			}
		}
	}
	return previous, nil
}

func clashes(c *Charge, start, today time.Time) bool {
	if c.StartDate.Equal(start) {
		return true
	}
	// Anything starting later would be covered by the new open-ended charge.
	if c.StartDate.After(start) {
		return true
	}
	if c.EndDate == nil {
		return false
	}
	if c.EndDate.Equal(start) && !c.EndDate.Equal(today) {
		return true
	}
	return c.StartDate.Before(start) && c.EndDate.After(start)
}

// CloseBefore ends c on the day before start.
func (c *Charge) CloseBefore(start time.Time) {
	end := start.AddDate(0, 0, -1)
	c.EndDate = &end
}

// ActiveCharge returns the charge applying on day, or nil.
func ActiveCharge(charges []*Charge, day time.Time) *Charge {
	var active *Charge
	for _, c := range charges {
		if c.ActiveOn(day) && (active == nil || c.StartDate.After(active.StartDate)) {
			active = c
		}
	}
	return active
}
