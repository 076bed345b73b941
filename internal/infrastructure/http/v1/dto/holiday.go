package dto

import (
	"venuedesk/internal/domain/holiday"
)

// HolidayItem is one closed day.
type HolidayItem struct {
	Date string `json:"date" binding:"required"`
	Name string `json:"name"`
}

// RegisterHolidaysRequest registers several closed days at once.
type RegisterHolidaysRequest struct {
	Holidays []HolidayItem `json:"holidays"`
}

// ToHolidays maps the request to domain holidays.
func (r RegisterHolidaysRequest) ToHolidays() ([]*holiday.Holiday, error) {
	out := make([]*holiday.Holiday, 0, len(r.Holidays))
	for _, item := range r.Holidays {
		day, err := parseDay(item.Date)
		if err != nil {
			return nil, err
		}
		out = append(out, &holiday.Holiday{Date: day, Name: item.Name})
	}
	return out, nil
}
