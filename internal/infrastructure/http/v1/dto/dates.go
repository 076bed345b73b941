package dto

import (
	"time"

	"venuedesk/internal/core/apperror"
	"venuedesk/internal/core/types"
)

// parseDay parses a yyyy-mm-dd field into a calendar day.
func parseDay(s string) (time.Time, error) {
	day, err := types.ParseDay(s)
	if err != nil {
		return time.Time{}, apperror.NewInvalidInput().WithDetail("date", s)
	}
	return day, nil
}

// ParseDay is parseDay for handlers reading query parameters.
func ParseDay(s string) (time.Time, error) {
	return parseDay(s)
}

// ParseOptionalDay returns nil for an empty string.
func ParseOptionalDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	day, err := parseDay(s)
	if err != nil {
		return nil, err
	}
	return &day, nil
}
