package types

import "time"

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// AtClock returns the given wall-clock time on t's calendar day in loc.
func AtClock(t time.Time, hour, minute int, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, loc)
}

// DaysBetween returns whole calendar days from `from` to `to`, both taken
// at midnight in loc. Negative when `to` is earlier.
func DaysBetween(to, from time.Time, loc *time.Location) int {
	a := StartOfDay(to, loc)
	b := StartOfDay(from, loc)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ua.Sub(ub).Hours() / 24)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return StartOfDay(a, loc).Equal(StartOfDay(b, loc))
}

// MonthRange returns [first day of month, first day of next month) in loc.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return from, from.AddDate(0, 1, 0)
}

// DaysIn returns the number of days of the month in loc.
func DaysIn(year int, month time.Month, loc *time.Location) int {
	from, to := MonthRange(year, month, loc)
	return DaysBetween(to, from, loc)
}

// Day returns t's calendar date in loc as midnight UTC, the form DATE
// columns are scanned into. Use it whenever a value is compared with a
// stored date.
func Day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a yyyy-mm-dd string into the form returned by Day.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
