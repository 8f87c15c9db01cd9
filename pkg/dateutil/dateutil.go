package dateutil

import (
	"fmt"
	"time"
)

// Layout is the ISO calendar date format used for keys, storage and the API
const Layout = "2006-01-02"

// Date returns midnight UTC of the given calendar day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns the calendar day of t as midnight UTC.
// The wall-clock date of t is kept, its location is dropped.
func StartOfDay(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// AddDays moves a date by n calendar days
func AddDays(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, n)
}

// StartOfWeek returns the Monday of the week for the given date
func StartOfWeek(date time.Time) time.Time {
	return StartOfDay(date.AddDate(0, 0, -WeekdayIndex(date)))
}

// WeekdayIndex returns the Monday-based weekday index (Monday=0 .. Sunday=6)
func WeekdayIndex(date time.Time) int {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	return weekday - 1
}

// DaysInMonth returns the number of days in the given month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsWeekday returns true if the date is Monday-Friday
func IsWeekday(date time.Time) bool {
	weekday := date.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSameDay returns true if two dates are on the same day
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// Format formats a date as YYYY-MM-DD
func Format(date time.Time) string {
	return date.Format(Layout)
}

// ParseDate parses a date string in one of the accepted formats.
// The result is normalized to midnight UTC.
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		Layout,
		"02.01.2006",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05-0700",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return StartOfDay(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", dateStr)
}

// MustParse parses an ISO date and panics on failure. Callers must have validated the input.
func MustParse(dateStr string) time.Time {
	t, err := time.Parse(Layout, dateStr)
	if err != nil {
		panic(fmt.Sprintf("dateutil: invalid static date %q: %v", dateStr, err))
	}
	return t
}

// Range returns every day between a and b inclusive, in ascending order.
// The bounds may be given in either order.
func Range(a, b time.Time) []time.Time {
	lower, upper := StartOfDay(a), StartOfDay(b)
	if upper.Before(lower) {
		lower, upper = upper, lower
	}

	dates := make([]time.Time, 0, int(upper.Sub(lower).Hours()/24)+1)
	for d := lower; !d.After(upper); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Today returns today's date
func Today() time.Time {
	return StartOfDay(time.Now())
}
