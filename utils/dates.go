package utils

import "time"

// DateOf returns UTC midnight of the calendar date t falls on in its own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from `from` to `to`.
// The result is negative when `to` is before `from`.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)).Hours() / 24)
}

// IsBeforeDate reports whether a falls on an earlier calendar date than b.
func IsBeforeDate(a, b time.Time) bool {
	return DateOf(a).Before(DateOf(b))
}

// Date builds a calendar date without a clock part.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
