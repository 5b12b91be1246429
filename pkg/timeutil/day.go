package timeutil

import "time"

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// StartOfTomorrow returns midnight of the day after t.
func StartOfTomorrow(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// WithinDays reports whether t falls strictly after now and strictly before
// now plus the given number of days. Used for "closing soon" style windows.
func WithinDays(t, now time.Time, days int) bool {
	return t.After(now) && t.Before(now.AddDate(0, 0, days))
}
