package utils

import "time"

// MonthWindow is an inclusive created-at range used by the analytics
// queries
type MonthWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// StartOfMonth truncates t to the first instant of its month
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth returns the last instant of t's month
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// ThisMonth returns the window containing now
func ThisMonth(now time.Time) MonthWindow {
	return MonthWindow{Start: StartOfMonth(now), End: EndOfMonth(now)}
}

// LastMonth returns the window one month before the one containing now.
// Derived from the start of the current month so end-of-month anchors
// (e.g. March 31) never skip February.
func LastMonth(now time.Time) MonthWindow {
	start := StartOfMonth(now).AddDate(0, -1, 0)
	return MonthWindow{Start: start, End: EndOfMonth(start)}
}
