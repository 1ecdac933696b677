package shared

import "time"

// StartOfDay truncates t to midnight in t's own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day as seen from loc
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DayBefore reports whether a's calendar day is strictly earlier than b's, both seen from loc
func DayBefore(a, b time.Time, loc *time.Location) bool {
	return StartOfDay(a.In(loc)).Before(StartOfDay(b.In(loc)))
}

// StartOfMonth returns the first instant of t's month in t's location
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
