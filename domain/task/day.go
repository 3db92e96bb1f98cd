package task

import "time"

// Day truncates t to midnight UTC. All completion-day comparisons in the
// system go through this one function so that the toggle path and the cleanup
// pipeline agree on what "today" means.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
