package ledger

import "time"

// WeekStart returns the Monday at UTC midnight of t's week. Every
// component that buckets by week goes through this one function; two
// independent week-boundary calculations that disagree near a boundary
// is exactly the bug this prevents.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) - int(time.Monday) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekNumber returns the zero-based week index of t relative to start,
// both snapped to their Monday anchors.
func WeekNumber(t, start time.Time) int {
	return int(WeekStart(t).Sub(WeekStart(start)).Hours() / 24 / 7)
}
