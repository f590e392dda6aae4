package forecast

import "time"

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(t time.Time) int {
	return firstOfMonth(t).AddDate(0, 1, -1).Day()
}

// dayOfMonth returns the target day within t's month, clamped to the
// month's last valid day (Feb 31 becomes Feb 28/29).
func dayOfMonth(t time.Time, target int) time.Time {
	last := daysInMonth(t)
	if target > last {
		target = last
	}
	return time.Date(t.Year(), t.Month(), target, 0, 0, 0, 0, time.UTC)
}

// addMonths steps whole calendar months from the first of t's month,
// avoiding the drift of fixed day-count stepping.
func addMonths(t time.Time, months int) time.Time {
	return firstOfMonth(t).AddDate(0, months, 0)
}

// nextWeekday returns the first date on or after t that falls on wd.
func nextWeekday(t time.Time, wd time.Weekday) time.Time {
	ahead := (int(wd) - int(t.Weekday()) + 7) % 7
	return t.AddDate(0, 0, ahead)
}
