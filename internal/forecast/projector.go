// Package forecast projects detected patterns into dated forecast
// records over a horizon.
package forecast

import (
	"sort"
	"time"

	"github.com/ebbflow-cash/ebbflow/internal/common"
	"github.com/ebbflow-cash/ebbflow/internal/model"
)

// ProjectDates generates the future calendar dates a detected pattern
// implies. Every returned date is strictly after lastKnown and inside
// [horizonStart, horizonEnd]; output is ascending with no duplicates.
// The step size comes from the pattern itself (FrequencyDays and
// anchors), never recomputed here, so detection and projection cannot
// disagree.
func ProjectDates(timing model.TimingPattern, lastKnown, horizonStart, horizonEnd time.Time) ([]time.Time, error) {
	if horizonEnd.Before(horizonStart) {
		return nil, common.ErrInvalidHorizon
	}

	lastKnown = day(lastKnown)
	horizonStart = day(horizonStart)
	horizonEnd = day(horizonEnd)

	var dates []time.Time
	switch timing.Type {
	case model.PatternDaily:
		dates = projectDaily(timing, horizonStart, horizonEnd)
	case model.PatternWeekly:
		dates = projectInterval(timing, lastKnown, horizonStart, horizonEnd, 7)
	case model.PatternBiWeekly:
		if timing.MonthAnchored {
			dates = projectMonthAnchored(lastKnown, horizonStart, horizonEnd)
		} else {
			dates = projectInterval(timing, lastKnown, horizonStart, horizonEnd, 14)
		}
	case model.PatternMonthly:
		dates = projectMonthly(timing, lastKnown, horizonStart, horizonEnd)
	case model.PatternQuarterly:
		dates = projectQuarterly(lastKnown, horizonEnd)
	case model.PatternIrregular:
		dates = projectIrregular(timing, lastKnown, horizonEnd)
	}

	return normalize(dates, lastKnown, horizonStart, horizonEnd), nil
}

func projectDaily(timing model.TimingPattern, horizonStart, horizonEnd time.Time) []time.Time {
	var dates []time.Time
	for d := horizonStart; !d.After(horizonEnd); d = d.AddDate(0, 0, 1) {
		if timing.WeekdaysOnly {
			if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
				continue
			}
		}
		dates = append(dates, d)
	}
	return dates
}

// projectInterval handles weekly and bi-weekly fixed-interval patterns:
// find the next anchor weekday on or after the interval start, never
// re-emitting the start date itself, then step by the interval.
func projectInterval(timing model.TimingPattern, lastKnown, horizonStart, horizonEnd time.Time, stepDays int) []time.Time {
	anchor := lastKnown.Weekday()
	if timing.AnchorWeekday != nil {
		anchor = *timing.AnchorWeekday
	}

	start := horizonStart
	if lastKnown.After(start) {
		start = lastKnown
	}

	next := nextWeekday(start, anchor)
	if next.Equal(start) {
		next = next.AddDate(0, 0, stepDays)
	}

	var dates []time.Time
	for d := next; !d.After(horizonEnd); d = d.AddDate(0, 0, stepDays) {
		dates = append(dates, d)
	}
	return dates
}

// projectMonthAnchored emits the 15th and the 30th (clamped to the last
// valid day) of every month in range: the payroll-style bi-weekly mode.
func projectMonthAnchored(lastKnown, horizonStart, horizonEnd time.Time) []time.Time {
	var dates []time.Time
	for m := firstOfMonth(horizonStart); !m.After(horizonEnd); m = addMonths(m, 1) {
		dates = append(dates, dayOfMonth(m, 15), dayOfMonth(m, 30))
	}
	return dates
}

func projectMonthly(timing model.TimingPattern, lastKnown, horizonStart, horizonEnd time.Time) []time.Time {
	target := lastKnown.Day()
	if timing.AnchorDay != nil {
		target = *timing.AnchorDay
	}

	var dates []time.Time
	for m := firstOfMonth(lastKnown); !m.After(horizonEnd); m = addMonths(m, 1) {
		dates = append(dates, dayOfMonth(m, target))
	}
	return dates
}

// projectQuarterly steps three calendar months at a time from the
// anchor month, always landing on the first of the target month.
func projectQuarterly(lastKnown, horizonEnd time.Time) []time.Time {
	var dates []time.Time
	for m := addMonths(lastKnown, 3); !m.After(horizonEnd); m = addMonths(m, 3) {
		dates = append(dates, m)
	}
	return dates
}

// projectIrregular is the fallback: repeat the observed average gap
// from the last known date. Lowest-trust mode.
func projectIrregular(timing model.TimingPattern, lastKnown, horizonEnd time.Time) []time.Time {
	step := timing.FrequencyDays
	if step < 1 {
		step = 30
	}

	var dates []time.Time
	for d := lastKnown.AddDate(0, 0, step); !d.After(horizonEnd); d = d.AddDate(0, 0, step) {
		dates = append(dates, d)
	}
	return dates
}

// normalize enforces the projector's output contract: in-range, strictly
// after lastKnown, ascending, deduplicated.
func normalize(dates []time.Time, lastKnown, horizonStart, horizonEnd time.Time) []time.Time {
	filtered := dates[:0]
	for _, d := range dates {
		if !d.After(lastKnown) || d.Before(horizonStart) || d.After(horizonEnd) {
			continue
		}
		filtered = append(filtered, d)
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Before(filtered[j]) })

	deduped := filtered[:0]
	for _, d := range filtered {
		if len(deduped) > 0 && deduped[len(deduped)-1].Equal(d) {
			continue
		}
		deduped = append(deduped, d)
	}
	return deduped
}
