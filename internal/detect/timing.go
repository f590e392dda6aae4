package detect

import (
	"math"
	"time"

	"github.com/ebbflow-cash/ebbflow/internal/model"
)

// DetectTiming classifies the recurrence cadence of a sorted series of
// transaction dates. Fewer than two distinct dates yields an irregular,
// zero-confidence result rather than an error.
func DetectTiming(dates []time.Time, cfg Config) model.TimingPattern {
	days := uniqueDays(dates)
	if len(days) < 2 {
		return model.TimingPattern{Type: model.PatternIrregular}
	}

	gaps := make([]float64, 0, len(days)-1)
	for i := 1; i < len(days); i++ {
		gaps = append(gaps, days[i].Sub(days[i-1]).Hours()/24)
	}

	// Recent gaps are weighted more heavily than old ones so that a
	// cadence change shows up quickly.
	avgGap := weightedMean(gaps)

	consistency := 0.0
	if avgGap > 0 {
		consistency = clamp01(1 - stdDev(gaps)/avgGap)
	}
	confidence := consistency * sampleFactor(len(days))

	pattern := model.TimingPattern{
		Type:          classifyGap(avgGap),
		FrequencyDays: roundGap(avgGap),
		Consistency:   consistency,
		Confidence:    confidence,
	}

	// The 15th/month-end trigger can promote an otherwise unclassified
	// series to bi-weekly: payroll-style schedules have uneven gap
	// lengths but very regular days of month.
	if pattern.Type == model.PatternIrregular && monthAnchorShare(days) >= cfg.MonthAnchorShare {
		pattern.Type = model.PatternBiWeekly
		pattern.MonthAnchored = true
	}

	switch pattern.Type {
	case model.PatternDaily:
		pattern.WeekdaysOnly = weekdayShare(days) >= cfg.WeekdayShare
	case model.PatternWeekly:
		pattern.AnchorWeekday = modalWeekday(days, cfg.AnchorShare)
	case model.PatternBiWeekly:
		if !pattern.MonthAnchored {
			pattern.AnchorWeekday = modalWeekday(days, cfg.AnchorShare)
			if monthAnchorShare(days) >= cfg.MonthAnchorShare {
				pattern.MonthAnchored = true
				pattern.AnchorWeekday = nil
			}
		}
	case model.PatternMonthly:
		pattern.AnchorDay = modalDayOfMonth(days, cfg.AnchorShare)
	case model.PatternQuarterly, model.PatternIrregular:
	}

	return pattern
}

// classifyGap maps an average gap to a pattern type. The bands here are
// the single source of truth for cadence classification; the projector
// consumes FrequencyDays derived from the same average so the two can
// never disagree.
func classifyGap(avgGap float64) model.PatternType {
	switch {
	case avgGap <= 2:
		return model.PatternDaily
	case avgGap >= 6 && avgGap <= 8:
		return model.PatternWeekly
	case avgGap >= 13 && avgGap <= 15:
		return model.PatternBiWeekly
	case avgGap >= 28 && avgGap <= 32:
		return model.PatternMonthly
	case avgGap >= 85 && avgGap <= 95:
		return model.PatternQuarterly
	default:
		return model.PatternIrregular
	}
}

func roundGap(avgGap float64) int {
	n := int(math.Round(avgGap))
	if n < 1 && avgGap > 0 {
		return 1
	}
	return n
}

// uniqueDays normalizes timestamps to UTC midnight and drops duplicates.
// Input must already be sorted ascending.
func uniqueDays(dates []time.Time) []time.Time {
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		if len(days) > 0 && days[len(days)-1].Equal(day) {
			continue
		}
		days = append(days, day)
	}
	return days
}

func modalWeekday(days []time.Time, minShare float64) *time.Weekday {
	if len(days) < 3 {
		return nil
	}
	counts := make(map[time.Weekday]int)
	for _, d := range days {
		counts[d.Weekday()]++
	}
	best, bestCount := time.Monday, 0
	for wd, c := range counts {
		if c > bestCount {
			best, bestCount = wd, c
		}
	}
	if float64(bestCount)/float64(len(days)) < minShare {
		return nil
	}
	return &best
}

func modalDayOfMonth(days []time.Time, minShare float64) *int {
	if len(days) < 3 {
		return nil
	}
	counts := make(map[int]int)
	for _, d := range days {
		counts[d.Day()]++
	}
	best, bestCount := 0, 0
	for day, c := range counts {
		if c > bestCount {
			best, bestCount = day, c
		}
	}
	if float64(bestCount)/float64(len(days)) < minShare {
		return nil
	}
	return &best
}

func weekdayShare(days []time.Time) float64 {
	if len(days) == 0 {
		return 0
	}
	weekdays := 0
	for _, d := range days {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			weekdays++
		}
	}
	return float64(weekdays) / float64(len(days))
}

// monthAnchorShare is the share of dates on the 15th or at month-end
// (day 28 or later), the signature of a twice-monthly payment schedule.
func monthAnchorShare(days []time.Time) float64 {
	if len(days) == 0 {
		return 0
	}
	hits := 0
	for _, d := range days {
		if d.Day() == 15 || d.Day() >= 28 {
			hits++
		}
	}
	return float64(hits) / float64(len(days))
}
