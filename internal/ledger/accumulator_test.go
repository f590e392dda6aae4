package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAccumulate_ThirteenWeekProjection(t *testing.T) {
	start := d(2025, 6, 2) // Monday
	end := start.AddDate(0, 0, 13*7-1)

	// Each week: 10,000 in, 3,000 out, netting +7,000.
	var events []Event
	for week := 0; week < 13; week++ {
		weekStart := start.AddDate(0, 0, week*7)
		events = append(events,
			Event{Date: weekStart.AddDate(0, 0, 1), Amount: dec("10000")},
			Event{Date: weekStart.AddDate(0, 0, 3), Amount: dec("-3000")},
		)
	}

	points := Accumulate(dec("50000"), events, start, end, Weekly)

	require.Len(t, points, 13)
	assert.True(t, points[0].StartingBalance.Equal(dec("50000")))
	assert.True(t, points[12].EndingBalance.Equal(dec("141000")))

	for i, p := range points {
		assert.True(t, p.Inflows.Equal(dec("10000")), "week %d inflows", i)
		assert.True(t, p.Outflows.Equal(dec("-3000")), "week %d outflows", i)
		if i > 0 {
			// Continuity: each week opens where the previous one closed.
			assert.True(t, p.StartingBalance.Equal(points[i-1].EndingBalance), "week %d", i)
		}
	}
}

func TestAccumulate_EmptyPeriodsCarryBalance(t *testing.T) {
	start := d(2025, 6, 2)
	end := start.AddDate(0, 0, 20)

	events := []Event{
		{Date: start.AddDate(0, 0, 2), Amount: dec("500")},
		// Week two is silent.
		{Date: start.AddDate(0, 0, 15), Amount: dec("-200")},
	}

	points := Accumulate(dec("1000"), events, start, end, Weekly)

	require.Len(t, points, 3)
	assert.True(t, points[0].EndingBalance.Equal(dec("1500")))
	assert.True(t, points[1].StartingBalance.Equal(dec("1500")))
	assert.True(t, points[1].EndingBalance.Equal(dec("1500")))
	assert.True(t, points[2].EndingBalance.Equal(dec("1300")))
}

func TestAccumulate_EventsOutsideRangeIgnored(t *testing.T) {
	start := d(2025, 6, 2)
	end := d(2025, 6, 8)

	events := []Event{
		{Date: d(2025, 5, 1), Amount: dec("9999")},
		{Date: d(2025, 6, 4), Amount: dec("100")},
		{Date: d(2025, 7, 1), Amount: dec("9999")},
	}

	points := Accumulate(dec("0"), events, start, end, Weekly)

	require.Len(t, points, 1)
	assert.True(t, points[0].EndingBalance.Equal(dec("100")))
}

func TestAccumulate_DailyGranularity(t *testing.T) {
	start := d(2025, 6, 2)
	end := d(2025, 6, 4)

	events := []Event{
		{Date: d(2025, 6, 3), Amount: dec("-40.25")},
		{Date: d(2025, 6, 3), Amount: dec("100.75")},
	}

	points := Accumulate(dec("10"), events, start, end, Daily)

	require.Len(t, points, 3)
	assert.True(t, points[0].EndingBalance.Equal(dec("10")))
	assert.True(t, points[1].Inflows.Equal(dec("100.75")))
	assert.True(t, points[1].Outflows.Equal(dec("-40.25")))
	assert.True(t, points[1].EndingBalance.Equal(dec("70.5")))
	assert.True(t, points[2].StartingBalance.Equal(dec("70.5")))
}

func TestAccumulate_UnsortedEventsHandled(t *testing.T) {
	start := d(2025, 6, 2)
	end := d(2025, 6, 8)

	events := []Event{
		{Date: d(2025, 6, 6), Amount: dec("-30")},
		{Date: d(2025, 6, 3), Amount: dec("50")},
	}

	points := Accumulate(dec("0"), events, start, end, Weekly)

	require.Len(t, points, 1)
	assert.True(t, points[0].Inflows.Equal(dec("50")))
	assert.True(t, points[0].Outflows.Equal(dec("-30")))
}

func TestAccumulate_InvertedRange(t *testing.T) {
	assert.Nil(t, Accumulate(dec("100"), nil, d(2025, 6, 8), d(2025, 6, 2), Weekly))
}
