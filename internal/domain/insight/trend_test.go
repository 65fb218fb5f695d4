package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

func TestWeekly_Improving(t *testing.T) {
	a := NewAnalyzer()
	// Wednesday 2025-06-18; this week started Sunday 2025-06-15,
	// last week ran 2025-06-08 .. 2025-06-14.
	now := timeutil.Date(2025, 6, 18)

	entries := []tracking.SmokeLogEntry{
		logEntry(2025, 6, 9, 2),
		logEntry(2025, 6, 11, 2), // last week mean 2.0
		logEntry(2025, 6, 16, 1),
		logEntry(2025, 6, 17, 1), // this week mean 1.0
	}

	cmp := a.Weekly(entries, now)
	assert.Equal(t, TrendImproving, cmp.Trend)
	assert.Equal(t, 50, cmp.ReductionPercent)
	assert.Equal(t, 1.0, cmp.ThisWeekAvg)
	assert.Equal(t, 2.0, cmp.LastWeekAvg)
}

func TestWeekly_Increasing(t *testing.T) {
	a := NewAnalyzer()
	now := timeutil.Date(2025, 6, 18)

	entries := []tracking.SmokeLogEntry{
		logEntry(2025, 6, 10, 1),
		logEntry(2025, 6, 16, 5),
	}

	cmp := a.Weekly(entries, now)
	assert.Equal(t, TrendIncreasing, cmp.Trend)
	assert.Equal(t, 0, cmp.ReductionPercent)
}

func TestWeekly_Steady(t *testing.T) {
	a := NewAnalyzer()
	now := timeutil.Date(2025, 6, 18)

	// No logs at all.
	cmp := a.Weekly(nil, now)
	assert.Equal(t, TrendSteady, cmp.Trend)
	assert.Equal(t, 0.0, cmp.ThisWeekAvg)
	assert.Equal(t, 0.0, cmp.LastWeekAvg)

	// Last week smoke-free: no improvement signal is possible.
	cmp = a.Weekly([]tracking.SmokeLogEntry{
		logEntry(2025, 6, 10, 0),
		logEntry(2025, 6, 16, 3),
	}, now)
	assert.Equal(t, TrendSteady, cmp.Trend)

	// Entries older than last week are ignored entirely.
	cmp = a.Weekly([]tracking.SmokeLogEntry{logEntry(2025, 5, 1, 9)}, now)
	assert.Equal(t, TrendSteady, cmp.Trend)
}

func TestMonthly_Reduction(t *testing.T) {
	a := NewAnalyzer()

	entries := []tracking.SmokeLogEntry{
		logEntry(2025, 5, 2, 4),
		logEntry(2025, 5, 10, 4), // May mean 4.0
		logEntry(2025, 6, 1, 3),
		logEntry(2025, 6, 2, 3), // June mean 3.0
	}

	cmp := a.Monthly(entries)
	assert.Equal(t, 25.0, cmp.ReductionRate)
	assert.Equal(t, "You're 25.0% lower than last month!", cmp.Status)
}

func TestMonthly_PerfectWhenBothSmokeFree(t *testing.T) {
	a := NewAnalyzer()

	entries := []tracking.SmokeLogEntry{
		logEntry(2025, 5, 2, 0),
		logEntry(2025, 6, 1, 0),
	}

	cmp := a.Monthly(entries)
	assert.Equal(t, 100.0, cmp.ReductionRate)
	assert.Equal(t, "Perfect reduction!", cmp.Status)
}

func TestMonthly_WorseMonthFloorsAtZero(t *testing.T) {
	a := NewAnalyzer()

	entries := []tracking.SmokeLogEntry{
		logEntry(2025, 5, 2, 2),
		logEntry(2025, 6, 1, 5),
	}

	cmp := a.Monthly(entries)
	assert.Equal(t, 0.0, cmp.ReductionRate)
	assert.Equal(t, "Staying steady.", cmp.Status)
}

func TestMonthly_NotEnoughMonths(t *testing.T) {
	a := NewAnalyzer()

	cmp := a.Monthly([]tracking.SmokeLogEntry{logEntry(2025, 6, 1, 5)})
	assert.Equal(t, 0.0, cmp.ReductionRate)
	assert.Contains(t, cmp.Status, "Keep logging")
}

func TestCurrentMonthWeekly(t *testing.T) {
	a := NewAnalyzer()
	// June 2025 starts on a Sunday and spans five calendar weeks.
	now := timeutil.Date(2025, 6, 18)

	entries := []tracking.SmokeLogEntry{
		logEntry(2025, 6, 2, 3),  // week 1
		logEntry(2025, 6, 7, 2),  // week 1
		logEntry(2025, 6, 9, 4),  // week 2
		logEntry(2025, 6, 18, 1), // week 3
		logEntry(2025, 5, 30, 9), // previous month, ignored
	}

	series := a.CurrentMonthWeekly(entries, now)
	assert.Equal(t, []int{5, 4, 1, 0, 0}, series.Data)
	assert.Equal(t, []string{"Week 1", "Week 2", "Week 3", "Week 4", "Week 5"}, series.Labels)
}
