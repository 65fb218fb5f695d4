package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

const testUnitCost = 20

func dayByDate(t *testing.T, days []CalendarDay, date time.Time) CalendarDay {
	t.Helper()
	for _, d := range days {
		if d.Date.Equal(date) {
			return d
		}
	}
	t.Fatalf("day %s not found", timeutil.FormatDateStr(date))
	return CalendarDay{}
}

func TestClassifyYear_Statuses(t *testing.T) {
	c := NewClassifier(testUnitCost)
	today := timeutil.Date(2025, 6, 10)
	firstLog := timeutil.Date(2025, 6, 3)

	entries := []tracking.SmokeLogEntry{
		logEntry(2025, 6, 3, 4), // first log, smoked
		logEntry(2025, 6, 5, 0), // logged smoke-free
		// 4, 6..9 unlogged but within tracked period
	}

	days, stats := c.ClassifyYear(2025, entries, &firstLog, today)
	assert.Len(t, days, 365)

	assert.Equal(t, DayUntracked, dayByDate(t, days, timeutil.Date(2025, 6, 2)).Status)
	assert.Equal(t, DaySmoked, dayByDate(t, days, timeutil.Date(2025, 6, 3)).Status)
	assert.Equal(t, DaySmokeFree, dayByDate(t, days, timeutil.Date(2025, 6, 4)).Status)
	assert.Equal(t, DaySmokeFree, dayByDate(t, days, timeutil.Date(2025, 6, 5)).Status)
	// Today has nothing logged: pending, not smoke-free.
	assert.Equal(t, DayFuture, dayByDate(t, days, timeutil.Date(2025, 6, 10)).Status)
	assert.Equal(t, DayFuture, dayByDate(t, days, timeutil.Date(2025, 6, 11)).Status)
	assert.Equal(t, DayFuture, dayByDate(t, days, timeutil.Date(2025, 12, 31)).Status)

	// Days 4..9 are smoke-free, today excluded.
	assert.Equal(t, 6, stats.SmokeFreeDays)
	assert.Equal(t, 1, stats.DaysSmoked)
	assert.Equal(t, 4, stats.TotalCigarettes)
	assert.Equal(t, testUnitCost, stats.MoneySpent)
	assert.Equal(t, 6, stats.LongestStreak)
}

func TestClassifyYear_TodaySmoked(t *testing.T) {
	c := NewClassifier(testUnitCost)
	today := timeutil.Date(2025, 6, 10)
	firstLog := timeutil.Date(2025, 6, 8)

	entries := []tracking.SmokeLogEntry{
		logEntry(2025, 6, 8, 0),
		logEntry(2025, 6, 10, 2), // today, already smoked
	}

	days, stats := c.ClassifyYear(2025, entries, &firstLog, today)
	assert.Equal(t, DaySmoked, dayByDate(t, days, today).Status)
	assert.Equal(t, 1, stats.DaysSmoked)
	assert.Equal(t, 2, stats.TotalCigarettes)
	// 8th and 9th completed smoke-free.
	assert.Equal(t, 2, stats.SmokeFreeDays)
	// The smoked today terminates the in-year run.
	assert.Equal(t, 2, stats.LongestStreak)
}

func TestClassifyYear_NoLogs(t *testing.T) {
	c := NewClassifier(testUnitCost)
	today := timeutil.Date(2025, 6, 10)

	days, stats := c.ClassifyYear(2025, nil, nil, today)

	// Every past day is untracked, every future day future.
	assert.Equal(t, DayUntracked, dayByDate(t, days, timeutil.Date(2025, 1, 15)).Status)
	assert.Equal(t, DayFuture, dayByDate(t, days, timeutil.Date(2025, 7, 1)).Status)

	assert.Equal(t, 0, stats.SmokeFreeDays)
	assert.Equal(t, 0, stats.DaysSmoked)
	assert.Equal(t, 0, stats.MoneySpent)
	assert.Equal(t, -1, stats.FirstLogMonth)
	assert.Equal(t, 2025, stats.MinYear)
	assert.Equal(t, [12]int{}, stats.MonthlyCounts)
}

func TestClassifyYear_FirstLogMonth(t *testing.T) {
	c := NewClassifier(testUnitCost)
	today := timeutil.Date(2025, 6, 10)

	// First log in-year: 0-indexed month.
	firstLog := timeutil.Date(2025, 3, 14)
	_, stats := c.ClassifyYear(2025, []tracking.SmokeLogEntry{logEntry(2025, 3, 14, 1)}, &firstLog, today)
	assert.Equal(t, 2, stats.FirstLogMonth)
	assert.Equal(t, 2025, stats.MinYear)

	// First log in an earlier year: all months shown.
	earlier := timeutil.Date(2024, 11, 2)
	_, stats = c.ClassifyYear(2025, nil, &earlier, today)
	assert.Equal(t, 0, stats.FirstLogMonth)
	assert.Equal(t, 2024, stats.MinYear)
}

func TestClassifyYear_MonthlyCounts(t *testing.T) {
	c := NewClassifier(testUnitCost)
	today := timeutil.Date(2025, 6, 10)
	firstLog := timeutil.Date(2025, 2, 1)

	entries := []tracking.SmokeLogEntry{
		logEntry(2025, 2, 1, 3),
		logEntry(2025, 2, 20, 2),
		logEntry(2025, 5, 4, 7),
	}

	_, stats := c.ClassifyYear(2025, entries, &firstLog, today)
	assert.Equal(t, 5, stats.MonthlyCounts[1])
	assert.Equal(t, 7, stats.MonthlyCounts[4])
	assert.Equal(t, 0, stats.MonthlyCounts[0])
}

func TestClassifyYear_LeapYear(t *testing.T) {
	c := NewClassifier(testUnitCost)
	days, _ := c.ClassifyYear(2024, nil, nil, timeutil.Date(2025, 1, 1))
	assert.Len(t, days, 366)
}
