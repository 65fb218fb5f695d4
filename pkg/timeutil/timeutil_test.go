package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfWeek_SundayAnchored(t *testing.T) {
	// 2025-06-18 is a Wednesday; its week starts Sunday 2025-06-15.
	wed := Date(2025, 6, 18)
	assert.Equal(t, Date(2025, 6, 15), StartOfWeek(wed))

	// A Sunday is its own week start.
	sun := Date(2025, 6, 15)
	assert.Equal(t, sun, StartOfWeek(sun))

	// Saturday belongs to the week that started six days earlier.
	sat := Date(2025, 6, 21)
	assert.Equal(t, Date(2025, 6, 15), StartOfWeek(sat))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(Date(2025, 3, 1), Date(2025, 3, 1)))
	assert.Equal(t, 5, DaysBetween(Date(2025, 3, 1), Date(2025, 3, 6)))
	assert.Equal(t, -5, DaysBetween(Date(2025, 3, 6), Date(2025, 3, 1)))
	// Across a DST-free UTC month boundary.
	assert.Equal(t, 1, DaysBetween(Date(2025, 2, 28), Date(2025, 3, 1)))
}

func TestWeekIndexInMonth(t *testing.T) {
	// June 2025 begins on a Sunday, so week indexes align with day/7.
	june := Date(2025, 6, 1)
	assert.Equal(t, 0, WeekIndexInMonth(june, Date(2025, 6, 1)))
	assert.Equal(t, 0, WeekIndexInMonth(june, Date(2025, 6, 7)))
	assert.Equal(t, 1, WeekIndexInMonth(june, Date(2025, 6, 8)))
	assert.Equal(t, 4, WeekIndexInMonth(june, Date(2025, 6, 30)))
	assert.Equal(t, 5, WeeksInMonth(june))

	// May 2025 begins on a Thursday; May 3 (Saturday) is still week 0,
	// May 4 (Sunday) opens week 1.
	may := Date(2025, 5, 1)
	assert.Equal(t, 0, WeekIndexInMonth(may, Date(2025, 5, 3)))
	assert.Equal(t, 1, WeekIndexInMonth(may, Date(2025, 5, 4)))
	assert.Equal(t, 5, WeeksInMonth(may))
}

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2025-06-18")
	require.NoError(t, err)
	assert.Equal(t, Date(2025, 6, 18), day)
	assert.Equal(t, time.UTC, day.Location())

	_, err = ParseDate("18/06/2025")
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2025-06-18T21:15:00Z")
	require.NoError(t, err)
	assert.Equal(t, 21, ts.Hour())

	// Without zone suffix.
	ts, err = ParseTimestamp("2025-06-18T07:30:00")
	require.NoError(t, err)
	assert.Equal(t, 7, ts.Hour())

	// Bare date fallback.
	ts, err = ParseTimestamp("2025-06-18")
	require.NoError(t, err)
	assert.Equal(t, Date(2025, 6, 18), ts)

	_, err = ParseTimestamp("not a time")
	assert.Error(t, err)
}

func TestClockLabel(t *testing.T) {
	assert.Equal(t, "12AM", ClockLabel(0))
	assert.Equal(t, "7AM", ClockLabel(7))
	assert.Equal(t, "12PM", ClockLabel(12))
	assert.Equal(t, "6PM", ClockLabel(18))
	assert.Equal(t, "11PM", ClockLabel(23))
}

func TestFormatHelpers(t *testing.T) {
	day := Date(2025, 6, 18)
	assert.Equal(t, "2025-06-18", FormatDateStr(day))
	assert.Equal(t, "Jun 18, 2025", FormatHuman(day))
	assert.Equal(t, "Wednesday", WeekdayName(day))
}
