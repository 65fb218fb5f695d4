package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/respira-app/respira-server/internal/domain/tracking"
)

func urgeAt(hour int) tracking.UrgeEvent {
	return tracking.UrgeEvent{
		UserID:    "user@example.com",
		Timestamp: time.Date(2025, time.June, 10, hour, 30, 0, 0, time.UTC),
	}
}

func TestPeakUrgeHour(t *testing.T) {
	t.Run("mode of hours", func(t *testing.T) {
		urges := []tracking.UrgeEvent{urgeAt(9), urgeAt(21), urgeAt(21), urgeAt(14)}
		assert.Equal(t, 21, PeakUrgeHour(urges))
	})

	t.Run("tie picks earliest hour", func(t *testing.T) {
		urges := []tracking.UrgeEvent{urgeAt(21), urgeAt(9), urgeAt(9), urgeAt(21)}
		assert.Equal(t, 9, PeakUrgeHour(urges))
	})

	t.Run("no data", func(t *testing.T) {
		assert.Equal(t, -1, PeakUrgeHour(nil))
	})
}

func TestFormatRiskTime(t *testing.T) {
	assert.Equal(t, "Evening (9PM)", FormatRiskTime(21))
	assert.Equal(t, "Afternoon (2PM)", FormatRiskTime(14))
	assert.Equal(t, "Morning (7AM)", FormatRiskTime(7))
	assert.Equal(t, "Morning (12AM)", FormatRiskTime(0))
	assert.Equal(t, "Afternoon (12PM)", FormatRiskTime(12))
	assert.Equal(t, UnknownRiskTime, FormatRiskTime(-1))
}

func TestPeakSmokingDayOfMonth(t *testing.T) {
	t.Run("highest summed count wins", func(t *testing.T) {
		entries := []tracking.SmokeLogEntry{
			logEntry(2025, time.May, 3, 2),
			logEntry(2025, time.June, 3, 4),
			logEntry(2025, time.June, 15, 5),
		}
		// Day 3 sums to 6 across months, beating day 15's 5.
		assert.Equal(t, 3, PeakSmokingDayOfMonth(entries))
	})

	t.Run("tie picks earliest day", func(t *testing.T) {
		entries := []tracking.SmokeLogEntry{
			logEntry(2025, time.June, 20, 3),
			logEntry(2025, time.June, 5, 3),
		}
		assert.Equal(t, 5, PeakSmokingDayOfMonth(entries))
	})

	t.Run("smoke-free days ignored", func(t *testing.T) {
		entries := []tracking.SmokeLogEntry{
			logEntry(2025, time.June, 1, 0),
			logEntry(2025, time.June, 2, 0),
		}
		assert.Equal(t, 0, PeakSmokingDayOfMonth(entries))
	})

	t.Run("no data", func(t *testing.T) {
		assert.Equal(t, 0, PeakSmokingDayOfMonth(nil))
	})
}

func TestTopTriggers(t *testing.T) {
	withTriggers := func(day int, triggers ...string) tracking.SmokeLogEntry {
		e := logEntry(2025, time.June, day, 1)
		e.Triggers = triggers
		return e
	}

	t.Run("counts and order", func(t *testing.T) {
		entries := []tracking.SmokeLogEntry{
			withTriggers(1, "stress", "coffee"),
			withTriggers(2, "stress", "boredom"),
			withTriggers(3, "stress", "coffee", "driving"),
		}
		top := TopTriggers(entries, 3)
		assert.Equal(t, []TriggerCount{
			{Label: "stress", Count: 3},
			{Label: "coffee", Count: 2},
			{Label: "boredom", Count: 1},
		}, top)
		assert.Equal(t, "stress (3x)", top[0].Format())
	})

	t.Run("tie keeps first-encountered order", func(t *testing.T) {
		entries := []tracking.SmokeLogEntry{
			withTriggers(1, "boredom", "stress"),
			withTriggers(2, "stress", "boredom"),
		}
		top := TopTriggers(entries, 3)
		assert.Equal(t, "boredom", top[0].Label)
		assert.Equal(t, "stress", top[1].Label)
	})

	t.Run("no triggers", func(t *testing.T) {
		entries := []tracking.SmokeLogEntry{logEntry(2025, time.June, 1, 2)}
		assert.Nil(t, TopTriggers(entries, 3))
	})
}

func TestPatternDetector(t *testing.T) {
	d := NewPatternDetector()

	t.Run("combined detection", func(t *testing.T) {
		entries := []tracking.SmokeLogEntry{logEntry(2025, time.June, 12, 4)}
		entries[0].Triggers = []string{"stress"}
		urges := []tracking.UrgeEvent{urgeAt(21), urgeAt(21)}

		p := d.Detect(entries, urges)
		assert.Equal(t, 21, p.PeakUrgeHour)
		assert.Equal(t, "Evening (9PM)", p.HighRiskTime)
		assert.Equal(t, 12, p.HighRiskDay)
		assert.Len(t, p.TopTriggers, 1)
	})

	t.Run("empty history", func(t *testing.T) {
		p := d.Detect(nil, nil)
		assert.Equal(t, -1, p.PeakUrgeHour)
		assert.Equal(t, UnknownRiskTime, p.HighRiskTime)
		assert.Equal(t, 0, p.HighRiskDay)
		assert.Empty(t, p.TopTriggers)
	})
}
