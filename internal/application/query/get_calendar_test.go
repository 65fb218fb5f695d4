package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respira-app/respira-server/internal/domain/tracking"
)

func TestGetCalendarYear(t *testing.T) {
	repo := &fakeLogRepo{
		smokeLogs: []tracking.RawSmokeLog{
			{UserID: testUser, Date: "2025-06-10", Cigarettes: 2},
			{UserID: testUser, Date: "2025-06-12", Cigarettes: 0},
		},
	}
	h := NewGetCalendarHandler(repo, nil)
	h.now = func() time.Time { return fixedNow }

	result, err := h.Handle(context.Background(), GetCalendarQuery{UserID: testUser, Year: 2025})
	require.NoError(t, err)

	assert.Len(t, result.CalendarDays, 365)

	byDate := make(map[string]CalendarDayDTO, len(result.CalendarDays))
	for _, d := range result.CalendarDays {
		byDate[d.Date] = d
	}

	assert.Equal(t, "smoked", byDate["2025-06-10"].Status)
	assert.Equal(t, 2, byDate["2025-06-10"].Cigarettes)
	assert.Equal(t, "smoke-free", byDate["2025-06-12"].Status)
	// Unlogged day inside the tracked window.
	assert.Equal(t, "smoke-free", byDate["2025-06-15"].Status)
	// Before the first log.
	assert.Equal(t, "untracked", byDate["2025-06-09"].Status)
	assert.Equal(t, "untracked", byDate["2025-01-01"].Status)
	// Today with nothing logged stays pending.
	assert.Equal(t, "future", byDate["2025-06-20"].Status)
	assert.Equal(t, "future", byDate["2025-12-31"].Status)

	assert.Equal(t, 1, result.Stats.DaysSmoked)
	assert.Equal(t, 2, result.Stats.TotalCigarettes)
	// Jun 11 through Jun 19 smoke-free.
	assert.Equal(t, 9, result.Stats.SmokeFreeDays)
	assert.Equal(t, 9, result.Stats.LongestStreak)
	assert.Equal(t, 1*DefaultUnitCost, result.Stats.MoneySpent)
	assert.Equal(t, 5, result.Stats.FirstLogMonth)
	assert.Equal(t, 2025, result.Stats.MinYear)
	assert.Equal(t, 2, result.Stats.MonthlyCounts[5])
}

func TestGetCalendarNoLogs(t *testing.T) {
	h := NewGetCalendarHandler(&fakeLogRepo{}, nil)
	h.now = func() time.Time { return fixedNow }

	result, err := h.Handle(context.Background(), GetCalendarQuery{UserID: testUser, Year: 2025})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Stats.SmokeFreeDays)
	assert.Equal(t, -1, result.Stats.FirstLogMonth)
	assert.Equal(t, 2025, result.Stats.MinYear)

	for _, d := range result.CalendarDays {
		assert.Contains(t, []string{"untracked", "future"}, d.Status)
	}
}

func TestGetCalendarValidation(t *testing.T) {
	h := NewGetCalendarHandler(&fakeLogRepo{}, nil)

	_, err := h.Handle(context.Background(), GetCalendarQuery{Year: 2025})
	assert.Error(t, err)

	_, err = h.Handle(context.Background(), GetCalendarQuery{UserID: testUser, Year: 10})
	assert.Error(t, err)
}

func TestGetLifetimeStats(t *testing.T) {
	t.Run("calendar-complete streaks", func(t *testing.T) {
		repo := &fakeLogRepo{
			smokeLogs: []tracking.RawSmokeLog{
				{UserID: testUser, Date: "2025-06-10", Cigarettes: 3},
				{UserID: testUser, Date: "2025-06-13", Cigarettes: 0},
			},
		}
		h := NewGetLifetimeStatsHandler(repo)
		h.now = func() time.Time { return fixedNow }

		result, err := h.Handle(context.Background(), GetLifetimeStatsQuery{UserID: testUser})
		require.NoError(t, err)

		// Days Jun 11 through Jun 19 are smoke-free, unlogged included.
		assert.Equal(t, 9, result.CurrentStreak)
		assert.Equal(t, 9, result.LongestStreak)
		assert.Equal(t, 3, result.TotalCigarettes)
	})

	t.Run("no logs", func(t *testing.T) {
		h := NewGetLifetimeStatsHandler(&fakeLogRepo{})
		h.now = func() time.Time { return fixedNow }

		result, err := h.Handle(context.Background(), GetLifetimeStatsQuery{UserID: testUser})
		require.NoError(t, err)
		assert.Equal(t, 0, result.CurrentStreak)
		assert.Equal(t, 0, result.LongestStreak)
		assert.Equal(t, 0, result.TotalCigarettes)
	})
}
