package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/respira-app/respira-server/internal/domain/tracking"
)

func newLogStatsHandler(repo *fakeLogRepo) *GetLogStatsHandler {
	h := NewGetLogStatsHandler(repo)
	h.now = func() time.Time { return fixedNow }
	return h
}

func TestGetLogStats(t *testing.T) {
	repo := &fakeLogRepo{
		smokeLogs: []tracking.RawSmokeLog{
			{UserID: testUser, Date: "2025-06-15", Cigarettes: 4},
			{UserID: testUser, Date: "2025-06-18", Cigarettes: 2},
			{UserID: testUser, Date: "2025-06-20", Cigarettes: 3, Triggers: []string{"stress"}},
		},
	}
	h := newLogStatsHandler(repo)

	t.Run("defaults to today", func(t *testing.T) {
		result, err := h.Handle(context.Background(), GetLogStatsQuery{UserID: testUser})
		require.NoError(t, err)

		assert.Equal(t, 3, result.TodayCount)
		assert.True(t, result.HasLoggedToday)
		assert.Equal(t, []string{"stress"}, result.TodayTriggers)
		assert.Equal(t, 2, result.LastLogCount)
		assert.Equal(t, "2025-06-18", result.LastLogDate)
		// |3-2|/2 = 50%.
		assert.Equal(t, 50, result.PercentageChange)
		assert.True(t, result.IsIncrease)
	})

	t.Run("explicit earlier date", func(t *testing.T) {
		result, err := h.Handle(context.Background(), GetLogStatsQuery{UserID: testUser, Date: "2025-06-18"})
		require.NoError(t, err)

		assert.Equal(t, 2, result.TodayCount)
		assert.Equal(t, 4, result.LastLogCount)
		assert.Equal(t, "2025-06-15", result.LastLogDate)
		assert.Equal(t, 50, result.PercentageChange)
		assert.False(t, result.IsIncrease)
	})

	t.Run("no previous log", func(t *testing.T) {
		result, err := h.Handle(context.Background(), GetLogStatsQuery{UserID: testUser, Date: "2025-06-15"})
		require.NoError(t, err)

		assert.Equal(t, 4, result.TodayCount)
		assert.Equal(t, 0, result.LastLogCount)
		assert.Empty(t, result.LastLogDate)
		// From zero to positive counts as a 100% increase.
		assert.Equal(t, 100, result.PercentageChange)
		assert.True(t, result.IsIncrease)
	})

	t.Run("nothing logged at all", func(t *testing.T) {
		result, err := newLogStatsHandler(&fakeLogRepo{}).Handle(context.Background(), GetLogStatsQuery{UserID: testUser})
		require.NoError(t, err)

		assert.False(t, result.HasLoggedToday)
		assert.Equal(t, 0, result.PercentageChange)
		assert.False(t, result.IsIncrease)
		assert.Empty(t, result.TodayTriggers)
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := h.Handle(context.Background(), GetLogStatsQuery{UserID: testUser, Date: "June 20"})
		assert.Error(t, err)
	})
}

func TestGetUrgeStats(t *testing.T) {
	repo := &fakeLogRepo{
		urgeEvents: []tracking.RawUrgeEvent{
			{UserID: testUser, Timestamp: "2025-06-16T09:00:00Z", Trigger: "stress"},
			{UserID: testUser, Timestamp: "2025-06-16T21:00:00Z", Trigger: "stress"},
			{UserID: testUser, Timestamp: "2025-06-17T10:00:00Z", Trigger: "boredom"},
			{UserID: testUser, Timestamp: "2024-12-31T23:00:00Z", Trigger: "party"},
			{UserID: testUser, Timestamp: "2025-01-02T08:00:00Z"},
		},
	}
	h := NewGetUrgeStatsHandler(repo)

	t.Run("all time", func(t *testing.T) {
		result, err := h.Handle(context.Background(), GetUrgeStatsQuery{UserID: testUser})
		require.NoError(t, err)

		assert.Equal(t, 5, result.TotalUrges)
		assert.Equal(t, 4, result.TotalDays)
		assert.Equal(t, map[string]int{
			"stress":  2,
			"boredom": 1,
			"party":   1,
			"Unknown": 1,
		}, result.TriggerCounts)
	})

	t.Run("year filter", func(t *testing.T) {
		result, err := h.Handle(context.Background(), GetUrgeStatsQuery{UserID: testUser, Year: 2025})
		require.NoError(t, err)

		assert.Equal(t, 4, result.TotalUrges)
		assert.Equal(t, 3, result.TotalDays)
		assert.NotContains(t, result.TriggerCounts, "party")
	})
}

func TestGetGameStats(t *testing.T) {
	repo := &fakeLogRepo{
		gameSessions: []tracking.RawGameSession{
			{UserID: testUser, Timestamp: "2025-06-16T12:00:00Z", SecondsFocused: 60, PointsEarned: 100},
			{UserID: testUser, Timestamp: "2025-06-17T12:00:00Z", SecondsFocused: 150, PointsEarned: 250},
			{UserID: testUser, Timestamp: "2024-03-01T12:00:00Z", SecondsFocused: 300, PointsEarned: 50},
		},
	}
	h := NewGetGameStatsHandler(repo)

	t.Run("all time", func(t *testing.T) {
		result, err := h.Handle(context.Background(), GetGameStatsQuery{UserID: testUser})
		require.NoError(t, err)
		assert.Equal(t, 400, result.TotalPoints)
		assert.Equal(t, 300, result.MaxSecondsFocused)
	})

	t.Run("year filter", func(t *testing.T) {
		result, err := h.Handle(context.Background(), GetGameStatsQuery{UserID: testUser, Year: 2025})
		require.NoError(t, err)
		assert.Equal(t, 350, result.TotalPoints)
		assert.Equal(t, 150, result.MaxSecondsFocused)
	})

	t.Run("empty", func(t *testing.T) {
		result, err := NewGetGameStatsHandler(&fakeLogRepo{}).Handle(context.Background(), GetGameStatsQuery{UserID: testUser})
		require.NoError(t, err)
		assert.Equal(t, 0, result.TotalPoints)
		assert.Equal(t, 0, result.MaxSecondsFocused)
	})
}
