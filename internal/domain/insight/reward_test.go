package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewardEngine(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("streak unlocks in order", func(t *testing.T) {
		status := engine.Evaluate(RewardMetrics{CurrentStreak: 10})
		assert.Equal(t, 2, status.UnlockedCount)
		assert.Equal(t, "Consistency", status.NextRewardName)
	})

	t.Run("nothing earned", func(t *testing.T) {
		status := engine.Evaluate(RewardMetrics{})
		assert.Equal(t, 0, status.UnlockedCount)
		assert.Equal(t, "First Step", status.NextRewardName)
	})

	t.Run("mixed kinds", func(t *testing.T) {
		status := engine.Evaluate(RewardMetrics{
			CurrentStreak:    3,
			UrgeSupportUses:  6,
			TotalFocusPoints: 1200,
		})
		// First Step, Paused Instead, Focused Starter.
		assert.Equal(t, 3, status.UnlockedCount)
		assert.Equal(t, "One Week Strong", status.NextRewardName)
	})

	t.Run("all earned", func(t *testing.T) {
		status := engine.Evaluate(RewardMetrics{
			CurrentStreak:    365,
			UrgeSupportUses:  50,
			TotalFocusPoints: 5000,
		})
		assert.Equal(t, 7, status.UnlockedCount)
		assert.Empty(t, status.NextRewardName)
	})
}

func TestMilestoneEarned(t *testing.T) {
	m := Milestone{Name: "Paused Instead", Threshold: 5, Kind: KindSupport}
	assert.False(t, m.Earned(RewardMetrics{UrgeSupportUses: 4}))
	assert.True(t, m.Earned(RewardMetrics{UrgeSupportUses: 5}))
	// Threshold applies only to the milestone's own metric.
	assert.False(t, m.Earned(RewardMetrics{CurrentStreak: 100, TotalFocusPoints: 9999}))
}

func TestCustomMilestoneTable(t *testing.T) {
	engine := NewEngine([]Milestone{
		{Name: "Day One", Threshold: 1, Kind: KindStreak},
		{Name: "Marathon", Threshold: 100, Kind: KindStreak},
	})
	status := engine.Evaluate(RewardMetrics{CurrentStreak: 2})
	assert.Equal(t, 1, status.UnlockedCount)
	assert.Equal(t, "Marathon", status.NextRewardName)
}
