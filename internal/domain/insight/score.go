package insight

// ══════════════════════════════════════════════════════════════════════════════
// CONSISTENCY SCORER
// Composite 0-100 score: goal progress forms the base, streak length and
// app engagement add bonuses on top.
// ══════════════════════════════════════════════════════════════════════════════

// ScoreInput carries everything the scorer considers.
type ScoreInput struct {
	// SmokeFreeDays - lifetime count of logged smoke-free days.
	SmokeFreeDays int

	// GoalDays - the user's current smoke-free goal.
	GoalDays int

	// CurrentStreak - logged-entries current streak.
	CurrentStreak int

	// UrgeSupportUses - number of urge-support events recorded.
	UrgeSupportUses int

	// GameSessions - number of focus game sessions recorded.
	GameSessions int
}

// Standing thresholds, checked highest first.
var standingLadder = []struct {
	floor int
	label string
}{
	{80, "Incredible Consistency! 🌟"},
	{60, "Strong Progress"},
	{40, "Building Momentum"},
	{20, "On the Right Track"},
}

const standingDefault = "Just Getting Started"

// ConsistencyScore computes the composite score.
//
// Base scales smoke-free days against the goal, capped at 80 to leave
// headroom for bonuses. Streak adds 5 at three days and another 5 at
// seven. Engagement adds one point per urge-support use and per game
// session, deliberately uncapped; the final clamp to 100 is the only
// ceiling. The result is clamped to [0, 100].
func ConsistencyScore(in ScoreInput) int {
	base := 0.0
	if in.GoalDays > 0 {
		base = float64(in.SmokeFreeDays) / float64(in.GoalDays) * 80
		if base > 80 {
			base = 80
		}
	}

	bonus := 0
	if in.CurrentStreak >= 3 {
		bonus += 5
	}
	if in.CurrentStreak >= 7 {
		bonus += 5
	}
	bonus += in.UrgeSupportUses + in.GameSessions

	score := int(base) + bonus
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Standing maps a score to its qualitative label.
func Standing(score int) string {
	for _, rung := range standingLadder {
		if score > rung.floor {
			return rung.label
		}
	}
	return standingDefault
}
