package insight

// ══════════════════════════════════════════════════════════════════════════════
// REWARD ENGINE
// Milestone badges over three metrics: streak length, urge-support usage,
// and focus game points. The table is ordered; the first unearned entry
// becomes the "next reward".
// ══════════════════════════════════════════════════════════════════════════════

// MilestoneKind selects which metric a milestone threshold applies to.
type MilestoneKind string

const (
	KindStreak  MilestoneKind = "streak"
	KindSupport MilestoneKind = "support"
	KindPoints  MilestoneKind = "points"
)

// Milestone is one badge definition.
type Milestone struct {
	// Name - badge name shown to the user.
	Name string

	// Threshold - metric value at which the badge unlocks.
	Threshold int

	// Kind - which metric the threshold applies to.
	Kind MilestoneKind
}

// DefaultMilestones returns the built-in badge table in display order.
func DefaultMilestones() []Milestone {
	return []Milestone{
		{Name: "First Step", Threshold: 3, Kind: KindStreak},
		{Name: "One Week Strong", Threshold: 7, Kind: KindStreak},
		{Name: "Consistency", Threshold: 14, Kind: KindStreak},
		{Name: "One Month Clear", Threshold: 30, Kind: KindStreak},
		{Name: "Paused Instead", Threshold: 5, Kind: KindSupport},
		{Name: "Choosing Better", Threshold: 10, Kind: KindSupport},
		{Name: "Focused Starter", Threshold: 1000, Kind: KindPoints},
	}
}

// RewardMetrics carries the metric values milestones are checked against.
type RewardMetrics struct {
	// CurrentStreak - logged-entries current streak.
	CurrentStreak int

	// UrgeSupportUses - number of urge-support events recorded.
	UrgeSupportUses int

	// TotalFocusPoints - lifetime points earned in the focus game.
	TotalFocusPoints int
}

// RewardStatus summarizes badge progress.
type RewardStatus struct {
	// UnlockedCount - number of earned badges.
	UnlockedCount int

	// NextRewardName - first unearned badge in table order, empty when all
	// badges are earned.
	NextRewardName string
}

// Engine evaluates a milestone table against user metrics.
type Engine struct {
	milestones []Milestone
}

// NewEngine creates a reward engine. A nil or empty table falls back to
// DefaultMilestones.
func NewEngine(milestones []Milestone) *Engine {
	if len(milestones) == 0 {
		milestones = DefaultMilestones()
	}
	return &Engine{milestones: milestones}
}

// Earned reports whether one milestone is unlocked under the metrics.
func (m Milestone) Earned(metrics RewardMetrics) bool {
	switch m.Kind {
	case KindStreak:
		return metrics.CurrentStreak >= m.Threshold
	case KindSupport:
		return metrics.UrgeSupportUses >= m.Threshold
	case KindPoints:
		return metrics.TotalFocusPoints >= m.Threshold
	default:
		return false
	}
}

// Evaluate checks every milestone and returns the overall status.
func (e *Engine) Evaluate(metrics RewardMetrics) RewardStatus {
	status := RewardStatus{}
	for _, m := range e.milestones {
		if m.Earned(metrics) {
			status.UnlockedCount++
		} else if status.NextRewardName == "" {
			status.NextRewardName = m.Name
		}
	}
	return status
}
