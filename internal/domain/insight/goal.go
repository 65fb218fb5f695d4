package insight

import (
	"context"
	"time"

	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GOAL PROJECTOR
// Tracks progress against the user's smoke-free goal, advances the goal
// along the ladder when reached, and projects a completion date from
// recent history.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultGoalLadder is the progression of goals in days. When a user's
// streak reaches the current goal, the goal advances to the next rung.
func DefaultGoalLadder() []int {
	return []int{7, 14, 30, 60, 90, 120, 150, 180, 210, 240, 270, 300, 330, 365}
}

const (
	// GoalReachedLabel replaces the projected date once the goal is met.
	GoalReachedLabel = "Goal reached!"

	// NoHistoryLabel replaces the projected date for a user with no logs.
	NoHistoryLabel = "Start logging"

	// projectionWindow is how many recent entries feed the probability
	// estimate.
	projectionWindow = 21

	// probabilityFloor keeps the projection finite even when every recent
	// entry was a smoking day.
	probabilityFloor = 0.1
)

// Projection is the goal-path output shown on the dashboard.
type Projection struct {
	// CurrentProgress - current streak counted toward the goal.
	CurrentProgress int

	// GoalDays - the active goal after any ladder advance.
	GoalDays int

	// GoalDate - projected completion date, GoalReachedLabel, or
	// NoHistoryLabel.
	GoalDate string

	// Probability - estimated chance (0-100) that any given upcoming day
	// is smoke-free; 100 once the goal is met.
	Probability int

	// IsGoalSet - whether the user explicitly chose a goal.
	IsGoalSet bool
}

// Projector computes goal projections and advances goals along the ladder.
type Projector struct {
	ladder []int
	goals  tracking.GoalRepository
}

// NewProjector creates a projector. A nil or empty ladder falls back to
// DefaultGoalLadder. The repository may be nil for read-only projection
// (no ladder advance is attempted).
func NewProjector(ladder []int, goals tracking.GoalRepository) *Projector {
	if len(ladder) == 0 {
		ladder = DefaultGoalLadder()
	}
	return &Projector{ladder: ladder, goals: goals}
}

// NextRung returns the first ladder rung strictly above goal, or goal
// itself when the ladder is exhausted.
func (p *Projector) NextRung(goal int) int {
	for _, g := range p.ladder {
		if g > goal {
			return g
		}
	}
	return goal
}

// Project computes the user's goal path. Entries must be the normalized,
// chronologically sorted smoke log series.
//
// The streak counted toward the goal is the logged-entries current streak
// over entries on or after the goal start date. When the user explicitly
// set a goal and the streak has reached it, the goal advances to the next
// ladder rung with a conditional write; if a competing request advanced it
// first, the stored state is re-read and used as is.
func (p *Projector) Project(ctx context.Context, state tracking.GoalState, entries []tracking.SmokeLogEntry, today time.Time) (Projection, error) {
	scoped := entries
	if state.GoalStartDate != nil {
		scoped = EntriesSince(entries, *state.GoalStartDate)
	}

	streak := StreakPolicy{Mode: LoggedEntriesOnly}.Compute(scoped, today).Current
	goal := state.SmokeFreeGoalDays

	if state.IsSet && streak >= goal && p.goals != nil {
		next := p.NextRung(goal)
		if next > goal {
			advanced, err := p.goals.AdvanceGoal(ctx, state.UserID, goal, next)
			if err != nil {
				return Projection{}, err
			}
			if advanced {
				goal = next
			} else {
				// Lost the race; trust whatever the winner stored.
				current, err := p.goals.GetGoalState(ctx, state.UserID)
				if err != nil {
					return Projection{}, err
				}
				goal = current.SmokeFreeGoalDays
			}
		}
	}

	proj := Projection{
		CurrentProgress: streak,
		GoalDays:        goal,
		IsGoalSet:       state.IsSet,
	}

	remaining := goal - streak
	if remaining < 0 {
		remaining = 0
	}

	if len(entries) == 0 {
		proj.GoalDate = NoHistoryLabel
		proj.Probability = 0
		return proj, nil
	}

	recent := entries
	if len(recent) > projectionWindow {
		recent = recent[len(recent)-projectionWindow:]
	}
	smokeFree := 0
	for _, e := range recent {
		if e.IsSmokeFree() {
			smokeFree++
		}
	}
	prob := float64(smokeFree) / float64(len(recent))
	if prob < probabilityFloor {
		prob = probabilityFloor
	}

	if remaining == 0 {
		proj.GoalDate = GoalReachedLabel
		proj.Probability = 100
		return proj, nil
	}

	eta := today.AddDate(0, 0, int(float64(remaining)/prob))
	proj.GoalDate = timeutil.FormatHuman(eta)
	proj.Probability = int(prob * 100)
	return proj, nil
}
