package command

import (
	"context"
	"time"

	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SET GOAL COMMAND
// Stores an explicit user-chosen smoke-free goal. Setting a goal restarts
// progress accounting: the goal start date becomes today, so only entries
// from today onward count toward the new goal.
// ══════════════════════════════════════════════════════════════════════════════

// SetGoalCommand contains the chosen goal.
type SetGoalCommand struct {
	// UserID - the user's identifier (their email).
	UserID string

	// GoalDays - the smoke-free goal in days.
	GoalDays int
}

// Validate validates the command.
func (c SetGoalCommand) Validate() error {
	if c.UserID == "" {
		return shared.ErrEmptyUserID
	}
	if c.GoalDays <= 0 {
		return shared.ErrInvalidGoal
	}
	return nil
}

// SetGoalResult reports the stored state.
type SetGoalResult struct {
	// GoalDays - the stored goal.
	GoalDays int `json:"smoke_free_goal"`

	// GoalStartDate - start date as YYYY-MM-DD.
	GoalStartDate string `json:"goal_start_date"`
}

// SetGoalHandler handles goal writes.
type SetGoalHandler struct {
	goals tracking.GoalRepository
	cache tracking.ContextCache
	now   func() time.Time
}

// NewSetGoalHandler creates the handler. The cache may be nil.
func NewSetGoalHandler(goals tracking.GoalRepository, cache tracking.ContextCache) *SetGoalHandler {
	return &SetGoalHandler{goals: goals, cache: cache, now: timeutil.Now}
}

// Handle stores the goal with today as its start date.
func (h *SetGoalHandler) Handle(ctx context.Context, cmd SetGoalCommand) (*SetGoalResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("command", "SetGoal", shared.ErrValidation, err.Error(), err)
	}

	userID := tracking.UserID(cmd.UserID)
	startDate := timeutil.StartOfDay(h.now())

	if err := h.goals.SetGoal(ctx, userID, cmd.GoalDays, startDate); err != nil {
		return nil, shared.WrapError("command", "SetGoal", shared.ErrServiceUnavailable, "failed to set goal", err)
	}

	if h.cache != nil {
		_ = h.cache.Invalidate(ctx, userID)
	}

	return &SetGoalResult{
		GoalDays:      cmd.GoalDays,
		GoalStartDate: timeutil.FormatDateStr(startDate),
	}, nil
}
