package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// GoalRepository implements tracking.GoalRepository for PostgreSQL.
type GoalRepository struct {
	conn *Connection
}

// NewGoalRepository creates a new GoalRepository.
func NewGoalRepository(conn *Connection) *GoalRepository {
	return &GoalRepository{conn: conn}
}

// GetGoalState returns the user's goal state, or ErrGoalStateNotFound if
// the user never set a goal.
func (r *GoalRepository) GetGoalState(ctx context.Context, userID tracking.UserID) (*tracking.GoalState, error) {
	query := `
		SELECT smoke_free_goal, goal_start_date
		FROM goal_states
		WHERE user_id = $1
	`

	var goalDays int
	var startDateStr *string
	err := r.conn.QueryRow(ctx, query, string(userID)).Scan(&goalDays, &startDateStr)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrGoalStateNotFound
		}
		return nil, fmt.Errorf("failed to query goal state: %w", err)
	}

	state := &tracking.GoalState{
		UserID:            userID,
		SmokeFreeGoalDays: goalDays,
		IsSet:             true,
	}
	if startDateStr != nil {
		day, err := timeutil.ParseDate(*startDateStr)
		if err != nil {
			return nil, fmt.Errorf("malformed goal start date %q: %w", *startDateStr, err)
		}
		state.GoalStartDate = &day
	}
	return state, nil
}

// SetGoal stores an explicit user-chosen goal and stamps the start date.
func (r *GoalRepository) SetGoal(ctx context.Context, userID tracking.UserID, goalDays int, startDate time.Time) error {
	query := `
		INSERT INTO goal_states (user_id, smoke_free_goal, goal_start_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET smoke_free_goal = EXCLUDED.smoke_free_goal,
		    goal_start_date = EXCLUDED.goal_start_date,
		    updated_at = NOW()
	`
	_, err := r.conn.Exec(ctx, query, string(userID), goalDays, timeutil.FormatDateStr(startDate))
	if err != nil {
		return fmt.Errorf("failed to set goal: %w", err)
	}
	return nil
}

// AdvanceGoal conditionally moves the goal from expectedOldGoal to newGoal.
// The start date is preserved so cumulative progress carries over. Returns
// false when a competing request already advanced the goal.
func (r *GoalRepository) AdvanceGoal(ctx context.Context, userID tracking.UserID, expectedOldGoal, newGoal int) (bool, error) {
	query := `
		UPDATE goal_states
		SET smoke_free_goal = $3, updated_at = NOW()
		WHERE user_id = $1 AND smoke_free_goal = $2
	`
	tag, err := r.conn.Exec(ctx, query, string(userID), expectedOldGoal, newGoal)
	if err != nil {
		return false, fmt.Errorf("failed to advance goal: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
