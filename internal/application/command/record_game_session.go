package command

import (
	"context"
	"time"

	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD GAME SESSION COMMAND
// Appends one focus game session with its duration and points.
// ══════════════════════════════════════════════════════════════════════════════

// RecordGameSessionCommand contains one game session.
type RecordGameSessionCommand struct {
	// UserID - the user's identifier (their email).
	UserID string

	// Timestamp - when the session ended; empty means now.
	Timestamp string

	// SecondsFocused - session duration in seconds.
	SecondsFocused int

	// PointsEarned - points awarded for the session.
	PointsEarned int
}

// Validate validates the command.
func (c RecordGameSessionCommand) Validate() error {
	if c.UserID == "" {
		return shared.ErrEmptyUserID
	}
	if c.SecondsFocused < 0 {
		return shared.ErrNegativeSeconds
	}
	if c.PointsEarned < 0 {
		return shared.ErrNegativePoints
	}
	if c.Timestamp != "" {
		if _, err := timeutil.ParseTimestamp(c.Timestamp); err != nil {
			return err
		}
	}
	return nil
}

// RecordGameSessionHandler handles game session writes.
type RecordGameSessionHandler struct {
	logs  tracking.LogRepository
	cache tracking.ContextCache
	now   func() time.Time
}

// NewRecordGameSessionHandler creates the handler. The cache may be nil.
func NewRecordGameSessionHandler(logs tracking.LogRepository, cache tracking.ContextCache) *RecordGameSessionHandler {
	return &RecordGameSessionHandler{logs: logs, cache: cache, now: timeutil.Now}
}

// Handle appends the session and invalidates the user's cached context.
func (h *RecordGameSessionHandler) Handle(ctx context.Context, cmd RecordGameSessionCommand) error {
	if err := cmd.Validate(); err != nil {
		return shared.WrapError("command", "RecordGameSession", shared.ErrValidation, err.Error(), err)
	}

	ts := h.now()
	if cmd.Timestamp != "" {
		parsed, err := timeutil.ParseTimestamp(cmd.Timestamp)
		if err != nil {
			return shared.WrapError("command", "RecordGameSession", shared.ErrInvalidFormat, "invalid timestamp", err)
		}
		ts = parsed
	}

	userID := tracking.UserID(cmd.UserID)
	session := tracking.GameSessionEvent{
		UserID:         userID,
		Timestamp:      ts,
		SecondsFocused: cmd.SecondsFocused,
		PointsEarned:   cmd.PointsEarned,
	}
	if err := h.logs.SaveGameSession(ctx, session); err != nil {
		return shared.WrapError("command", "RecordGameSession", shared.ErrServiceUnavailable, "failed to save game session", err)
	}

	if h.cache != nil {
		_ = h.cache.Invalidate(ctx, userID)
	}
	return nil
}
