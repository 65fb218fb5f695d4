package command

import (
	"context"
	"time"

	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD URGE COMMAND
// Appends one urge-support event. Events are append-only; using the urge
// tool twice in a day is two events.
// ══════════════════════════════════════════════════════════════════════════════

// RecordUrgeCommand contains one urge event.
type RecordUrgeCommand struct {
	// UserID - the user's identifier (their email).
	UserID string

	// Timestamp - when the urge happened, RFC3339 or YYYY-MM-DDTHH:MM:SS.
	// Empty means now.
	Timestamp string

	// Trigger - what prompted the urge.
	Trigger string
}

// Validate validates the command.
func (c RecordUrgeCommand) Validate() error {
	if c.UserID == "" {
		return shared.ErrEmptyUserID
	}
	if c.Timestamp != "" {
		if _, err := timeutil.ParseTimestamp(c.Timestamp); err != nil {
			return err
		}
	}
	return nil
}

// RecordUrgeHandler handles urge event writes.
type RecordUrgeHandler struct {
	logs  tracking.LogRepository
	cache tracking.ContextCache
	now   func() time.Time
}

// NewRecordUrgeHandler creates the handler. The cache may be nil.
func NewRecordUrgeHandler(logs tracking.LogRepository, cache tracking.ContextCache) *RecordUrgeHandler {
	return &RecordUrgeHandler{logs: logs, cache: cache, now: timeutil.Now}
}

// Handle appends the event and invalidates the user's cached context.
func (h *RecordUrgeHandler) Handle(ctx context.Context, cmd RecordUrgeCommand) error {
	if err := cmd.Validate(); err != nil {
		return shared.WrapError("command", "RecordUrge", shared.ErrValidation, err.Error(), err)
	}

	ts := h.now()
	if cmd.Timestamp != "" {
		parsed, err := timeutil.ParseTimestamp(cmd.Timestamp)
		if err != nil {
			return shared.WrapError("command", "RecordUrge", shared.ErrInvalidFormat, "invalid timestamp", err)
		}
		ts = parsed
	}

	userID := tracking.UserID(cmd.UserID)
	event := tracking.UrgeEvent{
		UserID:    userID,
		Timestamp: ts,
		Trigger:   cmd.Trigger,
	}
	if err := h.logs.SaveUrgeEvent(ctx, event); err != nil {
		return shared.WrapError("command", "RecordUrge", shared.ErrServiceUnavailable, "failed to save urge event", err)
	}

	if h.cache != nil {
		_ = h.cache.Invalidate(ctx, userID)
	}
	return nil
}
