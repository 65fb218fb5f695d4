// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"

	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD SMOKE LOG COMMAND
// Creates or replaces the smoke log for one (user, day). A second submit
// for the same day overwrites the count and triggers rather than
// duplicating the entry.
// ══════════════════════════════════════════════════════════════════════════════

// RecordSmokeLogCommand contains the data for one daily log.
type RecordSmokeLogCommand struct {
	// UserID - the user's identifier (their email).
	UserID string

	// Date - the day being logged as YYYY-MM-DD.
	Date string

	// Cigarettes - count for the day, zero for a smoke-free day.
	Cigarettes int

	// Triggers - trigger labels chosen for the day, order preserved.
	Triggers []string
}

// Validate validates the command.
func (c RecordSmokeLogCommand) Validate() error {
	if c.UserID == "" {
		return shared.ErrEmptyUserID
	}
	if c.Cigarettes < 0 {
		return shared.ErrNegativeCount
	}
	if _, err := timeutil.ParseDate(c.Date); err != nil {
		return err
	}
	return nil
}

// RecordSmokeLogResult reports what the write did.
type RecordSmokeLogResult struct {
	// Updated - true when an existing entry for the day was replaced.
	Updated bool `json:"updated"`

	// Message - human-readable outcome.
	Message string `json:"message"`
}

// RecordSmokeLogHandler handles smoke log writes.
type RecordSmokeLogHandler struct {
	logs  tracking.LogRepository
	cache tracking.ContextCache
}

// NewRecordSmokeLogHandler creates the handler. The cache may be nil.
func NewRecordSmokeLogHandler(logs tracking.LogRepository, cache tracking.ContextCache) *RecordSmokeLogHandler {
	return &RecordSmokeLogHandler{logs: logs, cache: cache}
}

// Handle upserts the log and invalidates the user's cached context.
func (h *RecordSmokeLogHandler) Handle(ctx context.Context, cmd RecordSmokeLogCommand) (*RecordSmokeLogResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, shared.WrapError("command", "RecordSmokeLog", shared.ErrValidation, err.Error(), err)
	}

	day, err := timeutil.ParseDate(cmd.Date)
	if err != nil {
		return nil, shared.WrapError("command", "RecordSmokeLog", shared.ErrInvalidFormat, "invalid date", err)
	}

	userID := tracking.UserID(cmd.UserID)

	existing, err := h.logs.ListSmokeLogs(ctx, userID, tracking.DateRange{From: day, To: day})
	if err != nil {
		return nil, shared.WrapError("command", "RecordSmokeLog", shared.ErrServiceUnavailable, "failed to check existing log", err)
	}

	entry := tracking.SmokeLogEntry{
		UserID:     userID,
		Date:       day,
		Cigarettes: tracking.CigaretteCount(cmd.Cigarettes),
		Triggers:   cmd.Triggers,
	}
	if err := h.logs.UpsertSmokeLog(ctx, entry); err != nil {
		return nil, shared.WrapError("command", "RecordSmokeLog", shared.ErrServiceUnavailable, "failed to save log", err)
	}

	h.invalidateContext(ctx, userID)

	if len(existing) > 0 {
		return &RecordSmokeLogResult{Updated: true, Message: "Log updated successfully"}, nil
	}
	return &RecordSmokeLogResult{Message: "Log created successfully"}, nil
}

// invalidateContext drops the cached derived context after a write.
// Cache failures never fail the command.
func (h *RecordSmokeLogHandler) invalidateContext(ctx context.Context, userID tracking.UserID) {
	if h.cache == nil {
		return
	}
	_ = h.cache.Invalidate(ctx, userID)
}
