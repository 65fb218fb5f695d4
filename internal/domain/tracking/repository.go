package tracking

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// These interfaces define the contract with the external store.
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// DateRange optionally bounds a listing to [From, To] calendar days,
// inclusive. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether the range places no bounds at all.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Year returns a range spanning one calendar year.
func Year(year int) DateRange {
	return DateRange{
		From: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}
}

// LogRepository defines read and write operations for behaviour records.
// Reads return raw records as stored; callers run them through the
// Normalizer. All reads for one computation are fetched once and treated as
// a consistent snapshot.
type LogRepository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// Reads
	// ─────────────────────────────────────────────────────────────────────────

	// ListSmokeLogs returns a user's smoke logs, optionally bounded by range.
	ListSmokeLogs(ctx context.Context, userID UserID, dateRange DateRange) ([]RawSmokeLog, error)

	// ListUrgeEvents returns a user's urge events, optionally bounded by range.
	ListUrgeEvents(ctx context.Context, userID UserID, dateRange DateRange) ([]RawUrgeEvent, error)

	// ListGameSessions returns a user's game sessions, optionally bounded by range.
	ListGameSessions(ctx context.Context, userID UserID, dateRange DateRange) ([]RawGameSession, error)

	// GetFirstLogDate returns the date of the user's first-ever smoke log,
	// or nil if the user has never logged. This is the effective start date
	// for all smoke-free accounting.
	GetFirstLogDate(ctx context.Context, userID UserID) (*time.Time, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Writes
	// ─────────────────────────────────────────────────────────────────────────

	// UpsertSmokeLog creates or replaces the entry for (user, date).
	UpsertSmokeLog(ctx context.Context, entry SmokeLogEntry) error

	// SaveUrgeEvent appends an urge event.
	SaveUrgeEvent(ctx context.Context, event UrgeEvent) error

	// SaveGameSession appends a game session.
	SaveGameSession(ctx context.Context, session GameSessionEvent) error
}

// GoalRepository defines operations on a user's goal state.
type GoalRepository interface {
	// GetGoalState returns the user's goal state.
	// Returns ErrGoalStateNotFound if the user never set a goal; callers
	// fall back to DefaultGoalState.
	GetGoalState(ctx context.Context, userID UserID) (*GoalState, error)

	// SetGoal stores an explicit user-chosen goal and stamps the start date.
	SetGoal(ctx context.Context, userID UserID, goalDays int, startDate time.Time) error

	// AdvanceGoal conditionally moves the goal from expectedOldGoal to
	// newGoal, preserving the start date. Returns false without error when
	// the precondition fails because a competing request already advanced
	// the goal.
	AdvanceGoal(ctx context.Context, userID UserID, expectedOldGoal, newGoal int) (bool, error)
}

// ContextCache caches a user's derived progress context between requests.
// Implemented over Redis; a nil cache is always a valid no-op.
type ContextCache interface {
	// GetContext returns the cached context JSON for a user, or ErrNotFound.
	GetContext(ctx context.Context, userID UserID) ([]byte, error)

	// SetContext stores the context JSON with a TTL.
	SetContext(ctx context.Context, userID UserID, payload []byte, ttl time.Duration) error

	// Invalidate drops the cached context after a write.
	Invalidate(ctx context.Context, userID UserID) error
}
