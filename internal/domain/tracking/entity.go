// Package tracking contains the domain model for a user's behaviour log:
// daily smoke logs, urge-support events, focus-game sessions, and the
// smoke-free goal state. This is core business logic - there are no external
// dependencies here.
package tracking

import (
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// UserID identifies a user. Users are keyed by their e-mail address, which is
// how the auth collaborator issues tokens.
type UserID string

// IsValid checks that the user ID is non-empty.
func (u UserID) IsValid() bool {
	return len(u) > 0
}

// String returns the string representation of the user ID.
func (u UserID) String() string {
	return string(u)
}

// CigaretteCount is the number of cigarettes logged for one calendar day.
type CigaretteCount int

// IsValid checks that the count is non-negative.
func (c CigaretteCount) IsValid() bool {
	return c >= 0
}

// IsSmokeFree reports whether the day was logged as smoke-free.
func (c CigaretteCount) IsSmokeFree() bool {
	return c == 0
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// Entities are owned by the external store. For the duration of one
// computation the core treats them as an immutable snapshot.
// ══════════════════════════════════════════════════════════════════════════════

// SmokeLogEntry is one day's smoking record. At most one entry exists per
// (user, date); the store enforces upsert semantics on that key.
type SmokeLogEntry struct {
	// UserID - the owning user.
	UserID UserID

	// Date - the calendar day the entry covers (00:00:00 UTC).
	Date time.Time

	// Cigarettes - number of cigarettes smoked that day.
	Cigarettes CigaretteCount

	// Triggers - ordered list of trigger labels the user selected.
	Triggers []string
}

// IsSmokeFree reports whether this day was logged with zero cigarettes.
func (e SmokeLogEntry) IsSmokeFree() bool {
	return e.Cigarettes.IsSmokeFree()
}

// UrgeEvent records one use of the urge-support flow.
type UrgeEvent struct {
	// UserID - the owning user.
	UserID UserID

	// Timestamp - when the urge was logged (date + time).
	Timestamp time.Time

	// Trigger - the trigger label the user selected.
	Trigger string
}

// GameSessionEvent records one focus-game session.
type GameSessionEvent struct {
	// UserID - the owning user.
	UserID UserID

	// Timestamp - when the session finished.
	Timestamp time.Time

	// SecondsFocused - how long the user stayed focused.
	SecondsFocused int

	// PointsEarned - points awarded for the session.
	PointsEarned int
}

// GoalState holds a user's smoke-free goal. It is mutated only by the goal
// projector's auto-advance (a conditional write) and by explicit user
// goal-setting.
type GoalState struct {
	// UserID - the owning user.
	UserID UserID

	// SmokeFreeGoalDays - the active target, in days. Always >= 1.
	SmokeFreeGoalDays int

	// GoalStartDate - when the user set the goal (nil if never set
	// explicitly). Preserved across ladder advances so cumulative progress
	// is not reset.
	GoalStartDate *time.Time

	// IsSet - whether the goal was set explicitly by the user rather than
	// defaulted. Only explicitly set goals auto-advance.
	IsSet bool
}

// DefaultGoalDays is the goal used when a user has no stored goal state.
const DefaultGoalDays = 7

// DefaultGoalState returns the goal state for a user who never set a goal.
func DefaultGoalState(userID UserID) GoalState {
	return GoalState{
		UserID:            userID,
		SmokeFreeGoalDays: DefaultGoalDays,
		GoalStartDate:     nil,
		IsSet:             false,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RAW RECORDS
// Raw records are what the store hands the normalizer: date and timestamp
// fields still encoded as strings the way clients submitted them.
// ══════════════════════════════════════════════════════════════════════════════

// RawSmokeLog is an unparsed smoke log record.
type RawSmokeLog struct {
	UserID     string
	Date       string // YYYY-MM-DD
	Cigarettes int
	Triggers   []string
}

// RawUrgeEvent is an unparsed urge event record.
type RawUrgeEvent struct {
	UserID    string
	Timestamp string // RFC 3339
	Trigger   string
}

// RawGameSession is an unparsed game session record.
type RawGameSession struct {
	UserID         string
	Timestamp      string // RFC 3339
	SecondsFocused int
	PointsEarned   int
}
