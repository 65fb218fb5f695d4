package query

import (
	"context"
	"strings"
	"time"

	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// fakeLogRepo is an in-memory LogRepository over raw records.
type fakeLogRepo struct {
	smokeLogs    []tracking.RawSmokeLog
	urgeEvents   []tracking.RawUrgeEvent
	gameSessions []tracking.RawGameSession
}

func (r *fakeLogRepo) ListSmokeLogs(_ context.Context, userID tracking.UserID, dateRange tracking.DateRange) ([]tracking.RawSmokeLog, error) {
	var out []tracking.RawSmokeLog
	for _, l := range r.smokeLogs {
		if l.UserID != string(userID) || !rawDateInRange(l.Date, dateRange) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeLogRepo) ListUrgeEvents(_ context.Context, userID tracking.UserID, dateRange tracking.DateRange) ([]tracking.RawUrgeEvent, error) {
	var out []tracking.RawUrgeEvent
	for _, e := range r.urgeEvents {
		if e.UserID != string(userID) || !rawDateInRange(e.Timestamp, dateRange) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeLogRepo) ListGameSessions(_ context.Context, userID tracking.UserID, dateRange tracking.DateRange) ([]tracking.RawGameSession, error) {
	var out []tracking.RawGameSession
	for _, s := range r.gameSessions {
		if s.UserID != string(userID) || !rawDateInRange(s.Timestamp, dateRange) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeLogRepo) GetFirstLogDate(_ context.Context, userID tracking.UserID) (*time.Time, error) {
	var first *time.Time
	for _, l := range r.smokeLogs {
		if l.UserID != string(userID) {
			continue
		}
		day, err := timeutil.ParseDate(l.Date)
		if err != nil {
			continue
		}
		if first == nil || day.Before(*first) {
			d := day
			first = &d
		}
	}
	return first, nil
}

func (r *fakeLogRepo) UpsertSmokeLog(_ context.Context, entry tracking.SmokeLogEntry) error {
	date := timeutil.FormatDateStr(entry.Date)
	for i, l := range r.smokeLogs {
		if l.UserID == string(entry.UserID) && l.Date == date {
			r.smokeLogs[i].Cigarettes = int(entry.Cigarettes)
			r.smokeLogs[i].Triggers = entry.Triggers
			return nil
		}
	}
	r.smokeLogs = append(r.smokeLogs, tracking.RawSmokeLog{
		UserID:     string(entry.UserID),
		Date:       date,
		Cigarettes: int(entry.Cigarettes),
		Triggers:   entry.Triggers,
	})
	return nil
}

func (r *fakeLogRepo) SaveUrgeEvent(_ context.Context, event tracking.UrgeEvent) error {
	r.urgeEvents = append(r.urgeEvents, tracking.RawUrgeEvent{
		UserID:    string(event.UserID),
		Timestamp: event.Timestamp.Format(time.RFC3339),
		Trigger:   event.Trigger,
	})
	return nil
}

func (r *fakeLogRepo) SaveGameSession(_ context.Context, session tracking.GameSessionEvent) error {
	r.gameSessions = append(r.gameSessions, tracking.RawGameSession{
		UserID:         string(session.UserID),
		Timestamp:      session.Timestamp.Format(time.RFC3339),
		SecondsFocused: session.SecondsFocused,
		PointsEarned:   session.PointsEarned,
	})
	return nil
}

// rawDateInRange compares the YYYY-MM-DD prefix of a raw date or timestamp
// against the range bounds.
func rawDateInRange(raw string, dateRange tracking.DateRange) bool {
	if dateRange.IsZero() {
		return true
	}
	day := raw
	if i := strings.IndexByte(day, 'T'); i >= 0 {
		day = day[:i]
	}
	if !dateRange.From.IsZero() && day < timeutil.FormatDateStr(dateRange.From) {
		return false
	}
	if !dateRange.To.IsZero() && day > timeutil.FormatDateStr(dateRange.To) {
		return false
	}
	return true
}

// fakeGoalRepo is an in-memory GoalRepository.
type fakeGoalRepo struct {
	states map[tracking.UserID]*tracking.GoalState
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{states: make(map[tracking.UserID]*tracking.GoalState)}
}

func (r *fakeGoalRepo) GetGoalState(_ context.Context, userID tracking.UserID) (*tracking.GoalState, error) {
	s, ok := r.states[userID]
	if !ok {
		return nil, shared.ErrGoalStateNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeGoalRepo) SetGoal(_ context.Context, userID tracking.UserID, goalDays int, startDate time.Time) error {
	r.states[userID] = &tracking.GoalState{
		UserID:            userID,
		SmokeFreeGoalDays: goalDays,
		GoalStartDate:     &startDate,
		IsSet:             true,
	}
	return nil
}

func (r *fakeGoalRepo) AdvanceGoal(_ context.Context, userID tracking.UserID, expectedOldGoal, newGoal int) (bool, error) {
	s, ok := r.states[userID]
	if !ok || s.SmokeFreeGoalDays != expectedOldGoal {
		return false, nil
	}
	s.SmokeFreeGoalDays = newGoal
	return true, nil
}

// fakeCache is an in-memory ContextCache.
type fakeCache struct {
	payloads    map[tracking.UserID][]byte
	invalidated int
}

func newFakeCache() *fakeCache {
	return &fakeCache{payloads: make(map[tracking.UserID][]byte)}
}

func (c *fakeCache) GetContext(_ context.Context, userID tracking.UserID) ([]byte, error) {
	p, ok := c.payloads[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (c *fakeCache) SetContext(_ context.Context, userID tracking.UserID, payload []byte, _ time.Duration) error {
	c.payloads[userID] = payload
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, userID tracking.UserID) error {
	delete(c.payloads, userID)
	c.invalidated++
	return nil
}
