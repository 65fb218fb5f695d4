package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// LogRepository implements tracking.LogRepository for PostgreSQL.
// Date and timestamp columns hold the client-submitted strings; range
// filters rely on the lexicographic order of ISO dates.
type LogRepository struct {
	conn *Connection
}

// NewLogRepository creates a new LogRepository.
func NewLogRepository(conn *Connection) *LogRepository {
	return &LogRepository{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

// ListSmokeLogs returns a user's smoke logs, optionally bounded by range.
func (r *LogRepository) ListSmokeLogs(ctx context.Context, userID tracking.UserID, dateRange tracking.DateRange) ([]tracking.RawSmokeLog, error) {
	query := `
		SELECT user_id, date, cigarettes, triggers
		FROM smoke_logs
		WHERE user_id = $1
	`
	args := []interface{}{string(userID)}
	query, args = appendRangeFilter(query, args, "date", dateRange)
	query += " ORDER BY date"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query smoke logs: %w", err)
	}
	defer rows.Close()

	var logs []tracking.RawSmokeLog
	for rows.Next() {
		var l tracking.RawSmokeLog
		if err := rows.Scan(&l.UserID, &l.Date, &l.Cigarettes, &l.Triggers); err != nil {
			return nil, fmt.Errorf("failed to scan smoke log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// ListUrgeEvents returns a user's urge events, optionally bounded by range.
func (r *LogRepository) ListUrgeEvents(ctx context.Context, userID tracking.UserID, dateRange tracking.DateRange) ([]tracking.RawUrgeEvent, error) {
	query := `
		SELECT user_id, timestamp, trigger
		FROM urge_events
		WHERE user_id = $1
	`
	args := []interface{}{string(userID)}
	query, args = appendRangeFilter(query, args, "timestamp", dateRange)
	query += " ORDER BY timestamp"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query urge events: %w", err)
	}
	defer rows.Close()

	var events []tracking.RawUrgeEvent
	for rows.Next() {
		var e tracking.RawUrgeEvent
		if err := rows.Scan(&e.UserID, &e.Timestamp, &e.Trigger); err != nil {
			return nil, fmt.Errorf("failed to scan urge event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListGameSessions returns a user's game sessions, optionally bounded by range.
func (r *LogRepository) ListGameSessions(ctx context.Context, userID tracking.UserID, dateRange tracking.DateRange) ([]tracking.RawGameSession, error) {
	query := `
		SELECT user_id, timestamp, seconds_focused, points_earned
		FROM game_sessions
		WHERE user_id = $1
	`
	args := []interface{}{string(userID)}
	query, args = appendRangeFilter(query, args, "timestamp", dateRange)
	query += " ORDER BY timestamp"

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query game sessions: %w", err)
	}
	defer rows.Close()

	var sessions []tracking.RawGameSession
	for rows.Next() {
		var s tracking.RawGameSession
		if err := rows.Scan(&s.UserID, &s.Timestamp, &s.SecondsFocused, &s.PointsEarned); err != nil {
			return nil, fmt.Errorf("failed to scan game session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetFirstLogDate returns the date of the user's first-ever smoke log, or
// nil if the user has never logged.
func (r *LogRepository) GetFirstLogDate(ctx context.Context, userID tracking.UserID) (*time.Time, error) {
	query := `SELECT MIN(date) FROM smoke_logs WHERE user_id = $1`

	var dateStr *string
	if err := r.conn.QueryRow(ctx, query, string(userID)).Scan(&dateStr); err != nil {
		return nil, fmt.Errorf("failed to query first log date: %w", err)
	}
	if dateStr == nil {
		return nil, nil
	}

	day, err := timeutil.ParseDate(*dateStr)
	if err != nil {
		return nil, err
	}
	return &day, nil
}

// ListActiveUsers returns user IDs with at least one smoke log on or after
// the given day. The cache-warming job uses this to bound its work to
// recently active users.
func (r *LogRepository) ListActiveUsers(ctx context.Context, since time.Time) ([]tracking.UserID, error) {
	query := `
		SELECT DISTINCT user_id
		FROM smoke_logs
		WHERE date >= $1
		ORDER BY user_id
	`

	rows, err := r.conn.Query(ctx, query, timeutil.FormatDateStr(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer rows.Close()

	var users []tracking.UserID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		users = append(users, tracking.UserID(id))
	}
	return users, rows.Err()
}

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

// UpsertSmokeLog creates or replaces the entry for (user, date).
func (r *LogRepository) UpsertSmokeLog(ctx context.Context, entry tracking.SmokeLogEntry) error {
	query := `
		INSERT INTO smoke_logs (id, user_id, date, cigarettes, triggers)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, date) DO UPDATE
		SET cigarettes = EXCLUDED.cigarettes,
		    triggers = EXCLUDED.triggers,
		    updated_at = NOW()
	`
	triggers := entry.Triggers
	if triggers == nil {
		triggers = []string{}
	}
	_, err := r.conn.Exec(ctx, query,
		uuid.New().String(),
		string(entry.UserID),
		timeutil.FormatDateStr(entry.Date),
		int(entry.Cigarettes),
		triggers,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert smoke log: %w", err)
	}
	return nil
}

// SaveUrgeEvent appends an urge event.
func (r *LogRepository) SaveUrgeEvent(ctx context.Context, event tracking.UrgeEvent) error {
	query := `
		INSERT INTO urge_events (id, user_id, timestamp, trigger)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.conn.Exec(ctx, query,
		uuid.New().String(),
		string(event.UserID),
		event.Timestamp.UTC().Format(time.RFC3339),
		event.Trigger,
	)
	if err != nil {
		return fmt.Errorf("failed to save urge event: %w", err)
	}
	return nil
}

// SaveGameSession appends a game session.
func (r *LogRepository) SaveGameSession(ctx context.Context, session tracking.GameSessionEvent) error {
	query := `
		INSERT INTO game_sessions (id, user_id, timestamp, seconds_focused, points_earned)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.conn.Exec(ctx, query,
		uuid.New().String(),
		string(session.UserID),
		session.Timestamp.UTC().Format(time.RFC3339),
		session.SecondsFocused,
		session.PointsEarned,
	)
	if err != nil {
		return fmt.Errorf("failed to save game session: %w", err)
	}
	return nil
}

// appendRangeFilter adds lexicographic date-prefix bounds for an optional
// range. ISO dates and timestamps sort lexicographically, so a bare upper
// date bound needs a day suffix to include same-day timestamps.
func appendRangeFilter(query string, args []interface{}, column string, dateRange tracking.DateRange) (string, []interface{}) {
	if !dateRange.From.IsZero() {
		args = append(args, timeutil.FormatDateStr(dateRange.From))
		query += fmt.Sprintf(" AND %s >= $%d", column, len(args))
	}
	if !dateRange.To.IsZero() {
		// "2025-06-30~" sorts after any timestamp on 2025-06-30.
		args = append(args, timeutil.FormatDateStr(dateRange.To)+"~")
		query += fmt.Sprintf(" AND %s <= $%d", column, len(args))
	}
	return query, args
}
