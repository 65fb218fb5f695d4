package tracking

import (
	"sort"

	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// EVENT NORMALIZER
// The store keeps dates and timestamps as the text clients submitted
// (YYYY-MM-DD days, RFC 3339 timestamps). The normalizer turns raw record
// lists into chronologically sorted, typed series - the only shape the
// analytics pipeline ever sees. The ingestion boundary validates input
// before it is stored, so a parse failure here means corrupted data and is
// reported as ErrMalformedRecord rather than skipped.
// ══════════════════════════════════════════════════════════════════════════════

// Normalizer converts raw store records into clean chronological series.
type Normalizer struct{}

// NewNormalizer creates a normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// SmokeLogs parses and sorts raw smoke logs by date, oldest first.
func (n *Normalizer) SmokeLogs(raw []RawSmokeLog) ([]SmokeLogEntry, error) {
	entries := make([]SmokeLogEntry, 0, len(raw))
	for _, r := range raw {
		day, err := timeutil.ParseDate(r.Date)
		if err != nil {
			return nil, shared.WrapError("tracking", "Normalize", shared.ErrInvalidFormat,
				"unparseable smoke log date "+r.Date, shared.ErrMalformedRecord)
		}
		entries = append(entries, SmokeLogEntry{
			UserID:     UserID(r.UserID),
			Date:       day,
			Cigarettes: CigaretteCount(r.Cigarettes),
			Triggers:   r.Triggers,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}

// UrgeEvents parses and sorts raw urge events by timestamp, oldest first.
func (n *Normalizer) UrgeEvents(raw []RawUrgeEvent) ([]UrgeEvent, error) {
	events := make([]UrgeEvent, 0, len(raw))
	for _, r := range raw {
		ts, err := timeutil.ParseTimestamp(r.Timestamp)
		if err != nil {
			return nil, shared.WrapError("tracking", "Normalize", shared.ErrInvalidFormat,
				"unparseable urge timestamp "+r.Timestamp, shared.ErrMalformedRecord)
		}
		events = append(events, UrgeEvent{
			UserID:    UserID(r.UserID),
			Timestamp: ts,
			Trigger:   r.Trigger,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}

// GameSessions parses and sorts raw game sessions by timestamp, oldest first.
func (n *Normalizer) GameSessions(raw []RawGameSession) ([]GameSessionEvent, error) {
	sessions := make([]GameSessionEvent, 0, len(raw))
	for _, r := range raw {
		ts, err := timeutil.ParseTimestamp(r.Timestamp)
		if err != nil {
			return nil, shared.WrapError("tracking", "Normalize", shared.ErrInvalidFormat,
				"unparseable game session timestamp "+r.Timestamp, shared.ErrMalformedRecord)
		}
		sessions = append(sessions, GameSessionEvent{
			UserID:         UserID(r.UserID),
			Timestamp:      ts,
			SecondsFocused: r.SecondsFocused,
			PointsEarned:   r.PointsEarned,
		})
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.Before(sessions[j].Timestamp)
	})
	return sessions, nil
}
