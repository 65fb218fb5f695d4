package query

import (
	"context"
	"errors"

	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET GAME STATS QUERY
// Focus game summary: total points earned and the longest single session.
// ══════════════════════════════════════════════════════════════════════════════

// GetGameStatsQuery identifies the user with an optional year filter.
type GetGameStatsQuery struct {
	// UserID - the user's identifier (their email).
	UserID string

	// Year - restrict to one calendar year; 0 means all time.
	Year int
}

// Validate checks the query parameters.
func (q *GetGameStatsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user id is required")
	}
	if q.Year != 0 && (q.Year < 1970 || q.Year > 9999) {
		return shared.ErrInvalidYear
	}
	return nil
}

// GameStatsResult summarizes focus game usage.
type GameStatsResult struct {
	// TotalPoints - points earned across all sessions in range.
	TotalPoints int `json:"total_points"`

	// MaxSecondsFocused - longest single session in seconds.
	MaxSecondsFocused int `json:"max_seconds_focused"`
}

// GetGameStatsHandler serves game stats.
type GetGameStatsHandler struct {
	logs       tracking.LogRepository
	normalizer *tracking.Normalizer
}

// NewGetGameStatsHandler creates a game stats handler.
func NewGetGameStatsHandler(logs tracking.LogRepository) *GetGameStatsHandler {
	return &GetGameStatsHandler{
		logs:       logs,
		normalizer: tracking.NewNormalizer(),
	}
}

// Handle computes the stats for one user.
func (h *GetGameStatsHandler) Handle(ctx context.Context, query GetGameStatsQuery) (*GameStatsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetGameStats", shared.ErrValidation, err.Error(), err)
	}

	dateRange := tracking.DateRange{}
	if query.Year != 0 {
		dateRange = tracking.Year(query.Year)
	}

	raw, err := h.logs.ListGameSessions(ctx, tracking.UserID(query.UserID), dateRange)
	if err != nil {
		return nil, shared.WrapError("query", "GetGameStats", shared.ErrServiceUnavailable, "failed to list game sessions", err)
	}
	sessions, err := h.normalizer.GameSessions(raw)
	if err != nil {
		return nil, err
	}

	result := &GameStatsResult{}
	for _, s := range sessions {
		result.TotalPoints += s.PointsEarned
		if s.SecondsFocused > result.MaxSecondsFocused {
			result.MaxSecondsFocused = s.SecondsFocused
		}
	}
	return result, nil
}
