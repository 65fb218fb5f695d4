package query

import (
	"context"
	"errors"

	"github.com/respira-app/respira-server/internal/domain/insight"
	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LIFETIME STATS QUERY
// Headline numbers over the user's full history. Streaks here use the
// calendar-complete definition: every day since the first log counts,
// unlogged days count as smoke-free.
// ══════════════════════════════════════════════════════════════════════════════

// GetLifetimeStatsQuery identifies the user.
type GetLifetimeStatsQuery struct {
	// UserID - the user's identifier (their email).
	UserID string
}

// Validate checks the query parameters.
func (q *GetLifetimeStatsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user id is required")
	}
	return nil
}

// LifetimeStatsResult is the headline stats record.
type LifetimeStatsResult struct {
	// CurrentStreak - calendar-complete streak ending yesterday; 0 if the
	// user smoked today.
	CurrentStreak int `json:"current_streak"`

	// LongestStreak - longest calendar-complete smoke-free run.
	LongestStreak int `json:"longest_streak"`

	// TotalCigarettes - lifetime cigarette total.
	TotalCigarettes int `json:"total_cigarettes"`
}

// GetLifetimeStatsHandler serves lifetime stats.
type GetLifetimeStatsHandler struct {
	logs       tracking.LogRepository
	normalizer *tracking.Normalizer
	now        nowFunc
}

// NewGetLifetimeStatsHandler creates a lifetime stats handler.
func NewGetLifetimeStatsHandler(logs tracking.LogRepository) *GetLifetimeStatsHandler {
	return &GetLifetimeStatsHandler{
		logs:       logs,
		normalizer: tracking.NewNormalizer(),
		now:        defaultNow,
	}
}

// Handle computes the stats for one user.
func (h *GetLifetimeStatsHandler) Handle(ctx context.Context, query GetLifetimeStatsQuery) (*LifetimeStatsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetLifetimeStats", shared.ErrValidation, err.Error(), err)
	}

	raw, err := h.logs.ListSmokeLogs(ctx, tracking.UserID(query.UserID), tracking.DateRange{})
	if err != nil {
		return nil, shared.WrapError("query", "GetLifetimeStats", shared.ErrServiceUnavailable, "failed to list smoke logs", err)
	}
	entries, err := h.normalizer.SmokeLogs(raw)
	if err != nil {
		return nil, err
	}

	result := &LifetimeStatsResult{}
	if len(entries) == 0 {
		return result, nil
	}

	streak := insight.StreakPolicy{Mode: insight.CalendarComplete}.Compute(entries, h.now())
	result.CurrentStreak = streak.Current
	result.LongestStreak = streak.Longest
	for _, e := range entries {
		result.TotalCigarettes += int(e.Cigarettes)
	}
	return result, nil
}
