package query

import (
	"context"
	"errors"
	"math"

	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LOG STATS QUERY
// Compares the day's count against the most recent earlier log.
// ══════════════════════════════════════════════════════════════════════════════

// GetLogStatsQuery identifies the user and the day to compare.
type GetLogStatsQuery struct {
	// UserID - the user's identifier (their email).
	UserID string

	// Date - day to report on as YYYY-MM-DD; empty means today.
	Date string
}

// Validate checks the query parameters.
func (q *GetLogStatsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user id is required")
	}
	if q.Date != "" {
		if _, err := timeutil.ParseDate(q.Date); err != nil {
			return err
		}
	}
	return nil
}

// LogStatsResult compares a day against the previous logged day.
type LogStatsResult struct {
	// TodayCount - cigarettes logged on the requested day.
	TodayCount int `json:"today_count"`

	// LastLogCount - cigarettes on the most recent earlier log.
	LastLogCount int `json:"last_log_count"`

	// LastLogDate - date of that log as YYYY-MM-DD, empty if none.
	LastLogDate string `json:"last_log_date,omitempty"`

	// PercentageChange - absolute percent change vs the last log; 100 when
	// going from zero to a positive count.
	PercentageChange int `json:"percentage_change"`

	// IsIncrease - whether the day's count is above the last log.
	IsIncrease bool `json:"is_increase"`

	// HasLoggedToday - whether an entry exists for the requested day.
	HasLoggedToday bool `json:"has_logged_today"`

	// TodayTriggers - triggers recorded for the requested day.
	TodayTriggers []string `json:"today_triggers"`
}

// GetLogStatsHandler serves the day comparison.
type GetLogStatsHandler struct {
	logs       tracking.LogRepository
	normalizer *tracking.Normalizer
	now        nowFunc
}

// NewGetLogStatsHandler creates a log stats handler.
func NewGetLogStatsHandler(logs tracking.LogRepository) *GetLogStatsHandler {
	return &GetLogStatsHandler{
		logs:       logs,
		normalizer: tracking.NewNormalizer(),
		now:        defaultNow,
	}
}

// Handle computes the comparison for one user and day.
func (h *GetLogStatsHandler) Handle(ctx context.Context, query GetLogStatsQuery) (*LogStatsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetLogStats", shared.ErrValidation, err.Error(), err)
	}

	day := timeutil.StartOfDay(h.now())
	if query.Date != "" {
		parsed, err := timeutil.ParseDate(query.Date)
		if err != nil {
			return nil, shared.WrapError("query", "GetLogStats", shared.ErrInvalidFormat, "invalid date", err)
		}
		day = parsed
	}

	raw, err := h.logs.ListSmokeLogs(ctx, tracking.UserID(query.UserID), tracking.DateRange{To: day})
	if err != nil {
		return nil, shared.WrapError("query", "GetLogStats", shared.ErrServiceUnavailable, "failed to list smoke logs", err)
	}
	entries, err := h.normalizer.SmokeLogs(raw)
	if err != nil {
		return nil, err
	}

	result := &LogStatsResult{TodayTriggers: []string{}}

	var last *tracking.SmokeLogEntry
	for i := range entries {
		e := entries[i]
		switch {
		case timeutil.IsSameDay(e.Date, day):
			result.TodayCount = int(e.Cigarettes)
			result.HasLoggedToday = true
			if len(e.Triggers) > 0 {
				result.TodayTriggers = e.Triggers
			}
		case e.Date.Before(day):
			// Entries are sorted, so the last earlier one wins.
			last = &entries[i]
		}
	}

	if last != nil {
		result.LastLogCount = int(last.Cigarettes)
		result.LastLogDate = timeutil.FormatDateStr(last.Date)
	}

	result.PercentageChange, result.IsIncrease = percentageChange(result.LastLogCount, result.TodayCount)
	return result, nil
}

// percentageChange returns the absolute percent change from previous to
// current, treating a jump from zero as a 100% increase.
func percentageChange(previous, current int) (int, bool) {
	if previous == 0 {
		if current > 0 {
			return 100, true
		}
		return 0, false
	}
	change := current - previous
	percent := int(math.Round(math.Abs(float64(change)) / float64(previous) * 100))
	return percent, change > 0
}
