package query

import (
	"context"
	"errors"

	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET URGE STATS QUERY
// Urge-support usage summary: per-trigger counts, total events and the
// number of distinct days with at least one event.
// ══════════════════════════════════════════════════════════════════════════════

// GetUrgeStatsQuery identifies the user with an optional year filter.
type GetUrgeStatsQuery struct {
	// UserID - the user's identifier (their email).
	UserID string

	// Year - restrict to one calendar year; 0 means all time.
	Year int
}

// Validate checks the query parameters.
func (q *GetUrgeStatsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user id is required")
	}
	if q.Year != 0 && (q.Year < 1970 || q.Year > 9999) {
		return shared.ErrInvalidYear
	}
	return nil
}

// UrgeStatsResult summarizes urge-support usage.
type UrgeStatsResult struct {
	// TriggerCounts - occurrences per trigger label.
	TriggerCounts map[string]int `json:"trigger_counts"`

	// TotalUrges - number of urge events in range.
	TotalUrges int `json:"total_urges"`

	// TotalDays - distinct calendar days with at least one event.
	TotalDays int `json:"total_days"`
}

// GetUrgeStatsHandler serves urge stats.
type GetUrgeStatsHandler struct {
	logs       tracking.LogRepository
	normalizer *tracking.Normalizer
}

// NewGetUrgeStatsHandler creates an urge stats handler.
func NewGetUrgeStatsHandler(logs tracking.LogRepository) *GetUrgeStatsHandler {
	return &GetUrgeStatsHandler{
		logs:       logs,
		normalizer: tracking.NewNormalizer(),
	}
}

// Handle computes the stats for one user.
func (h *GetUrgeStatsHandler) Handle(ctx context.Context, query GetUrgeStatsQuery) (*UrgeStatsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetUrgeStats", shared.ErrValidation, err.Error(), err)
	}

	dateRange := tracking.DateRange{}
	if query.Year != 0 {
		dateRange = tracking.Year(query.Year)
	}

	raw, err := h.logs.ListUrgeEvents(ctx, tracking.UserID(query.UserID), dateRange)
	if err != nil {
		return nil, shared.WrapError("query", "GetUrgeStats", shared.ErrServiceUnavailable, "failed to list urge events", err)
	}
	urges, err := h.normalizer.UrgeEvents(raw)
	if err != nil {
		return nil, err
	}

	result := &UrgeStatsResult{
		TriggerCounts: make(map[string]int),
		TotalUrges:    len(urges),
	}

	days := make(map[string]struct{})
	for _, u := range urges {
		trigger := u.Trigger
		if trigger == "" {
			trigger = "Unknown"
		}
		result.TriggerCounts[trigger]++
		days[timeutil.FormatDateStr(u.Timestamp)] = struct{}{}
	}
	result.TotalDays = len(days)
	return result, nil
}
