package query

import (
	"context"
	"errors"

	"github.com/respira-app/respira-server/internal/domain/insight"
	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CALENDAR QUERY
// Year view: every day of a year classified as future, smoked, smoke-free
// or untracked, plus the aggregated year stats.
// ══════════════════════════════════════════════════════════════════════════════

// GetCalendarQuery identifies the user and year.
type GetCalendarQuery struct {
	// UserID - the user's identifier (their email).
	UserID string

	// Year - calendar year to classify.
	Year int
}

// Validate checks the query parameters.
func (q *GetCalendarQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user id is required")
	}
	if q.Year < 1970 || q.Year > 9999 {
		return shared.ErrInvalidYear
	}
	return nil
}

// CalendarDayDTO is one classified day.
type CalendarDayDTO struct {
	// Date - the day as YYYY-MM-DD.
	Date string `json:"date"`

	// Status - "future", "smoked", "smoke-free" or "untracked".
	Status string `json:"status"`

	// Cigarettes - count logged for the day, 0 when unlogged.
	Cigarettes int `json:"cigarettes"`
}

// CalendarStatsDTO aggregates the year.
type CalendarStatsDTO struct {
	SmokeFreeDays   int     `json:"smoke_free_days"`
	DaysSmoked      int     `json:"days_smoked"`
	LongestStreak   int     `json:"longest_streak"`
	MoneySpent      int     `json:"money_spent"`
	TotalCigarettes int     `json:"total_cigarettes"`
	MonthlyCounts   [12]int `json:"monthly_counts"`
	FirstLogMonth   int     `json:"first_log_month"`
	MinYear         int     `json:"min_year"`
}

// GetCalendarResult is the year view.
type GetCalendarResult struct {
	CalendarDays []CalendarDayDTO `json:"calendar_days"`
	Stats        CalendarStatsDTO `json:"stats"`
}

// GetCalendarHandler serves the year calendar view.
type GetCalendarHandler struct {
	logs       tracking.LogRepository
	classifier *insight.Classifier
	normalizer *tracking.Normalizer
	now        nowFunc
}

// NewGetCalendarHandler creates a calendar handler.
func NewGetCalendarHandler(logs tracking.LogRepository, classifier *insight.Classifier) *GetCalendarHandler {
	if classifier == nil {
		classifier = insight.NewClassifier(DefaultUnitCost)
	}
	return &GetCalendarHandler{
		logs:       logs,
		classifier: classifier,
		normalizer: tracking.NewNormalizer(),
		now:        defaultNow,
	}
}

// Handle builds the calendar for one user and year.
func (h *GetCalendarHandler) Handle(ctx context.Context, query GetCalendarQuery) (*GetCalendarResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetCalendar", shared.ErrValidation, err.Error(), err)
	}

	userID := tracking.UserID(query.UserID)

	raw, err := h.logs.ListSmokeLogs(ctx, userID, tracking.Year(query.Year))
	if err != nil {
		return nil, shared.WrapError("query", "GetCalendar", shared.ErrServiceUnavailable, "failed to list smoke logs", err)
	}
	entries, err := h.normalizer.SmokeLogs(raw)
	if err != nil {
		return nil, err
	}

	firstLogDate, err := h.logs.GetFirstLogDate(ctx, userID)
	if err != nil {
		return nil, shared.WrapError("query", "GetCalendar", shared.ErrServiceUnavailable, "failed to get first log date", err)
	}

	days, stats := h.classifier.ClassifyYear(query.Year, entries, firstLogDate, h.now())

	result := &GetCalendarResult{
		CalendarDays: make([]CalendarDayDTO, 0, len(days)),
		Stats: CalendarStatsDTO{
			SmokeFreeDays:   stats.SmokeFreeDays,
			DaysSmoked:      stats.DaysSmoked,
			LongestStreak:   stats.LongestStreak,
			MoneySpent:      stats.MoneySpent,
			TotalCigarettes: stats.TotalCigarettes,
			MonthlyCounts:   stats.MonthlyCounts,
			FirstLogMonth:   stats.FirstLogMonth,
			MinYear:         stats.MinYear,
		},
	}
	for _, d := range days {
		result.CalendarDays = append(result.CalendarDays, CalendarDayDTO{
			Date:       d.DateStr,
			Status:     string(d.Status),
			Cigarettes: d.Cigarettes,
		})
	}
	return result, nil
}
