package query

import (
	"context"
	"errors"

	"github.com/respira-app/respira-server/internal/domain/insight"
	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET INSIGHTS QUERY
// The dashboard payload: weekly trend chart for the current month, monthly
// reduction, goal path, risk patterns and consistency standing. A user
// with no smoke logs gets has_data=false and nothing else.
// ══════════════════════════════════════════════════════════════════════════════

// NoDataMessage invites a user with no logs to start.
const NoDataMessage = "Start logging to see insights!"

// GetInsightsQuery identifies the user.
type GetInsightsQuery struct {
	// UserID - the user's identifier (their email).
	UserID string
}

// Validate checks the query parameters.
func (q *GetInsightsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user id is required")
	}
	return nil
}

// TrendSectionDTO is the current-month weekly chart.
type TrendSectionDTO struct {
	// Data - cigarette sum per calendar week of the month.
	Data []int `json:"data"`

	// Labels - matching "Week N" labels.
	Labels []string `json:"labels"`
}

// ReductionSectionDTO compares the two most recent months.
type ReductionSectionDTO struct {
	// Rate - percent reduction vs the previous month, one decimal.
	Rate float64 `json:"rate"`

	// Status - supportive status line.
	Status string `json:"status"`
}

// PathSectionDTO is the goal path.
type PathSectionDTO struct {
	CurrentProgress int    `json:"current_progress"`
	SmokeFreeGoal   int    `json:"smoke_free_goal"`
	GoalDate        string `json:"goal_date"`
	Probability     int    `json:"probability"`
	IsGoalSet       bool   `json:"is_goal_set"`
}

// PatternsSectionDTO surfaces risk patterns.
type PatternsSectionDTO struct {
	// HighRiskTime - formatted peak urge time, "Unknown" without data.
	HighRiskTime string `json:"high_risk_time"`

	// HighRiskDay - peak smoking day of month, 0 without data.
	HighRiskDay int `json:"high_risk_day"`

	// TopTriggers - up to three most frequent triggers as "label (Nx)".
	TopTriggers []string `json:"top_triggers"`
}

// ConsistencySectionDTO is the score plus its qualitative standing.
type ConsistencySectionDTO struct {
	Score    int    `json:"score"`
	Standing string `json:"standing"`
}

// GetInsightsResult is the full dashboard payload.
type GetInsightsResult struct {
	HasData     bool                   `json:"has_data"`
	Message     string                 `json:"message,omitempty"`
	Trend       *TrendSectionDTO       `json:"trend,omitempty"`
	Reduction   *ReductionSectionDTO   `json:"reduction,omitempty"`
	Path        *PathSectionDTO        `json:"path,omitempty"`
	Patterns    *PatternsSectionDTO    `json:"patterns,omitempty"`
	Consistency *ConsistencySectionDTO `json:"consistency,omitempty"`
}

// GetInsightsHandler serves the dashboard.
type GetInsightsHandler struct {
	logs       tracking.LogRepository
	goals      tracking.GoalRepository
	projector  *insight.Projector
	normalizer *tracking.Normalizer
	detector   *insight.PatternDetector
	analyzer   *insight.Analyzer
	now        nowFunc
}

// NewGetInsightsHandler creates an insights handler. A nil projector falls
// back to the default ladder over the goal repository.
func NewGetInsightsHandler(
	logs tracking.LogRepository,
	goals tracking.GoalRepository,
	projector *insight.Projector,
) *GetInsightsHandler {
	if projector == nil {
		projector = insight.NewProjector(nil, goals)
	}
	return &GetInsightsHandler{
		logs:       logs,
		goals:      goals,
		projector:  projector,
		normalizer: tracking.NewNormalizer(),
		detector:   insight.NewPatternDetector(),
		analyzer:   insight.NewAnalyzer(),
		now:        defaultNow,
	}
}

// Handle builds the dashboard payload for one user.
func (h *GetInsightsHandler) Handle(ctx context.Context, query GetInsightsQuery) (*GetInsightsResult, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetInsights", shared.ErrValidation, err.Error(), err)
	}

	userID := tracking.UserID(query.UserID)

	rawLogs, err := h.logs.ListSmokeLogs(ctx, userID, tracking.DateRange{})
	if err != nil {
		return nil, shared.WrapError("query", "GetInsights", shared.ErrServiceUnavailable, "failed to list smoke logs", err)
	}
	if len(rawLogs) == 0 {
		return &GetInsightsResult{HasData: false, Message: NoDataMessage}, nil
	}

	rawUrges, err := h.logs.ListUrgeEvents(ctx, userID, tracking.DateRange{})
	if err != nil {
		return nil, shared.WrapError("query", "GetInsights", shared.ErrServiceUnavailable, "failed to list urge events", err)
	}
	rawSessions, err := h.logs.ListGameSessions(ctx, userID, tracking.DateRange{})
	if err != nil {
		return nil, shared.WrapError("query", "GetInsights", shared.ErrServiceUnavailable, "failed to list game sessions", err)
	}

	entries, err := h.normalizer.SmokeLogs(rawLogs)
	if err != nil {
		return nil, err
	}
	urges, err := h.normalizer.UrgeEvents(rawUrges)
	if err != nil {
		return nil, err
	}
	sessions, err := h.normalizer.GameSessions(rawSessions)
	if err != nil {
		return nil, err
	}

	now := h.now()
	state := h.goalState(ctx, userID)

	// Goal path, with the ladder advance side effect.
	proj, err := h.projector.Project(ctx, state, entries, now)
	if err != nil {
		return nil, err
	}

	series := h.analyzer.CurrentMonthWeekly(entries, now)
	monthly := h.analyzer.Monthly(entries)
	patterns := h.detector.Detect(entries, urges)

	smokeFreeDays := 0
	for _, e := range entries {
		if e.IsSmokeFree() {
			smokeFreeDays++
		}
	}

	// The streak that feeds the score and standing is the goal-scoped one.
	score := insight.ConsistencyScore(insight.ScoreInput{
		SmokeFreeDays:   smokeFreeDays,
		GoalDays:        proj.GoalDays,
		CurrentStreak:   proj.CurrentProgress,
		UrgeSupportUses: len(urges),
		GameSessions:    len(sessions),
	})

	triggers := make([]string, 0, len(patterns.TopTriggers))
	for _, tc := range patterns.TopTriggers {
		triggers = append(triggers, tc.Format())
	}

	return &GetInsightsResult{
		HasData: true,
		Trend: &TrendSectionDTO{
			Data:   series.Data,
			Labels: series.Labels,
		},
		Reduction: &ReductionSectionDTO{
			Rate:   monthly.ReductionRate,
			Status: monthly.Status,
		},
		Path: &PathSectionDTO{
			CurrentProgress: proj.CurrentProgress,
			SmokeFreeGoal:   proj.GoalDays,
			GoalDate:        proj.GoalDate,
			Probability:     proj.Probability,
			IsGoalSet:       proj.IsGoalSet,
		},
		Patterns: &PatternsSectionDTO{
			HighRiskTime: patterns.HighRiskTime,
			HighRiskDay:  patterns.HighRiskDay,
			TopTriggers:  triggers,
		},
		Consistency: &ConsistencySectionDTO{
			Score:    score,
			Standing: insight.Standing(score),
		},
	}, nil
}

// goalState loads the user's goal, defaulting when absent.
func (h *GetInsightsHandler) goalState(ctx context.Context, userID tracking.UserID) tracking.GoalState {
	state, err := h.goals.GetGoalState(ctx, userID)
	if err != nil || state == nil {
		return tracking.DefaultGoalState(userID)
	}
	return *state
}
