// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/respira-app/respira-server/internal/domain/insight"
	"github.com/respira-app/respira-server/internal/domain/shared"
	"github.com/respira-app/respira-server/internal/domain/tracking"
	"github.com/respira-app/respira-server/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET PROGRESS CONTEXT QUERY
// Builds the full derived progress context for one user: streaks, trend,
// risk patterns, consistency score, goal and reward state. This is the
// record the coach prompt builder and the dashboard views consume.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultUnitCost is the per-smoking-day cost used when none is configured.
const DefaultUnitCost = 20

// DefaultContextTTL bounds how long a cached context stays valid.
const DefaultContextTTL = 15 * time.Minute

// GetProgressContextQuery identifies the user to build context for.
type GetProgressContextQuery struct {
	// UserID - the user's identifier (their email).
	UserID string

	// ProfileSummary - optional free-text profile summary supplied by the
	// caller; passed through into the context untouched.
	ProfileSummary string

	// SkipCache - force a fresh computation.
	SkipCache bool
}

// Validate checks the query parameters.
func (q *GetProgressContextQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user id is required")
	}
	return nil
}

// DerivedContext is the flat derived-progress record. It is ephemeral:
// recomputed from the event log on demand, never stored as a source of
// truth.
type DerivedContext struct {
	// SmokeFreeGoal - the user's active goal in days.
	SmokeFreeGoal int `json:"smoke_free_goal"`

	// CurrentSmokeFreeDays - lifetime count of logged zero-cigarette days.
	CurrentSmokeFreeDays int `json:"current_smoke_free_days"`

	// TotalCigarettes - lifetime cigarette total.
	TotalCigarettes int `json:"total_cigarettes"`

	// DaysLogged - number of logged days.
	DaysLogged int `json:"days_logged"`

	// DaysSmoked - number of logged days with at least one cigarette.
	DaysSmoked int `json:"days_smoked"`

	// CurrentStreak - logged-entries current streak.
	CurrentStreak int `json:"current_streak"`

	// LongestStreak - logged-entries longest streak.
	LongestStreak int `json:"longest_streak"`

	// WorstDay - weekday name of the highest-count entry, empty without logs.
	WorstDay string `json:"worst_day,omitempty"`

	// HighRiskTime - formatted peak urge time, "Unknown" without urge data.
	HighRiskTime string `json:"high_risk_time"`

	// TopTriggers - up to three most frequent triggers as "label (Nx)".
	TopTriggers []string `json:"top_triggers"`

	// WeeklyAvg - mean cigarettes per logged entry this week, one decimal.
	WeeklyAvg float64 `json:"weekly_avg"`

	// LastWeekAvg - mean cigarettes per logged entry last week, one decimal.
	LastWeekAvg float64 `json:"last_week_avg"`

	// Trend - "improving", "increasing" or "steady".
	Trend string `json:"trend"`

	// ReductionPercent - whole-percent weekly reduction, only when improving.
	ReductionPercent int `json:"reduction_percent"`

	// UrgeSupportUses - number of urge-support events recorded.
	UrgeSupportUses int `json:"urge_support_uses"`

	// GameSessions - number of focus game sessions recorded.
	GameSessions int `json:"game_sessions"`

	// TotalFocusPoints - lifetime focus game points.
	TotalFocusPoints int `json:"total_focus_points"`

	// MoneySpent - days smoked times the unit cost.
	MoneySpent int `json:"money_spent"`

	// ConsistencyScore - composite 0-100 score.
	ConsistencyScore int `json:"consistency_score"`

	// UnlockedRewardsCount - number of earned milestone badges.
	UnlockedRewardsCount int `json:"unlocked_rewards_count"`

	// NextRewardName - first unearned badge, empty when all are earned.
	NextRewardName string `json:"next_reward_name,omitempty"`

	// ProfileSummary - caller-supplied profile text, if any.
	ProfileSummary string `json:"profile_summary,omitempty"`
}

// EmptyContext returns the zero-activity context for a user with no logs.
func EmptyContext() DerivedContext {
	return DerivedContext{
		SmokeFreeGoal: tracking.DefaultGoalDays,
		HighRiskTime:  insight.UnknownRiskTime,
		Trend:         string(insight.TrendSteady),
		TopTriggers:   []string{},
	}
}

// GetProgressContextHandler builds derived contexts.
type GetProgressContextHandler struct {
	logs       tracking.LogRepository
	goals      tracking.GoalRepository
	cache      tracking.ContextCache
	normalizer *tracking.Normalizer
	detector   *insight.PatternDetector
	analyzer   *insight.Analyzer
	rewards    *insight.Engine
	unitCost   int
	cacheTTL   time.Duration
	now        nowFunc
}

// NewGetProgressContextHandler creates a context handler. The cache may be
// nil; unitCost and cacheTTL fall back to defaults when non-positive.
func NewGetProgressContextHandler(
	logs tracking.LogRepository,
	goals tracking.GoalRepository,
	cache tracking.ContextCache,
	rewards *insight.Engine,
	unitCost int,
	cacheTTL time.Duration,
) *GetProgressContextHandler {
	if rewards == nil {
		rewards = insight.NewEngine(nil)
	}
	if unitCost <= 0 {
		unitCost = DefaultUnitCost
	}
	if cacheTTL <= 0 {
		cacheTTL = DefaultContextTTL
	}
	return &GetProgressContextHandler{
		logs:       logs,
		goals:      goals,
		cache:      cache,
		normalizer: tracking.NewNormalizer(),
		detector:   insight.NewPatternDetector(),
		analyzer:   insight.NewAnalyzer(),
		rewards:    rewards,
		unitCost:   unitCost,
		cacheTTL:   cacheTTL,
		now:        defaultNow,
	}
}

// Handle builds the derived context for a user.
func (h *GetProgressContextHandler) Handle(ctx context.Context, query GetProgressContextQuery) (*DerivedContext, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetProgressContext", shared.ErrValidation, err.Error(), err)
	}

	userID := tracking.UserID(query.UserID)

	if !query.SkipCache {
		if cached := h.tryGetFromCache(ctx, userID); cached != nil {
			if query.ProfileSummary != "" {
				cached.ProfileSummary = query.ProfileSummary
			}
			return cached, nil
		}
	}

	dc, err := h.compute(ctx, userID)
	if err != nil {
		return nil, err
	}
	dc.ProfileSummary = query.ProfileSummary

	h.storeInCache(ctx, userID, dc)
	return dc, nil
}

// compute derives the context from the full event log.
func (h *GetProgressContextHandler) compute(ctx context.Context, userID tracking.UserID) (*DerivedContext, error) {
	rawLogs, err := h.logs.ListSmokeLogs(ctx, userID, tracking.DateRange{})
	if err != nil {
		return nil, shared.WrapError("query", "GetProgressContext", shared.ErrServiceUnavailable, "failed to list smoke logs", err)
	}
	rawUrges, err := h.logs.ListUrgeEvents(ctx, userID, tracking.DateRange{})
	if err != nil {
		return nil, shared.WrapError("query", "GetProgressContext", shared.ErrServiceUnavailable, "failed to list urge events", err)
	}
	rawSessions, err := h.logs.ListGameSessions(ctx, userID, tracking.DateRange{})
	if err != nil {
		return nil, shared.WrapError("query", "GetProgressContext", shared.ErrServiceUnavailable, "failed to list game sessions", err)
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

	state := h.goalState(ctx, userID)
	now := h.now()

	dc := EmptyContext()
	dc.SmokeFreeGoal = state.SmokeFreeGoalDays
	dc.UrgeSupportUses = len(urges)
	dc.GameSessions = len(sessions)
	for _, s := range sessions {
		dc.TotalFocusPoints += s.PointsEarned
	}

	if len(entries) > 0 {
		dc.DaysLogged = len(entries)
		worst := entries[0]
		for _, e := range entries {
			dc.TotalCigarettes += int(e.Cigarettes)
			if e.IsSmokeFree() {
				dc.CurrentSmokeFreeDays++
			} else {
				dc.DaysSmoked++
			}
			if e.Cigarettes > worst.Cigarettes {
				worst = e
			}
		}
		dc.MoneySpent = dc.DaysSmoked * h.unitCost
		dc.WorstDay = timeutil.WeekdayName(worst.Date)

		streak := insight.StreakPolicy{Mode: insight.LoggedEntriesOnly}.Compute(entries, now)
		dc.CurrentStreak = streak.Current
		dc.LongestStreak = streak.Longest

		weekly := h.analyzer.Weekly(entries, now)
		dc.WeeklyAvg = weekly.ThisWeekAvg
		dc.LastWeekAvg = weekly.LastWeekAvg
		dc.Trend = string(weekly.Trend)
		dc.ReductionPercent = weekly.ReductionPercent
	}

	patterns := h.detector.Detect(entries, urges)
	dc.HighRiskTime = patterns.HighRiskTime
	for _, tc := range patterns.TopTriggers {
		dc.TopTriggers = append(dc.TopTriggers, tc.Format())
	}

	dc.ConsistencyScore = insight.ConsistencyScore(insight.ScoreInput{
		SmokeFreeDays:   dc.CurrentSmokeFreeDays,
		GoalDays:        dc.SmokeFreeGoal,
		CurrentStreak:   dc.CurrentStreak,
		UrgeSupportUses: dc.UrgeSupportUses,
		GameSessions:    dc.GameSessions,
	})

	rewards := h.rewards.Evaluate(insight.RewardMetrics{
		CurrentStreak:    dc.CurrentStreak,
		UrgeSupportUses:  dc.UrgeSupportUses,
		TotalFocusPoints: dc.TotalFocusPoints,
	})
	dc.UnlockedRewardsCount = rewards.UnlockedCount
	dc.NextRewardName = rewards.NextRewardName

	return &dc, nil
}

// goalState loads the user's goal, falling back to the default when the
// user never set one.
func (h *GetProgressContextHandler) goalState(ctx context.Context, userID tracking.UserID) tracking.GoalState {
	state, err := h.goals.GetGoalState(ctx, userID)
	if err != nil || state == nil {
		return tracking.DefaultGoalState(userID)
	}
	return *state
}

// tryGetFromCache returns a cached context, or nil on any miss or decode
// failure. Cache problems never fail the query.
func (h *GetProgressContextHandler) tryGetFromCache(ctx context.Context, userID tracking.UserID) *DerivedContext {
	if h.cache == nil {
		return nil
	}
	payload, err := h.cache.GetContext(ctx, userID)
	if err != nil {
		return nil
	}
	var dc DerivedContext
	if err := json.Unmarshal(payload, &dc); err != nil {
		return nil
	}
	return &dc
}

// storeInCache caches a freshly computed context. Failures are ignored.
func (h *GetProgressContextHandler) storeInCache(ctx context.Context, userID tracking.UserID, dc *DerivedContext) {
	if h.cache == nil {
		return
	}
	payload, err := json.Marshal(dc)
	if err != nil {
		return
	}
	_ = h.cache.SetContext(ctx, userID, payload, h.cacheTTL)
}
