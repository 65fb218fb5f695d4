package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles and gradual rollouts.
// Supports percentage rollout, per-user overrides, and time-based
// activation. Rollout buckets are assigned by hashing the user ID so a
// user stays in the same bucket across sessions.
type FeatureFlags struct {
	mu sync.RWMutex

	// Core features
	features map[string]*Feature

	// Override rules (for testing/debugging)
	userOverrides map[string]map[string]bool // userID -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Users are assigned based on hash of their ID
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time

	// A/B test variant (for experiments)
	Variants []string
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	UserID string // user identifier (email)
}

// Predefined feature flag names.
const (
	// === Insights Features ===
	FeatureInsightsTrend       = "insights.trend"       // Weekly trend chart
	FeatureInsightsReduction   = "insights.reduction"   // Month-over-month reduction
	FeatureInsightsPath        = "insights.path"        // Goal path projection
	FeatureInsightsPatterns    = "insights.patterns"    // Risk pattern detection
	FeatureInsightsConsistency = "insights.consistency" // Consistency score

	// === Coach Features ===
	FeatureCoachChat         = "coach.chat"          // Conversational companion
	FeatureCoachDailyInsight = "coach.daily_insight" // One-line daily insight

	// === Tracking Features ===
	FeatureTrackingUrges   = "tracking.urges"   // Urge support logging
	FeatureTrackingGames   = "tracking.games"   // Focus game sessions
	FeatureTrackingRewards = "tracking.rewards" // Reward ladder

	// === Experimental Features ===
	FeatureExperimentalCacheWarm = "experimental.cache_warm" // Background context warming
	FeatureExperimentalRiskAlert = "experimental.risk_alert" // Proactive high-risk-time nudges
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:      make(map[string]*Feature),
		userOverrides: make(map[string]map[string]bool),
	}

	// Initialize all features with defaults
	ff.initializeDefaults()

	// Load overrides from environment
	ff.loadFromEnvironment()

	return ff
}

// initializeDefaults sets up all features with default values.
func (ff *FeatureFlags) initializeDefaults() {
	// Insights features - the core dashboard, enabled by default
	ff.features[FeatureInsightsTrend] = &Feature{
		Name:           FeatureInsightsTrend,
		Description:    "Weekly trend chart for the current month",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureInsightsReduction] = &Feature{
		Name:           FeatureInsightsReduction,
		Description:    "Month-over-month reduction rate",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureInsightsPath] = &Feature{
		Name:           FeatureInsightsPath,
		Description:    "Goal path with completion probability",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureInsightsPatterns] = &Feature{
		Name:           FeatureInsightsPatterns,
		Description:    "High-risk time and trigger detection",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureInsightsConsistency] = &Feature{
		Name:           FeatureInsightsConsistency,
		Description:    "Logging consistency score",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Coach features
	ff.features[FeatureCoachChat] = &Feature{
		Name:           FeatureCoachChat,
		Description:    "Data-grounded conversational companion",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureCoachDailyInsight] = &Feature{
		Name:           FeatureCoachDailyInsight,
		Description:    "One-line daily insight on the home screen",
		Enabled:        true,
		RolloutPercent: 50, // Gradual rollout
	}

	// Tracking features
	ff.features[FeatureTrackingUrges] = &Feature{
		Name:           FeatureTrackingUrges,
		Description:    "Log urge-support tool usage",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureTrackingGames] = &Feature{
		Name:           FeatureTrackingGames,
		Description:    "Focus game session tracking",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureTrackingRewards] = &Feature{
		Name:           FeatureTrackingRewards,
		Description:    "Engagement-based reward ladder",
		Enabled:        true,
		RolloutPercent: 100,
	}

	// Experimental features - disabled or partial by default
	ff.features[FeatureExperimentalCacheWarm] = &Feature{
		Name:           FeatureExperimentalCacheWarm,
		Description:    "Warm derived contexts in the background",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeatureExperimentalRiskAlert] = &Feature{
		Name:           FeatureExperimentalRiskAlert,
		Description:    "Proactive nudges before high-risk times",
		Enabled:        false,
		RolloutPercent: 0,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_COACH_CHAT=true
// Example: FEATURE_COACH_DAILY_INSIGHT=50 (50% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		envKey := featureNameToEnvKey(name)
		if val := os.Getenv(envKey); val != "" {
			// Try parsing as boolean
			if b, err := strconv.ParseBool(val); err == nil {
				feature.Enabled = b
				if b {
					feature.RolloutPercent = 100
				} else {
					feature.RolloutPercent = 0
				}
				continue
			}

			// Try parsing as percentage
			if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
				feature.Enabled = p > 0
				feature.RolloutPercent = p
			}
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "coach.daily_insight" -> "FEATURE_COACH_DAILY_INSIGHT"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	// Check user overrides first
	if ctx != nil && ctx.UserID != "" {
		if userOverrides, ok := ff.userOverrides[ctx.UserID]; ok {
			if enabled, ok := userOverrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	// Check if feature is enabled at all
	if !feature.Enabled {
		return false
	}

	// Check time-based activation
	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	// Check rollout percentage
	if feature.RolloutPercent < 100 && ctx != nil && ctx.UserID != "" {
		return ff.isInRollout(ctx.UserID, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a user is in the rollout percentage.
// Uses consistent hashing so users stay in their bucket.
func (ff *FeatureFlags) isInRollout(userID, featureName string, percent int) bool {
	// Create a consistent hash for this user+feature combination
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(userID))
	hash := h.Sum32()

	// Map to 0-99 range
	bucket := int(hash % 100)

	return bucket < percent
}

// GetVariant returns the A/B test variant for a user.
// Returns empty string if no variants defined or feature disabled.
func (ff *FeatureFlags) GetVariant(featureName string, ctx *FeatureContext) string {
	if !ff.IsEnabled(featureName, ctx) {
		return ""
	}

	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[featureName]
	if !ok || len(feature.Variants) == 0 {
		return ""
	}

	// Use consistent hashing to assign variant
	h := fnv.New32a()
	h.Write([]byte(featureName + "_variant"))
	h.Write([]byte(ctx.UserID))
	hash := h.Sum32()

	variantIndex := int(hash % uint32(len(feature.Variants)))
	return feature.Variants[variantIndex]
}

// SetUserOverride sets a feature override for a specific user.
// Useful for testing and debugging.
func (ff *FeatureFlags) SetUserOverride(userID, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.userOverrides[userID]; !ok {
		ff.userOverrides[userID] = make(map[string]bool)
	}
	ff.userOverrides[userID][featureName] = enabled
}

// ClearUserOverrides removes all overrides for a user.
func (ff *FeatureFlags) ClearUserOverrides(userID string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.userOverrides, userID)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		// Return a copy
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Convenience methods for common checks ---

// InsightsEnabled checks if any insights section is enabled.
func (ff *FeatureFlags) InsightsEnabled(ctx *FeatureContext) bool {
	return ff.IsEnabled(FeatureInsightsTrend, ctx) ||
		ff.IsEnabled(FeatureInsightsReduction, ctx) ||
		ff.IsEnabled(FeatureInsightsPath, ctx) ||
		ff.IsEnabled(FeatureInsightsPatterns, ctx) ||
		ff.IsEnabled(FeatureInsightsConsistency, ctx)
}

// CoachEnabled checks if any coach surface is enabled.
func (ff *FeatureFlags) CoachEnabled(ctx *FeatureContext) bool {
	return ff.IsEnabled(FeatureCoachChat, ctx) ||
		ff.IsEnabled(FeatureCoachDailyInsight, ctx)
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
