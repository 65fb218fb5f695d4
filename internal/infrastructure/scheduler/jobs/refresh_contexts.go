// Package jobs contains implementations of scheduled jobs for Respira.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/respira-app/respira-server/internal/application/query"
	"github.com/respira-app/respira-server/internal/domain/tracking"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH CONTEXTS JOB
// ══════════════════════════════════════════════════════════════════════════════

// ActiveUserLister lists users with recent logging activity.
type ActiveUserLister interface {
	// ListActiveUsers returns user IDs with at least one smoke log on or
	// after the given day.
	ListActiveUsers(ctx context.Context, since time.Time) ([]tracking.UserID, error)
}

// RefreshContextsJob recomputes and caches the derived progress context for
// recently active users. Keeping the cache warm means the coach and the
// dashboard read a fresh snapshot instead of paying the full derivation on
// the request path.
type RefreshContextsJob struct {
	users    ActiveUserLister
	contexts *query.GetProgressContextHandler
	logger   *slog.Logger
	config   RefreshContextsConfig

	lastStats atomic.Value // *RefreshStats
}

// RefreshContextsConfig contains configuration for the refresh job.
type RefreshContextsConfig struct {
	// ActivityWindow bounds which users count as active.
	ActivityWindow time.Duration

	// MaxUsers caps how many users one run refreshes.
	MaxUsers int

	// Timeout is the maximum duration for one full run.
	Timeout time.Duration
}

// DefaultRefreshContextsConfig returns sensible defaults.
func DefaultRefreshContextsConfig() RefreshContextsConfig {
	return RefreshContextsConfig{
		ActivityWindow: 7 * 24 * time.Hour,
		MaxUsers:       1000,
		Timeout:        2 * time.Minute,
	}
}

// RefreshStats contains statistics from a refresh run.
type RefreshStats struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	UsersFound  int
	Refreshed   int
	Failed      int
}

// NewRefreshContextsJob creates a new refresh contexts job.
func NewRefreshContextsJob(
	users ActiveUserLister,
	contexts *query.GetProgressContextHandler,
	logger *slog.Logger,
	config RefreshContextsConfig,
) *RefreshContextsJob {
	if logger == nil {
		logger = slog.Default()
	}
	if config.ActivityWindow <= 0 {
		config.ActivityWindow = DefaultRefreshContextsConfig().ActivityWindow
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultRefreshContextsConfig().Timeout
	}

	return &RefreshContextsJob{
		users:    users,
		contexts: contexts,
		logger:   logger,
		config:   config,
	}
}

// Name returns the job name.
func (j *RefreshContextsJob) Name() string {
	return "refresh_contexts"
}

// Description returns a human-readable description.
func (j *RefreshContextsJob) Description() string {
	return "Recomputes and caches derived progress contexts for recently active users"
}

// Run executes the refresh job.
func (j *RefreshContextsJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	stats := &RefreshStats{StartedAt: startedAt}

	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	since := startedAt.Add(-j.config.ActivityWindow)
	userIDs, err := j.users.ListActiveUsers(ctx, since)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}

	if j.config.MaxUsers > 0 && len(userIDs) > j.config.MaxUsers {
		userIDs = userIDs[:j.config.MaxUsers]
	}
	stats.UsersFound = len(userIDs)

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			break
		}

		// SkipCache forces a fresh derivation; the handler re-caches it.
		_, err := j.contexts.Handle(ctx, query.GetProgressContextQuery{
			UserID:    string(userID),
			SkipCache: true,
		})
		if err != nil {
			stats.Failed++
			j.logger.Warn("context refresh failed",
				"user_id", string(userID),
				"error", err,
			)
			continue
		}
		stats.Refreshed++
	}

	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(stats.StartedAt)
	j.lastStats.Store(stats)

	j.logger.Info("context refresh completed",
		"users_found", stats.UsersFound,
		"refreshed", stats.Refreshed,
		"failed", stats.Failed,
		"duration", stats.Duration.String(),
	)

	if stats.Failed > 0 && stats.Refreshed == 0 {
		return fmt.Errorf("all %d context refreshes failed", stats.Failed)
	}
	return nil
}

// LastStats returns statistics from the most recent run, or nil.
func (j *RefreshContextsJob) LastStats() *RefreshStats {
	if v := j.lastStats.Load(); v != nil {
		return v.(*RefreshStats)
	}
	return nil
}
